package generation

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/schema"
)

var (
	ErrTimeout     = errors.New("生成超时")
	ErrRateLimited = errors.New("供应商限流")
	ErrUnavailable = errors.New("供应商不可用")
)

// Result 单个供应商一次成功调用的产出
type Result struct {
	Text             string
	Confidence       float64
	PromptTokens     int32
	CompletionTokens int32
	Cost             float64
	LatencyMs        int64
}

// Provider 回复生成供应商, 失败时返回 ErrTimeout/ErrRateLimited/ErrUnavailable 之一
type Provider interface {
	Name() string
	Generate(ctx context.Context, messages []*schema.Message) (*Result, error)
}
