package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ChatProvider 走openai兼容协议的生成供应商
type ChatProvider struct {
	name    string
	model   model.ToolCallingChatModel
	timeout time.Duration

	promptCostPer1K   float64
	responseCostPer1K float64
}

var _ Provider = (*ChatProvider)(nil)

func NewChatProvider(ctx context.Context, c config.Provider) (*ChatProvider, error) {
	timeout := time.Duration(c.TimeoutMs) * time.Millisecond
	m, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		Model:   c.Model,
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	return &ChatProvider{
		name:              c.Name,
		model:             m,
		timeout:           timeout,
		promptCostPer1K:   c.PromptCostPer1K,
		responseCostPer1K: c.ResponseCostPer1K,
	}, nil
}

func (p *ChatProvider) Name() string {
	return p.name
}

func (p *ChatProvider) Generate(ctx context.Context, messages []*schema.Message) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	out, err := p.model.Generate(ctx, messages)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, classify(err)
	}

	res := &Result{
		Text:       out.Content,
		Confidence: 0.55,
		LatencyMs:  latency,
	}
	if out.ResponseMeta != nil {
		if out.ResponseMeta.Usage != nil {
			res.PromptTokens = int32(out.ResponseMeta.Usage.PromptTokens)
			res.CompletionTokens = int32(out.ResponseMeta.Usage.CompletionTokens)
			res.Cost = float64(res.PromptTokens)/1000*p.promptCostPer1K +
				float64(res.CompletionTokens)/1000*p.responseCostPer1K
		}
		// 正常收尾的回复置信度更高, 截断/过滤的按低置信处理
		if out.ResponseMeta.FinishReason == "stop" {
			res.Confidence = 0.85
		}
	}
	return res, nil
}

// classify 把底层错误归一到三类供应商错误, 供熔断与落库使用
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadline") || strings.Contains(msg, "timeout"):
		return ErrTimeout
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return ErrRateLimited
	default:
		return ErrUnavailable
	}
}
