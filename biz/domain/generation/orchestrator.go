package generation

import (
	"context"
	"errors"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/retrieval"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/attempt"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/util"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"

	"github.com/cloudwego/eino/schema"
	"github.com/google/wire"
	"github.com/zeromicro/go-zero/core/collection"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fallbackReply 整条链路失败时的保底话术, 同时会触发技术故障升级
const fallbackReply = "抱歉, 系统暂时繁忙, 正在为您转接人工客服, 请稍候。"

// Input 一次回复生成的全部上下文
type Input struct {
	TenantId       string
	ConversationId primitive.ObjectID
	MessageId      primitive.ObjectID
	Query          string
	Intent         string
	History        []*schema.Message
	Passages       []*retrieval.Passage
}

// Outcome 编排产出: 链上首个成功供应商的回复, 或保底回复
type Outcome struct {
	Text           string
	Provider       string
	Confidence     float64
	Cost           float64
	CacheHit       bool
	Citations      []string
	TechnicalError bool
}

type boundProvider struct {
	provider Provider
	breaker  *windowBreaker
}

// Orchestrator 按配置顺序遍历供应商链, 熔断跳过, 失败降级
type Orchestrator struct {
	chain []*boundProvider
	cache *collection.Cache
}

var OrchestratorSet = wire.NewSet(NewOrchestrator)

func NewOrchestrator(c *config.Config) *Orchestrator {
	cache, err := collection.NewCache(time.Duration(c.Pipeline.GenCacheTTLS)*time.Second,
		collection.WithName("generation"))
	if err != nil {
		panic(err)
	}

	chain := make([]*boundProvider, 0, len(c.Providers))
	for _, pc := range c.Providers {
		var p Provider
		if pc.RuleBased {
			p = NewRuleBasedProvider(pc.Name)
		} else {
			cp, err := NewChatProvider(context.Background(), pc)
			if err != nil {
				logs.Errorf("[Orchestrator] init provider %s failed: %v", pc.Name, err)
				continue
			}
			p = cp
		}
		chain = append(chain, &boundProvider{
			provider: p,
			breaker: newWindowBreaker(c.Pipeline.BreakerFailures,
				time.Duration(c.Pipeline.BreakerWindowS)*time.Second,
				time.Duration(c.Pipeline.BreakerCooldownS)*time.Second),
		})
	}
	return &Orchestrator{chain: chain, cache: cache}
}

// Generate 生成自动回复, 返回产出与本次全部调用记录
// 链上所有供应商都不可用时不返回error, 而是保底回复+技术故障标记
func (o *Orchestrator) Generate(ctx context.Context, in *Input) (*Outcome, []*attempt.GenerationAttempt) {
	messages := ComposePrompt(in.Intent, in.Passages, in.History, in.Query)
	promptHash := PromptHash(messages)
	citations := citationsOf(in.Passages)
	requestBytes := promptBytes(messages)

	if v, ok := o.cache.Get(util.HashKey(in.TenantId, promptHash)); ok {
		cached := v.(*Outcome)
		out := *cached
		out.CacheHit = true
		out.Cost = 0
		return &out, []*attempt.GenerationAttempt{{
			TenantId:       in.TenantId,
			ConversationId: in.ConversationId,
			MessageId:      in.MessageId,
			Provider:       cached.Provider,
			RequestBytes:   requestBytes,
			Success:        true,
			CacheHit:       true,
		}}
	}

	var attempts []*attempt.GenerationAttempt
	for _, bp := range o.chain {
		if !bp.breaker.Allow() {
			continue
		}
		res, err := bp.provider.Generate(ctx, messages)
		if err != nil {
			bp.breaker.OnFailure()
			attempts = append(attempts, &attempt.GenerationAttempt{
				TenantId:       in.TenantId,
				ConversationId: in.ConversationId,
				Provider:       bp.provider.Name(),
				RequestBytes:   requestBytes,
				Success:        false,
				ErrorCode:      errCodeOf(err),
			})
			logs.CtxWarnf(ctx, "[Orchestrator] [Generate] provider %s failed: %v", bp.provider.Name(), err)
			continue
		}

		bp.breaker.OnSuccess()
		attempts = append(attempts, &attempt.GenerationAttempt{
			TenantId:         in.TenantId,
			ConversationId:   in.ConversationId,
			MessageId:        in.MessageId,
			Provider:         bp.provider.Name(),
			RequestBytes:     requestBytes,
			ResponseBytes:    int64(len(res.Text)),
			PromptTokens:     res.PromptTokens,
			CompletionTokens: res.CompletionTokens,
			Cost:             res.Cost,
			LatencyMs:        res.LatencyMs,
			Success:          true,
		})
		out := &Outcome{
			Text:       res.Text,
			Provider:   bp.provider.Name(),
			Confidence: res.Confidence,
			Cost:       res.Cost,
			Citations:  citations,
		}
		o.cache.Set(util.HashKey(in.TenantId, promptHash), out)
		return out, attempts
	}

	return &Outcome{
		Text:           fallbackReply,
		Confidence:     0,
		TechnicalError: true,
	}, attempts
}

func citationsOf(passages []*retrieval.Passage) []string {
	if len(passages) == 0 {
		return nil
	}
	cs := make([]string, 0, len(passages))
	for _, p := range passages {
		cs = append(cs, p.EntryId)
	}
	return cs
}

func promptBytes(messages []*schema.Message) int64 {
	var n int64
	for _, m := range messages {
		n += int64(len(m.Content))
	}
	return n
}

func errCodeOf(err error) int32 {
	switch {
	case errors.Is(err, ErrTimeout):
		return errno.ProviderTimeoutErrCode
	case errors.Is(err, ErrRateLimited):
		return errno.ProviderRateLimitErrCode
	default:
		return errno.ProviderUnavailableErrCode
	}
}
