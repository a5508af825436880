package generation

import (
	"context"
	"testing"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/zeromicro/go-zero/core/collection"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProvider struct {
	name  string
	res   *Result
	err   error
	calls int
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Generate(ctx context.Context, messages []*schema.Message) (*Result, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.res, nil
}

func newTestOrchestrator(t *testing.T, providers ...*fakeProvider) *Orchestrator {
	cache, err := collection.NewCache(time.Minute, collection.WithName("generation-test"))
	if err != nil {
		t.Fatal(err)
	}
	chain := make([]*boundProvider, 0, len(providers))
	for _, p := range providers {
		chain = append(chain, &boundProvider{
			provider: p,
			breaker:  newWindowBreaker(5, time.Minute, 30*time.Second),
		})
	}
	return &Orchestrator{chain: chain, cache: cache}
}

func testInput(query string) *Input {
	return &Input{
		TenantId:       "tenant-a",
		ConversationId: primitive.NewObjectID(),
		MessageId:      primitive.NewObjectID(),
		Query:          query,
		Intent:         "faq",
	}
}

func TestGenerateFirstProviderWins(t *testing.T) {
	first := &fakeProvider{name: "primary", res: &Result{Text: "您好", Confidence: 0.85, Cost: 0.002}}
	second := &fakeProvider{name: "backup", res: &Result{Text: "备用", Confidence: 0.85}}
	o := newTestOrchestrator(t, first, second)

	out, attempts := o.Generate(context.Background(), testInput("查询订单"))
	assert.Equal(t, "primary", out.Provider)
	assert.Equal(t, "您好", out.Text)
	assert.False(t, out.TechnicalError)
	assert.Equal(t, 0, second.calls)
	assert.Len(t, attempts, 1)
	assert.True(t, attempts[0].Success)
}

func TestGenerateFallsThroughChain(t *testing.T) {
	first := &fakeProvider{name: "primary", err: ErrTimeout}
	second := &fakeProvider{name: "backup", res: &Result{Text: "备用回复", Confidence: 0.6}}
	o := newTestOrchestrator(t, first, second)

	out, attempts := o.Generate(context.Background(), testInput("查询订单"))
	assert.Equal(t, "backup", out.Provider)
	assert.Len(t, attempts, 2)
	assert.False(t, attempts[0].Success)
	assert.Equal(t, int32(errno.ProviderTimeoutErrCode), attempts[0].ErrorCode)
	assert.True(t, attempts[1].Success)
}

func TestGenerateExhaustionFallback(t *testing.T) {
	first := &fakeProvider{name: "primary", err: ErrUnavailable}
	second := &fakeProvider{name: "backup", err: ErrRateLimited}
	o := newTestOrchestrator(t, first, second)

	out, attempts := o.Generate(context.Background(), testInput("查询订单"))
	assert.True(t, out.TechnicalError)
	assert.Equal(t, fallbackReply, out.Text)
	assert.Equal(t, float64(0), out.Confidence)
	assert.Len(t, attempts, 2)
	assert.Equal(t, int32(errno.ProviderUnavailableErrCode), attempts[0].ErrorCode)
	assert.Equal(t, int32(errno.ProviderRateLimitErrCode), attempts[1].ErrorCode)
}

func TestGenerateCacheHit(t *testing.T) {
	p := &fakeProvider{name: "primary", res: &Result{Text: "您好", Confidence: 0.85, Cost: 0.002}}
	o := newTestOrchestrator(t, p)
	in := testInput("查询订单")

	first, _ := o.Generate(context.Background(), in)
	assert.False(t, first.CacheHit)

	second, attempts := o.Generate(context.Background(), in)
	assert.True(t, second.CacheHit)
	assert.Equal(t, "您好", second.Text)
	// 缓存命中成本记零, 且只产生一条零成本记录
	assert.Equal(t, float64(0), second.Cost)
	assert.Equal(t, 1, p.calls)
	assert.Len(t, attempts, 1)
	assert.True(t, attempts[0].CacheHit)
	assert.True(t, attempts[0].Success)
	assert.Equal(t, float64(0), attempts[0].Cost)
}

func TestGenerateCacheKeyPerTenant(t *testing.T) {
	p := &fakeProvider{name: "primary", res: &Result{Text: "您好", Confidence: 0.85}}
	o := newTestOrchestrator(t, p)

	a := testInput("查询订单")
	b := testInput("查询订单")
	b.TenantId = "tenant-b"

	o.Generate(context.Background(), a)
	out, _ := o.Generate(context.Background(), b)
	assert.False(t, out.CacheHit)
	assert.Equal(t, 2, p.calls)
}

func TestGenerateBreakerSkipsOpenProvider(t *testing.T) {
	first := &fakeProvider{name: "primary", err: ErrUnavailable}
	second := &fakeProvider{name: "backup", res: &Result{Text: "备用", Confidence: 0.6}}
	o := newTestOrchestrator(t, first, second)

	in := testInput("查询订单")
	for i := 0; i < 5; i++ {
		in.Query = in.Query + "!"
		o.Generate(context.Background(), in)
	}
	assert.Equal(t, 5, first.calls)

	// 熔断后主供应商不再被调用
	in.Query = "新问题"
	out, attempts := o.Generate(context.Background(), in)
	assert.Equal(t, 5, first.calls)
	assert.Equal(t, "backup", out.Provider)
	assert.Len(t, attempts, 1)
}
