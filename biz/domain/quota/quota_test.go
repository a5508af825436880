package quota

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/policy"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"

	"github.com/stretchr/testify/assert"
	"github.com/zeromicro/go-zero/core/limit"
	"github.com/zeromicro/go-zero/core/stores/redis/redistest"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	return &Enforcer{
		store:    redistest.CreateRedis(t),
		limiters: make(map[string]*limit.PeriodLimit),
	}
}

func quotaPolicy(convQuota, callQuota int) *policy.Policy {
	return &policy.Policy{
		ConversationQuota:   convQuota,
		ConversationPeriodS: 3600,
		CallQuota:           callQuota,
	}
}

func TestTakeConversationOverQuota(t *testing.T) {
	e := newTestEnforcer(t)
	p := quotaPolicy(3, 100)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.Nil(t, e.TakeConversation(ctx, "tenant-a", p))
	}
	err := e.TakeConversation(ctx, "tenant-a", p)
	assert.NotNil(t, err)
	assert.Equal(t, int32(errno.QuotaConversationErrCode), errorx.CodeOf(err))
}

func TestTakeCallOverQuota(t *testing.T) {
	e := newTestEnforcer(t)
	p := quotaPolicy(100, 2)
	ctx := context.Background()

	assert.Nil(t, e.TakeCall(ctx, "tenant-a", p))
	assert.Nil(t, e.TakeCall(ctx, "tenant-a", p))
	err := e.TakeCall(ctx, "tenant-a", p)
	assert.NotNil(t, err)
	assert.Equal(t, int32(errno.QuotaCallErrCode), errorx.CodeOf(err))
}

func TestQuotaIsolatedPerTenant(t *testing.T) {
	e := newTestEnforcer(t)
	p := quotaPolicy(1, 100)
	ctx := context.Background()

	assert.Nil(t, e.TakeConversation(ctx, "tenant-a", p))
	assert.NotNil(t, e.TakeConversation(ctx, "tenant-a", p))
	// 另一租户不受影响
	assert.Nil(t, e.TakeConversation(ctx, "tenant-b", p))
}

// 并发下许可数不超发
func TestTakeCallConcurrent(t *testing.T) {
	e := newTestEnforcer(t)
	const quota = 10
	p := quotaPolicy(100, quota)
	ctx := context.Background()

	var granted int64
	var wg sync.WaitGroup
	for i := 0; i < quota*3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.TakeCall(ctx, "tenant-a", p); err == nil {
				atomic.AddInt64(&granted, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(quota), granted)
}
