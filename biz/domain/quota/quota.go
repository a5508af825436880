package quota

import (
	"context"
	"strconv"
	"sync"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/policy"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"

	"github.com/google/wire"
	"github.com/zeromicro/go-zero/core/limit"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

const callPeriodS = 3600

// Enforcer 租户级额度控制: 周期内会话数 + 小时内调用数
// 计数基于redis lua原子脚本, 并发下不会超发
type Enforcer struct {
	Config *config.Config

	store *redis.Redis

	mu       sync.Mutex
	limiters map[string]*limit.PeriodLimit
}

var EnforcerSet = wire.NewSet(NewEnforcer)

func NewEnforcer(c *config.Config) *Enforcer {
	return &Enforcer{
		Config:   c,
		store:    redis.MustNewRedis(c.Redis),
		limiters: make(map[string]*limit.PeriodLimit),
	}
}

// TakeConversation 新会话额度, 超限返回QuotaConversation错误
func (e *Enforcer) TakeConversation(ctx context.Context, tenantId string, p *policy.Policy) error {
	l := e.limiter("conversation", p.ConversationPeriodS, p.ConversationQuota)
	return e.take(ctx, l, tenantId, errno.QuotaConversationErrCode)
}

// TakeCall 单条消息处理额度, 超限返回QuotaCall错误
func (e *Enforcer) TakeCall(ctx context.Context, tenantId string, p *policy.Policy) error {
	l := e.limiter("call", callPeriodS, p.CallQuota)
	return e.take(ctx, l, tenantId, errno.QuotaCallErrCode)
}

func (e *Enforcer) take(ctx context.Context, l *limit.PeriodLimit, tenantId string, overCode int32) error {
	code, err := l.TakeCtx(ctx, tenantId)
	if err != nil {
		return errorx.WrapByCode(err, errno.QuotaCheckErrCode)
	}
	switch code {
	case limit.Allowed, limit.HitQuota:
		return nil
	default:
		return errorx.New(overCode)
	}
}

// limiter 按(类型,周期,额度)缓存PeriodLimit实例, 租户策略变化即生效
func (e *Enforcer) limiter(kind string, periodS, quota int) *limit.PeriodLimit {
	key := limiterKey(kind, periodS, quota)
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.limiters[key]; ok {
		return l
	}
	l := limit.NewPeriodLimit(periodS, quota, e.store, "quota:"+key+":")
	e.limiters[key] = l
	return l
}

func limiterKey(kind string, periodS, quota int) string {
	return kind + ":" + strconv.Itoa(periodS) + ":" + strconv.Itoa(quota)
}
