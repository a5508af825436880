package policy

import (
	"context"

	"github.com/google/wire"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/tenant"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"
)

// Policy 解析后的租户策略, 全部为具体值
// 决策引擎与额度校验只依赖该结构, 不读取任何进程级可变配置
type Policy struct {
	TenantId              string
	ConfidenceThreshold   float64
	MaxAttempts           int
	TrendDelta            float64
	SemanticWeight        float64
	LexicalWeight         float64
	MinFusedScore         float64
	TopK                  int
	ConversationQuota     int
	ConversationPeriodS   int
	CallQuota             int
	ComplianceIntents     []string
	VIP                   bool
	EscalateOnUserRequest bool
}

type Loader struct {
	Config       *config.Config
	TenantMapper tenant.MongoMapper
}

var LoaderSet = wire.NewSet(wire.Struct(new(Loader), "*"))

// Default 仅由全局缺省构成的策略
func Default(tenantId string, d config.TenantDefaults) *Policy {
	return &Policy{
		TenantId:              tenantId,
		ConfidenceThreshold:   d.ConfidenceThreshold,
		MaxAttempts:           d.MaxAttempts,
		TrendDelta:            d.TrendDelta,
		SemanticWeight:        d.SemanticWeight,
		LexicalWeight:         d.LexicalWeight,
		MinFusedScore:         d.MinFusedScore,
		TopK:                  d.TopK,
		ConversationQuota:     d.ConversationQuota,
		ConversationPeriodS:   d.ConversationPeriodS,
		CallQuota:             d.CallQuota,
		EscalateOnUserRequest: true,
	}
}

// Load 读取租户策略并与全局缺省合并, 租户无策略文档时直接使用缺省
func (l *Loader) Load(ctx context.Context, tenantId string) (*Policy, error) {
	p := Default(tenantId, l.Config.Tenant)

	doc, err := l.TenantMapper.FindOne(ctx, tenantId)
	if err != nil {
		if err == tenant.ErrNotFound {
			return p, nil
		}
		logs.CtxErrorf(ctx, "[policy] load tenant %s err:%s", tenantId, errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.TenantPolicyErrCode)
	}

	if doc.ConfidenceThreshold != nil {
		p.ConfidenceThreshold = *doc.ConfidenceThreshold
	}
	if doc.MaxAttempts != nil {
		p.MaxAttempts = int(*doc.MaxAttempts)
	}
	if doc.TrendDelta != nil {
		p.TrendDelta = *doc.TrendDelta
	}
	if doc.SemanticWeight != nil {
		p.SemanticWeight = *doc.SemanticWeight
	}
	if doc.LexicalWeight != nil {
		p.LexicalWeight = *doc.LexicalWeight
	}
	if doc.MinFusedScore != nil {
		p.MinFusedScore = *doc.MinFusedScore
	}
	if doc.TopK != nil {
		p.TopK = int(*doc.TopK)
	}
	if doc.ConversationQuota != nil {
		p.ConversationQuota = int(*doc.ConversationQuota)
	}
	if doc.CallQuota != nil {
		p.CallQuota = int(*doc.CallQuota)
	}
	p.ComplianceIntents = doc.ComplianceIntents
	p.VIP = doc.VIP
	if doc.EscalateOnUserRequest != nil {
		p.EscalateOnUserRequest = *doc.EscalateOnUserRequest
	}
	return p, nil
}
