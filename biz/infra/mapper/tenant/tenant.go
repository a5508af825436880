package tenant

import (
	"time"
)

// TenantPolicy 租户策略文档, 指针字段为空表示使用全局缺省
// 替代源系统的进程级动态配置: 策略随请求显式传入各决策点
type TenantPolicy struct {
	TenantId              string            `json:"tenant_id" bson:"_id"`
	Plan                  string            `json:"plan,omitempty" bson:"plan,omitempty"`
	ConfidenceThreshold   *float64          `json:"confidence_threshold,omitempty" bson:"confidence_threshold,omitempty"`
	MaxAttempts           *int32            `json:"max_attempts,omitempty" bson:"max_attempts,omitempty"`
	TrendDelta            *float64          `json:"trend_delta,omitempty" bson:"trend_delta,omitempty"`
	SemanticWeight        *float64          `json:"semantic_weight,omitempty" bson:"semantic_weight,omitempty"`
	LexicalWeight         *float64          `json:"lexical_weight,omitempty" bson:"lexical_weight,omitempty"`
	MinFusedScore         *float64          `json:"min_fused_score,omitempty" bson:"min_fused_score,omitempty"`
	TopK                  *int32            `json:"top_k,omitempty" bson:"top_k,omitempty"`
	ConversationQuota     *int32            `json:"conversation_quota,omitempty" bson:"conversation_quota,omitempty"`
	CallQuota             *int32            `json:"call_quota,omitempty" bson:"call_quota,omitempty"`
	ComplianceIntents     []string          `json:"compliance_intents,omitempty" bson:"compliance_intents,omitempty"` // 强制人工的意图
	VIP                   bool              `json:"vip,omitempty" bson:"vip,omitempty"`
	EscalateOnUserRequest *bool             `json:"escalate_on_user_request,omitempty" bson:"escalate_on_user_request,omitempty"`
	Ext                   map[string]string `json:"ext,omitempty" bson:"ext,omitempty"` // 租户扩展字段
	UpdateTime            time.Time         `json:"update_time" bson:"update_time"`
}
