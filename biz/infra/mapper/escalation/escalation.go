package escalation

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 工单对接状态
const (
	HandoffPending int32 = 0 // 本地已升级, 外部工单未建立
	HandoffCreated int32 = 1
	HandoffFailed  int32 = 2 // 重试次数耗尽
)

// EscalationRecord 一次人工升级记录, 仅由escalate裁决产生
type EscalationRecord struct {
	EscalationId   primitive.ObjectID `json:"escalation_id" bson:"_id"`
	TenantId       string             `json:"tenant_id" bson:"tenant_id"`
	ConversationId primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	Reason         string             `json:"reason" bson:"reason"`
	Priority       string             `json:"priority" bson:"priority"`
	SlaDeadline    time.Time          `json:"sla_deadline" bson:"sla_deadline"` // 首次人工响应时限
	AssignedTo     string             `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	ExternalCaseId string             `json:"external_case_id,omitempty" bson:"external_case_id,omitempty"`
	HandoffStatus  int32              `json:"handoff_status" bson:"handoff_status"`
	ResolvedAt     *time.Time         `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	CreateTime     time.Time          `json:"create_time" bson:"create_time"`
	UpdateTime     time.Time          `json:"update_time" bson:"update_time"`
}
