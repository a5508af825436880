package verdict

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Verdict 决策引擎的裁决审计记录, 自动/升级都会落一条
type Verdict struct {
	VerdictId      primitive.ObjectID `json:"verdict_id" bson:"_id"`
	TenantId       string             `json:"tenant_id" bson:"tenant_id"`
	ConversationId primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	MessageId      primitive.ObjectID `json:"message_id,omitempty" bson:"message_id,omitempty"`
	Verdict        string             `json:"verdict" bson:"verdict"` // automate/escalate
	Reason         string             `json:"reason,omitempty" bson:"reason,omitempty"`
	Confidence     float64            `json:"confidence" bson:"confidence"`
	CreateTime     time.Time          `json:"create_time" bson:"create_time"`
}
