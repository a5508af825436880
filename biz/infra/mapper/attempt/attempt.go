package attempt

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerationAttempt 一次模型调用记录, 编排一次可能产生多条(链式降级)
// 追加写入, 供成本/延迟分析, 缓存命中也会记一条零成本记录
type GenerationAttempt struct {
	AttemptId        primitive.ObjectID `json:"attempt_id" bson:"_id"`
	TenantId         string             `json:"tenant_id" bson:"tenant_id"`
	ConversationId   primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`
	MessageId        primitive.ObjectID `json:"message_id,omitempty" bson:"message_id,omitempty"` // 产出的消息id, 失败时为空
	Provider         string             `json:"provider" bson:"provider"`
	RequestBytes     int64              `json:"request_bytes" bson:"request_bytes"`
	ResponseBytes    int64              `json:"response_bytes" bson:"response_bytes"`
	PromptTokens     int32              `json:"prompt_tokens" bson:"prompt_tokens"`
	CompletionTokens int32              `json:"completion_tokens" bson:"completion_tokens"`
	Cost             float64            `json:"cost" bson:"cost"`
	LatencyMs        int64              `json:"latency_ms" bson:"latency_ms"`
	Success          bool               `json:"success" bson:"success"`
	CacheHit         bool               `json:"cache_hit" bson:"cache_hit"`
	ErrorCode        int32              `json:"error_code,omitempty" bson:"error_code,omitempty"`
	CreateTime       time.Time          `json:"create_time" bson:"create_time"`
}
