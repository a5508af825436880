package conversation

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Aggregates 对话级滚动聚合, 由Conversation Manager在消息落库后同一锁范围内更新
type Aggregates struct {
	MessageCount     int64   `json:"message_count" bson:"message_count"`
	UserMessageCount int64   `json:"user_message_count" bson:"user_message_count"`
	AutoMessageCount int64   `json:"auto_message_count" bson:"auto_message_count"`
	FailedAttempts   int32   `json:"failed_attempts" bson:"failed_attempts"` // 连续自动处理失败/低置信次数
	ConfidenceMin    float64 `json:"confidence_min" bson:"confidence_min"`
	ConfidenceSum    float64 `json:"confidence_sum" bson:"confidence_sum"`
	ConfidenceCnt    int64   `json:"confidence_cnt" bson:"confidence_cnt"`
	SentimentScore   float64 `json:"sentiment_score" bson:"sentiment_score"`
	SentimentLabel   string  `json:"sentiment_label" bson:"sentiment_label"`
	SentimentTrend   string  `json:"sentiment_trend" bson:"sentiment_trend"`
	EmotionLabel     string  `json:"emotion_label" bson:"emotion_label"`
	EmotionIntensity float64 `json:"emotion_intensity" bson:"emotion_intensity"`
	EmotionTrend     string  `json:"emotion_trend" bson:"emotion_trend"`
	EscalationCount  int32   `json:"escalation_count" bson:"escalation_count"`
}

// ConfidenceAvg 平均置信度
func (a *Aggregates) ConfidenceAvg() float64 {
	if a.ConfidenceCnt == 0 {
		return 0
	}
	return a.ConfidenceSum / float64(a.ConfidenceCnt)
}

// Resolution 结单信息, resolved为true时resolved_at必须存在
type Resolution struct {
	Resolved   bool       `json:"resolved" bson:"resolved"`
	Summary    string     `json:"summary,omitempty" bson:"summary,omitempty"`
	Outcome    string     `json:"outcome,omitempty" bson:"outcome,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}

type Conversation struct {
	ConversationId primitive.ObjectID `json:"conversation_id" bson:"_id"`
	TenantId       string             `json:"tenant_id" bson:"tenant_id"`
	UserId         primitive.ObjectID `json:"user_id" bson:"user_id"`
	Brief          string             `json:"brief" bson:"brief"`
	Channel        string             `json:"channel,omitempty" bson:"channel,omitempty"`
	Priority       int32              `json:"priority" bson:"priority"`
	AssignedTo     string             `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	ExternalCaseId string             `json:"external_case_id,omitempty" bson:"external_case_id,omitempty"`
	Status         int32              `json:"status" bson:"status"`
	Version        int64              `json:"version" bson:"version"` // 乐观锁版本号
	Aggregates     Aggregates         `json:"aggregates" bson:"aggregates"`
	Resolution     Resolution         `json:"resolution" bson:"resolution"`
	Ext            map[string]string  `json:"ext,omitempty" bson:"ext,omitempty"` // 租户扩展字段
	StartTime      time.Time          `json:"start_time" bson:"start_time"`
	LastActivity   time.Time          `json:"last_activity" bson:"last_activity"`
	UpdateTime     time.Time          `json:"update_time" bson:"update_time"`
	EndTime        *time.Time         `json:"end_time,omitempty" bson:"end_time,omitempty"`
}
