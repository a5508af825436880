package message

import (
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	RoleStoI = map[string]int32{cst.System: 0, cst.Assistant: 1, cst.User: 2, cst.HumanAgent: 3}
	RoleItoS = map[int32]string{0: cst.System, 1: cst.Assistant, 2: cst.User, 3: cst.HumanAgent}
)

// Entity NLP抽取出的实体
type Entity struct {
	Type  string `json:"type" bson:"type"`
	Value string `json:"value" bson:"value"`
}

// NLP 消息的分析结果, 仅用户消息有
type NLP struct {
	Intent           string   `json:"intent" bson:"intent"`                                           // 主意图, 置信度不足时记录原值但按unknown分支处理
	Confidence       float64  `json:"confidence" bson:"confidence"`                                   // 意图置信度
	SecondaryIntents []string `json:"secondary_intents,omitempty" bson:"secondary_intents,omitempty"` // 次要意图
	Entities         []Entity `json:"entities,omitempty" bson:"entities,omitempty"`
	SentimentScore   float64  `json:"sentiment_score" bson:"sentiment_score"` // [-1,1]
	SentimentLabel   string   `json:"sentiment_label" bson:"sentiment_label"` // 五级标签
	EmotionLabel     string   `json:"emotion_label" bson:"emotion_label"`
	EmotionIntensity float64  `json:"emotion_intensity" bson:"emotion_intensity"` // [0,1]
}

// Gen 自动回复的生成元数据, 仅assistant消息有
type Gen struct {
	Provider   string   `json:"provider" bson:"provider"`
	Confidence float64  `json:"confidence" bson:"confidence"`
	LatencyMs  int64    `json:"latency_ms" bson:"latency_ms"`
	Cost       float64  `json:"cost" bson:"cost"`
	Success    bool     `json:"success" bson:"success"`
	CacheHit   bool     `json:"cache_hit" bson:"cache_hit"`
	Citations  []string `json:"citations,omitempty" bson:"citations,omitempty"` // 知识库引用
}

// Message 一条消息, 归属于唯一对话, 落库后不可变, 仅反馈/删除标记可改
type Message struct {
	MessageId      primitive.ObjectID `json:"message_id" bson:"_id"`                              // 主键
	ConversationId primitive.ObjectID `json:"conversation_id" bson:"conversation_id"`             // 归属的对话id
	TenantId       string             `json:"tenant_id" bson:"tenant_id"`                         // 租户id
	SenderId       string             `json:"sender_id,omitempty" bson:"sender_id,omitempty"`     // 发送者id
	Index          int32              `json:"index" bson:"index"`                                 // 消息索引, 对话内递增
	Role           int32              `json:"role" bson:"role"`                                   // 角色, system/assistant/user/human_agent, 依次为0,1,2,3
	Content        string             `json:"content" bson:"content"`                             // 消息内容
	NLP            *NLP               `json:"nlp,omitempty" bson:"nlp,omitempty"`                 // 分析结果
	Gen            *Gen               `json:"gen,omitempty" bson:"gen,omitempty"`                 // 生成元数据
	Feedback       int32              `json:"feedback,omitempty" bson:"feedback,omitempty"`       // 反馈, 无/喜欢/踩, 依次为0,1,2
	Edited         bool               `json:"edited,omitempty" bson:"edited,omitempty"`           // 编辑标记
	CreateTime     time.Time          `json:"create_time" bson:"create_time"`                     // 创建时间
	UpdateTime     time.Time          `json:"update_time" bson:"update_time"`                     // 更新时间
	DeleteTime     time.Time          `json:"delete_time,omitempty" bson:"delete_time,omitempty"` // 删除时间
	Status         int32              `json:"status" bson:"status"`                               // 状态, 默认0, 删除-1
}
