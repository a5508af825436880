package cst

const (
	// Assistant is the role of an assistant, means the message is returned by ChatModel.
	Assistant = "assistant"
	// User is the role of a user, means the message is a user message.
	User = "user"
	// HumanAgent is the role of a human agent after an escalation handoff.
	HumanAgent = "human_agent"
	// System is the role of a system, means the message is a system message.
	System = "system"
)

// 对话状态机状态
const (
	ConvInitialized     int32 = 0
	ConvActive          int32 = 1
	ConvProcessing      int32 = 2
	ConvWaitingForUser  int32 = 3
	ConvWaitingForAgent int32 = 4
	ConvEscalated       int32 = 5
	ConvTransferred     int32 = 6
	ConvResolved        int32 = 7
	ConvAbandoned       int32 = 8
	ConvArchived        int32 = 9
)

// 情感五级标签
const (
	SentimentVeryNegative = "very_negative"
	SentimentNegative     = "negative"
	SentimentNeutral      = "neutral"
	SentimentPositive     = "positive"
	SentimentVeryPositive = "very_positive"
)

// 情绪标签
const (
	EmotionAngry      = "angry"
	EmotionFrustrated = "frustrated"
	EmotionConfused   = "confused"
	EmotionHappy      = "happy"
	EmotionNeutral    = "neutral"
)

// 趋势标签
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
	TrendVolatile  = "volatile"
)

// 升级原因枚举
const (
	ReasonUserRequested      = "user_requested"
	ReasonSentimentNegative  = "sentiment_negative"
	ReasonEmotionAngry       = "emotion_angry"
	ReasonLowConfidence      = "low_confidence"
	ReasonMultipleAttempts   = "multiple_attempts"
	ReasonComplexIssue       = "complex_issue"
	ReasonVIPCustomer        = "vip_customer"
	ReasonComplianceRequired = "compliance_required"
	ReasonTechnicalError     = "technical_error"
)

// 裁决结果
const (
	VerdictAutomate = "automate"
	VerdictEscalate = "escalate"
)

// 升级工单优先级
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// 意图
const (
	IntentUnknown = "unknown"
)

// sse事件类型
const (
	// EventMeta 消息元数据
	EventMeta = "meta"
	// EventReply 自动回复内容
	EventReply = "reply"
	// EventEscalation 升级确认
	EventEscalation = "escalation"
	// EventEnd 流结束
	EventEnd      = "end"
	EventEndValue = "{}"
)

// mapper层字段枚举
const (
	Id             = "_id"
	ConversationId = "conversation_id"
	TenantId       = "tenant_id"
	UserId         = "user_id"
	CreateTime     = "create_time"
	UpdateTime     = "update_time"
	DeleteTime     = "delete_time"
	LastActivity   = "last_activity"
	Version        = "version"
	Brief          = "brief"
	Feedback       = "feedback"
	IsCurrent      = "is_current"
	IsPublished    = "is_published"

	Status              = "status"
	DeletedStatus int32 = -1

	NE    = "$ne"
	LT    = "$lt"
	IN    = "$in"
	Set   = "$set"
	Inc   = "$inc"
	Regex = "$regex"

	Options = "$options"
)
