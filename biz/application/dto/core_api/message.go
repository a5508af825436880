package core_api

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/basic"
)

// 消息处理DTO

type ConversationMessageReq struct {
	ConversationId string `json:"conversation_id"`
	Content        string `json:"content"`
	Channel        string `json:"channel,omitempty"`
	Stream         bool   `json:"stream,omitempty"` // 是否以SSE流返回自动回复
}

// EscalationTicket 升级确认信息
type EscalationTicket struct {
	EscalationId string `json:"escalation_id"`
	Reason       string `json:"reason"`
	Priority     string `json:"priority"`
	SlaDeadline  int64  `json:"sla_deadline"`
	Ack          string `json:"ack"` // 给用户的升级确认话术
}

type ConversationMessageResp struct {
	Resp               *basic.Response   `json:"-"`
	MessageId          string            `json:"message_id"`
	AutomatedReply     string            `json:"automated_reply,omitempty"`
	Citations          []string          `json:"citations,omitempty"`
	EscalationTicket   *EscalationTicket `json:"escalation_ticket,omitempty"`
	ConversationStatus string            `json:"conversation_status"`
}

type FeedbackReq struct {
	MessageId string `json:"message_id"`
	Feedback  int32  `json:"feedback"` // 无/喜欢/踩, 依次为0,1,2
}

type FeedbackResp struct {
	Resp *basic.Response `json:"-"`
}
