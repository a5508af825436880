package core_api

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/basic"
)

// 对话相关DTO

type CreateConversationReq struct {
	Channel string `json:"channel,omitempty"`
}

type CreateConversationResp struct {
	Resp           *basic.Response `json:"-"`
	ConversationId string          `json:"conversation_id"`
}

type Conversation struct {
	ConversationId string `json:"conversation_id"`
	Brief          string `json:"brief"`
	Status         string `json:"status"`
	Priority       int32  `json:"priority"`
	CreateTime     int64  `json:"create_time"`
	UpdateTime     int64  `json:"update_time"`
}

type ListConversationReq struct {
	Page *basic.Page `json:"page,omitempty"`
}

type ListConversationResp struct {
	Resp          *basic.Response `json:"-"`
	Conversations []*Conversation `json:"conversations"`
	HasMore       bool            `json:"has_more"`
	Cursor        string          `json:"cursor,omitempty"`
}

type SearchConversationReq struct {
	Key  string      `json:"key"`
	Page *basic.Page `json:"page,omitempty"`
}

type SearchConversationResp struct {
	Resp          *basic.Response `json:"-"`
	Conversations []*Conversation `json:"conversations"`
	HasMore       bool            `json:"has_more"`
}

type ResolveConversationReq struct {
	ConversationId string `json:"conversation_id"`
	Summary        string `json:"summary"`
	Outcome        string `json:"outcome,omitempty"`
}

type ResolveConversationResp struct {
	Resp *basic.Response `json:"-"`
}

func (r *ListConversationReq) GetPage() *basic.Page {
	if r == nil {
		return nil
	}
	return r.Page
}

func (r *SearchConversationReq) GetPage() *basic.Page {
	if r == nil {
		return nil
	}
	return r.Page
}
