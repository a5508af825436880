package core_api

import (
	"context"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/adaptor"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/core_api"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/provider"

	"github.com/cloudwego/hertz/pkg/app"
)

// ConversationMessage 入站消息, stream=true时以SSE返回
// @router /conversation/message [POST]
func ConversationMessage(ctx context.Context, c *app.RequestContext) {
	var req core_api.ConversationMessageReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().MessageService.ConversationMessage(c, ctx, &req)
	if req.Stream {
		adaptor.SSE(ctx, c, &req, nil, err)
		return
	}
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// Feedback 消息反馈
// @router /message/feedback [POST]
func Feedback(ctx context.Context, c *app.RequestContext) {
	var req core_api.FeedbackReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().MessageService.Feedback(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}
