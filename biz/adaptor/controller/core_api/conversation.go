package core_api

import (
	"context"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/adaptor"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/core_api"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/provider"

	"github.com/cloudwego/hertz/pkg/app"
)

// CreateConversation 创建对话
// @router /conversation/create [POST]
func CreateConversation(ctx context.Context, c *app.RequestContext) {
	var req core_api.CreateConversationReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().ConversationService.CreateConversation(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// ListConversation 分页获取历史对话
// @router /conversation/list [POST]
func ListConversation(ctx context.Context, c *app.RequestContext) {
	var req core_api.ListConversationReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().ConversationService.ListConversation(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// SearchConversation 按标题搜索历史对话
// @router /conversation/search [POST]
func SearchConversation(ctx context.Context, c *app.RequestContext) {
	var req core_api.SearchConversationReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().ConversationService.SearchConversation(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}

// ResolveConversation 结单
// @router /conversation/resolve [POST]
func ResolveConversation(ctx context.Context, c *app.RequestContext) {
	var req core_api.ResolveConversationReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().ConversationService.ResolveConversation(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}
