package core_api

import (
	"context"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/adaptor"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/core_api"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/provider"

	"github.com/cloudwego/hertz/pkg/app"
)

// CreateKnowledge 知识条目入库
// @router /knowledge/create [POST]
func CreateKnowledge(ctx context.Context, c *app.RequestContext) {
	var req core_api.CreateKnowledgeReq
	if err := c.BindAndValidate(&req); err != nil {
		adaptor.PostProcess(ctx, c, &req, nil, err)
		return
	}
	ctx = adaptor.InjectContext(ctx, c)
	resp, err := provider.Get().KnowledgeService.CreateKnowledge(ctx, &req)
	adaptor.PostProcess(ctx, c, &req, resp, err)
}
