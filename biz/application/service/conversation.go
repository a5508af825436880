package service

import (
	"context"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/adaptor"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/core_api"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/convo"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/policy"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/quota"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/conversation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/util"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"

	"github.com/google/wire"
)

type IConversationService interface {
	CreateConversation(ctx context.Context, req *core_api.CreateConversationReq) (*core_api.CreateConversationResp, error)
	ListConversation(ctx context.Context, req *core_api.ListConversationReq) (*core_api.ListConversationResp, error)
	SearchConversation(ctx context.Context, req *core_api.SearchConversationReq) (*core_api.SearchConversationResp, error)
	ResolveConversation(ctx context.Context, req *core_api.ResolveConversationReq) (*core_api.ResolveConversationResp, error)
}

type ConversationService struct {
	ConversationMapper conversation.MongoMapper
	PolicyLoader       *policy.Loader
	Quota              *quota.Enforcer
	Manager            *convo.Manager
}

var ConversationServiceSet = wire.NewSet(
	wire.Struct(new(ConversationService), "*"),
	wire.Bind(new(IConversationService), new(*ConversationService)),
)

func (s *ConversationService) CreateConversation(ctx context.Context, req *core_api.CreateConversationReq) (*core_api.CreateConversationResp, error) {
	// 鉴权
	id, err := adaptor.ExtractIdentity(ctx)
	if err != nil {
		logs.Errorf("extract identity error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	// 周期内新会话额度
	pol, err := s.PolicyLoader.Load(ctx, id.TenantId)
	if err != nil {
		return nil, err
	}
	if err = s.Quota.TakeConversation(ctx, id.TenantId, pol); err != nil {
		return nil, err
	}

	// 调用mapper创建对话
	newConversation, err := s.ConversationMapper.CreateNewConversation(ctx, id.TenantId, id.UserId, req.Channel)
	if err != nil {
		logs.Errorf("create conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationCreateErrCode)
	}

	// 返回conversationID
	return &core_api.CreateConversationResp{Resp: util.Success(), ConversationId: newConversation.ConversationId.Hex()}, nil
}

func (s *ConversationService) ListConversation(ctx context.Context, req *core_api.ListConversationReq) (*core_api.ListConversationResp, error) {
	// 鉴权
	id, err := adaptor.ExtractIdentity(ctx)
	if err != nil {
		logs.Errorf("extract identity error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	cs, hasMore, err := s.ConversationMapper.ListConversations(ctx, id.TenantId, id.UserId, req.GetPage())
	if err != nil {
		logs.Errorf("list conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationListErrCode)
	}
	return &core_api.ListConversationResp{Resp: util.Success(), Conversations: toDTOs(cs), HasMore: hasMore}, nil
}

func (s *ConversationService) SearchConversation(ctx context.Context, req *core_api.SearchConversationReq) (*core_api.SearchConversationResp, error) {
	// 鉴权
	id, err := adaptor.ExtractIdentity(ctx)
	if err != nil {
		logs.Errorf("extract identity error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}

	cs, hasMore, err := s.ConversationMapper.SearchConversations(ctx, id.TenantId, id.UserId, req.Key, req.GetPage())
	if err != nil {
		logs.Errorf("search conversation error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.ConversationSearchErrCode)
	}
	return &core_api.SearchConversationResp{Resp: util.Success(), Conversations: toDTOs(cs), HasMore: hasMore}, nil
}

// ResolveConversation 结单, 必须携带结单摘要
func (s *ConversationService) ResolveConversation(ctx context.Context, req *core_api.ResolveConversationReq) (*core_api.ResolveConversationResp, error) {
	// 鉴权
	id, err := adaptor.ExtractIdentity(ctx)
	if err != nil {
		logs.Errorf("extract identity error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	if req.Summary == "" {
		return nil, errorx.New(errno.ConversationResolveErrCode)
	}

	if _, err = s.Manager.Resolve(ctx, id.TenantId, req.ConversationId, req.Summary, req.Outcome); err != nil {
		return nil, err
	}
	return &core_api.ResolveConversationResp{Resp: util.Success()}, nil
}

func toDTOs(cs []*conversation.Conversation) []*core_api.Conversation {
	dtos := make([]*core_api.Conversation, 0, len(cs))
	for _, c := range cs {
		dtos = append(dtos, &core_api.Conversation{
			ConversationId: c.ConversationId.Hex(),
			Brief:          c.Brief,
			Status:         convo.StatusName(c.Status),
			Priority:       c.Priority,
			CreateTime:     c.StartTime.UnixMilli(),
			UpdateTime:     c.UpdateTime.UnixMilli(),
		})
	}
	return dtos
}
