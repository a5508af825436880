package service

import (
	"context"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/adaptor"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/core_api"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/retrieval"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/knowledge"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/util"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IKnowledgeService interface {
	CreateKnowledge(ctx context.Context, req *core_api.CreateKnowledgeReq) (*core_api.CreateKnowledgeResp, error)
}

type KnowledgeService struct {
	Retriever *retrieval.Retriever
}

var KnowledgeServiceSet = wire.NewSet(
	wire.Struct(new(KnowledgeService), "*"),
	wire.Bind(new(IKnowledgeService), new(*KnowledgeService)),
)

// CreateKnowledge 知识条目入库, 向量与词项由检索域生成
func (s *KnowledgeService) CreateKnowledge(ctx context.Context, req *core_api.CreateKnowledgeReq) (*core_api.CreateKnowledgeResp, error) {
	// 鉴权
	id, err := adaptor.ExtractIdentity(ctx)
	if err != nil {
		logs.Errorf("extract identity error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	if req.Content == "" {
		return nil, errorx.New(errno.KnowledgeIndexErrCode)
	}

	docId := req.DocId
	if docId == "" {
		docId = primitive.NewObjectID().Hex()
	}
	entry := &knowledge.KnowledgeEntry{
		TenantId:     id.TenantId,
		DocId:        docId,
		IsCurrent:    true,
		IsPublished:  req.Publish,
		Title:        req.Title,
		Content:      req.Content,
		QualityScore: req.QualityScore,
	}
	if err = s.Retriever.Index(ctx, entry); err != nil {
		logs.Errorf("index knowledge error: %s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	return &core_api.CreateKnowledgeResp{
		Resp:    util.Success(),
		EntryId: entry.EntryId.Hex(),
		DocId:   entry.DocId,
		Version: entry.Version,
	}, nil
}
