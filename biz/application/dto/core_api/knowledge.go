package core_api

import (
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/basic"
)

// 知识库DTO

type CreateKnowledgeReq struct {
	DocId        string  `json:"doc_id,omitempty"` // 不传时视为新文档
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	QualityScore float64 `json:"quality_score,omitempty"` // (0,1], 缺省1.0
	Publish      bool    `json:"publish,omitempty"`       // 入库即发布
}

type CreateKnowledgeResp struct {
	Resp    *basic.Response `json:"-"`
	EntryId string          `json:"entry_id"`
	DocId   string          `json:"doc_id"`
	Version int32           `json:"version"`
}
