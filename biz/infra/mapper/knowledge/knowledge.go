package knowledge

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// KnowledgeEntry 知识库条目, 按文档多版本存储, 仅当前已发布版本可被检索
type KnowledgeEntry struct {
	EntryId      primitive.ObjectID `json:"entry_id" bson:"_id"`
	TenantId     string             `json:"tenant_id" bson:"tenant_id"`
	DocId        string             `json:"doc_id" bson:"doc_id"`   // 同一文档各版本共享
	Version      int32              `json:"version" bson:"version"` // 文档版本号
	IsCurrent    bool               `json:"is_current" bson:"is_current"`
	IsPublished  bool               `json:"is_published" bson:"is_published"`
	Title        string             `json:"title" bson:"title"`
	Content      string             `json:"content" bson:"content"`
	Embedding    []float64          `json:"-" bson:"embedding"`                 // 语义向量
	Terms        []string           `json:"terms,omitempty" bson:"terms"`       // 词法索引词项
	QualityScore float64            `json:"quality_score" bson:"quality_score"` // (0,1], 作为融合分乘数
	UsageCount   int64              `json:"usage_count" bson:"usage_count"`
	CreateTime   time.Time          `json:"create_time" bson:"create_time"`
	UpdateTime   time.Time          `json:"update_time" bson:"update_time"`
}
