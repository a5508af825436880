package knowledge

import (
	"context"
	"errors"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var _ MongoMapper = (*mongoMapper)(nil)

const collection = "knowledge"

type MongoMapper interface {
	InsertOne(ctx context.Context, e *KnowledgeEntry) error
	ListCurrent(ctx context.Context, tenantId string) (es []*KnowledgeEntry, err error)
	IncUsage(ctx context.Context, ids []primitive.ObjectID) error
}

type mongoMapper struct {
	conn *monc.Model
}

func NewKnowledgeMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

func (m *mongoMapper) InsertOne(ctx context.Context, e *KnowledgeEntry) error {
	if e.EntryId.IsZero() {
		e.EntryId = primitive.NewObjectID()
	}
	now := time.Now()
	e.CreateTime, e.UpdateTime = now, now
	_, err := m.conn.InsertOneNoCache(ctx, e)
	return err
}

// ListCurrent 取出租户当前可检索的条目: is_current && is_published
func (m *mongoMapper) ListCurrent(ctx context.Context, tenantId string) (es []*KnowledgeEntry, err error) {
	filter := bson.M{cst.TenantId: tenantId, cst.IsCurrent: true, cst.IsPublished: true}
	if err = m.conn.Find(ctx, &es, filter); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		logs.Errorf("[mapper] [knowledge] [ListCurrent] find err:%s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	return es, nil
}

// IncUsage 自增使用计数, 检索方best-effort调用, 失败只记日志
func (m *mongoMapper) IncUsage(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	var operations []mongo.WriteModel
	for _, id := range ids { // 设置批量更新行为
		filter := bson.M{cst.Id: id}
		update := bson.M{cst.Inc: bson.M{"usage_count": 1}}
		operations = append(operations, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update))
	}
	if _, err := m.conn.BulkWrite(ctx, operations); err != nil {
		logs.Errorf("[mapper] [knowledge] [IncUsage] bulk write err:%s", errorx.ErrorWithoutStack(err))
		return err
	}
	return nil
}
