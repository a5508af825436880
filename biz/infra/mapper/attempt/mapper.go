package attempt

import (
	"context"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ MongoMapper = (*mongoMapper)(nil)

const collection = "generation_attempt"

type MongoMapper interface {
	InsertMany(ctx context.Context, as []*GenerationAttempt) error
}

type mongoMapper struct {
	conn *monc.Model
}

func NewAttemptMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

// InsertMany 批量追加调用记录
func (m *mongoMapper) InsertMany(ctx context.Context, as []*GenerationAttempt) error {
	if len(as) == 0 {
		return nil
	}
	docs := make([]any, 0, len(as))
	for _, a := range as {
		if a.AttemptId.IsZero() {
			a.AttemptId = primitive.NewObjectID()
		}
		docs = append(docs, a)
	}
	if _, err := m.conn.InsertMany(ctx, docs); err != nil {
		logs.Errorf("[mapper] [attempt] [InsertMany] err:%s", errorx.ErrorWithoutStack(err))
		return err
	}
	return nil
}
