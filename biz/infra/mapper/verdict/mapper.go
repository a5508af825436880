package verdict

import (
	"context"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ MongoMapper = (*mongoMapper)(nil)

const collection = "verdict"

type MongoMapper interface {
	InsertMany(ctx context.Context, vs []*Verdict) error
}

type mongoMapper struct {
	conn *monc.Model
}

func NewVerdictMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

// InsertMany 批量追加裁决记录
func (m *mongoMapper) InsertMany(ctx context.Context, vs []*Verdict) error {
	if len(vs) == 0 {
		return nil
	}
	docs := make([]any, 0, len(vs))
	for _, v := range vs {
		if v.VerdictId.IsZero() {
			v.VerdictId = primitive.NewObjectID()
		}
		docs = append(docs, v)
	}
	if _, err := m.conn.InsertMany(ctx, docs); err != nil {
		logs.Errorf("[mapper] [verdict] [InsertMany] err:%s", errorx.ErrorWithoutStack(err))
		return err
	}
	return nil
}
