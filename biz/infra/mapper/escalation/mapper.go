package escalation

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
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ MongoMapper = (*mongoMapper)(nil)

const (
	collection     = "escalation"
	cacheKeyPrefix = "cache:escalation:"
)

const handoffStatusField = "handoff_status"

type MongoMapper interface {
	InsertOne(ctx context.Context, r *EscalationRecord) error
	UpdateHandoff(ctx context.Context, id primitive.ObjectID, caseId string, status int32) error
	ListPendingHandoff(ctx context.Context, limit int64) (rs []*EscalationRecord, err error)
	ResolveByConversation(ctx context.Context, conversationId primitive.ObjectID, at time.Time) error
}

type mongoMapper struct {
	conn *monc.Model
}

func NewEscalationMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

func (m *mongoMapper) InsertOne(ctx context.Context, r *EscalationRecord) error {
	if r.EscalationId.IsZero() {
		r.EscalationId = primitive.NewObjectID()
	}
	now := time.Now()
	r.CreateTime, r.UpdateTime = now, now
	_, err := m.conn.InsertOne(ctx, cacheKeyPrefix+r.EscalationId.Hex(), r)
	return err
}

// UpdateHandoff 外部工单创建结果回写
func (m *mongoMapper) UpdateHandoff(ctx context.Context, id primitive.ObjectID, caseId string, status int32) error {
	filter := bson.M{cst.Id: id}
	update := bson.M{cst.Set: bson.M{"external_case_id": caseId, handoffStatusField: status, cst.UpdateTime: time.Now()}}
	_, err := m.conn.UpdateOne(ctx, cacheKeyPrefix+id.Hex(), filter, update)
	if err != nil {
		logs.Errorf("[mapper] [escalation] [UpdateHandoff] err:%s", errorx.ErrorWithoutStack(err))
	}
	return err
}

// ListPendingHandoff 取出外部工单尚未建立的升级记录, 供异步重试
func (m *mongoMapper) ListPendingHandoff(ctx context.Context, limit int64) (rs []*EscalationRecord, err error) {
	filter := bson.M{handoffStatusField: HandoffPending}
	opts := options.Find().SetSort(bson.M{cst.CreateTime: 1}).SetLimit(limit)
	if err = m.conn.Find(ctx, &rs, filter, opts); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		logs.Errorf("[mapper] [escalation] [ListPendingHandoff] find err:%s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	return rs, nil
}

// ResolveByConversation 会话收束时关闭其名下全部未结升级
func (m *mongoMapper) ResolveByConversation(ctx context.Context, conversationId primitive.ObjectID, at time.Time) error {
	filter := bson.M{cst.ConversationId: conversationId, "resolved_at": bson.M{"$exists": false}}
	update := bson.M{cst.Set: bson.M{"resolved_at": at, cst.UpdateTime: time.Now()}}
	_, err := m.conn.UpdateManyNoCache(ctx, filter, update)
	if err != nil {
		logs.Errorf("[mapper] [escalation] [ResolveByConversation] err:%s", errorx.ErrorWithoutStack(err))
	}
	return err
}
