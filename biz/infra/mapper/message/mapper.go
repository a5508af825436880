package message

import (
	"context"
	"errors"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/basic"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/util"
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
	collection     = "message"
	cacheKeyPrefix = "cache:message:"
)

type MongoMapper interface {
	InsertOne(ctx context.Context, msg *Message) error
	ListMessage(ctx context.Context, conversation string, page *basic.Page) (msgs []*Message, hasMore bool, err error)
	RetrieveMessages(ctx context.Context, conversation string, size int) (msgs []*Message, err error)
	Feedback(ctx context.Context, mid primitive.ObjectID, feedback int32) (err error)
}

type mongoMapper struct {
	conn *monc.Model
}

func NewMessageMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

// InsertOne 插入一条msg, 落库时间即创建时间, 上下文窗口按它倒序
func (m *mongoMapper) InsertOne(ctx context.Context, msg *Message) error {
	if msg.MessageId.IsZero() {
		msg.MessageId = primitive.NewObjectID()
	}
	if msg.CreateTime.IsZero() {
		now := time.Now()
		msg.CreateTime, msg.UpdateTime = now, now
	}
	_, err := m.conn.InsertOneNoCache(ctx, msg)
	return err
}

// RetrieveMessages 按时间倒序取出size条msg记录作为上下文, 为0则取出所有的
func (m *mongoMapper) RetrieveMessages(ctx context.Context, conversation string, size int) (msgs []*Message, err error) {
	oid, err := primitive.ObjectIDFromHex(conversation)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.M{cst.CreateTime: -1})
	if size > 0 {
		opts.SetLimit(int64(size))
	}
	if err = m.conn.Find(ctx, &msgs, bson.M{cst.ConversationId: oid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}},
		opts); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		logs.Errorf("[mapper] [message] [RetrieveMessages] find err:%s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	return msgs, nil
}

// ListMessage 分页获取Message, 游标为消息id
func (m *mongoMapper) ListMessage(ctx context.Context, conversation string, page *basic.Page) (msgs []*Message, hasMore bool, err error) {
	ocid, err := primitive.ObjectIDFromHex(conversation)
	if err != nil {
		return nil, false, err
	}
	opts := options.Find().SetSort(bson.M{cst.Id: -1}).SetLimit(page.GetSize() + 1)
	filter := bson.M{cst.ConversationId: ocid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	if page != nil && page.Cursor != nil { // 创建时间更小的
		cursor, err := primitive.ObjectIDFromHex(*page.Cursor)
		if err != nil {
			return nil, false, err
		}
		filter[cst.Id] = bson.M{cst.LT: cursor}
	}
	if err = m.conn.Find(ctx, &msgs, filter, opts); err != nil {
		logs.Errorf("[mapper] [message] [ListMessage] find err:%s", errorx.ErrorWithoutStack(err))
		return nil, false, err
	}
	msgs, hasMore = util.SplitAndHasMore(msgs, page)
	return msgs, hasMore, err
}

// Feedback 修改消息反馈状态
func (m *mongoMapper) Feedback(ctx context.Context, mid primitive.ObjectID, feedback int32) (err error) {
	filter := bson.M{cst.Id: mid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	update := bson.M{cst.Set: bson.M{cst.Feedback: feedback, cst.UpdateTime: time.Now()}}
	if _, err = m.conn.UpdateOne(ctx, cacheKeyPrefix+mid.Hex(), filter, update); err != nil {
		logs.Errorf("[mapper] [message] [Feedback] update err:%s", errorx.ErrorWithoutStack(err))
	}
	return err
}
