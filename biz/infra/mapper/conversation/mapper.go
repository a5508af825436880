package conversation

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
)

var _ MongoMapper = (*mongoMapper)(nil)

const (
	collection     = "conversation"
	cacheKeyPrefix = "cache:conversation:"
)

var (
	// ErrNotFound 对话不存在
	ErrNotFound = errors.New("conversation not found")
	// ErrStateConflict 乐观锁冲突, 状态在load之后被其他写入修改过
	ErrStateConflict = errors.New("conversation state conflict")
)

type MongoMapper interface {
	CreateNewConversation(ctx context.Context, tenantId, uid, channel string) (c *Conversation, err error)
	FindOne(ctx context.Context, cid string) (c *Conversation, err error)
	SaveState(ctx context.Context, c *Conversation) (err error)
	ListConversations(ctx context.Context, tenantId, uid string, page *basic.Page) (cs []*Conversation, hasMore bool, err error)
	SearchConversations(ctx context.Context, tenantId, uid, key string, page *basic.Page) (cs []*Conversation, hasMore bool, err error)
	ListInactive(ctx context.Context, statuses []int32, cutoff time.Time, limit int64) (cs []*Conversation, err error)
}

type mongoMapper struct {
	conn *monc.Model
}

func NewConversationMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

// CreateNewConversation 创建并缓存一个新的对话
func (m *mongoMapper) CreateNewConversation(ctx context.Context, tenantId, uid, channel string) (c *Conversation, err error) {
	// 转换成ObjectID
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		logs.Errorf("[mapper] [conversation] [CreateNewConversation] from hex err:%s", errorx.ErrorWithoutStack(err))
		return nil, err
	}

	// 创建新Conversation
	now := time.Now()
	c = &Conversation{
		ConversationId: primitive.NewObjectID(),
		TenantId:       tenantId,
		UserId:         oid,
		Channel:        channel,
		Brief:          "未命名对话",
		Status:         cst.ConvInitialized,
		Version:        1,
		StartTime:      now,
		LastActivity:   now,
		UpdateTime:     now,
	}

	// 插入
	_, err = m.conn.InsertOne(ctx, cacheKeyPrefix+c.ConversationId.Hex(), c)
	return c, err
}

// FindOne 按对话id查找
func (m *mongoMapper) FindOne(ctx context.Context, cid string) (c *Conversation, err error) {
	oid, err := primitive.ObjectIDFromHex(cid)
	if err != nil {
		return nil, ErrNotFound
	}
	c = new(Conversation)
	if err = m.conn.FindOne(ctx, cacheKeyPrefix+cid, c, bson.M{cst.Id: oid}); err != nil {
		if errors.Is(err, monc.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// SaveState 带乐观并发控制的整体保存
// 以load时的version作为过滤条件, 命中则version+1, 未命中说明中途被其他写入修改, 返回ErrStateConflict
func (m *mongoMapper) SaveState(ctx context.Context, c *Conversation) (err error) {
	loaded := c.Version
	c.Version = loaded + 1
	c.UpdateTime = time.Now()

	filter := bson.M{cst.Id: c.ConversationId, cst.Version: loaded}
	var res *mongo.UpdateResult
	if res, err = m.conn.UpdateOne(ctx, cacheKeyPrefix+c.ConversationId.Hex(), filter, bson.M{cst.Set: c}); err != nil {
		c.Version = loaded
		logs.Errorf("[mapper] [conversation] [SaveState] update err:%s", errorx.ErrorWithoutStack(err))
		return err
	}
	if res.MatchedCount == 0 {
		c.Version = loaded
		return ErrStateConflict
	}
	return nil
}

// ListConversations 分页查询用户对话列表
func (m *mongoMapper) ListConversations(ctx context.Context, tenantId, uid string, page *basic.Page) (cs []*Conversation, hasMore bool, err error) {
	// 转换为ObjectID
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		logs.Errorf("[mapper] [conversation] [ListConversations] from hex err:%s", errorx.ErrorWithoutStack(err))
		return nil, false, err
	}

	// 分页, 创建时间倒序
	var total int64
	opts := util.BuildFindOption(page).SetSort(bson.M{cst.Id: -1})
	filter := bson.M{cst.TenantId: tenantId, cst.UserId: oid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	if err = m.conn.Find(ctx, &cs, filter, opts); err != nil {
		return nil, false, err
	}
	if total, err = m.conn.CountDocuments(ctx, filter); err != nil {
		return nil, false, err
	}
	return cs, util.HasMore(total, page), err
}

// SearchConversations 按标题关键字搜索
func (m *mongoMapper) SearchConversations(ctx context.Context, tenantId, uid, key string, page *basic.Page) (cs []*Conversation, hasMore bool, err error) {
	oid, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		logs.Errorf("[mapper] [conversation] [SearchConversations] from hex err:%s", errorx.ErrorWithoutStack(err))
		return nil, false, err
	}

	var total int64
	filter := bson.M{cst.TenantId: tenantId, cst.UserId: oid, cst.Status: bson.M{cst.NE: cst.DeletedStatus},
		cst.Brief: bson.M{cst.Regex: key, cst.Options: "i"}}
	// 分页, 创建时间倒序
	opts := util.BuildFindOption(page).SetSort(bson.M{cst.Id: -1})
	if err = m.conn.Find(ctx, &cs, filter, opts); err != nil {
		return nil, false, err
	}
	if total, err = m.conn.CountDocuments(ctx, filter); err != nil {
		return nil, false, err
	}
	return cs, util.HasMore(total, page), err
}

// ListInactive 供后台巡检: 取出处于给定状态且最后活动时间早于cutoff的对话
func (m *mongoMapper) ListInactive(ctx context.Context, statuses []int32, cutoff time.Time, limit int64) (cs []*Conversation, err error) {
	filter := bson.M{cst.Status: bson.M{cst.IN: statuses}, cst.LastActivity: bson.M{cst.LT: cutoff}}
	opts := util.BuildFindOption(nil).SetSort(bson.M{cst.LastActivity: 1}).SetLimit(limit).SetSkip(0)
	if err = m.conn.Find(ctx, &cs, filter, opts); err != nil {
		return nil, err
	}
	return cs, nil
}
