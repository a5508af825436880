package convo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/application/dto/basic"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/escalation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/generation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/nlp"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/observability"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/policy"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/quota"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/retrieval"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/cst"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/attempt"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/conversation"
	mesc "github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/escalation"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/knowledge"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/message"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/tenant"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/verdict"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memConversationMapper struct {
	mu   sync.Mutex
	byId map[string]conversation.Conversation
}

func newMemConversationMapper() *memConversationMapper {
	return &memConversationMapper{byId: make(map[string]conversation.Conversation)}
}

func (m *memConversationMapper) CreateNewConversation(ctx context.Context, tenantId, uid, channel string) (*conversation.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := conversation.Conversation{
		ConversationId: primitive.NewObjectID(),
		TenantId:       tenantId,
		UserId:         primitive.NewObjectID(),
		Channel:        channel,
		Status:         cst.ConvInitialized,
		StartTime:      time.Now(),
		LastActivity:   time.Now(),
	}
	m.byId[c.ConversationId.Hex()] = c
	out := c
	return &out, nil
}

func (m *memConversationMapper) FindOne(ctx context.Context, cid string) (*conversation.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byId[cid]
	if !ok {
		return nil, conversation.ErrNotFound
	}
	out := c
	return &out, nil
}

func (m *memConversationMapper) SaveState(ctx context.Context, c *conversation.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byId[c.ConversationId.Hex()]
	if !ok || stored.Version != c.Version {
		return conversation.ErrStateConflict
	}
	c.Version++
	m.byId[c.ConversationId.Hex()] = *c
	return nil
}

func (m *memConversationMapper) ListConversations(ctx context.Context, tenantId, uid string, page *basic.Page) ([]*conversation.Conversation, bool, error) {
	return nil, false, nil
}

func (m *memConversationMapper) SearchConversations(ctx context.Context, tenantId, uid, key string, page *basic.Page) ([]*conversation.Conversation, bool, error) {
	return nil, false, nil
}

func (m *memConversationMapper) ListInactive(ctx context.Context, statuses []int32, cutoff time.Time, limit int64) ([]*conversation.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var cs []*conversation.Conversation
	for _, c := range m.byId {
		for _, s := range statuses {
			if c.Status == s && c.LastActivity.Before(cutoff) {
				out := c
				cs = append(cs, &out)
			}
		}
	}
	return cs, nil
}

type memMessageMapper struct {
	mu   sync.Mutex
	msgs []*message.Message
}

func (m *memMessageMapper) InsertOne(ctx context.Context, msg *message.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *memMessageMapper) ListMessage(ctx context.Context, cid string, page *basic.Page) ([]*message.Message, bool, error) {
	return nil, false, nil
}

func (m *memMessageMapper) RetrieveMessages(ctx context.Context, cid string, size int) ([]*message.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*message.Message
	for i := len(m.msgs) - 1; i >= 0 && len(out) < size; i-- {
		if m.msgs[i].ConversationId.Hex() == cid {
			out = append(out, m.msgs[i])
		}
	}
	return out, nil
}

func (m *memMessageMapper) Feedback(ctx context.Context, mid primitive.ObjectID, feedback int32) error {
	return nil
}

type memEscalationMapper struct {
	mu      sync.Mutex
	records []*mesc.EscalationRecord
}

func (m *memEscalationMapper) InsertOne(ctx context.Context, r *mesc.EscalationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.EscalationId.IsZero() {
		r.EscalationId = primitive.NewObjectID()
	}
	m.records = append(m.records, r)
	return nil
}

func (m *memEscalationMapper) UpdateHandoff(ctx context.Context, id primitive.ObjectID, caseId string, status int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.EscalationId == id {
			r.ExternalCaseId = caseId
			r.HandoffStatus = status
		}
	}
	return nil
}

func (m *memEscalationMapper) ListPendingHandoff(ctx context.Context, limit int64) ([]*mesc.EscalationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*mesc.EscalationRecord
	for _, r := range m.records {
		if r.HandoffStatus == mesc.HandoffPending && int64(len(out)) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memEscalationMapper) ResolveByConversation(ctx context.Context, conversationId primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ConversationId == conversationId && r.ResolvedAt == nil {
			resolved := at
			r.ResolvedAt = &resolved
		}
	}
	return nil
}

type memKnowledgeMapper struct {
	entries []*knowledge.KnowledgeEntry
}

func (m *memKnowledgeMapper) InsertOne(ctx context.Context, e *knowledge.KnowledgeEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memKnowledgeMapper) ListCurrent(ctx context.Context, tenantId string) ([]*knowledge.KnowledgeEntry, error) {
	return m.entries, nil
}

func (m *memKnowledgeMapper) IncUsage(ctx context.Context, ids []primitive.ObjectID) error {
	return nil
}

type memAttemptMapper struct{}

func (memAttemptMapper) InsertMany(ctx context.Context, as []*attempt.GenerationAttempt) error {
	return nil
}

type memVerdictMapper struct{}

func (memVerdictMapper) InsertMany(ctx context.Context, vs []*verdict.Verdict) error {
	return nil
}

type noTenantMapper struct{}

func (noTenantMapper) FindOne(ctx context.Context, tenantId string) (*tenant.TenantPolicy, error) {
	return nil, tenant.ErrNotFound
}

func managerConfig(t *testing.T) *config.Config {
	mr := miniredis.RunT(t)
	c := &config.Config{}
	c.Redis = redis.RedisConf{Host: mr.Addr(), Type: redis.NodeType}
	c.Providers = []config.Provider{{Name: "rulebased", RuleBased: true}}
	c.Handoff = config.Handoff{URL: "http://127.0.0.1:1/cases", RetryIntervalMs: 1, MaxRetries: 1}
	c.Tenant = config.TenantDefaults{
		ConfidenceThreshold: 0.5,
		MaxAttempts:         3,
		TrendDelta:          0.15,
		SemanticWeight:      0.7,
		LexicalWeight:       0.3,
		MinFusedScore:       0.35,
		TopK:                5,
		ConversationQuota:   100,
		ConversationPeriodS: 3600,
		CallQuota:           100,
	}
	c.Pipeline = config.Pipeline{
		BudgetMs:            3000,
		BreakerFailures:     5,
		BreakerWindowS:      60,
		BreakerCooldownS:    30,
		GenCacheTTLS:        30,
		RetrievalCacheTTLS:  60,
		InactivityWindowMin: 30,
		SweepIntervalMin:    5,
	}
	return c
}

type managerFixture struct {
	manager    *Manager
	convs      *memConversationMapper
	msgs       *memMessageMapper
	escs       *memEscalationMapper
	knowledges *memKnowledgeMapper
}

func newManagerFixture(t *testing.T, entries ...*knowledge.KnowledgeEntry) *managerFixture {
	c := managerConfig(t)
	convs := newMemConversationMapper()
	msgs := &memMessageMapper{}
	escs := &memEscalationMapper{}
	km := &memKnowledgeMapper{entries: entries}

	m := NewManager(
		c,
		convs,
		msgs,
		&policy.Loader{Config: c, TenantMapper: noTenantMapper{}},
		quota.NewEnforcer(c),
		nlp.NewAnalyzer(),
		retrieval.NewRetriever(c, km, retrieval.NewHashEmbedder()),
		generation.NewOrchestrator(c),
		&escalation.Handoff{Config: c, EscalationMapper: escs},
		observability.NewRecorder(memAttemptMapper{}, memVerdictMapper{}),
	)
	return &managerFixture{manager: m, convs: convs, msgs: msgs, escs: escs, knowledges: km}
}

func knowledgeEntry(content string) *knowledge.KnowledgeEntry {
	emb := retrieval.NewHashEmbedder()
	vecs, _ := emb.EmbedStrings(context.Background(), []string{content})
	return &knowledge.KnowledgeEntry{
		EntryId:      primitive.NewObjectID(),
		TenantId:     "tenant-a",
		DocId:        "doc-1",
		Title:        content,
		Content:      content,
		Embedding:    vecs[0],
		Terms:        retrieval.Tokenize(content),
		QualityScore: 1.0,
	}
}

func TestHandleInboundMessageAutomates(t *testing.T) {
	const query = "I forgot my password"
	f := newManagerFixture(t, knowledgeEntry(query))
	ctx := context.Background()

	c, err := f.convs.CreateNewConversation(ctx, "tenant-a", "u1", "web")
	assert.Nil(t, err)

	out, err := f.manager.HandleInboundMessage(ctx, "tenant-a", "u1", c.ConversationId.Hex(), query, "web")
	assert.Nil(t, err)
	assert.Equal(t, cst.VerdictAutomate, out.Verdict)
	assert.NotEmpty(t, out.Reply)
	assert.Equal(t, cst.ConvWaitingForUser, out.Status)
	// 未创建升级记录
	assert.Empty(t, f.escs.records)

	saved, err := f.convs.FindOne(ctx, c.ConversationId.Hex())
	assert.Nil(t, err)
	assert.Equal(t, cst.ConvWaitingForUser, saved.Status)
	assert.Equal(t, int64(2), saved.Aggregates.MessageCount)
	assert.Equal(t, int64(1), saved.Aggregates.UserMessageCount)
	assert.Equal(t, int64(1), saved.Aggregates.AutoMessageCount)
	// 首条消息没有先前值, 趋势恒为stable
	assert.Equal(t, cst.TrendStable, saved.Aggregates.SentimentTrend)

	f.msgs.mu.Lock()
	defer f.msgs.mu.Unlock()
	assert.Len(t, f.msgs.msgs, 2)
	assert.Equal(t, message.RoleStoI[cst.User], f.msgs.msgs[0].Role)
	assert.Equal(t, "password_reset", f.msgs.msgs[0].NLP.Intent)
	assert.Equal(t, message.RoleStoI[cst.Assistant], f.msgs.msgs[1].Role)
	assert.Equal(t, out.Reply, f.msgs.msgs[1].Content)
	// 上下文窗口按create_time倒序取, 落库时必须带时间戳
	for i, msg := range f.msgs.msgs {
		assert.False(t, msg.CreateTime.IsZero(), "message %d persisted without create_time", i)
		assert.False(t, msg.UpdateTime.IsZero(), "message %d persisted without update_time", i)
	}
	assert.False(t, f.msgs.msgs[1].CreateTime.Before(f.msgs.msgs[0].CreateTime))
}

func TestHandleInboundMessageEscalatesOnSentiment(t *testing.T) {
	const query = "气死我了, 受够了, 这系统真垃圾太差没用!"
	f := newManagerFixture(t, knowledgeEntry(query))
	ctx := context.Background()

	c, err := f.convs.CreateNewConversation(ctx, "tenant-a", "u1", "web")
	assert.Nil(t, err)

	out, err := f.manager.HandleInboundMessage(ctx, "tenant-a", "u1", c.ConversationId.Hex(), query, "web")
	assert.Nil(t, err)
	assert.Equal(t, cst.VerdictEscalate, out.Verdict)
	assert.Equal(t, cst.ReasonSentimentNegative, out.Reason)
	assert.NotNil(t, out.Escalation)
	assert.Equal(t, cst.PriorityHigh, out.Escalation.Priority)
	assert.Equal(t, cst.ConvEscalated, out.Status)

	f.escs.mu.Lock()
	records := len(f.escs.records)
	f.escs.mu.Unlock()
	assert.Equal(t, 1, records)

	saved, _ := f.convs.FindOne(ctx, c.ConversationId.Hex())
	assert.Equal(t, cst.ConvEscalated, saved.Status)
	assert.Equal(t, int32(1), saved.Aggregates.EscalationCount)
	assert.Equal(t, int32(1), saved.Aggregates.FailedAttempts)
}

func TestHandleInboundMessageUserRequestsHuman(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	c, _ := f.convs.CreateNewConversation(ctx, "tenant-a", "u1", "web")
	out, err := f.manager.HandleInboundMessage(ctx, "tenant-a", "u1", c.ConversationId.Hex(), "转人工 人工客服", "web")
	assert.Nil(t, err)
	assert.Equal(t, cst.VerdictEscalate, out.Verdict)
	assert.Equal(t, cst.ReasonUserRequested, out.Reason)
}

func TestHandleInboundMessageTenantIsolation(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	c, _ := f.convs.CreateNewConversation(ctx, "tenant-a", "u1", "web")
	_, err := f.manager.HandleInboundMessage(ctx, "tenant-b", "u1", c.ConversationId.Hex(), "hello", "web")
	assert.True(t, errorx.IsCode(err, errno.ConversationNotFoundErrCode))
}

func TestHandleInboundMessageClosedConversation(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	c, _ := f.convs.CreateNewConversation(ctx, "tenant-a", "u1", "web")
	stored, _ := f.convs.FindOne(ctx, c.ConversationId.Hex())
	stored.Status = cst.ConvResolved
	assert.Nil(t, f.convs.SaveState(ctx, stored))

	_, err := f.manager.HandleInboundMessage(ctx, "tenant-a", "u1", c.ConversationId.Hex(), "hello", "web")
	assert.True(t, errorx.IsCode(err, errno.ConversationClosedErrCode))
}

func TestResolve(t *testing.T) {
	const query = "I forgot my password"
	f := newManagerFixture(t, knowledgeEntry(query))
	ctx := context.Background()

	c, _ := f.convs.CreateNewConversation(ctx, "tenant-a", "u1", "web")
	_, err := f.manager.HandleInboundMessage(ctx, "tenant-a", "u1", c.ConversationId.Hex(), query, "web")
	assert.Nil(t, err)

	resolved, err := f.manager.Resolve(ctx, "tenant-a", c.ConversationId.Hex(), "密码问题已解决", "resolved_automated")
	assert.Nil(t, err)
	assert.Equal(t, cst.ConvResolved, resolved.Status)
	assert.True(t, resolved.Resolution.Resolved)
	assert.Equal(t, "密码问题已解决", resolved.Resolution.Summary)
	assert.Equal(t, int32(0), resolved.Aggregates.FailedAttempts)
	assert.NotNil(t, resolved.EndTime)

	// 已结单对话拒绝新消息
	_, err = f.manager.HandleInboundMessage(ctx, "tenant-a", "u1", c.ConversationId.Hex(), query, "web")
	assert.True(t, errorx.IsCode(err, errno.ConversationClosedErrCode))
}

func TestResolveClosesEscalations(t *testing.T) {
	const query = "气死我了, 受够了, 这系统真垃圾太差没用!"
	f := newManagerFixture(t, knowledgeEntry(query))
	ctx := context.Background()

	c, _ := f.convs.CreateNewConversation(ctx, "tenant-a", "u1", "web")
	out, err := f.manager.HandleInboundMessage(ctx, "tenant-a", "u1", c.ConversationId.Hex(), query, "web")
	assert.Nil(t, err)
	assert.Equal(t, cst.VerdictEscalate, out.Verdict)

	_, err = f.manager.Resolve(ctx, "tenant-a", c.ConversationId.Hex(), "人工已处理", "resolved_human")
	assert.Nil(t, err)

	f.escs.mu.Lock()
	defer f.escs.mu.Unlock()
	assert.Len(t, f.escs.records, 1)
	assert.NotNil(t, f.escs.records[0].ResolvedAt)
}

func TestSweepOnceAbandonsInactive(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	c, _ := f.convs.CreateNewConversation(ctx, "tenant-a", "u1", "web")
	stored, _ := f.convs.FindOne(ctx, c.ConversationId.Hex())
	stored.Status = cst.ConvWaitingForUser
	stored.LastActivity = time.Now().Add(-2 * time.Hour)
	assert.Nil(t, f.convs.SaveState(ctx, stored))

	s := NewSweeper(f.manager.Config, f.convs, f.manager)
	s.SweepOnce(ctx)

	saved, _ := f.convs.FindOne(ctx, c.ConversationId.Hex())
	assert.Equal(t, cst.ConvAbandoned, saved.Status)

	// 第二轮归档已放弃的对话
	saved.LastActivity = time.Now().Add(-2 * time.Hour)
	assert.Nil(t, f.convs.SaveState(ctx, saved))
	s.SweepOnce(ctx)
	saved, _ = f.convs.FindOne(ctx, c.ConversationId.Hex())
	assert.Equal(t, cst.ConvArchived, saved.Status)
}
