package retrieval

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/policy"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/knowledge"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeKnowledgeMapper struct {
	mu        sync.Mutex
	entries   []*knowledge.KnowledgeEntry
	listCalls int
	usage     map[primitive.ObjectID]int
}

func (m *fakeKnowledgeMapper) InsertOne(ctx context.Context, e *knowledge.KnowledgeEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *fakeKnowledgeMapper) ListCurrent(ctx context.Context, tenantId string) ([]*knowledge.KnowledgeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	return m.entries, nil
}

func (m *fakeKnowledgeMapper) IncUsage(ctx context.Context, ids []primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.usage == nil {
		m.usage = make(map[primitive.ObjectID]int)
	}
	for _, id := range ids {
		m.usage[id]++
	}
	return nil
}

func newEntry(content string, quality float64) *knowledge.KnowledgeEntry {
	emb := NewHashEmbedder()
	vecs, _ := emb.EmbedStrings(context.Background(), []string{content})
	return &knowledge.KnowledgeEntry{
		EntryId:      primitive.NewObjectID(),
		DocId:        "doc-" + content,
		Title:        content,
		Content:      content,
		Embedding:    vecs[0],
		Terms:        Tokenize(content),
		QualityScore: quality,
	}
}

func newTestRetriever(entries ...*knowledge.KnowledgeEntry) (*Retriever, *fakeKnowledgeMapper) {
	km := &fakeKnowledgeMapper{entries: entries}
	c := &config.Config{}
	c.Pipeline.RetrievalCacheTTLS = 60
	return NewRetriever(c, km, NewHashEmbedder()), km
}

func retrievalPolicy() *policy.Policy {
	return &policy.Policy{
		SemanticWeight: 0.7,
		LexicalWeight:  0.3,
		MinFusedScore:  0.35,
		TopK:           5,
	}
}

func TestRetrieveRanksByFusedScore(t *testing.T) {
	r, _ := newTestRetriever(
		newEntry("reset password help", 0.5),
		newEntry("reset password help", 1.0),
	)

	it, err := r.Retrieve(context.Background(), "tenant-a", "reset password help", retrievalPolicy())
	assert.Nil(t, err)
	got := it.Collect()
	assert.Len(t, got, 2)
	// 与查询完全一致: 语义1.0 + 词法1.0, 融合分等于质量分
	assert.InDelta(t, 1.0, got[0].FusedScore, 1e-9)
	assert.InDelta(t, 1.0, got[0].SemanticScore, 1e-9)
	assert.InDelta(t, 1.0, got[0].LexicalScore, 1e-9)
	assert.InDelta(t, 0.5, got[1].FusedScore, 1e-9)
}

func TestRetrieveCutoff(t *testing.T) {
	kept := newEntry("reset password help", 1.0)
	dropped := newEntry("天气预报", 1.0)
	r, _ := newTestRetriever(kept, dropped)

	it, err := r.Retrieve(context.Background(), "tenant-a", "reset password help", retrievalPolicy())
	assert.Nil(t, err)
	got := it.Collect()
	assert.Len(t, got, 1)
	assert.Equal(t, kept.EntryId.Hex(), got[0].EntryId)
}

func TestRetrieveTopK(t *testing.T) {
	r, _ := newTestRetriever(
		newEntry("reset password help", 0.7),
		newEntry("reset password help", 0.9),
		newEntry("reset password help", 0.8),
	)
	p := retrievalPolicy()
	p.TopK = 2

	it, err := r.Retrieve(context.Background(), "tenant-a", "reset password help", p)
	assert.Nil(t, err)
	got := it.Collect()
	assert.Len(t, got, 2)
	assert.InDelta(t, 0.9, got[0].FusedScore, 1e-9)
	assert.InDelta(t, 0.8, got[1].FusedScore, 1e-9)
}

func TestRetrieveDeterministic(t *testing.T) {
	entries := []*knowledge.KnowledgeEntry{
		newEntry("忘记密码如何重置", 0.9),
		newEntry("账单退款流程", 0.8),
		newEntry("订单物流查询", 0.7),
	}
	// 两个独立实例各自重算, 结果必须完全一致
	r1, _ := newTestRetriever(entries...)
	r2, _ := newTestRetriever(entries...)

	it1, err := r1.Retrieve(context.Background(), "tenant-a", "忘记密码了怎么办", retrievalPolicy())
	assert.Nil(t, err)
	it2, err := r2.Retrieve(context.Background(), "tenant-a", "忘记密码了怎么办", retrievalPolicy())
	assert.Nil(t, err)
	assert.Equal(t, it1.Collect(), it2.Collect())
}

func TestRetrieveCacheReuse(t *testing.T) {
	r, km := newTestRetriever(newEntry("reset password help", 1.0))
	p := retrievalPolicy()

	it1, err := r.Retrieve(context.Background(), "tenant-a", "reset password help", p)
	assert.Nil(t, err)
	first := it1.Collect()

	// 大小写与空白归一后命中缓存, 不再回源
	it2, err := r.Retrieve(context.Background(), "tenant-a", "  Reset  Password HELP ", p)
	assert.Nil(t, err)
	assert.Equal(t, first, it2.Collect())

	km.mu.Lock()
	calls := km.listCalls
	km.mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestRetrieveMarksUsage(t *testing.T) {
	e := newEntry("reset password help", 1.0)
	r, km := newTestRetriever(e)

	_, err := r.Retrieve(context.Background(), "tenant-a", "reset password help", retrievalPolicy())
	assert.Nil(t, err)

	deadline := time.Now().Add(time.Second)
	for {
		km.mu.Lock()
		n := km.usage[e.EntryId]
		km.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("usage was not recorded")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestIteratorOneWay(t *testing.T) {
	it := &Iterator{passages: []*Passage{{EntryId: "a"}, {EntryId: "b"}, {EntryId: "c"}}}
	assert.Equal(t, 3, it.Remaining())

	p, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, "a", p.EntryId)
	assert.Equal(t, 2, it.Remaining())

	rest := it.Collect()
	assert.Len(t, rest, 2)
	assert.Equal(t, "b", rest[0].EntryId)

	assert.Equal(t, 0, it.Remaining())
	_, ok = it.Next()
	assert.False(t, ok)
	assert.Empty(t, it.Collect())
}

func TestIndexMakesEntryRetrievable(t *testing.T) {
	r, km := newTestRetriever()
	entry := &knowledge.KnowledgeEntry{
		TenantId:    "tenant-a",
		DocId:       "doc-pw",
		IsCurrent:   true,
		IsPublished: true,
		Title:       "reset password help",
		Content:     "reset password help",
	}
	assert.Nil(t, r.Index(context.Background(), entry))

	// 向量与词项在落库前生成, 缺省质量分与版本号补齐
	assert.Len(t, km.entries, 1)
	assert.NotEmpty(t, entry.Embedding)
	assert.NotEmpty(t, entry.Terms)
	assert.InDelta(t, 1.0, entry.QualityScore, 1e-9)
	assert.Equal(t, int32(1), entry.Version)

	it, err := r.Retrieve(context.Background(), "tenant-a", "reset password help", retrievalPolicy())
	assert.Nil(t, err)
	got := it.Collect()
	assert.Len(t, got, 1)
	assert.Equal(t, "doc-pw", got[0].DocId)
	assert.InDelta(t, 1.0, got[0].FusedScore, 1e-9)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.Equal(t, float64(0), cosine([]float64{1, 0}, []float64{0, 1}))
	// 负相关截断为0
	assert.Equal(t, float64(0), cosine([]float64{1, 0}, []float64{-1, 0}))
	assert.Equal(t, float64(0), cosine(nil, []float64{1}))
	assert.Equal(t, float64(0), cosine([]float64{1}, []float64{1, 2}))
}

func TestLexicalScore(t *testing.T) {
	assert.InDelta(t, 1.0, lexicalScore([]string{"a", "b"}, []string{"a", "b", "c"}), 1e-9)
	assert.InDelta(t, 0.5, lexicalScore([]string{"a", "x"}, []string{"a", "b"}), 1e-9)
	// 重复查询词项只计一次
	assert.InDelta(t, 0.5, lexicalScore([]string{"a", "a", "x"}, []string{"a"}), 1e-9)
	assert.Equal(t, float64(0), lexicalScore(nil, []string{"a"}))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"reset", "password"}, Tokenize("Reset  Password!"))
	assert.Equal(t, []string{"忘", "记", "忘记", "密", "记密", "码", "密码"}, Tokenize("忘记密码"))
	assert.Equal(t, []string{"订", "单", "订单", "ord123456"}, Tokenize("订单 ORD123456"))
	assert.Empty(t, Tokenize(" ,!"))
}

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder()
	a, err := e.EmbedStrings(context.Background(), []string{"忘记密码怎么办"})
	assert.Nil(t, err)
	b, err := e.EmbedStrings(context.Background(), []string{"忘记密码怎么办"})
	assert.Nil(t, err)
	assert.Equal(t, a, b)

	var norm float64
	for _, v := range a[0] {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}
