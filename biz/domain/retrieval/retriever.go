package retrieval

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/domain/policy"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/config"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/mapper/knowledge"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/biz/infra/util"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/errorx"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/logs"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/pkg/safego"
	"github.com/nordeim/Customer-Service-AI-Agent-sub000/types/errno"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/wire"
	"github.com/zeromicro/go-zero/core/collection"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Passage 融合打分后的知识片段
type Passage struct {
	EntryId       string
	DocId         string
	Title         string
	Content       string
	SemanticScore float64
	LexicalScore  float64
	Quality       float64
	FusedScore    float64
}

// Iterator 排序后的结果序列, 只能向前消费一次
type Iterator struct {
	passages []*Passage
	idx      int
}

func (it *Iterator) Next() (*Passage, bool) {
	if it.idx >= len(it.passages) {
		return nil, false
	}
	p := it.passages[it.idx]
	it.idx++
	return p, true
}

func (it *Iterator) Remaining() int {
	return len(it.passages) - it.idx
}

// Collect 取出剩余全部片段, 消费后迭代器耗尽
func (it *Iterator) Collect() []*Passage {
	rest := it.passages[it.idx:]
	it.idx = len(it.passages)
	return rest
}

type Retriever struct {
	Config          *config.Config
	KnowledgeMapper knowledge.MongoMapper
	Embedder        embedding.Embedder
	cache           *collection.Cache
}

var RetrieverSet = wire.NewSet(NewRetriever)

func NewRetriever(c *config.Config, km knowledge.MongoMapper, emb embedding.Embedder) *Retriever {
	cache, err := collection.NewCache(time.Duration(c.Pipeline.RetrievalCacheTTLS)*time.Second,
		collection.WithName("retrieval"))
	if err != nil {
		panic(err)
	}
	return &Retriever{Config: c, KnowledgeMapper: km, Embedder: emb, cache: cache}
}

// Retrieve 对查询做语义+词法双路召回并加权融合, 返回排序迭代器
// 命中缓存时复用已排序结果, 仍然返回独立的新迭代器
func (r *Retriever) Retrieve(ctx context.Context, tenantId, query string, p *policy.Policy) (*Iterator, error) {
	key := util.HashKey(tenantId, util.NormalizeQuery(query))
	v, err := r.cache.Take(key, func() (any, error) {
		return r.rank(ctx, tenantId, query, p)
	})
	if err != nil {
		return nil, err
	}
	passages := v.([]*Passage)
	r.markUsage(ctx, passages)
	return &Iterator{passages: passages}, nil
}

// Index 写入一条知识条目: 向量与词项在落库前本地生成, 检索路径只读
func (r *Retriever) Index(ctx context.Context, e *knowledge.KnowledgeEntry) error {
	vecs, err := r.Embedder.EmbedStrings(ctx, []string{e.Content})
	if err != nil {
		return errorx.WrapByCode(err, errno.KnowledgeIndexErrCode)
	}
	e.Embedding = vecs[0]
	e.Terms = Tokenize(e.Title + " " + e.Content)
	if e.QualityScore <= 0 || e.QualityScore > 1 {
		e.QualityScore = 1.0
	}
	if e.Version <= 0 {
		e.Version = 1
	}
	if err = r.KnowledgeMapper.InsertOne(ctx, e); err != nil {
		return errorx.WrapByCode(err, errno.KnowledgeIndexErrCode)
	}
	return nil
}

func (r *Retriever) rank(ctx context.Context, tenantId, query string, p *policy.Policy) ([]*Passage, error) {
	entries, err := r.KnowledgeMapper.ListCurrent(ctx, tenantId)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.KnowledgeSearchErrCode)
	}
	if len(entries) == 0 {
		return []*Passage{}, nil
	}

	vecs, err := r.Embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	queryVec := vecs[0]
	queryTerms := Tokenize(query)

	scored := make([]*Passage, 0, len(entries))
	for _, e := range entries {
		sem := cosine(queryVec, e.Embedding)
		lex := lexicalScore(queryTerms, e.Terms)
		quality := e.QualityScore
		if quality <= 0 {
			quality = 1.0
		}
		fused := (p.SemanticWeight*sem + p.LexicalWeight*lex) * quality
		if fused < p.MinFusedScore {
			continue
		}
		scored = append(scored, &Passage{
			EntryId:       e.EntryId.Hex(),
			DocId:         e.DocId,
			Title:         e.Title,
			Content:       e.Content,
			SemanticScore: sem,
			LexicalScore:  lex,
			Quality:       quality,
			FusedScore:    fused,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].FusedScore != scored[j].FusedScore {
			return scored[i].FusedScore > scored[j].FusedScore
		}
		return scored[i].EntryId < scored[j].EntryId
	})
	if len(scored) > p.TopK {
		scored = scored[:p.TopK]
	}
	return scored, nil
}

// markUsage 异步累计条目使用次数, 失败仅记日志
func (r *Retriever) markUsage(ctx context.Context, passages []*Passage) {
	if len(passages) == 0 {
		return
	}
	ids := make([]primitive.ObjectID, 0, len(passages))
	for _, p := range passages {
		id, err := primitive.ObjectIDFromHex(p.EntryId)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	safego.Go(ctx, func() {
		if err := r.KnowledgeMapper.IncUsage(context.Background(), ids); err != nil {
			logs.Errorf("[Retriever] [markUsage] inc usage failed: %v", err)
		}
	})
}

func cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos < 0 {
		return 0
	}
	return cos
}

// lexicalScore 查询词项与条目词项的覆盖率, 0~1
func lexicalScore(queryTerms, entryTerms []string) float64 {
	if len(queryTerms) == 0 || len(entryTerms) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(entryTerms))
	for _, t := range entryTerms {
		set[t] = struct{}{}
	}
	hit := 0
	seen := make(map[string]struct{}, len(queryTerms))
	total := 0
	for _, t := range queryTerms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		total++
		if _, ok := set[t]; ok {
			hit++
		}
	}
	return float64(hit) / float64(total)
}
