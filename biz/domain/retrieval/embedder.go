package retrieval

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/cloudwego/eino/components/embedding"
)

const hashDims = 256

// HashEmbedder 基于特征哈希的本地向量化, 不依赖外部模型服务
// 同一文本恒定产出同一向量, 用于知识条目入库与查询向量化
type HashEmbedder struct{}

var _ embedding.Embedder = (*HashEmbedder)(nil)

func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

func (e *HashEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	vecs := make([][]float64, 0, len(texts))
	for _, text := range texts {
		vecs = append(vecs, e.embed(text))
	}
	return vecs, nil
}

func (e *HashEmbedder) embed(text string) []float64 {
	vec := make([]float64, hashDims)
	for _, token := range Tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum32()
		idx := int(sum % hashDims)
		sign := 1.0
		if sum&(1<<31) != 0 {
			sign = -1.0
		}
		vec[idx] += sign
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
