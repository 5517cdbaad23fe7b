package ontology

import (
	"context"
	"math"
	"sort"

	"gorm.io/gorm"
)

// Match 向量检索命中
type Match struct {
	CategoryID string
	Score      float64
}

// VectorIndex 分类向量索引。每个分类存一条向量，检索限定在给定的
// 候选ID集合内。
type VectorIndex interface {
	Upsert(ctx context.Context, categoryID, text string) error
	Nearest(ctx context.Context, text string, candidateIDs []string, k int) ([]Match, error)
	Ready() bool
}

// txBindable 支持把写操作绑定到外部数据库事务的索引实现
type txBindable interface {
	withTx(tx *gorm.DB) VectorIndex
}

// rankMatches 按得分降序排序并截断到k。同分时按分类ID字典序升序，
// 保证分类结果可复现。
func rankMatches(matches []Match, k int) []Match {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].CategoryID < matches[j].CategoryID
	})
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

func vectorNorm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v * v)
	}
	return math.Sqrt(sum)
}

func cosineSimilarity(a, b []float32, normA float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) != len(b) {
		// 尝试对齐长度
		minLen := len(a)
		if len(b) < minLen {
			minLen = len(b)
		}
		a = a[:minLen]
		b = b[:minLen]
	}

	var dot float64
	var normB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (normA * math.Sqrt(normB))
}
