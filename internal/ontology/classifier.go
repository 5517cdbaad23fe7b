package ontology

import (
	"context"

	apperrors "github.com/panini/ontology-go/internal/errors"
)

// SubtreeLookup 分类器需要的子树查询能力
type SubtreeLookup interface {
	Descendants(ctx context.Context, categoryID string) ([]string, error)
}

// Classifier 把文本分段归到子树内语义最接近的分类
type Classifier struct {
	lookup SubtreeLookup
	index  VectorIndex
}

// NewClassifier 创建分类器
func NewClassifier(lookup SubtreeLookup, index VectorIndex) *Classifier {
	return &Classifier{lookup: lookup, index: index}
}

// Classify 返回分段归属的分类ID。根没有后代时子树就是单个叶子，直接
// 归到根，不发起向量检索；否则在「后代∪根」的候选集上做k=1最近邻。
// 候选集非空却检索不到结果说明向量索引违反了「分类必有向量」的不变
// 量，返回ClassificationUnresolved。
func (c *Classifier) Classify(ctx context.Context, segmentText, rootCategoryID string) (string, error) {
	descendants, err := c.lookup.Descendants(ctx, rootCategoryID)
	if err != nil {
		return "", err
	}

	if len(descendants) == 0 {
		return rootCategoryID, nil
	}

	candidates := append(descendants, rootCategoryID)
	matches, err := c.index.Nearest(ctx, segmentText, candidates, 1)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", apperrors.NewClassificationUnresolved(rootCategoryID)
	}

	return matches[0].CategoryID, nil
}
