package ontology

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/panini/ontology-go/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DatabaseVectorIndex 基于PostgreSQL的退化向量索引，embedding以JSON
// 存在category_embedding表，余弦相似度在进程内计算。分类向量总量等于
// 分类数，候选集又限定在一棵子树内，全量扫描足够。
type DatabaseVectorIndex struct {
	db       *gorm.DB
	embedder Embedder
}

func NewDatabaseVectorIndex(db *gorm.DB, embedder Embedder) VectorIndex {
	return &DatabaseVectorIndex{db: db, embedder: embedder}
}

// withTx 返回绑定到给定事务的索引副本，让分类行和向量行同事务提交
func (s *DatabaseVectorIndex) withTx(tx *gorm.DB) VectorIndex {
	return &DatabaseVectorIndex{db: tx, embedder: s.embedder}
}

func (s *DatabaseVectorIndex) Upsert(ctx context.Context, categoryID, text string) error {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed category text: %w", err)
	}

	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return err
	}

	row := models.CategoryEmbedding{
		CategoryID: categoryID,
		Embedding:  string(embeddingJSON),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding"}),
		}).
		Create(&row).Error
}

func (s *DatabaseVectorIndex) Nearest(ctx context.Context, text string, candidateIDs []string, k int) ([]Match, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	if k == 0 {
		k = 1
	}

	queryEmbedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query text: %w", err)
	}
	queryNorm := vectorNorm(queryEmbedding)
	if queryNorm == 0 {
		return nil, fmt.Errorf("query embedding norm is zero")
	}

	var rows []models.CategoryEmbedding
	err = s.db.WithContext(ctx).
		Where("category_id IN ?", candidateIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		var embedding []float32
		if err := json.Unmarshal([]byte(row.Embedding), &embedding); err != nil {
			continue
		}
		matches = append(matches, Match{
			CategoryID: row.CategoryID,
			Score:      cosineSimilarity(queryEmbedding, embedding, queryNorm),
		})
	}

	return rankMatches(matches, k), nil
}

func (s *DatabaseVectorIndex) Ready() bool {
	return s.db != nil && s.embedder != nil && s.embedder.Ready()
}
