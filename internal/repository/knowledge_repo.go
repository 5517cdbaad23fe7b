package repository

import (
	"context"
	"errors"

	"github.com/panini/ontology-go/internal/models"
	"gorm.io/gorm"
)

// knowledgeRepository 知识分段仓库实现
type knowledgeRepository struct {
	db *gorm.DB
}

// NewKnowledgeRepository 创建知识分段仓库
func NewKnowledgeRepository(db *gorm.DB) KnowledgeRepository {
	return &knowledgeRepository{db: db}
}

func (r *knowledgeRepository) GetByChunkIDs(ctx context.Context, chunkIDs []string) ([]models.Knowledge, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}
	var chunks []models.Knowledge
	err := r.db.WithContext(ctx).Where("chunk_id IN ?", chunkIDs).Find(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *knowledgeRepository) GetByChunkID(ctx context.Context, chunkID string) (*models.Knowledge, error) {
	var chunk models.Knowledge
	err := r.db.WithContext(ctx).Where("chunk_id = ?", chunkID).First(&chunk).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chunk, nil
}

func (r *knowledgeRepository) UpdateCategory(ctx context.Context, chunkID, categoryID string) error {
	return r.db.WithContext(ctx).Model(&models.Knowledge{}).
		Where("chunk_id = ?", chunkID).
		Update("category_id", categoryID).Error
}
