package repository

import (
	"context"
	"errors"

	"github.com/panini/ontology-go/internal/models"
	"gorm.io/gorm"
)

// categoryRepository 分类仓库实现
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Exists 检查分类是否存在
func (r *categoryRepository) Exists(ctx context.Context, categoryID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByID 根据业务ID获取分类
func (r *categoryRepository) GetByID(ctx context.Context, categoryID string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("category_id = ?", categoryID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// ChildrenOf 查询一批父ID的直接子分类
func (r *categoryRepository) ChildrenOf(ctx context.Context, parentIDs []string) ([]models.Category, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var children []models.Category
	err := r.db.WithContext(ctx).
		Where("parent_id IN ?", parentIDs).
		Order("category_id").
		Find(&children).Error
	if err != nil {
		return nil, err
	}
	return children, nil
}

// DeleteByIDs 按业务ID批量删除分类，分类行和对应的向量行在同一个事务
// 里删除，不留孤儿向量。返回删除的分类行数。
func (r *categoryRepository) DeleteByIDs(ctx context.Context, categoryIDs []string) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("category_id IN ?", categoryIDs).Delete(&models.Category{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return tx.Where("category_id IN ?", categoryIDs).
			Delete(&models.CategoryEmbedding{}).Error
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
