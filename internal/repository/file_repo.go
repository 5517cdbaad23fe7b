package repository

import (
	"context"
	"errors"

	"github.com/panini/ontology-go/internal/models"
	"gorm.io/gorm"
)

// fileInfoRepository 文件元数据仓库实现
type fileInfoRepository struct {
	db *gorm.DB
}

// NewFileInfoRepository 创建文件元数据仓库
func NewFileInfoRepository(db *gorm.DB) FileInfoRepository {
	return &fileInfoRepository{db: db}
}

func (r *fileInfoRepository) GetByID(ctx context.Context, fileID string) (*models.KnowledgeFileInfo, error) {
	var info models.KnowledgeFileInfo
	err := r.db.WithContext(ctx).Where("file_id = ?", fileID).First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

func (r *fileInfoRepository) GetByHash(ctx context.Context, hashValue string) (*models.KnowledgeFileInfo, error) {
	var info models.KnowledgeFileInfo
	err := r.db.WithContext(ctx).Where("hash_value = ?", hashValue).First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

func (r *fileInfoRepository) GetByName(ctx context.Context, fileName string) (*models.KnowledgeFileInfo, error) {
	var info models.KnowledgeFileInfo
	err := r.db.WithContext(ctx).Where("file_name = ?", fileName).First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

func (r *fileInfoRepository) Create(ctx context.Context, info *models.KnowledgeFileInfo) error {
	return r.db.WithContext(ctx).Create(info).Error
}

// UpdateStatus 回写文件处理状态，重复执行幂等
func (r *fileInfoRepository) UpdateStatus(ctx context.Context, fileID, status string) error {
	return r.db.WithContext(ctx).Model(&models.KnowledgeFileInfo{}).
		Where("file_id = ?", fileID).
		Update("status", status).Error
}
