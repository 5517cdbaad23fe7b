package repository

import (
	"context"

	"github.com/panini/ontology-go/internal/models"
)

// CategoryRepository 分类仓库接口
type CategoryRepository interface {
	Exists(ctx context.Context, categoryID string) (bool, error)
	GetByID(ctx context.Context, categoryID string) (*models.Category, error)
	// ChildrenOf 返回parent_id命中任一给定ID的直接子分类
	ChildrenOf(ctx context.Context, parentIDs []string) ([]models.Category, error)
	DeleteByIDs(ctx context.Context, categoryIDs []string) (int64, error)
}

// FileInfoRepository 文件元数据仓库接口
type FileInfoRepository interface {
	GetByID(ctx context.Context, fileID string) (*models.KnowledgeFileInfo, error)
	GetByHash(ctx context.Context, hashValue string) (*models.KnowledgeFileInfo, error)
	GetByName(ctx context.Context, fileName string) (*models.KnowledgeFileInfo, error)
	Create(ctx context.Context, info *models.KnowledgeFileInfo) error
	UpdateStatus(ctx context.Context, fileID, status string) error
}

// KnowledgeRepository 知识分段仓库接口
type KnowledgeRepository interface {
	GetByChunkIDs(ctx context.Context, chunkIDs []string) ([]models.Knowledge, error)
	GetByChunkID(ctx context.Context, chunkID string) (*models.Knowledge, error)
	UpdateCategory(ctx context.Context, chunkID, categoryID string) error
}
