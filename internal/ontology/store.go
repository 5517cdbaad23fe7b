package ontology

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	apperrors "github.com/panini/ontology-go/internal/errors"
	"github.com/panini/ontology-go/internal/logger"
	"github.com/panini/ontology-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// chunk id的UUIDv5命名空间，固定不变
var chunkNamespace = uuid.MustParse("8d7f9c1e-4b6a-4f3e-9c2d-5a1b8e0f6d42")

// ChunkID 从(file_id, 分段序号)确定性派生chunk id。同一文件重复处理
// 得到相同的id，配合插入时的冲突忽略，消息重投不会产生重复知识行。
func ChunkID(fileID string, segmentIndex int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s:%d", fileID, segmentIndex))).String()
}

// KnowledgeStore 知识持久化。一次文件处理的全部写入（知识行和状态
// 回写）构成一个工作单元，在单个数据库事务里提交。
type KnowledgeStore struct {
	db *gorm.DB
}

// NewKnowledgeStore 创建知识存储
func NewKnowledgeStore(db *gorm.DB) *KnowledgeStore {
	return &KnowledgeStore{db: db}
}

// SaveFileResults 持久化一个文件的全部分段并把文件状态置为已处理。
// 任一步失败整体回滚，不留下部分知识行或状态翻转。
func (s *KnowledgeStore) SaveFileResults(ctx context.Context, fileID string, records []models.Knowledge) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(records) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "chunk_id"}},
				DoNothing: true,
			}).Create(&records).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.KnowledgeFileInfo{}).
			Where("file_id = ?", fileID).
			Update("status", models.FileStatusProcessed).Error
	})
	if err != nil {
		return apperrors.NewPersistenceFailure(err)
	}

	logger.Info("knowledge persisted",
		zap.String("file_id", fileID),
		zap.Int("segments", len(records)))
	return nil
}
