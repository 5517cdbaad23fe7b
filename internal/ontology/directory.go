package ontology

import (
	"context"

	apperrors "github.com/panini/ontology-go/internal/errors"
	"github.com/panini/ontology-go/internal/logger"
	"github.com/panini/ontology-go/internal/models"
	"github.com/panini/ontology-go/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultTraversalDepth 子树遍历的防御性深度上限
const DefaultTraversalDepth = 512

// Directory 分类目录。分类构成森林：每个节点至多一个父节点、无环，
// parent_id为空的是根。管线里目录是唯一写入方，且创建后不可变。
type Directory struct {
	db       *gorm.DB
	repo     repository.CategoryRepository
	index    VectorIndex
	maxDepth int
}

// NewDirectory 创建分类目录
func NewDirectory(db *gorm.DB, repo repository.CategoryRepository, index VectorIndex, maxDepth int) *Directory {
	if maxDepth <= 0 {
		maxDepth = DefaultTraversalDepth
	}
	return &Directory{db: db, repo: repo, index: index, maxDepth: maxDepth}
}

// Exists 检查分类是否存在
func (d *Directory) Exists(ctx context.Context, categoryID string) (bool, error) {
	return d.repo.Exists(ctx, categoryID)
}

// Descendants 返回子树内所有后代分类ID（不含根自身），叶子返回空。
// 用邻接表上的迭代BFS实现，visited集合保证即使数据意外成环也能终止。
func (d *Directory) Descendants(ctx context.Context, categoryID string) ([]string, error) {
	visited := map[string]bool{categoryID: true}
	var descendants []string

	frontier := []string{categoryID}
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= d.maxDepth {
			logger.Warn("category traversal depth limit reached",
				zap.String("category_id", categoryID),
				zap.Int("max_depth", d.maxDepth))
			break
		}

		children, err := d.repo.ChildrenOf(ctx, frontier)
		if err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, child := range children {
			if visited[child.CategoryID] {
				continue
			}
			visited[child.CategoryID] = true
			descendants = append(descendants, child.CategoryID)
			frontier = append(frontier, child.CategoryID)
		}
	}

	return descendants, nil
}

// Create 创建分类并写入其向量。分类行和向量在同一个事务里提交：向量
// 写入失败时分类回滚，不会出现有分类无向量的可见状态。父分类不存在
// 时返回ParentNotFound。
func (d *Directory) Create(ctx context.Context, categoryID, name string, parentID *string, tenant, learningObjective string) (*models.Category, error) {
	if parentID != nil {
		parentExists, err := d.repo.Exists(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if !parentExists {
			return nil, apperrors.NewParentNotFound(*parentID)
		}
	}

	category := &models.Category{
		CategoryName: name,
		CategoryID:   categoryID,
		ParentID:     parentID,
		Tenant:       tenant,
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(category).Error; err != nil {
			return err
		}
		index := d.index
		if bindable, ok := index.(txBindable); ok {
			index = bindable.withTx(tx)
		}
		// 向量文本与原始请求一致：分类名拼接学习目标
		return index.Upsert(ctx, categoryID, name+learningObjective)
	})
	if err != nil {
		return nil, apperrors.NewPersistenceFailure(err)
	}

	logger.Info("category created",
		zap.String("category_id", categoryID),
		zap.Stringp("parent_id", parentID),
		zap.String("tenant", tenant))

	return category, nil
}
