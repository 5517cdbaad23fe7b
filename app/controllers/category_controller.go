package controllers

import (
	"fmt"
	"net/http"

	"github.com/panini/ontology-go/internal/cache"
	"github.com/panini/ontology-go/internal/logger"
	"github.com/panini/ontology-go/internal/ontology"
	"github.com/panini/ontology-go/internal/repository"
	"go.uber.org/zap"
)

// UpdateCategoryRequest 分块改挂分类请求
type UpdateCategoryRequest struct {
	ChunkID    string `json:"chunk_id" validate:"required"`
	CategoryID string `json:"category_id" validate:"required"`
}

// UpdateCategoryResponse 分块改挂分类响应
type UpdateCategoryResponse struct {
	Success    bool    `json:"success"`
	Message    *string `json:"message"`
	ChunkID    *string `json:"chunk_id"`
	CategoryID *string `json:"category_id"`
}

// DeleteCategoryRequest 分类删除请求
type DeleteCategoryRequest struct {
	CategoryID string `json:"category_id" validate:"required"`
}

// CategoryController 分类维护接口
type CategoryController struct {
	BaseController
	categories repository.CategoryRepository
	knowledge  repository.KnowledgeRepository
	lookup     ontology.SubtreeLookup
	cache      *cache.ChunkCache
}

// NewCategoryController 创建分类controller
func NewCategoryController(
	categories repository.CategoryRepository,
	knowledge repository.KnowledgeRepository,
	lookup ontology.SubtreeLookup,
	chunkCache *cache.ChunkCache,
) *CategoryController {
	return &CategoryController{
		categories: categories,
		knowledge:  knowledge,
		lookup:     lookup,
		cache:      chunkCache,
	}
}

// UpdateCategory 把一个分块改挂到新分类。分块不存在和分类已一致都按
// 成功返回，只是提示文案不同。
func (c *CategoryController) UpdateCategory() {
	var req UpdateCategoryRequest
	if !c.BindJSON(&req) {
		return
	}

	ctx := c.Ctx.Request.Context()

	respond := func(success bool, message string) {
		c.JSON(http.StatusOK, UpdateCategoryResponse{
			Success:    success,
			Message:    &message,
			ChunkID:    &req.ChunkID,
			CategoryID: &req.CategoryID,
		})
	}

	record, err := c.knowledge.GetByChunkID(ctx, req.ChunkID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, UpdateCategoryResponse{
			Success: false,
			Message: chunksMessage(fmt.Sprintf("error: %v", err)),
		})
		return
	}
	if record == nil {
		respond(true, "Chunk ID not found in the database.")
		return
	}
	if record.CategoryID == req.CategoryID {
		respond(true, "Category ID is already up to date.")
		return
	}

	if err := c.knowledge.UpdateCategory(ctx, req.ChunkID, req.CategoryID); err != nil {
		c.JSON(http.StatusInternalServerError, UpdateCategoryResponse{
			Success: false,
			Message: chunksMessage(fmt.Sprintf("error: %v", err)),
		})
		return
	}
	c.cache.Invalidate(ctx, req.ChunkID)

	logger.Info("chunk category updated",
		zap.String("chunk_id", req.ChunkID),
		zap.String("category_id", req.CategoryID))

	respond(true, "Category ID updated successfully.")
}

// DeleteCategory 删除分类及其整个子树
func (c *CategoryController) DeleteCategory() {
	var req DeleteCategoryRequest
	if !c.BindJSON(&req) {
		return
	}

	ctx := c.Ctx.Request.Context()

	descendants, err := c.lookup.Descendants(ctx, req.CategoryID)
	if err != nil {
		c.JSONError(http.StatusInternalServerError, err.Error())
		return
	}

	ids := append(descendants, req.CategoryID)
	deleted, err := c.categories.DeleteByIDs(ctx, ids)
	if err != nil {
		c.JSONError(http.StatusInternalServerError, err.Error())
		return
	}
	if deleted == 0 {
		c.JSONError(http.StatusNotFound, "No categories found with the given parent ID")
		return
	}

	logger.Info("category subtree deleted",
		zap.String("category_id", req.CategoryID),
		zap.Int64("deleted", deleted))

	c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Category deleted successfully",
	})
}
