package controllers

import (
	"fmt"
	"net/http"

	"github.com/panini/ontology-go/internal/cache"
	"github.com/panini/ontology-go/internal/repository"
)

// ChunkRequest 分块查询请求
type ChunkRequest struct {
	ChunkIDs []string `json:"chunk_ids" validate:"required"`
}

// ChunkData 单个分块详情
type ChunkData struct {
	ChunkID string `json:"chunk_id"`
	FileID  string `json:"file_id"`
	Text    string `json:"text"`
}

// ChunksResponse 分块查询响应
type ChunksResponse struct {
	Success          bool        `json:"success"`
	Message          *string     `json:"message"`
	ChunkDetails     []ChunkData `json:"chunk_details"`
	NotFoundChunkIDs []string    `json:"not_found_chunk_ids"`
}

// ChunkController 知识分块查询
type ChunkController struct {
	BaseController
	knowledge repository.KnowledgeRepository
	cache     *cache.ChunkCache
}

// NewChunkController 创建分块controller
func NewChunkController(knowledge repository.KnowledgeRepository, chunkCache *cache.ChunkCache) *ChunkController {
	return &ChunkController{knowledge: knowledge, cache: chunkCache}
}

func chunksMessage(message string) *string {
	return &message
}

// GetChunks 按chunk id批量查询分块文本。先查Redis缓存，未命中的批量
// 回源数据库。查不到的id在not_found_chunk_ids里返回。
func (c *ChunkController) GetChunks() {
	var req ChunkRequest
	if !c.BindJSON(&req) {
		return
	}

	if len(req.ChunkIDs) == 0 {
		c.JSON(http.StatusOK, ChunksResponse{
			Success: false,
			Message: chunksMessage("Chunk IDs must be provided."),
		})
		return
	}

	ctx := c.Ctx.Request.Context()

	found := make(map[string]ChunkData, len(req.ChunkIDs))
	var misses []string
	for _, chunkID := range req.ChunkIDs {
		if record := c.cache.Get(ctx, chunkID); record != nil {
			found[chunkID] = ChunkData{ChunkID: record.ChunkID, FileID: record.FileID, Text: record.Text}
			continue
		}
		misses = append(misses, chunkID)
	}

	if len(misses) > 0 {
		records, err := c.knowledge.GetByChunkIDs(ctx, misses)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ChunksResponse{
				Success: false,
				Message: chunksMessage(fmt.Sprintf("error: %v", err)),
			})
			return
		}
		for i := range records {
			record := records[i]
			found[record.ChunkID] = ChunkData{ChunkID: record.ChunkID, FileID: record.FileID, Text: record.Text}
			c.cache.Set(ctx, &record)
		}
	}

	// 保持与请求一致的顺序，重复id只返回一次
	details := make([]ChunkData, 0, len(found))
	var notFound []string
	seen := make(map[string]bool, len(req.ChunkIDs))
	for _, chunkID := range req.ChunkIDs {
		if seen[chunkID] {
			continue
		}
		seen[chunkID] = true
		if data, ok := found[chunkID]; ok {
			details = append(details, data)
		} else {
			notFound = append(notFound, chunkID)
		}
	}

	if len(notFound) > 0 {
		c.JSON(http.StatusOK, ChunksResponse{
			Success:          false,
			Message:          chunksMessage("successfully retrieved some chunk details, but some IDs were not found in the database."),
			ChunkDetails:     details,
			NotFoundChunkIDs: notFound,
		})
		return
	}

	if len(details) == 0 {
		c.JSON(http.StatusOK, ChunksResponse{
			Success: true,
			Message: chunksMessage("No chunks found for the provided chunk IDs."),
		})
		return
	}

	c.JSON(http.StatusOK, ChunksResponse{
		Success:      true,
		Message:      chunksMessage("Successfully retrieved chunk details."),
		ChunkDetails: details,
	})
}
