package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/panini/ontology-go/internal/config"
	"github.com/panini/ontology-go/internal/database"
	"github.com/panini/ontology-go/internal/logger"
	"github.com/panini/ontology-go/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChunkCache 知识分块的Redis读缓存。未启用Redis时所有操作静默跳过，
// 调用方无需判空。
type ChunkCache struct {
	client  *redis.Client
	enabled bool
	ttl     time.Duration
}

// NewChunkCache 创建分块缓存
func NewChunkCache() *ChunkCache {
	cfg := config.AppConfig
	if cfg == nil || !cfg.Redis.Enabled || database.RedisClient == nil {
		return &ChunkCache{enabled: false}
	}

	ttl := time.Duration(cfg.Redis.TTL) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &ChunkCache{
		client:  database.RedisClient,
		enabled: true,
		ttl:     ttl,
	}
}

func (c *ChunkCache) key(chunkID string) string {
	return fmt.Sprintf("knowledge:chunk:%s", chunkID)
}

// Get 读取缓存的知识行，未命中返回nil
func (c *ChunkCache) Get(ctx context.Context, chunkID string) *models.Knowledge {
	if !c.enabled {
		return nil
	}

	raw, err := c.client.Get(ctx, c.key(chunkID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("chunk cache read failed", zap.String("chunk_id", chunkID), zap.Error(err))
		}
		return nil
	}

	var record models.Knowledge
	if err := json.Unmarshal(raw, &record); err != nil {
		logger.Warn("chunk cache entry corrupted", zap.String("chunk_id", chunkID), zap.Error(err))
		return nil
	}
	return &record
}

// Set 写入缓存，失败只记日志
func (c *ChunkCache) Set(ctx context.Context, record *models.Knowledge) {
	if !c.enabled || record == nil {
		return
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(record.ChunkID), raw, c.ttl).Err(); err != nil {
		logger.Warn("chunk cache write failed", zap.String("chunk_id", record.ChunkID), zap.Error(err))
	}
}

// Invalidate 删除缓存条目，分块归属变更后调用
func (c *ChunkCache) Invalidate(ctx context.Context, chunkIDs ...string) {
	if !c.enabled || len(chunkIDs) == 0 {
		return
	}

	keys := make([]string, len(chunkIDs))
	for i, id := range chunkIDs {
		keys[i] = c.key(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("chunk cache invalidation failed", zap.Error(err))
	}
}
