package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/panini/ontology-go/internal/config"
)

// FileStore 已上传知识文件的存取。Fetch把文件解析成本地可读路径，
// 对象存储实现负责先把对象拉到本地。
type FileStore interface {
	// Save 写入一个新文件
	Save(ctx context.Context, fileName string, src io.Reader, size int64) error
	// Fetch 返回文件的本地可读路径
	Fetch(ctx context.Context, fileName string) (string, error)
	// Exists 检查文件是否存在
	Exists(ctx context.Context, fileName string) (bool, error)
}

// NewFileStore 按配置选择存储实现
func NewFileStore(cfg config.ObjectStorageConfig) (FileStore, error) {
	switch cfg.Provider {
	case "minio", "s3":
		return NewMinIOStore(cfg)
	case "", "local":
		return NewLocalStore(cfg.BasePath)
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}
