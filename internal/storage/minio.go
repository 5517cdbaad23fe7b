package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/panini/ontology-go/internal/config"
	"github.com/panini/ontology-go/internal/logger"
	"go.uber.org/zap"
)

// MinIOStore MinIO对象存储。Fetch把对象下载到本地缓存目录后返回路径。
type MinIOStore struct {
	client   *minio.Client
	bucket   string
	cacheDir string
}

// NewMinIOStore 创建MinIO存储并确保bucket存在
func NewMinIOStore(cfg config.ObjectStorageConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint not configured")
	}

	// minio.New不接受协议前缀
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "knowledge-files"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			errStr := err.Error()
			if !strings.Contains(errStr, "BucketAlreadyExists") &&
				!strings.Contains(errStr, "BucketAlreadyOwnedByYou") {
				return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
	}

	cacheDir, err := os.MkdirTemp("", "knowledge-cache-")
	if err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	logger.Info("minio storage initialized",
		zap.String("endpoint", endpoint),
		zap.String("bucket", bucket))

	return &MinIOStore{client: client, bucket: bucket, cacheDir: cacheDir}, nil
}

// Save 上传文件到bucket
func (s *MinIOStore) Save(ctx context.Context, fileName string, src io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, fileName, src, size, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", fileName, err)
	}
	logger.Info("file uploaded", zap.String("file_name", fileName), zap.Int64("size", size))
	return nil
}

// Fetch 把对象下载到本地缓存目录并返回路径
func (s *MinIOStore) Fetch(ctx context.Context, fileName string) (string, error) {
	localPath := filepath.Join(s.cacheDir, filepath.Base(fileName))
	if err := s.client.FGetObject(ctx, s.bucket, fileName, localPath, minio.GetObjectOptions{}); err != nil {
		return "", fmt.Errorf("failed to download %s: %w", fileName, err)
	}
	return localPath, nil
}

// Exists 检查对象是否存在
func (s *MinIOStore) Exists(ctx context.Context, fileName string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, fileName, minio.StatObjectOptions{})
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
