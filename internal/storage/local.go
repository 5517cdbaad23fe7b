package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/panini/ontology-go/internal/logger"
	"go.uber.org/zap"
)

// LocalStore 本地目录存储
type LocalStore struct {
	basePath string
}

// NewLocalStore 创建本地存储，目录不存在时自动创建
func NewLocalStore(basePath string) (*LocalStore, error) {
	if basePath == "" {
		basePath = "./knowledge_files"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// resolve 拼接并校验路径，拒绝越出存储目录的文件名
func (s *LocalStore) resolve(fileName string) (string, error) {
	cleaned := filepath.Clean(fileName)
	if strings.Contains(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("illegal file name: %s", fileName)
	}
	return filepath.Join(s.basePath, cleaned), nil
}

// Save 写入文件
func (s *LocalStore) Save(ctx context.Context, fileName string, src io.Reader, size int64) error {
	path, err := s.resolve(fileName)
	if err != nil {
		return err
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Info("file saved", zap.String("file_name", fileName), zap.Int64("size", size))
	return nil
}

// Fetch 返回文件的本地路径
func (s *LocalStore) Fetch(ctx context.Context, fileName string) (string, error) {
	path, err := s.resolve(fileName)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file %s not readable: %w", fileName, err)
	}
	return path, nil
}

// Exists 检查文件是否存在
func (s *LocalStore) Exists(ctx context.Context, fileName string) (bool, error) {
	path, err := s.resolve(fileName)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
