package controllers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/panini/ontology-go/internal/config"
	"github.com/panini/ontology-go/internal/logger"
	"github.com/panini/ontology-go/internal/models"
	"github.com/panini/ontology-go/internal/repository"
	"github.com/panini/ontology-go/internal/storage"
	"go.uber.org/zap"
)

// UploadResponse 文件上传响应
type UploadResponse struct {
	Success  bool    `json:"success"`
	Message  *string `json:"message"`
	FileName *string `json:"file_name"`
}

// FileController 知识文件上传
type FileController struct {
	BaseController
	files repository.FileInfoRepository
	store storage.FileStore
}

// NewFileController 创建文件controller
func NewFileController(files repository.FileInfoRepository, store storage.FileStore) *FileController {
	return &FileController{files: files, store: store}
}

func uploadError(message, fileName string) UploadResponse {
	resp := UploadResponse{Success: false, Message: &message}
	if fileName != "" {
		resp.FileName = &fileName
	}
	return resp
}

// Upload 上传知识文件。校验扩展名和SHA-256哈希，按哈希去重，文件名
// 冲突时追加(n)后缀，元数据以待处理状态入库。
func (c *FileController) Upload() {
	ctx := c.Ctx.Request.Context()

	file, header, err := c.GetFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, uploadError("file is required", ""))
		return
	}
	defer file.Close()

	fileID := c.GetString("file_id")
	hashValue := c.GetString("hash_value")
	if fileID == "" || hashValue == "" {
		c.JSON(http.StatusBadRequest, uploadError("file_id and hash_value are required", header.Filename))
		return
	}

	originalName := header.Filename
	extension := strings.ToLower(filepath.Ext(originalName))
	if !c.extensionAllowed(extension) {
		c.JSON(http.StatusOK, uploadError("Provided file type is not valid.", originalName))
		return
	}

	if !c.sizeAllowed(header.Size) {
		c.JSON(http.StatusOK, uploadError("Provided file exceeds the maximum allowed size.", originalName))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, uploadError(fmt.Sprintf("error: %v", err), ""))
		return
	}
	if !c.sizeAllowed(int64(len(content))) {
		c.JSON(http.StatusOK, uploadError("Provided file exceeds the maximum allowed size.", originalName))
		return
	}

	digest := sha256.Sum256(content)
	if hashValue != hex.EncodeToString(digest[:]) {
		c.JSON(http.StatusOK, uploadError("Provided hash value does not match the calculated hash value.", originalName))
		return
	}

	// 按哈希去重：同一份内容只存一次
	existing, err := c.files.GetByHash(ctx, hashValue)
	if err != nil {
		c.JSON(http.StatusInternalServerError, uploadError(fmt.Sprintf("error: %v", err), ""))
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, uploadError("File already exists.", existing.FileName))
		return
	}

	finalName, err := c.uniqueFileName(originalName, extension)
	if err != nil {
		c.JSON(http.StatusInternalServerError, uploadError(fmt.Sprintf("error: %v", err), ""))
		return
	}

	if err := c.store.Save(ctx, finalName, bytes.NewReader(content), int64(len(content))); err != nil {
		c.JSON(http.StatusInternalServerError, uploadError(fmt.Sprintf("error: %v", err), ""))
		return
	}

	record := &models.KnowledgeFileInfo{
		FileName:  finalName,
		FileID:    fileID,
		HashValue: hashValue,
		Status:    models.FileStatusPending,
	}
	if err := c.files.Create(ctx, record); err != nil {
		c.JSON(http.StatusInternalServerError, uploadError(fmt.Sprintf("error: %v", err), ""))
		return
	}

	logger.Info("file uploaded",
		zap.String("file_id", fileID),
		zap.String("file_name", finalName))

	message := "File uploaded successfully"
	c.JSON(http.StatusOK, UploadResponse{Success: true, Message: &message, FileName: &finalName})
}

// sizeAllowed 按配置的上传上限校验大小，上限为0或负数时不限制
func (c *FileController) sizeAllowed(size int64) bool {
	limit := config.AppConfig.FileUpload.MaxSize
	return limit <= 0 || size <= limit
}

func (c *FileController) extensionAllowed(extension string) bool {
	allowed := config.AppConfig.FileUpload.AllowedTypes
	for _, ext := range allowed {
		if extension == ext {
			return true
		}
	}
	return false
}

// uniqueFileName 文件名已被占用时追加(n)后缀直到不冲突
func (c *FileController) uniqueFileName(originalName, extension string) (string, error) {
	ctx := c.Ctx.Request.Context()
	base := strings.TrimSuffix(originalName, extension)

	name := originalName
	for counter := 1; ; counter++ {
		existing, err := c.files.GetByName(ctx, name)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return name, nil
		}
		name = fmt.Sprintf("%s(%d)%s", base, counter, extension)
	}
}
