package ontology

import (
	"context"
	"encoding/json"

	apperrors "github.com/panini/ontology-go/internal/errors"
	"github.com/panini/ontology-go/internal/logger"
	"github.com/panini/ontology-go/internal/models"
	"github.com/panini/ontology-go/internal/repository"
	"go.uber.org/zap"
)

// Request 请求消息，任何字段缺失按null处理，不直接视为错误
type Request struct {
	FileID            *string `json:"file_id"`
	CategoryID        *string `json:"category_id"`
	CategoryName      *string `json:"category_name"`
	LearningObjective *string `json:"learning_obj"`
	Tenant            *string `json:"tenant"`
	ParentID          *string `json:"parent_id"`
}

// Outcome 结果消息。要么是一次成功归类（category_id+chunk_id+file_id，
// error_message为null），要么是一条错误/提示信息（只有error_message）。
type Outcome struct {
	CategoryID   *string `json:"category_id"`
	ChunkID      *string `json:"chunk_id"`
	FileID       *string `json:"file_id"`
	ErrorMessage *string `json:"error_message"`
}

// 结果消息里的提示文案，与既有消费方保持兼容
const (
	msgCategoryCreated = "Category created successfully!"
	msgParentNotFound  = "Parent category not found!"
	msgCategoryExists  = "Category already exists, provide file id for categorization!"
)

func assignmentOutcome(categoryID, chunkID, fileID string) Outcome {
	return Outcome{CategoryID: &categoryID, ChunkID: &chunkID, FileID: &fileID}
}

func messageOutcome(message string) Outcome {
	return Outcome{ErrorMessage: &message}
}

// CategoryDirectory 路由器需要的分类目录能力
type CategoryDirectory interface {
	SubtreeLookup
	Exists(ctx context.Context, categoryID string) (bool, error)
	Create(ctx context.Context, categoryID, name string, parentID *string, tenant, learningObjective string) (*models.Category, error)
}

// SegmentClassifier 分段归类能力
type SegmentClassifier interface {
	Classify(ctx context.Context, segmentText, rootCategoryID string) (string, error)
}

// DocumentSegmenter 文档分段能力
type DocumentSegmenter interface {
	Segment(path string) ([]Segment, error)
}

// FileFetcher 把已上传文件解析成本地可读路径
type FileFetcher interface {
	Fetch(ctx context.Context, fileName string) (string, error)
}

// ResultStore 文件处理结果的工作单元写入
type ResultStore interface {
	SaveFileResults(ctx context.Context, fileID string, records []models.Knowledge) error
}

// Router 请求状态机。消费一条请求，决定是否建分类、是否处理文件，
// 并为每个处理单元（分段或分类）产出一条结果消息。
type Router struct {
	directory  CategoryDirectory
	classifier SegmentClassifier
	segmenter  DocumentSegmenter
	files      repository.FileInfoRepository
	fetcher    FileFetcher
	store      ResultStore
}

// NewRouter 创建请求路由器
func NewRouter(
	directory CategoryDirectory,
	classifier SegmentClassifier,
	segmenter DocumentSegmenter,
	files repository.FileInfoRepository,
	fetcher FileFetcher,
	store ResultStore,
) *Router {
	return &Router{
		directory:  directory,
		classifier: classifier,
		segmenter:  segmenter,
		files:      files,
		fetcher:    fetcher,
		store:      store,
	}
}

// ParseRequest 解析请求载荷。非JSON内容按不合法请求拒绝。
func ParseRequest(payload []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, apperrors.NewInvalidRequest("payload is not valid JSON").WithCause(err)
	}
	return &req, nil
}

// Handle 处理一条请求，返回要发布的结果消息（按产生顺序）。
//
// 状态机按序判定：
//  1. category_id缺失 → 不合法请求，仅记日志，不发结果；
//  2. 分类已存在 → 有file_id就走文件处理，否则提示需要file_id；
//  3. 分类不存在 → 按parent_id创建（父缺失时报错并且不继续处理文件），
//     创建成功且带file_id时继续文件处理。新分类没有后代，所有分段
//     都会直接归到它名下。
func (r *Router) Handle(ctx context.Context, req *Request) []Outcome {
	if req == nil || req.CategoryID == nil || *req.CategoryID == "" {
		logger.Warn("request rejected: category_id is mandatory")
		return nil
	}
	categoryID := *req.CategoryID

	exists, err := r.directory.Exists(ctx, categoryID)
	if err != nil {
		logger.Error("category lookup failed", zap.String("category_id", categoryID), zap.Error(err))
		return []Outcome{messageOutcome(err.Error())}
	}

	if exists {
		if req.FileID == nil || *req.FileID == "" {
			logger.Info("category already exists and no file supplied",
				zap.String("category_id", categoryID))
			return []Outcome{messageOutcome(msgCategoryExists)}
		}
		return r.processFile(ctx, *req.FileID, categoryID)
	}

	_, err = r.directory.Create(ctx, categoryID, deref(req.CategoryName), req.ParentID,
		deref(req.Tenant), deref(req.LearningObjective))
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrCodeParentNotFound {
			// 创建失败，没有可挂内容的分类，即使带了file_id也不处理文件
			logger.Warn("parent category not found",
				zap.String("category_id", categoryID),
				zap.Stringp("parent_id", req.ParentID))
			return []Outcome{messageOutcome(msgParentNotFound)}
		}
		logger.Error("category creation failed", zap.String("category_id", categoryID), zap.Error(err))
		return []Outcome{messageOutcome(err.Error())}
	}

	outcomes := []Outcome{messageOutcome(msgCategoryCreated)}
	if req.FileID != nil && *req.FileID != "" {
		outcomes = append(outcomes, r.processFile(ctx, *req.FileID, categoryID)...)
	}
	return outcomes
}

// processFile 文件处理流程：定位文件 → 分段 → 逐段归类 → 工作单元
// 落库 → 状态翻转。结果消息先缓存，工作单元提交成功后才随返回值发
// 布，保证失败时不会发出指向已回滚记录的消息。
func (r *Router) processFile(ctx context.Context, fileID, rootCategoryID string) []Outcome {
	info, err := r.files.GetByID(ctx, fileID)
	if err != nil {
		logger.Error("file lookup failed", zap.String("file_id", fileID), zap.Error(err))
		return []Outcome{messageOutcome(err.Error())}
	}
	if info == nil {
		err := apperrors.NewFileNotFound(fileID)
		logger.Warn("file not found", zap.String("file_id", fileID))
		return []Outcome{messageOutcome(err.Error())}
	}

	path, err := r.fetcher.Fetch(ctx, info.FileName)
	if err != nil {
		logger.Error("file fetch failed", zap.String("file_name", info.FileName), zap.Error(err))
		return []Outcome{messageOutcome(err.Error())}
	}

	segments, err := r.segmenter.Segment(path)
	if err != nil {
		logger.Error("segmentation failed", zap.String("file_id", fileID), zap.Error(err))
		return []Outcome{messageOutcome(err.Error())}
	}

	records := make([]models.Knowledge, 0, len(segments))
	outcomes := make([]Outcome, 0, len(segments))
	for _, segment := range segments {
		assigned, err := r.classifier.Classify(ctx, segment.Text, rootCategoryID)
		if err != nil {
			logger.Error("classification failed",
				zap.String("file_id", fileID),
				zap.Int("segment", segment.Index),
				zap.Error(err))
			return []Outcome{messageOutcome(err.Error())}
		}

		chunkID := ChunkID(fileID, segment.Index)
		records = append(records, models.Knowledge{
			CategoryID: assigned,
			Text:       segment.Text,
			ChunkID:    chunkID,
			FileID:     fileID,
		})
		outcomes = append(outcomes, assignmentOutcome(assigned, chunkID, fileID))
	}

	if err := r.store.SaveFileResults(ctx, fileID, records); err != nil {
		logger.Error("unit of work failed", zap.String("file_id", fileID), zap.Error(err))
		return []Outcome{messageOutcome(err.Error())}
	}

	return outcomes
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
