package ontology

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/panini/ontology-go/internal/logger"
	"go.uber.org/zap"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	VectorSize int
	Distance   string
	Database   string
	UseTLS     bool
	Timeout    time.Duration
}

type milvusVectorIndex struct {
	milvusClient client.Client
	embedder     Embedder
	collection   string
	vectorSize   int
	distance     string
}

// NewMilvusVectorIndex 创建Milvus分类向量索引。分类向量统一放在一个
// 集合里，category_id作为varchar主键。
func NewMilvusVectorIndex(opts MilvusOptions, embedder Embedder) (VectorIndex, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "category_vectors"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}
	if opts.Distance == "" {
		opts.Distance = "COSINE"
	}
	if opts.Database == "" {
		opts.Database = "default"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	milvusClient, err := client.NewClient(ctx, client.Config{
		Address:       opts.Address,
		DBName:        opts.Database,
		Username:      opts.Username,
		Password:      opts.Password,
		EnableTLSAuth: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	return &milvusVectorIndex{
		milvusClient: milvusClient,
		embedder:     embedder,
		collection:   opts.Collection,
		vectorSize:   opts.VectorSize,
		distance:     formatMilvusDistance(opts.Distance),
	}, nil
}

func formatMilvusDistance(value string) string {
	switch strings.ToUpper(value) {
	case "DOT", "IP", "INNER_PRODUCT":
		return "IP"
	case "L2", "EUCLIDEAN":
		return "L2"
	default:
		return "COSINE"
	}
}

func (s *milvusVectorIndex) ensureCollection(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if hasCollection {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: s.collection,
		Description:    "category embeddings",
		Fields: []*entity.Field{
			{
				Name:       "category_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "255",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", s.vectorSize),
				},
			},
		},
	}

	if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	var index entity.Index
	var indexErr error
	switch s.distance {
	case "IP":
		index, indexErr = entity.NewIndexHNSW(entity.IP, 8, 64)
	case "L2":
		index, indexErr = entity.NewIndexHNSW(entity.L2, 8, 64)
	default:
		index, indexErr = entity.NewIndexHNSW(entity.COSINE, 8, 64)
	}
	if indexErr != nil {
		return fmt.Errorf("failed to create index: %w", indexErr)
	}

	if err := s.milvusClient.CreateIndex(ctx, s.collection, "vector", index, false); err != nil {
		// 索引创建失败不影响使用，只记录警告
		logger.Warn("failed to create milvus index", zap.String("collection", s.collection), zap.Error(err))
	}

	if err := s.milvusClient.LoadCollection(ctx, s.collection, false); err != nil {
		logger.Warn("failed to load milvus collection", zap.String("collection", s.collection), zap.Error(err))
	}

	return nil
}

func (s *milvusVectorIndex) Upsert(ctx context.Context, categoryID, text string) error {
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed category text: %w", err)
	}
	embedding = s.fitVector(embedding)

	if err := s.ensureCollection(ctx); err != nil {
		return err
	}

	idColumn := entity.NewColumnVarChar("category_id", []string{categoryID})
	vectorColumn := entity.NewColumnFloatVector("vector", s.vectorSize, [][]float32{embedding})

	if _, err := s.milvusClient.Upsert(ctx, s.collection, "", idColumn, vectorColumn); err != nil {
		return fmt.Errorf("milvus upsert failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		logger.Warn("failed to flush milvus collection", zap.String("collection", s.collection), zap.Error(err))
	}

	return nil
}

// fitVector 对齐向量维度到集合schema
func (s *milvusVectorIndex) fitVector(embedding []float32) []float32 {
	if len(embedding) == s.vectorSize {
		return embedding
	}
	fitted := make([]float32, s.vectorSize)
	copy(fitted, embedding)
	return fitted
}

func (s *milvusVectorIndex) Nearest(ctx context.Context, text string, candidateIDs []string, k int) ([]Match, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	if k == 0 {
		k = 1
	}

	queryEmbedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query text: %w", err)
	}
	queryEmbedding = s.fitVector(queryEmbedding)

	if err := s.ensureCollection(ctx); err != nil {
		return nil, err
	}

	// Milvus对同分结果的排序未定义，多取一些再在本地按统一规则重排
	fetch := k * 4
	if fetch > len(candidateIDs) {
		fetch = len(candidateIDs)
	}
	if fetch < k {
		fetch = k
	}

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		[]string{},
		candidateExpr(candidateIDs),
		[]string{"category_id"},
		[]entity.Vector{entity.FloatVector(queryEmbedding)},
		"vector",
		entity.MetricType(s.distance),
		fetch,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	if len(searchResults) == 0 {
		return nil, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return nil, nil
	}

	var ids []string
	if idCol, ok := result.IDs.(*entity.ColumnVarChar); ok {
		ids = idCol.Data()
	} else if result.Fields != nil {
		for _, field := range result.Fields {
			if field.Name() != "category_id" {
				continue
			}
			if col, ok := field.(*entity.ColumnVarChar); ok {
				ids = col.Data()
			}
		}
	}

	matches := make([]Match, 0, result.ResultCount)
	for i := 0; i < result.ResultCount && i < len(ids); i++ {
		score := float64(0)
		if i < len(result.Scores) {
			score = float64(result.Scores[i])
		}
		if s.distance == "L2" {
			// L2距离越小越近，取负号统一成越大越好
			score = -score
		}
		matches = append(matches, Match{CategoryID: ids[i], Score: score})
	}

	return rankMatches(matches, k), nil
}

// candidateExpr 构造限定候选集的布尔表达式
func candidateExpr(candidateIDs []string) string {
	quoted := make([]string, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		escaped := strings.ReplaceAll(id, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		quoted = append(quoted, `"`+escaped+`"`)
	}
	return fmt.Sprintf("category_id in [%s]", strings.Join(quoted, ", "))
}

func (s *milvusVectorIndex) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
