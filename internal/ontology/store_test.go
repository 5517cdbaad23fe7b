package ontology

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	apperrors "github.com/panini/ontology-go/internal/errors"
	"github.com/panini/ontology-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDB 用sqlmock打开gorm连接，显式事务仍会发出BEGIN/COMMIT/ROLLBACK
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestChunkIDDeterministic(t *testing.T) {
	first := ChunkID("file-1", 0)
	second := ChunkID("file-1", 0)

	// 同一文件重复处理得到相同id，消息重投不会产生重复记录
	assert.Equal(t, first, second)
}

func TestChunkIDVariesByInput(t *testing.T) {
	base := ChunkID("file-1", 0)

	assert.NotEqual(t, base, ChunkID("file-1", 1))
	assert.NotEqual(t, base, ChunkID("file-2", 0))
}

func TestChunkIDIsValidUUID(t *testing.T) {
	id := ChunkID("file-1", 42)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestChunkIDSeparatorAmbiguity(t *testing.T) {
	// file id里带冒号和数字也不能和别的(file, index)组合撞车
	assert.NotEqual(t, ChunkID("file:1", 0), ChunkID("file", 10))
}

func TestSaveFileResultsCommitsRecordsAndStatus(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewKnowledgeStore(db)

	records := []models.Knowledge{
		{CategoryID: "cat-1", Text: "first", ChunkID: "chunk-0", FileID: "file-1"},
		{CategoryID: "cat-2", Text: "second", ChunkID: "chunk-1", FileID: "file-1"},
	}

	// 知识行插入（冲突忽略）和状态回写在同一个事务里提交
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "knowledge" ("category_id","text","chunk_id","file_id") VALUES ($1,$2,$3,$4),($5,$6,$7,$8) ON CONFLICT ("chunk_id") DO NOTHING RETURNING "id"`)).
		WithArgs("cat-1", "first", "chunk-0", "file-1", "cat-2", "second", "chunk-1", "file-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "knowledge_file_info" SET "status"=$1 WHERE file_id = $2`)).
		WithArgs(models.FileStatusProcessed, "file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.SaveFileResults(context.Background(), "file-1", records)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveFileResultsRollsBackOnStatusFailure(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewKnowledgeStore(db)

	records := []models.Knowledge{
		{CategoryID: "cat-1", Text: "first", ChunkID: "chunk-0", FileID: "file-1"},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "knowledge" ("category_id","text","chunk_id","file_id") VALUES ($1,$2,$3,$4) ON CONFLICT ("chunk_id") DO NOTHING RETURNING "id"`)).
		WithArgs("cat-1", "first", "chunk-0", "file-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "knowledge_file_info" SET "status"=$1 WHERE file_id = $2`)).
		WithArgs(models.FileStatusProcessed, "file-1").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.SaveFileResults(context.Background(), "file-1", records)

	// 状态回写失败时已插入的知识行一并回滚
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePersistenceFailure, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveFileResultsEmptySegmentsStillFlipsStatus(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewKnowledgeStore(db)

	// 没有分段时跳过插入，只回写状态
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "knowledge_file_info" SET "status"=$1 WHERE file_id = $2`)).
		WithArgs(models.FileStatusProcessed, "file-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.SaveFileResults(context.Background(), "file-1", nil)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
