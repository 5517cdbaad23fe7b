package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/panini/ontology-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDB 用sqlmock打开gorm连接，关闭默认事务方便断言单条SQL
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

func TestCategoryExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "category" WHERE category_id = $1`)).
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "cat-1")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryExistsFalse(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "category" WHERE category_id = $1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.Exists(context.Background(), "ghost")

	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCategoryChildrenOfBatchesParents(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "category_name", "category_id", "parent_id", "tenant"}).
		AddRow(1, "A1", "a1", "a", "t").
		AddRow(2, "B1", "b1", "b", "t")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "category" WHERE parent_id IN ($1,$2) ORDER BY category_id`)).
		WithArgs("a", "b").
		WillReturnRows(rows)

	children, err := repo.ChildrenOf(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "a1", children[0].CategoryID)
	assert.Equal(t, "b1", children[1].CategoryID)
}

func TestCategoryChildrenOfEmptyInput(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewCategoryRepository(db)

	children, err := repo.ChildrenOf(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestCategoryDeleteByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	// 分类行和向量行在同一个事务里删除
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "category" WHERE category_id IN ($1,$2)`)).
		WithArgs("a", "b").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "category_embedding" WHERE category_id IN ($1,$2)`)).
		WithArgs("a", "b").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	deleted, err := repo.DeleteByIDs(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryDeleteByIDsRollsBackOnEmbeddingFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "category" WHERE category_id IN ($1)`)).
		WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "category_embedding" WHERE category_id IN ($1)`)).
		WithArgs("a").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	deleted, err := repo.DeleteByIDs(context.Background(), []string{"a"})

	// 向量行删除失败时分类删除一并回滚
	require.Error(t, err)
	assert.Equal(t, int64(0), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileInfoGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileInfoRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "knowledge_file_info" WHERE file_id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"file_name", "file_id", "hash_value", "status"}))

	info, err := repo.GetByID(context.Background(), "missing")

	// 未命中返回nil而不是错误
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestFileInfoUpdateStatusIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFileInfoRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "knowledge_file_info" SET "status"=$1 WHERE file_id = $2`)).
		WithArgs(models.FileStatusProcessed, "file-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// 影响0行也不报错，重复回写状态幂等
	err := repo.UpdateStatus(context.Background(), "file-1", models.FileStatusProcessed)

	require.NoError(t, err)
}

func TestKnowledgeGetByChunkIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewKnowledgeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "category_id", "text", "chunk_id", "file_id"}).
		AddRow(1, "cat-1", "hello", "11111111-1111-5111-8111-111111111111", "file-1")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "knowledge" WHERE chunk_id IN ($1)`)).
		WithArgs("11111111-1111-5111-8111-111111111111").
		WillReturnRows(rows)

	chunks, err := repo.GetByChunkIDs(context.Background(), []string{"11111111-1111-5111-8111-111111111111"})

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0].Text)
}

func TestKnowledgeUpdateCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewKnowledgeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "knowledge" SET "category_id"=$1 WHERE chunk_id = $2`)).
		WithArgs("cat-2", "chunk-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateCategory(context.Background(), "chunk-1", "cat-2")

	require.NoError(t, err)
}
