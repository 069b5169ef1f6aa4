package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/semantic-doc-parser/internal/database"
	"github.com/fyerfyer/semantic-doc-parser/internal/models"
)

func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	// 使用唯一的内存数据库标识符
	dbName := fmt.Sprintf("file:memdb_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err, "Failed to open in-memory database")

	err = db.AutoMigrate(&models.ParseRecord{}, &models.Chunk{})
	require.NoError(t, err, "Failed to run migrations")

	originalDB := database.DB
	database.DB = db

	cleanup := func() {
		database.DB = originalDB
	}

	return db, cleanup
}

func newTestRecord(id string) *models.ParseRecord {
	return &models.ParseRecord{
		ID:       id,
		FileName: "test.md",
		FileType: "md",
		FilePath: "/path/to/test.md",
		FileSize: 1024,
		Status:   models.ParseStatusPending,
	}
}

func TestParseRepository_Create(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewParseRepository()

	record := newTestRecord("test-record-1")
	err := repo.Create(record)
	assert.NoError(t, err, "Record creation should succeed")

	saved, err := repo.GetByID(record.ID)
	assert.NoError(t, err, "Should be able to retrieve created record")
	assert.Equal(t, record.ID, saved.ID)
	assert.Equal(t, record.FileName, saved.FileName)
	assert.Equal(t, models.ParseStatusPending, saved.Status)
	assert.False(t, saved.CreatedAt.IsZero(), "CreatedAt should be set by hook")

	// 空ID不允许创建
	err = repo.Create(&models.ParseRecord{})
	assert.Error(t, err)
}

func TestParseRepository_GetByIDNotFound(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewParseRepository()

	_, err := repo.GetByID("missing")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestParseRepository_UpdateStatus(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewParseRepository()
	require.NoError(t, repo.Create(newTestRecord("test-record-1")))

	err := repo.UpdateStatus("test-record-1", models.ParseStatusFailed, "llm transport error")
	assert.NoError(t, err)

	saved, err := repo.GetByID("test-record-1")
	require.NoError(t, err)
	assert.Equal(t, models.ParseStatusFailed, saved.Status)
	assert.Equal(t, "llm transport error", saved.Error)
	assert.NotNil(t, saved.CompletedAt, "Failed status should record completion time")

	// 不存在的记录返回未找到错误
	err = repo.UpdateStatus("missing", models.ParseStatusCompleted, "")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestParseRepository_List(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewParseRepository()
	for i := 1; i <= 3; i++ {
		record := newTestRecord(fmt.Sprintf("record-%d", i))
		if i == 3 {
			record.Status = models.ParseStatusCompleted
		}
		require.NoError(t, repo.Create(record))
	}

	records, total, err := repo.List(0, 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, records, 3)

	records, total, err = repo.List(0, 10, models.ParseStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, "record-3", records[0].ID)
}

func TestParseRepository_Chunks(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewParseRepository()
	require.NoError(t, repo.Create(newTestRecord("test-record-1")))

	chunks := []*models.Chunk{
		{RecordID: "test-record-1", Position: 1, Kind: "narrative_text", Text: "second chunk"},
		{RecordID: "test-record-1", Position: 0, Kind: "narrative_text", Text: "first chunk"},
	}
	require.NoError(t, repo.SaveChunks(chunks))

	// 按位置顺序返回
	saved, err := repo.GetChunks("test-record-1")
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "first chunk", saved[0].Text)
	assert.Equal(t, "second chunk", saved[1].Text)

	count, err := repo.CountChunks("test-record-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, repo.DeleteChunks("test-record-1"))
	count, err = repo.CountChunks("test-record-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// 空切片保存应当为空操作
	assert.NoError(t, repo.SaveChunks(nil))
}

func TestParseRepository_Delete(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewParseRepository()
	require.NoError(t, repo.Create(newTestRecord("test-record-1")))
	require.NoError(t, repo.SaveChunks([]*models.Chunk{
		{RecordID: "test-record-1", Position: 0, Kind: "narrative_text", Text: "chunk"},
	}))

	require.NoError(t, repo.Delete("test-record-1"))

	_, err := repo.GetByID("test-record-1")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)

	count, err := repo.CountChunks("test-record-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// 删除不存在的记录
	assert.ErrorIs(t, repo.Delete("missing"), models.ErrRecordNotFound)
}
