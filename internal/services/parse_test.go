package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fyerfyer/semantic-doc-parser/internal/llm"
	"github.com/fyerfyer/semantic-doc-parser/internal/models"
	"github.com/fyerfyer/semantic-doc-parser/internal/parser"
	"github.com/fyerfyer/semantic-doc-parser/internal/parsers"
	"github.com/fyerfyer/semantic-doc-parser/internal/repository"
	"github.com/fyerfyer/semantic-doc-parser/pkg/storage"
	"github.com/fyerfyer/semantic-doc-parser/pkg/taskqueue"
)

// passthroughSplitter 不切分，原文作为单个子节点返回
type passthroughSplitter struct{}

func (passthroughSplitter) Split(_ context.Context, text string) ([]string, error) {
	return []string{text}, nil
}

// stubLLM 固定应答的大模型客户端
type stubLLM struct{}

func (stubLLM) Chat(_ context.Context, messages []llm.Message) (*llm.Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages")
	}
	if strings.Contains(messages[0].Content, "JSON array") {
		return &llm.Response{Text: `["Row described."]`}, nil
	}
	return &llm.Response{Text: "Table summary."}, nil
}

func (stubLLM) Name() string {
	return "stub"
}

func setupParseService(t *testing.T) *ParseService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dbName := fmt.Sprintf("file:memdb_svc_%d?mode=memory", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ParseRecord{}, &models.Chunk{}))

	store, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	repo := repository.NewParseRepositoryWithDB(db)

	semanticParser := parsers.NewSemanticParser(passthroughSplitter{},
		parsers.WithSemanticLogger(logger))
	tableParser := parsers.NewTableParser(stubLLM{}, parsers.WithTableLogger(logger))
	docParser := parser.NewParser(semanticParser, tableParser, parser.WithParserLogger(logger))

	return NewParseService(store, repo, docParser, WithParseLogger(logger))
}

// TestSubmitDocumentSync 测试同步提交并解析文档
func TestSubmitDocumentSync(t *testing.T) {
	service := setupParseService(t)

	content := "# Schedule\n\nTutorials meet weekly.\n\n- Item A\n- Item B\n"
	record, err := service.SubmitDocument(context.Background(), bytes.NewBufferString(content), "schedule.md")
	require.NoError(t, err)

	assert.Equal(t, models.ParseStatusCompleted, record.Status)
	assert.Equal(t, "md", record.FileType)
	assert.NotZero(t, record.ChunkCount)
	assert.NotNil(t, record.CompletedAt)

	// 耗时统计随记录落库
	var stats parser.Stats
	require.NoError(t, json.Unmarshal(record.Stats, &stats))
	assert.NotNil(t, stats.TableParseTime)

	chunks, err := service.GetChunks(context.Background(), record.ID)
	require.NoError(t, err)
	require.Len(t, chunks, record.ChunkCount)

	// 块按文档顺序保存
	assert.Equal(t, "Schedule\nTutorials meet weekly.", chunks[0].Text)
	assert.Contains(t, chunks[1].Text, "There were 2 items.")
}

// TestParseDocumentFailure 测试解析失败时记录状态
func TestParseDocumentFailure(t *testing.T) {
	service := setupParseService(t)

	// 空字节流不是合法PDF，分区阶段会失败
	record, err := service.SubmitDocument(context.Background(), bytes.NewBufferString("not a pdf"), "broken.pdf")
	require.Error(t, err)
	assert.Nil(t, record)
}

// TestGetRecordValidation 测试参数校验
func TestGetRecordValidation(t *testing.T) {
	service := setupParseService(t)

	_, err := service.GetRecord(context.Background(), "")
	assert.Error(t, err)

	_, err = service.GetChunks(context.Background(), "")
	assert.Error(t, err)

	_, err = service.GetRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

// TestDeleteRecord 测试删除记录及源文档
func TestDeleteRecord(t *testing.T) {
	service := setupParseService(t)

	record, err := service.SubmitDocument(context.Background(),
		bytes.NewBufferString("只有一段文本。"), "note.txt")
	require.NoError(t, err)

	require.NoError(t, service.DeleteRecord(context.Background(), record.ID))

	_, err = service.GetRecord(context.Background(), record.ID)
	assert.ErrorIs(t, err, models.ErrRecordNotFound)

	// 源文档一并删除
	files, err := service.storage.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

// TestParseTaskHandler 测试任务处理器
func TestParseTaskHandler(t *testing.T) {
	service := setupParseService(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	// 手工构造一条待解析记录
	info, err := service.storage.Save(bytes.NewBufferString("段落一。\n\n段落二。"), "doc.txt")
	require.NoError(t, err)

	record := &models.ParseRecord{
		ID:       "record-1",
		FileName: "doc.txt",
		FileType: "txt",
		FilePath: info.Path,
		FileSize: info.Size,
		Status:   models.ParseStatusPending,
	}
	require.NoError(t, service.repo.Create(record))

	handler := NewParseTaskHandler(service, logger)
	assert.Equal(t, []taskqueue.TaskType{taskqueue.TaskDocumentParse}, handler.GetTaskTypes())

	payload, err := taskqueue.MarshalPayload(&taskqueue.DocumentParsePayload{
		FileID:   info.ID,
		FileName: "doc.txt",
		FileType: "txt",
	})
	require.NoError(t, err)

	task := &taskqueue.Task{
		ID:       "task-1",
		Type:     taskqueue.TaskDocumentParse,
		RecordID: "record-1",
		Payload:  payload,
	}

	require.NoError(t, handler.ProcessTask(context.Background(), task))

	saved, err := service.GetRecord(context.Background(), "record-1")
	require.NoError(t, err)
	assert.Equal(t, models.ParseStatusCompleted, saved.Status)

	// 不支持的任务类型
	err = handler.ProcessTask(context.Background(), &taskqueue.Task{Type: "unknown"})
	assert.Error(t, err)
}
