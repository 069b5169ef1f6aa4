package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/fyerfyer/semantic-doc-parser/internal/models"
	"github.com/fyerfyer/semantic-doc-parser/internal/parser"
	"github.com/fyerfyer/semantic-doc-parser/internal/repository"
	"github.com/fyerfyer/semantic-doc-parser/pkg/storage"
	"github.com/fyerfyer/semantic-doc-parser/pkg/taskqueue"
)

// ParseService 文档解析服务
// 负责文档的接收、解析调度和结果落库
type ParseService struct {
	storage   storage.Storage            // 源文档存储
	repo      repository.ParseRepository // 解析记录仓储
	docParser *parser.Parser             // 解析流水线
	queue     taskqueue.Queue            // 任务队列，可选
	logger    *logrus.Logger             // 日志记录器
}

// ParseOption 解析服务配置选项
type ParseOption func(*ParseService)

// WithParseQueue 设置任务队列，启用异步解析
func WithParseQueue(queue taskqueue.Queue) ParseOption {
	return func(s *ParseService) {
		s.queue = queue
	}
}

// WithParseLogger 设置日志记录器
func WithParseLogger(logger *logrus.Logger) ParseOption {
	return func(s *ParseService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewParseService 创建文档解析服务实例
func NewParseService(store storage.Storage, repo repository.ParseRepository, docParser *parser.Parser, opts ...ParseOption) *ParseService {
	service := &ParseService{
		storage:   store,
		repo:      repo,
		docParser: docParser,
		logger:    logrus.New(),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// SubmitDocument 接收文档并触发解析
// 配置了任务队列时解析异步执行，否则同步完成后返回
func (s *ParseService) SubmitDocument(ctx context.Context, reader io.Reader, filename string) (*models.ParseRecord, error) {
	info, err := s.storage.Save(reader, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	record := &models.ParseRecord{
		ID:       uuid.New().String(),
		FileName: filename,
		FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		FilePath: info.Path,
		FileSize: info.Size,
		Status:   models.ParseStatusPending,
	}

	if err := s.repo.Create(record); err != nil {
		return nil, fmt.Errorf("failed to create parse record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"record_id": record.ID,
		"filename":  filename,
	}).Info("Document submitted for parsing")

	if s.queue != nil {
		payload := &taskqueue.DocumentParsePayload{
			FileID:   info.ID,
			FileName: filename,
			FileType: record.FileType,
		}

		taskID, err := s.queue.Enqueue(ctx, taskqueue.TaskDocumentParse, record.ID, payload)
		if err != nil {
			return nil, fmt.Errorf("failed to enqueue parse task: %w", err)
		}

		record.TaskID = taskID
		if err := s.repo.Update(record); err != nil {
			return nil, fmt.Errorf("failed to attach task to record: %w", err)
		}

		return record, nil
	}

	if err := s.ParseDocument(ctx, record.ID); err != nil {
		return nil, err
	}

	return s.repo.GetByID(record.ID)
}

// ParseDocument 执行一条解析记录的完整解析
// 从存储取回文档，跑流水线，保存语义块和耗时统计
func (s *ParseService) ParseDocument(ctx context.Context, recordID string) error {
	record, err := s.repo.GetByID(recordID)
	if err != nil {
		return fmt.Errorf("failed to load parse record: %w", err)
	}

	if err := s.repo.UpdateStatus(recordID, models.ParseStatusProcessing, ""); err != nil {
		return fmt.Errorf("failed to mark record processing: %w", err)
	}

	reader, err := s.storage.Get(fileIDFromPath(record.FilePath))
	if err != nil {
		s.failRecord(recordID, err)
		return fmt.Errorf("failed to fetch document from storage: %w", err)
	}
	defer reader.Close()

	elements, stats, err := s.docParser.Parse(ctx, reader, record.FileName)
	if err != nil {
		s.failRecord(recordID, err)
		return fmt.Errorf("failed to parse document: %w", err)
	}

	chunks := make([]*models.Chunk, 0, len(elements))
	for idx, el := range elements {
		metadata, err := json.Marshal(el.Metadata)
		if err != nil {
			s.failRecord(recordID, err)
			return fmt.Errorf("failed to marshal chunk metadata: %w", err)
		}

		chunks = append(chunks, &models.Chunk{
			RecordID: recordID,
			Position: idx,
			Kind:     string(el.Kind),
			Text:     el.Text,
			Metadata: datatypes.JSON(metadata),
		})
	}

	if err := s.repo.SaveChunks(chunks); err != nil {
		s.failRecord(recordID, err)
		return fmt.Errorf("failed to save chunks: %w", err)
	}

	statsData, err := json.Marshal(stats)
	if err != nil {
		s.failRecord(recordID, err)
		return fmt.Errorf("failed to marshal parse stats: %w", err)
	}

	record.Status = models.ParseStatusCompleted
	record.ChunkCount = len(chunks)
	record.Stats = datatypes.JSON(statsData)
	if err := s.repo.Update(record); err != nil {
		return fmt.Errorf("failed to update parse record: %w", err)
	}
	if err := s.repo.UpdateStatus(recordID, models.ParseStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to mark record completed: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"record_id": recordID,
		"chunks":    len(chunks),
	}).Info("Document parsed successfully")

	return nil
}

// GetRecord 获取解析记录
func (s *ParseService) GetRecord(ctx context.Context, recordID string) (*models.ParseRecord, error) {
	if recordID == "" {
		return nil, errors.New("record ID cannot be empty")
	}
	return s.repo.GetByID(recordID)
}

// GetChunks 获取解析结果的语义块
func (s *ParseService) GetChunks(ctx context.Context, recordID string) ([]*models.Chunk, error) {
	if recordID == "" {
		return nil, errors.New("record ID cannot be empty")
	}
	return s.repo.GetChunks(recordID)
}

// ListRecords 列出解析记录
func (s *ParseService) ListRecords(ctx context.Context, offset, limit int, status models.ParseStatus) ([]*models.ParseRecord, int64, error) {
	return s.repo.List(offset, limit, status)
}

// DeleteRecord 删除解析记录及其存储的源文档
func (s *ParseService) DeleteRecord(ctx context.Context, recordID string) error {
	record, err := s.repo.GetByID(recordID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(fileIDFromPath(record.FilePath)); err != nil {
		s.logger.WithError(err).WithField("record_id", recordID).Warn("Failed to delete stored document")
	}

	return s.repo.Delete(recordID)
}

// failRecord 将记录标记为失败
func (s *ParseService) failRecord(recordID string, cause error) {
	if err := s.repo.UpdateStatus(recordID, models.ParseStatusFailed, cause.Error()); err != nil {
		s.logger.WithError(err).WithField("record_id", recordID).Error("Failed to mark record failed")
	}
}

// fileIDFromPath 从存储路径还原文档ID
// 存储路径为"<id><扩展名>"格式
func fileIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
