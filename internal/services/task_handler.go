package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/semantic-doc-parser/pkg/taskqueue"
)

// ParseTaskHandler 文档解析任务处理器
// 从任务队列接收解析任务并交给解析服务执行
type ParseTaskHandler struct {
	service *ParseService  // 解析服务
	logger  *logrus.Logger // 日志记录器
}

// NewParseTaskHandler 创建解析任务处理器
func NewParseTaskHandler(service *ParseService, logger *logrus.Logger) *ParseTaskHandler {
	if logger == nil {
		logger = logrus.New()
	}

	return &ParseTaskHandler{
		service: service,
		logger:  logger,
	}
}

// ProcessTask 处理文档解析任务
func (h *ParseTaskHandler) ProcessTask(ctx context.Context, task *taskqueue.Task) error {
	if task.Type != taskqueue.TaskDocumentParse {
		return fmt.Errorf("unsupported task type: %s", task.Type)
	}

	var payload taskqueue.DocumentParsePayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		return taskqueue.ErrInvalidPayload
	}

	h.logger.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"record_id": task.RecordID,
		"filename":  payload.FileName,
	}).Info("Processing document parse task")

	if err := h.service.ParseDocument(ctx, task.RecordID); err != nil {
		h.logger.WithError(err).WithField("task_id", task.ID).Error("Document parse task failed")
		return err
	}

	return nil
}

// GetTaskTypes 返回支持的任务类型
func (h *ParseTaskHandler) GetTaskTypes() []taskqueue.TaskType {
	return []taskqueue.TaskType{taskqueue.TaskDocumentParse}
}
