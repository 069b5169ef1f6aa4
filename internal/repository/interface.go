package repository

import "github.com/fyerfyer/semantic-doc-parser/internal/models"

// ParseRepository 解析记录仓储接口
// 负责解析记录和语义块的存储和检索
type ParseRepository interface {
	// Create 创建解析记录
	Create(record *models.ParseRecord) error

	// Update 更新解析记录
	Update(record *models.ParseRecord) error

	// GetByID 根据ID获取解析记录
	GetByID(id string) (*models.ParseRecord, error)

	// List 列出解析记录，支持分页和状态筛选
	List(offset, limit int, status models.ParseStatus) ([]*models.ParseRecord, int64, error)

	// Delete 删除解析记录及其语义块
	Delete(id string) error

	// UpdateStatus 更新解析状态
	UpdateStatus(id string, status models.ParseStatus, errorMsg string) error

	// SaveChunks 批量保存语义块
	SaveChunks(chunks []*models.Chunk) error

	// GetChunks 按位置顺序获取记录的所有语义块
	GetChunks(recordID string) ([]*models.Chunk, error)

	// CountChunks 统计记录的语义块数量
	CountChunks(recordID string) (int, error)

	// DeleteChunks 删除记录的所有语义块
	DeleteChunks(recordID string) error
}
