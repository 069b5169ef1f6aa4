package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fyerfyer/semantic-doc-parser/internal/database"
	"github.com/fyerfyer/semantic-doc-parser/internal/models"
)

// parseRepository 解析记录仓储实现
type parseRepository struct {
	db *gorm.DB // 数据库连接
}

// NewParseRepository 创建解析记录仓储实例
func NewParseRepository() ParseRepository {
	return &parseRepository{db: database.MustDB()}
}

// NewParseRepositoryWithDB 使用指定的数据库连接创建仓储实例
func NewParseRepositoryWithDB(db *gorm.DB) ParseRepository {
	if db == nil {
		db = database.MustDB()
	}
	return &parseRepository{db: db}
}

// Create 创建解析记录
func (r *parseRepository) Create(record *models.ParseRecord) error {
	if record.ID == "" {
		return errors.New("parse record ID cannot be empty")
	}
	return r.db.Create(record).Error
}

// Update 更新解析记录
func (r *parseRepository) Update(record *models.ParseRecord) error {
	if record.ID == "" {
		return errors.New("parse record ID cannot be empty")
	}
	return r.db.Save(record).Error
}

// GetByID 根据ID获取解析记录
func (r *parseRepository) GetByID(id string) (*models.ParseRecord, error) {
	var record models.ParseRecord
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// List 列出解析记录，支持分页和状态筛选
func (r *parseRepository) List(offset, limit int, status models.ParseStatus) ([]*models.ParseRecord, int64, error) {
	var records []*models.ParseRecord
	var total int64

	query := r.db.Model(&models.ParseRecord{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// Delete 删除解析记录及其语义块
func (r *parseRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", id).Delete(&models.Chunk{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.ParseRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrRecordNotFound
		}
		return nil
	})
}

// UpdateStatus 更新解析状态
// 状态进入完成或失败时同时写入完成时间
func (r *parseRepository) UpdateStatus(id string, status models.ParseStatus, errorMsg string) error {
	updates := map[string]interface{}{
		"status":     status,
		"error":      errorMsg,
		"updated_at": time.Now(),
	}

	if status == models.ParseStatusCompleted || status == models.ParseStatusFailed {
		now := time.Now()
		updates["completed_at"] = &now
	}

	result := r.db.Model(&models.ParseRecord{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

// SaveChunks 批量保存语义块
func (r *parseRepository) SaveChunks(chunks []*models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.Create(chunks).Error
}

// GetChunks 按位置顺序获取记录的所有语义块
func (r *parseRepository) GetChunks(recordID string) ([]*models.Chunk, error) {
	var chunks []*models.Chunk
	err := r.db.Where("record_id = ?", recordID).Order("position ASC").Find(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// CountChunks 统计记录的语义块数量
func (r *parseRepository) CountChunks(recordID string) (int, error) {
	var count int64
	err := r.db.Model(&models.Chunk{}).Where("record_id = ?", recordID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// DeleteChunks 删除记录的所有语义块
func (r *parseRepository) DeleteChunks(recordID string) error {
	return r.db.Where("record_id = ?", recordID).Delete(&models.Chunk{}).Error
}
