package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ParseStatus 解析任务状态类型
type ParseStatus string

const (
	// ParseStatusPending 文档已接收，等待解析
	ParseStatusPending ParseStatus = "pending"
	// ParseStatusProcessing 解析中
	ParseStatusProcessing ParseStatus = "processing"
	// ParseStatusCompleted 解析完成
	ParseStatusCompleted ParseStatus = "completed"
	// ParseStatusFailed 解析失败
	ParseStatusFailed ParseStatus = "failed"
)

// ParseRecord 解析记录数据模型
// 跟踪一次文档解析的输入文件、状态和各阶段耗时
type ParseRecord struct {
	ID          string         `gorm:"primaryKey"`         // 记录ID，主键
	FileName    string         `gorm:"not null"`           // 文件名
	FileType    string         `gorm:"not null"`           // 文件类型
	FilePath    string         `gorm:"not null"`           // 文件存储路径
	FileSize    int64          `gorm:"not null"`           // 文件大小（字节）
	Status      ParseStatus    `gorm:"not null;index"`     // 解析状态
	CreatedAt   time.Time      `gorm:"not null;index"`     // 创建时间
	UpdatedAt   time.Time      `gorm:"not null;index"`     // 更新时间
	CompletedAt *time.Time     `gorm:"index"`              // 解析完成时间
	Error       string         `gorm:"type:text"`          // 错误信息
	ChunkCount  int            `gorm:"not null;default:0"` // 产出的语义块数量
	Stats       datatypes.JSON `gorm:"type:json"`          // 各阶段耗时统计，JSON格式
	TaskID      string         `gorm:"size:50;index"`      // 关联的异步任务ID
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (r *ParseRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (r *ParseRecord) BeforeUpdate(tx *gorm.DB) (err error) {
	r.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (ParseRecord) TableName() string {
	return "parse_records"
}

// Chunk 语义块数据模型
// 解析流水线产出的嵌入就绪文本块，按文档内顺序保存
type Chunk struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"` // 主键ID
	RecordID  string         `gorm:"not null;index"`           // 所属解析记录ID
	Position  int            `gorm:"not null"`                 // 块在文档中的位置
	Kind      string         `gorm:"not null;size:20"`         // 元素类型
	Text      string         `gorm:"type:text;not null"`       // 块文本内容
	Metadata  datatypes.JSON `gorm:"type:json"`                // 块元数据
	CreatedAt time.Time      `gorm:"not null"`                 // 创建时间
	UpdatedAt time.Time      `gorm:"not null"`                 // 更新时间
}

// BeforeCreate GORM的钩子函数，创建记录前自动设置时间
func (c *Chunk) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// BeforeUpdate GORM的钩子函数，更新记录前自动设置更新时间
func (c *Chunk) BeforeUpdate(tx *gorm.DB) (err error) {
	c.UpdatedAt = time.Now()
	return nil
}

// TableName 明确指定表名
func (Chunk) TableName() string {
	return "chunks"
}
