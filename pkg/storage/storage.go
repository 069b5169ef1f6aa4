package storage

import (
	"io"
	"path/filepath"
	"strings"
)

// FileInfo 源文档元数据结构
type FileInfo struct {
	ID       string // 文档唯一标识符
	Name     string // 原始文件名
	Size     int64  // 文件大小(字节)
	MimeType string // 文件MIME类型
	Path     string // 内部存储路径(实现相关)
}

// Storage 源文档存储接口
// 解析任务异步执行，文档先落存储，解析时再取出
type Storage interface {
	// Save 保存文档并返回文件信息
	Save(reader io.Reader, filename string) (FileInfo, error)

	// Get 获取文档内容
	Get(id string) (io.ReadCloser, error)

	// Delete 删除文档
	Delete(id string) error

	// List 列出所有文档
	List() ([]FileInfo, error)

	// Exists 检查文档是否存在
	Exists(id string) (bool, error)
}

// getMimeType 根据文件扩展名判断MIME类型
// 只覆盖解析流水线支持的文档格式
func getMimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".md", ".markdown":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
