package partition

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
)

// Partitioner 文档分区器接口
// 负责将不同格式的文档解析为带类型的元素序列
type Partitioner interface {
	// Partition 从Reader解析文档，返回元素序列
	// filename用于确定文档类型
	Partition(r io.Reader, filename string) ([]element.Element, error)
}

// ContentType 表示文档的内容类型
type ContentType string

const (
	// PDF 文档类型
	PDF ContentType = "pdf"
	// Markdown 文档类型
	Markdown ContentType = "markdown"
	// HTML 文档类型
	HTML ContentType = "html"
	// PlainText 纯文本类型
	PlainText ContentType = "plaintext"
	// Unknown 未知类型
	Unknown ContentType = "unknown"
)

// ErrUnsupportedType 不支持的文档类型
var ErrUnsupportedType = errors.New("unsupported document type")

// PartitionerFactory 分区器工厂函数，根据文件类型创建对应的分区器
func PartitionerFactory(filename string) (Partitioner, error) {
	contentType := detectContentType(filename)

	switch contentType {
	case PDF:
		return NewPDFPartitioner(), nil
	case Markdown:
		return NewMarkdownPartitioner(), nil
	case HTML:
		return NewHTMLPartitioner(), nil
	case PlainText:
		return NewPlainTextPartitioner(), nil
	default:
		return nil, ErrUnsupportedType
	}
}

// Partition 根据文件名选择分区器并解析文档
func Partition(r io.Reader, filename string) ([]element.Element, error) {
	p, err := PartitionerFactory(filename)
	if err != nil {
		return nil, err
	}
	return p.Partition(r, filename)
}

// detectContentType 根据文件扩展名检测内容类型
func detectContentType(filename string) ContentType {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".pdf":
		return PDF
	case ".md", ".markdown":
		return Markdown
	case ".html", ".htm":
		return HTML
	case ".txt":
		return PlainText
	default:
		return Unknown
	}
}
