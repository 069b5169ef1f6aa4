package parser

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
	"github.com/fyerfyer/semantic-doc-parser/internal/parsers"
	"github.com/fyerfyer/semantic-doc-parser/internal/partition"
)

// Stats 各阶段耗时统计（秒）
// 指针字段为nil表示该阶段未执行
type Stats struct {
	ElementParseTime   int64  `json:"element_parse_time"`
	MetadataParseTime  *int64 `json:"metadata_parse_time"`
	ParagraphParseTime *int64 `json:"paragraph_parse_time"`
	ListParseTime      *int64 `json:"list_parse_time"`
	TableParseTime     *int64 `json:"table_parse_time"`
}

// PartitionFunc 文档分区函数，将字节流转换为带类型的元素序列
type PartitionFunc func(r io.Reader, filename string) ([]element.Element, error)

// Parser 文档语义解析器
// 串联分区与四个重塑阶段：元数据清理、语义分组切分、列表合并、表格语义化
type Parser struct {
	partition      PartitionFunc
	semanticParser *parsers.SemanticParser
	tableParser    *parsers.TableParser
	clock          Clock
	logger         *logrus.Logger
}

// Option 解析器配置选项
type Option func(*Parser)

// WithPartitionFunc 设置自定义分区函数
func WithPartitionFunc(fn PartitionFunc) Option {
	return func(p *Parser) {
		p.partition = fn
	}
}

// WithClock 设置时钟实现
func WithClock(c Clock) Option {
	return func(p *Parser) {
		p.clock = c
	}
}

// WithParserLogger 设置日志记录器
func WithParserLogger(logger *logrus.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser 创建文档语义解析器
func NewParser(semanticParser *parsers.SemanticParser, tableParser *parsers.TableParser, opts ...Option) *Parser {
	p := &Parser{
		partition:      partition.Partition,
		semanticParser: semanticParser,
		tableParser:    tableParser,
		clock:          systemClock{},
		logger:         logrus.New(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse 解析文档并返回嵌入就绪的元素序列和各阶段耗时
// 四个阶段严格顺序执行，空分区结果直接返回空序列
func (p *Parser) Parse(ctx context.Context, r io.Reader, filename string) ([]element.Element, Stats, error) {
	var stats Stats

	start := p.clock.Now()
	elements, err := p.partition(r, filename)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to partition document: %v", err)
	}
	stats.ElementParseTime = seconds(p.clock, start)

	if len(elements) == 0 {
		p.logger.WithField("filename", filename).Info("document produced no elements")
		return []element.Element{}, stats, nil
	}

	p.logger.WithFields(logrus.Fields{
		"filename": filename,
		"elements": len(elements),
	}).Info("document partitioned")

	start = p.clock.Now()
	elements = parsers.ParseMetadata(elements)
	stats.MetadataParseTime = ptrTo(seconds(p.clock, start))

	start = p.clock.Now()
	elements, err = p.semanticParser.Parse(ctx, elements)
	if err != nil {
		return nil, stats, fmt.Errorf("semantic parse failed: %v", err)
	}
	stats.ParagraphParseTime = ptrTo(seconds(p.clock, start))

	start = p.clock.Now()
	elements = parsers.ParseLists(elements)
	stats.ListParseTime = ptrTo(seconds(p.clock, start))

	start = p.clock.Now()
	elements, err = p.tableParser.Parse(ctx, elements)
	if err != nil {
		return nil, stats, fmt.Errorf("table parse failed: %v", err)
	}
	stats.TableParseTime = ptrTo(seconds(p.clock, start))

	p.logger.WithFields(logrus.Fields{
		"filename": filename,
		"chunks":   len(elements),
	}).Info("document parsed")

	return elements, stats, nil
}

func ptrTo(v int64) *int64 {
	return &v
}
