package splitter

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/semantic-doc-parser/internal/embedding"
)

// NodeSplitter 语义分割器接口
// 负责将一段文本按语义连贯性拆分为有序的子文本
type NodeSplitter interface {
	// Split 将文本拆分为语义连贯的子文本序列
	Split(ctx context.Context, text string) ([]string, error)
}

// Config 语义分割器配置
type Config struct {
	// BreakpointPercentile 语义断点百分位(0-100)
	// 相邻句子的嵌入距离超过该百分位时在此处断开
	BreakpointPercentile float64
	// BufferSize 计算嵌入时每个句子前后附带的句子数
	BufferSize int
	// EmbedBatchSize 嵌入请求的批量大小
	EmbedBatchSize int
}

// DefaultConfig 返回默认配置
// 断点百分位与缓冲区大小与常见语义分割器实现保持一致
func DefaultConfig() Config {
	return Config{
		BreakpointPercentile: 95,
		BufferSize:           1,
		EmbedBatchSize:       16,
	}
}

// SemanticSplitter 基于嵌入相似度的语义分割器
// 将文本按句子切分后嵌入，相邻句子相似度低于断点阈值处分段
type SemanticSplitter struct {
	embedder embedding.Client // 嵌入模型客户端
	config   Config           // 分割配置
	logger   *logrus.Logger   // 日志记录器
}

// Option 分割器配置选项函数类型
type Option func(*SemanticSplitter)

// WithBreakpointPercentile 设置语义断点百分位
func WithBreakpointPercentile(p float64) Option {
	return func(s *SemanticSplitter) {
		if p > 0 && p <= 100 {
			s.config.BreakpointPercentile = p
		}
	}
}

// WithBufferSize 设置句子嵌入的上下文缓冲区大小
func WithBufferSize(size int) Option {
	return func(s *SemanticSplitter) {
		if size >= 0 {
			s.config.BufferSize = size
		}
	}
}

// WithEmbedBatchSize 设置嵌入请求的批量大小
func WithEmbedBatchSize(size int) Option {
	return func(s *SemanticSplitter) {
		if size > 0 {
			s.config.EmbedBatchSize = size
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) Option {
	return func(s *SemanticSplitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSemanticSplitter 创建新的语义分割器
func NewSemanticSplitter(embedder embedding.Client, opts ...Option) *SemanticSplitter {
	s := &SemanticSplitter{
		embedder: embedder,
		config:   DefaultConfig(),
		logger:   logrus.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Split 将文本拆分为语义连贯的子文本序列
func (s *SemanticSplitter) Split(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}, nil
	}

	sentences := splitSentences(text)

	// 单句文本没有可断开的位置，整体作为一个语义单元
	if len(sentences) <= 1 {
		return []string{text}, nil
	}

	// 带上下文缓冲的句子窗口作为嵌入输入
	windows := s.buildWindows(sentences)

	vectors, err := s.embedWindows(ctx, windows)
	if err != nil {
		return nil, fmt.Errorf("failed to embed sentences: %w", err)
	}

	// 相邻窗口的嵌入距离
	distances := make([]float64, len(vectors)-1)
	for i := 0; i < len(vectors)-1; i++ {
		distances[i] = 1 - cosineSimilarity(vectors[i], vectors[i+1])
	}

	threshold := percentile(distances, s.config.BreakpointPercentile)

	// 距离超过阈值处断开，组内句子拼接为一个语义单元
	var chunks []string
	var current []string
	for i, sentence := range sentences {
		current = append(current, sentence)
		if i < len(distances) && distances[i] > threshold {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	s.logger.WithFields(logrus.Fields{
		"sentences": len(sentences),
		"chunks":    len(chunks),
		"threshold": threshold,
	}).Debug("Semantic split completed")

	return chunks, nil
}

// buildWindows 为每个句子构造带前后文的嵌入窗口
func (s *SemanticSplitter) buildWindows(sentences []string) []string {
	windows := make([]string, len(sentences))
	for i := range sentences {
		start := i - s.config.BufferSize
		if start < 0 {
			start = 0
		}
		end := i + s.config.BufferSize + 1
		if end > len(sentences) {
			end = len(sentences)
		}
		windows[i] = strings.Join(sentences[start:end], " ")
	}
	return windows
}

// embedWindows 分批嵌入所有句子窗口
func (s *SemanticSplitter) embedWindows(ctx context.Context, windows []string) ([][]float32, error) {
	batchSize := s.config.EmbedBatchSize
	vectors := make([][]float32, 0, len(windows))

	for i := 0; i < len(windows); i += batchSize {
		end := i + batchSize
		if end > len(windows) {
			end = len(windows)
		}

		batch, err := s.embedder.EmbedBatch(ctx, windows[i:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// 句子结束符，兼顾中英文标点
var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true, '；': true,
}

// splitSentences 将文本切分为句子
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)

		if !sentenceEnders[r] {
			continue
		}

		// 英文句点后跟非空白字符时不断句，避免拆散小数和缩写
		if r == '.' && i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}

		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	last := strings.TrimSpace(current.String())
	if last != "" {
		sentences = append(sentences, last)
	}

	return sentences
}

// cosineSimilarity 计算两个向量的余弦相似度
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// percentile 计算给定百分位的值
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
