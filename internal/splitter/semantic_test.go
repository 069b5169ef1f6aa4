package splitter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEmbedder 返回预设向量的嵌入客户端
type mockEmbedder struct {
	vectors map[string][]float32 // 文本到向量的映射
	err     error                // 预设错误
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, _ := m.Embed(ctx, text)
		result[i] = vec
	}
	return result, nil
}

func (m *mockEmbedder) Name() string { return "mock-embedding" }

// TestSplitEmptyText 测试空文本
func TestSplitEmptyText(t *testing.T) {
	s := NewSemanticSplitter(&mockEmbedder{})

	chunks, err := s.Split(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

// TestSplitSingleSentence 测试单句文本整体作为一个语义单元
func TestSplitSingleSentence(t *testing.T) {
	s := NewSemanticSplitter(&mockEmbedder{})

	chunks, err := s.Split(context.Background(), "这是唯一的一句话。")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "这是唯一的一句话。", chunks[0])
}

// TestSplitSemanticBreakpoint 测试语义断点处分段
func TestSplitSemanticBreakpoint(t *testing.T) {
	// 前两句语义相近，第三句话题跳变
	embedder := &mockEmbedder{
		vectors: map[string][]float32{
			"猫喜欢睡觉。":    {1, 0},
			"狗也喜欢睡觉。":   {1, 0},
			"股票市场今天上涨。": {0, 1},
		},
	}

	// 缓冲区设为0，使嵌入窗口与句子一一对应
	s := NewSemanticSplitter(embedder, WithBufferSize(0))

	chunks, err := s.Split(context.Background(), "猫喜欢睡觉。狗也喜欢睡觉。股票市场今天上涨。")
	require.NoError(t, err)
	require.Len(t, chunks, 2, "话题跳变处应产生断点")
	assert.Equal(t, "猫喜欢睡觉。 狗也喜欢睡觉。", chunks[0])
	assert.Equal(t, "股票市场今天上涨。", chunks[1])
}

// TestSplitEmbedderError 测试嵌入失败向上传播
func TestSplitEmbedderError(t *testing.T) {
	embedder := &mockEmbedder{err: errors.New("embedding service unavailable")}
	s := NewSemanticSplitter(embedder)

	_, err := s.Split(context.Background(), "第一句话。第二句话。")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding service unavailable")
}

// TestSplitSentences 测试句子切分
func TestSplitSentences(t *testing.T) {
	t.Run("mixed punctuation", func(t *testing.T) {
		sentences := splitSentences("First sentence. Second one! Third? 最后一句。")
		assert.Len(t, sentences, 4)
	})

	t.Run("decimal point not a boundary", func(t *testing.T) {
		sentences := splitSentences("The value is 3.14 exactly. Next sentence.")
		assert.Len(t, sentences, 2)
	})

	t.Run("no trailing punctuation", func(t *testing.T) {
		sentences := splitSentences("第一句。没有结束标点的片段")
		require.Len(t, sentences, 2)
		assert.Equal(t, "没有结束标点的片段", sentences[1])
	})
}

// TestPercentile 测试百分位计算
func TestPercentile(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4}
	assert.InDelta(t, 0.4, percentile(values, 100), 1e-9)
	assert.InDelta(t, 0.1, percentile(values, 0), 1e-9)
	assert.InDelta(t, 0.25, percentile(values, 50), 1e-9)
	assert.Zero(t, percentile(nil, 95))
}

// TestCosineSimilarity 测试余弦相似度
func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 0}), "维度不一致返回0")
	assert.Zero(t, cosineSimilarity(nil, nil))
}
