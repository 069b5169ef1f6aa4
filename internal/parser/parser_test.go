package parser

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
	"github.com/fyerfyer/semantic-doc-parser/internal/llm"
	"github.com/fyerfyer/semantic-doc-parser/internal/parsers"
)

// fakeClock 每次读取前进固定步长
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// passthroughSplitter 不切分，原文作为单个子节点返回
type passthroughSplitter struct {
	err error
}

func (s *passthroughSplitter) Split(_ context.Context, text string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{text}, nil
}

// stubLLM 固定应答：单元提取返回JSON数组，摘要返回散文
type stubLLM struct{}

func (stubLLM) Chat(_ context.Context, messages []llm.Message) (*llm.Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages")
	}
	if strings.Contains(messages[0].Content, "JSON array") {
		return &llm.Response{Text: `["Row one described."]`}, nil
	}
	return &llm.Response{Text: "A small table."}, nil
}

func (stubLLM) Name() string {
	return "stub"
}

func newTestParser(t *testing.T, partitionFn PartitionFunc, splitErr error) (*Parser, *fakeClock) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	clock := &fakeClock{now: time.Unix(0, 0), step: time.Second}
	semanticParser := parsers.NewSemanticParser(&passthroughSplitter{err: splitErr},
		parsers.WithSemanticLogger(logger))
	tableParser := parsers.NewTableParser(stubLLM{}, parsers.WithTableLogger(logger))

	return NewParser(semanticParser, tableParser,
		WithPartitionFunc(partitionFn),
		WithClock(clock),
		WithParserLogger(logger),
	), clock
}

// TestParseEmptyDocument 测试空文档直接短路
func TestParseEmptyDocument(t *testing.T) {
	p, _ := newTestParser(t, func(_ io.Reader, _ string) ([]element.Element, error) {
		return nil, nil
	}, nil)

	elements, stats, err := p.Parse(context.Background(), strings.NewReader(""), "empty.txt")
	require.NoError(t, err)
	assert.Empty(t, elements)

	assert.Equal(t, int64(1), stats.ElementParseTime)
	assert.Nil(t, stats.MetadataParseTime)
	assert.Nil(t, stats.ParagraphParseTime)
	assert.Nil(t, stats.ListParseTime)
	assert.Nil(t, stats.TableParseTime)
}

// TestParsePipeline 测试完整流水线
func TestParsePipeline(t *testing.T) {
	input := []element.Element{
		element.NewTitle("Schedule"),
		element.NewNarrativeText("Tutorials meet weekly."),
		element.NewListItem("A"),
		element.NewListItem("B"),
		element.NewTable("Name Room", "<table><tr><td>Name</td><td>Room</td></tr></table>"),
	}

	p, _ := newTestParser(t, func(_ io.Reader, _ string) ([]element.Element, error) {
		return input, nil
	}, nil)

	elements, stats, err := p.Parse(context.Background(), strings.NewReader("doc"), "doc.md")
	require.NoError(t, err)

	// 标题被消费为前缀，叙述文本带标题前缀，表格展开为三个节点，
	// 列表组在表格之后落盘
	require.Len(t, elements, 7)
	assert.Equal(t, "Schedule\nTutorials meet weekly.", elements[0].Text)
	assert.Equal(t, "Name Room", elements[1].Text)
	assert.Equal(t, "Schedule\nTutorials meet weekly.\n\nList Item 1: Row one described.", elements[2].Text)
	assert.Equal(t, "Schedule\nTutorials meet weekly.\nA small table.", elements[3].Text)
	assert.Contains(t, elements[4].Text, "There were 2 items.")
	assert.Contains(t, elements[5].Text, "List Item #1): A")
	assert.Contains(t, elements[6].Text, "List Item #2): B")

	// 每个阶段在假时钟下恰好一秒
	assert.Equal(t, int64(1), stats.ElementParseTime)
	require.NotNil(t, stats.MetadataParseTime)
	assert.Equal(t, int64(1), *stats.MetadataParseTime)
	require.NotNil(t, stats.ParagraphParseTime)
	assert.Equal(t, int64(1), *stats.ParagraphParseTime)
	require.NotNil(t, stats.ListParseTime)
	assert.Equal(t, int64(1), *stats.ListParseTime)
	require.NotNil(t, stats.TableParseTime)
	assert.Equal(t, int64(1), *stats.TableParseTime)
}

// TestParsePartitionError 测试分区失败传播
func TestParsePartitionError(t *testing.T) {
	p, _ := newTestParser(t, func(_ io.Reader, _ string) ([]element.Element, error) {
		return nil, errors.New("broken file")
	}, nil)

	_, _, err := p.Parse(context.Background(), strings.NewReader(""), "doc.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to partition document")
}

// TestParseSplitterError 测试切分能力失败传播
func TestParseSplitterError(t *testing.T) {
	input := []element.Element{
		element.NewTitle("Intro"),
		element.NewNarrativeText("Some narrative."),
	}

	p, _ := newTestParser(t, func(_ io.Reader, _ string) ([]element.Element, error) {
		return input, nil
	}, errors.New("embedding service down"))

	_, stats, err := p.Parse(context.Background(), strings.NewReader(""), "doc.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "semantic parse failed")

	// 失败阶段之后的耗时未记录
	assert.NotNil(t, stats.MetadataParseTime)
	assert.Nil(t, stats.ParagraphParseTime)
	assert.Nil(t, stats.ListParseTime)
	assert.Nil(t, stats.TableParseTime)
}
