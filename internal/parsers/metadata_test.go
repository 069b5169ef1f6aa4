package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
)

// TestParseMetadataInlinesLinks 测试超链接内联为自然语言
func TestParseMetadataInlinesLinks(t *testing.T) {
	el := element.NewNarrativeText("Click here now").WithMetadata(element.Metadata{
		Links: []element.Link{
			{Text: "here", URL: "http://x", StartIndex: 6},
		},
	})

	result := ParseMetadata([]element.Element{el})
	require.Len(t, result, 1)
	assert.Equal(t, "Click here (The link URL is http://x) now", result[0].Text)
	assert.Nil(t, result[0].Metadata.Links, "链接元数据在消费后必须清除")
}

// TestParseMetadataMultipleLinks 测试多个链接的偏移校正
// 后面的链接偏移基于原始文本，需要加上前面插入造成的位移
func TestParseMetadataMultipleLinks(t *testing.T) {
	el := element.NewNarrativeText("a b c").WithMetadata(element.Metadata{
		Links: []element.Link{
			{Text: "a", URL: "u", StartIndex: 0},
			{Text: "c", URL: "v", StartIndex: 4},
		},
	})

	result := ParseMetadata([]element.Element{el})
	require.Len(t, result, 1)
	assert.Equal(t, "a (The link URL is u) b c (The link URL is v)", result[0].Text)
}

// TestParseMetadataScrubsNoise 测试噪声元数据字段被清除
func TestParseMetadataScrubsNoise(t *testing.T) {
	depth := 2
	page := 3
	el := element.NewNarrativeText("正文内容").WithMetadata(element.Metadata{
		ParentID:      "parent-1",
		CategoryDepth: &depth,
		Filetype:      "pdf",
		Languages:     []string{"zh"},
		PageNumber:    &page,
		TextAsHTML:    "<table></table>",
	})

	result := ParseMetadata([]element.Element{el})
	require.Len(t, result, 1)

	md := result[0].Metadata
	assert.Empty(t, md.ParentID)
	assert.Nil(t, md.CategoryDepth)
	assert.Empty(t, md.Filetype)
	assert.Nil(t, md.Languages)
	assert.Nil(t, md.PageNumber)
	assert.Equal(t, "<table></table>", md.TextAsHTML, "表格HTML渲染需要保留给表格阶段")
}

// TestParseMetadataDoesNotMutateInput 测试输入元素不被修改
func TestParseMetadataDoesNotMutateInput(t *testing.T) {
	input := []element.Element{
		element.NewNarrativeText("Click here now").WithMetadata(element.Metadata{
			Links: []element.Link{{Text: "here", URL: "http://x", StartIndex: 6}},
		}),
	}

	ParseMetadata(input)

	assert.Equal(t, "Click here now", input[0].Text, "原始元素文本不应被修改")
	assert.Len(t, input[0].Metadata.Links, 1, "原始元素链接不应被清除")
}

// TestParseMetadataNoLinks 测试没有链接的元素只做元数据清理
func TestParseMetadataNoLinks(t *testing.T) {
	input := []element.Element{
		element.NewTitle("标题"),
		element.NewNarrativeText("正文"),
	}

	result := ParseMetadata(input)
	require.Len(t, result, 2)
	assert.Equal(t, "标题", result[0].Text)
	assert.Equal(t, "正文", result[1].Text)
}
