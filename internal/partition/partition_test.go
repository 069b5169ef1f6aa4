package partition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
)

// TestDetectContentType 测试内容类型检测
func TestDetectContentType(t *testing.T) {
	assert.Equal(t, PDF, detectContentType("report.pdf"))
	assert.Equal(t, Markdown, detectContentType("README.md"))
	assert.Equal(t, Markdown, detectContentType("notes.markdown"))
	assert.Equal(t, HTML, detectContentType("page.html"))
	assert.Equal(t, PlainText, detectContentType("doc.txt"))
	assert.Equal(t, Unknown, detectContentType("archive.zip"))
}

// TestPartitionerFactory 测试分区器工厂
func TestPartitionerFactory(t *testing.T) {
	p, err := PartitionerFactory("doc.md")
	require.NoError(t, err)
	assert.IsType(t, &MarkdownPartitioner{}, p)

	_, err = PartitionerFactory("archive.zip")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

// TestMarkdownPartition 测试Markdown分区
func TestMarkdownPartition(t *testing.T) {
	content := `# 文档标题

这是第一段叙述文本。

- 列表项一
- 列表项二

| Name | Room |
|------|------|
| Tutorial 1 | VH 1018 |
`

	elements, err := NewMarkdownPartitioner().Partition(strings.NewReader(content), "doc.md")
	require.NoError(t, err)
	require.Len(t, elements, 5)

	assert.Equal(t, element.KindTitle, elements[0].Kind)
	assert.Equal(t, "文档标题", elements[0].Text)

	assert.Equal(t, element.KindNarrativeText, elements[1].Kind)
	assert.Equal(t, "这是第一段叙述文本。", elements[1].Text)

	assert.Equal(t, element.KindListItem, elements[2].Kind)
	assert.Equal(t, "列表项一", elements[2].Text)
	assert.Equal(t, element.KindListItem, elements[3].Kind)

	assert.Equal(t, element.KindTable, elements[4].Kind)
	assert.Contains(t, elements[4].Metadata.TextAsHTML, "<table>")
	assert.Contains(t, elements[4].Metadata.TextAsHTML, "Tutorial 1")
}

// TestMarkdownPartitionLinks 测试链接偏移记录
func TestMarkdownPartitionLinks(t *testing.T) {
	content := `# Title

Click [here](http://x) now`

	elements, err := NewMarkdownPartitioner().Partition(strings.NewReader(content), "doc.md")
	require.NoError(t, err)
	require.Len(t, elements, 2)

	paragraph := elements[1]
	require.Len(t, paragraph.Metadata.Links, 1)

	link := paragraph.Metadata.Links[0]
	assert.Equal(t, "here", link.Text)
	assert.Equal(t, "http://x", link.URL)
	assert.Equal(t, "here", paragraph.Text[link.StartIndex:link.StartIndex+len(link.Text)],
		"偏移必须指向段落文本中的链接文本")
}

// TestMarkdownPartitionPageBreak 测试水平分割线转换为分页符
func TestMarkdownPartitionPageBreak(t *testing.T) {
	content := "第一页内容。\n\n---\n\n第二页内容。"

	elements, err := NewMarkdownPartitioner().Partition(strings.NewReader(content), "doc.md")
	require.NoError(t, err)
	require.Len(t, elements, 3)
	assert.Equal(t, element.KindPageBreak, elements[1].Kind)
}

// TestHTMLPartition 测试HTML分区
func TestHTMLPartition(t *testing.T) {
	content := `<html><body>
<h1>Page Title</h1>
<p>Some narrative <a href="http://x">here</a> now.</p>
<ul><li>item one</li><li>item two</li></ul>
<table><tr><td>cell</td></tr></table>
</body></html>`

	elements, err := NewHTMLPartitioner().Partition(strings.NewReader(content), "page.html")
	require.NoError(t, err)
	require.Len(t, elements, 5)

	assert.Equal(t, element.KindTitle, elements[0].Kind)
	assert.Equal(t, "Page Title", elements[0].Text)

	paragraph := elements[1]
	assert.Equal(t, element.KindNarrativeText, paragraph.Kind)
	require.Len(t, paragraph.Metadata.Links, 1)
	link := paragraph.Metadata.Links[0]
	assert.Equal(t, "http://x", link.URL)
	assert.Equal(t, "here", paragraph.Text[link.StartIndex:link.StartIndex+len(link.Text)])

	assert.Equal(t, element.KindListItem, elements[2].Kind)
	assert.Equal(t, "item one", elements[2].Text)

	table := elements[4]
	assert.Equal(t, element.KindTable, table.Kind)
	assert.Contains(t, table.Metadata.TextAsHTML, "<table>")
	assert.Equal(t, "cell", table.Text)
}

// TestPlainTextPartition 测试纯文本分区
func TestPlainTextPartition(t *testing.T) {
	content := "引言\n\n这是一段完整的叙述文本。\n\n- 要点一\n- 要点二\f第二页的内容。"

	elements, err := NewPlainTextPartitioner().Partition(strings.NewReader(content), "doc.txt")
	require.NoError(t, err)
	require.Len(t, elements, 6)

	assert.Equal(t, element.KindTitle, elements[0].Kind)
	assert.Equal(t, "引言", elements[0].Text)
	assert.Equal(t, element.KindNarrativeText, elements[1].Kind)
	assert.Equal(t, element.KindListItem, elements[2].Kind)
	assert.Equal(t, "要点一", elements[2].Text)
	assert.Equal(t, element.KindListItem, elements[3].Kind)
	assert.Equal(t, element.KindPageBreak, elements[4].Kind)
	assert.Equal(t, element.KindNarrativeText, elements[5].Kind)
}

// TestPlainTextPartitionEmpty 测试空文档
func TestPlainTextPartitionEmpty(t *testing.T) {
	elements, err := NewPlainTextPartitioner().Partition(strings.NewReader("   \n\n  "), "doc.txt")
	require.NoError(t, err)
	assert.Empty(t, elements)
}
