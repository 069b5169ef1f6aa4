package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestElementConstructors 测试元素构造函数
func TestElementConstructors(t *testing.T) {
	t.Run("title element", func(t *testing.T) {
		e := NewTitle("章节标题")
		assert.Equal(t, KindTitle, e.Kind)
		assert.Equal(t, "章节标题", e.Text)
		assert.True(t, e.IsTitle())
		assert.True(t, e.IsAnchor())
	})

	t.Run("table element", func(t *testing.T) {
		e := NewTable("a b", "<table><tr><td>a</td><td>b</td></tr></table>")
		assert.Equal(t, KindTable, e.Kind)
		assert.NotEmpty(t, e.Metadata.TextAsHTML)
		assert.False(t, e.IsAnchor())
	})

	t.Run("page break element", func(t *testing.T) {
		e := NewPageBreak()
		assert.Equal(t, KindPageBreak, e.Kind)
		assert.Empty(t, e.Text)
	})
}

// TestElementImmutability 测试WithText/WithMetadata返回副本而不修改原值
func TestElementImmutability(t *testing.T) {
	original := NewNarrativeText("原始文本")

	modified := original.WithText("新文本")
	assert.Equal(t, "原始文本", original.Text, "原始元素不应被修改")
	assert.Equal(t, "新文本", modified.Text)

	md := Metadata{Filetype: "pdf"}
	withMeta := original.WithMetadata(md)
	assert.Empty(t, original.Metadata.Filetype, "原始元数据不应被修改")
	assert.Equal(t, "pdf", withMeta.Metadata.Filetype)
}

// TestIsAnchor 测试锚点判断
func TestIsAnchor(t *testing.T) {
	assert.True(t, NewTitle("t").IsAnchor())
	assert.True(t, NewNarrativeText("n").IsAnchor())
	assert.False(t, NewListItem("i").IsAnchor())
	assert.False(t, NewTable("", "").IsAnchor())
	assert.False(t, NewPageBreak().IsAnchor())
}
