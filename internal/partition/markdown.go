package partition

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
)

// MarkdownPartitioner Markdown文档分区器
// 基于语法树产出带类型的元素：标题、段落、列表项、表格和分页符
type MarkdownPartitioner struct{}

// NewMarkdownPartitioner 创建新的Markdown分区器
func NewMarkdownPartitioner() Partitioner {
	return &MarkdownPartitioner{}
}

// Partition 从Reader解析Markdown内容
func (p *MarkdownPartitioner) Partition(r io.Reader, _ string) ([]element.Element, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown content: %v", err)
	}

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)
	doc := mdParser.Parse(content)

	var elements []element.Element
	for _, node := range doc.GetChildren() {
		elements = append(elements, p.convertNode(node)...)
	}

	return elements, nil
}

// convertNode 将一个顶层语法树节点转换为元素
func (p *MarkdownPartitioner) convertNode(node ast.Node) []element.Element {
	switch n := node.(type) {
	case *ast.Heading:
		return []element.Element{element.NewTitle(collectText(n))}

	case *ast.Paragraph:
		text, links := renderInline(n)
		el := element.NewNarrativeText(text)
		if len(links) > 0 {
			el = el.WithMetadata(element.Metadata{Links: links})
		}
		return []element.Element{el}

	case *ast.List:
		var items []element.Element
		for _, child := range n.GetChildren() {
			if item, ok := child.(*ast.ListItem); ok {
				items = append(items, element.NewListItem(collectText(item)))
			}
		}
		return items

	case *ast.Table:
		renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
		tableHTML := strings.TrimSpace(string(markdown.Render(n, renderer)))
		return []element.Element{element.NewTable(collectText(n), tableHTML)}

	case *ast.HorizontalRule:
		// 水平分割线视为分页符
		return []element.Element{element.NewPageBreak()}

	default:
		return nil
	}
}

// collectText 收集子树的纯文本内容
func collectText(node ast.Node) string {
	var b strings.Builder

	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Literal)
		case *ast.Code:
			b.Write(v.Literal)
		case *ast.TableCell:
			if b.Len() > 0 {
				b.WriteString(" ")
			}
		}
		return ast.GoToNext
	})

	return strings.TrimSpace(b.String())
}

// renderInline 渲染段落的行内内容并记录链接偏移
// 链接偏移基于渲染后的段落文本，供元数据清理阶段内联使用
func renderInline(node ast.Node) (string, []element.Link) {
	var b strings.Builder
	var links []element.Link

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Literal)
		case *ast.Code:
			b.Write(v.Literal)
		case *ast.Link:
			start := b.Len()
			linkText := collectText(v)
			b.WriteString(linkText)
			links = append(links, element.Link{
				Text:       linkText,
				URL:        string(v.Destination),
				StartIndex: start,
			})
		default:
			for _, child := range n.GetChildren() {
				walk(child)
			}
		}
	}

	for _, child := range node.GetChildren() {
		walk(child)
	}

	return strings.TrimSpace(b.String()), links
}
