package partition

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
)

// HTMLPartitioner HTML文档分区器
type HTMLPartitioner struct{}

// NewHTMLPartitioner 创建新的HTML分区器
func NewHTMLPartitioner() Partitioner {
	return &HTMLPartitioner{}
}

// Partition 从Reader解析HTML内容
func (p *HTMLPartitioner) Partition(r io.Reader, _ string) ([]element.Element, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %v", err)
	}

	var elements []element.Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				if text := nodeText(n); text != "" {
					elements = append(elements, element.NewTitle(text))
				}
				return
			case "p":
				text, links := nodeTextWithLinks(n)
				if text != "" {
					el := element.NewNarrativeText(text)
					if len(links) > 0 {
						el = el.WithMetadata(element.Metadata{Links: links})
					}
					elements = append(elements, el)
				}
				return
			case "li":
				if text := nodeText(n); text != "" {
					elements = append(elements, element.NewListItem(text))
				}
				return
			case "table":
				var b strings.Builder
				if err := html.Render(&b, n); err == nil {
					elements = append(elements, element.NewTable(nodeText(n), b.String()))
				}
				return
			case "hr":
				elements = append(elements, element.NewPageBreak())
				return
			case "script", "style":
				return
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return elements, nil
}

// nodeText 收集节点子树的纯文本
func nodeText(n *html.Node) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				b.WriteString(text)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	return b.String()
}

// nodeTextWithLinks 收集段落文本并记录链接偏移
func nodeTextWithLinks(n *html.Node) (string, []element.Link) {
	var b strings.Builder
	var links []element.Link

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				b.WriteString(text)
			}
			return
		}

		if n.Type == html.ElementNode && n.Data == "a" {
			linkText := nodeText(n)
			if linkText != "" {
				start := b.Len()
				if b.Len() > 0 {
					start++ // 链接文本前会插入一个空格
				}
				if b.Len() > 0 {
					b.WriteString(" ")
				}
				b.WriteString(linkText)
				links = append(links, element.Link{
					Text:       linkText,
					URL:        attrValue(n, "href"),
					StartIndex: start,
				})
			}
			return
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	return b.String(), links
}

// attrValue 返回节点指定属性的值
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
