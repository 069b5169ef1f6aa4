package parsers

import (
	"fmt"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
)

// ParseMetadata 清理元素的噪声元数据并将超链接内联为自然语言
// 返回新构造的元素序列，不修改输入
//
// 已知限制：部分分区器不解析表格元素内的超链接
func ParseMetadata(elements []element.Element) []element.Element {
	result := make([]element.Element, 0, len(elements))

	for _, el := range elements {
		text := el.Text
		if len(el.Metadata.Links) > 0 {
			text = inlineLinks(text, el.Metadata.Links)
		}

		// 链接已内联，父级关联、文件类型、语言和页码对下游没有价值
		md := el.Metadata
		md.Links = nil
		md.ParentID = ""
		md.CategoryDepth = nil
		md.Filetype = ""
		md.Languages = nil
		md.PageNumber = nil

		result = append(result, el.WithText(text).WithMetadata(md))
	}

	return result
}

// inlineLinks 将链接URL以自然语言形式插入文本
// 链接偏移基于原始文本，changeDelta累计此前插入造成的位移
func inlineLinks(text string, links []element.Link) string {
	changeDelta := 0

	for _, link := range links {
		startIndex := link.StartIndex + changeDelta
		endIndex := startIndex + len(link.Text)

		if startIndex < 0 || endIndex > len(text) {
			continue
		}

		newText := fmt.Sprintf(" (The link URL is %s)", link.URL)
		changeDelta += len(newText)
		text = text[:startIndex] + link.Text + newText + text[endIndex:]
	}

	return text
}
