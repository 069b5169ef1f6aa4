package partition

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
)

// 短于该长度且无结束标点的独立行视为标题
const titleMaxRunes = 60

// PlainTextPartitioner 纯文本分区器
// 按空行分段，用简单启发式区分标题、列表项和叙述文本
type PlainTextPartitioner struct{}

// NewPlainTextPartitioner 创建新的纯文本分区器
func NewPlainTextPartitioner() Partitioner {
	return &PlainTextPartitioner{}
}

// Partition 从Reader解析纯文本内容
func (p *PlainTextPartitioner) Partition(r io.Reader, _ string) ([]element.Element, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read text content: %v", err)
	}

	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	var elements []element.Element
	// 换页符表示分页
	for pageIdx, pageText := range strings.Split(text, "\f") {
		if pageIdx > 0 {
			elements = append(elements, element.NewPageBreak())
		}

		for _, paragraph := range splitParagraphs(pageText) {
			elements = append(elements, classifyParagraph(paragraph)...)
		}
	}

	return elements, nil
}

// classifyParagraph 用启发式判断段落类型
func classifyParagraph(paragraph string) []element.Element {
	lines := strings.Split(paragraph, "\n")

	// 整段都是列表行时逐行产出列表项
	if allListLines(lines) {
		items := make([]element.Element, 0, len(lines))
		for _, line := range lines {
			items = append(items, element.NewListItem(trimListMarker(line)))
		}
		return items
	}

	if len(lines) == 1 && looksLikeTitle(lines[0]) {
		return []element.Element{element.NewTitle(strings.TrimSpace(lines[0]))}
	}

	return []element.Element{element.NewNarrativeText(strings.TrimSpace(paragraph))}
}

// looksLikeTitle 判断单行是否像标题：较短且不以句子标点结束
func looksLikeTitle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || utf8.RuneCountInString(line) > titleMaxRunes {
		return false
	}

	runes := []rune(line)
	return !strings.ContainsRune(".!?,;:。！？，；：", runes[len(runes)-1])
}

// allListLines 判断是否所有行都带列表标记
func allListLines(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "- ") && !strings.HasPrefix(trimmed, "* ") {
			return false
		}
	}
	return true
}

// trimListMarker 去掉行首的列表标记
func trimListMarker(line string) string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "- ")
	trimmed = strings.TrimPrefix(trimmed, "* ")
	return strings.TrimSpace(trimmed)
}

// splitParagraphs 按空行分段
func splitParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
