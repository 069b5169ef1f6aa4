package parsers

import (
	"fmt"
	"strings"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
)

// ParseLists 将连续的列表项整合为语义单元
// 列表以整体和单项两种形式重新表达：整体节点便于回答"有哪些"，
// 单项节点便于回答针对具体条目的提问
// 分页符在分组前被过滤，不会出现在输出中
func ParseLists(elements []element.Element) []element.Element {
	var nodes []element.Element

	var headerNode *element.Element
	var listGroup []element.Element
	var lastNode *element.Element

	for _, el := range withoutPageBreaks(elements) {
		el := el

		if el.Kind == element.KindListItem {
			listGroup = append(listGroup, el)

			// 列表前若是文本或标题，则作为整组的语境头
			if lastNode != nil && lastNode.IsAnchor() {
				headerNode = lastNode
			}
		} else {
			nodes = append(nodes, el)

			// 列表组在遇到非列表元素时落盘
			if lastNode != nil && lastNode.Kind == element.KindListItem {
				nodes = append(nodes, consolidateListGroup(listGroup, headerNode)...)
				listGroup = nil
				headerNode = nil
			}
		}

		lastNode = &el
	}

	// 文档末尾的列表组同样需要落盘
	if len(listGroup) > 0 {
		nodes = append(nodes, consolidateListGroup(listGroup, headerNode)...)
	}

	return nodes
}

// consolidateListGroup 将一组列表项转换为语义单元
// 生成一个聚合节点和每项一个的独立节点，均带上语境头
func consolidateListGroup(items []element.Element, headerNode *element.Element) []element.Element {
	nodes := make([]element.Element, 0, len(items)+1)

	headerText := ""
	if headerNode != nil {
		headerText = headerNode.Text + "\n\n"
	}
	footerText := fmt.Sprintf(" There were %d items.", len(items))

	// 聚合节点：包含全部列表项
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item.Text)
	}
	nodes = append(nodes, element.NewNarrativeText(headerText+strings.Join(lines, "\n")+footerText))

	// 单项节点：每个列表项独立成文，继承原元数据
	for idx, item := range items {
		nodes = append(nodes, element.NewNarrativeTextWithMetadata(
			headerText+fmt.Sprintf("List Item #%d): ", idx+1)+item.Text,
			item.Metadata,
		))
	}

	return nodes
}

// withoutPageBreaks 过滤分页符
// 跨页的列表会被分页符截断，过滤后才能正确归组
func withoutPageBreaks(elements []element.Element) []element.Element {
	result := make([]element.Element, 0, len(elements))
	for _, el := range elements {
		if el.Kind == element.KindPageBreak {
			continue
		}
		result = append(result, el)
	}
	return result
}
