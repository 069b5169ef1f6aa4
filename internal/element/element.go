package element

// Kind 元素类型标识
// 使用显式的类型标签代替运行时类型断言，便于穷举匹配
type Kind string

const (
	// KindTitle 标题元素
	KindTitle Kind = "title"
	// KindNarrativeText 叙述文本元素
	KindNarrativeText Kind = "narrative_text"
	// KindListItem 列表项元素
	KindListItem Kind = "list_item"
	// KindTable 表格元素
	KindTable Kind = "table"
	// KindPageBreak 分页符元素
	KindPageBreak Kind = "page_break"
	// KindUnknown 未知类型元素
	KindUnknown Kind = "unknown"
)

// Link 文本中的超链接描述
// StartIndex指向原始文本中链接文本的起始位置
type Link struct {
	Text       string `json:"text"`        // 链接显示文本
	URL        string `json:"url"`         // 链接地址
	StartIndex int    `json:"start_index"` // 链接文本在原文中的起始偏移
}

// Metadata 元素的附加元数据
// 各字段由分区器填充，部分字段在元数据清理阶段被清除
type Metadata struct {
	Links         []Link   `json:"links,omitempty"`          // 超链接列表
	TextAsHTML    string   `json:"text_as_html,omitempty"`   // 表格的HTML渲染
	ParentID      string   `json:"parent_id,omitempty"`      // 父元素ID
	CategoryDepth *int     `json:"category_depth,omitempty"` // 层级深度
	Filetype      string   `json:"filetype,omitempty"`       // 文件类型
	Languages     []string `json:"languages,omitempty"`      // 检测到的语言
	PageNumber    *int     `json:"page_number,omitempty"`    // 页码
}

// Element 文档元素
// 元素是不可变的值对象，各处理阶段返回新构造的元素而非修改共享实例
type Element struct {
	Kind     Kind     `json:"kind"`     // 元素类型
	Text     string   `json:"text"`     // 文本内容
	Metadata Metadata `json:"metadata"` // 元数据
}

// NewTitle 创建标题元素
func NewTitle(text string) Element {
	return Element{Kind: KindTitle, Text: text}
}

// NewNarrativeText 创建叙述文本元素
func NewNarrativeText(text string) Element {
	return Element{Kind: KindNarrativeText, Text: text}
}

// NewNarrativeTextWithMetadata 创建携带元数据的叙述文本元素
func NewNarrativeTextWithMetadata(text string, md Metadata) Element {
	return Element{Kind: KindNarrativeText, Text: text, Metadata: md}
}

// NewListItem 创建列表项元素
func NewListItem(text string) Element {
	return Element{Kind: KindListItem, Text: text}
}

// NewTable 创建表格元素
// html为表格的HTML渲染，存入元数据侧通道
func NewTable(text string, html string) Element {
	return Element{
		Kind: KindTable,
		Text: text,
		Metadata: Metadata{
			TextAsHTML: html,
		},
	}
}

// NewPageBreak 创建分页符元素
func NewPageBreak() Element {
	return Element{Kind: KindPageBreak}
}

// IsTitle 判断是否为标题元素
func (e Element) IsTitle() bool {
	return e.Kind == KindTitle
}

// IsNarrativeText 判断是否为叙述文本元素
func (e Element) IsNarrativeText() bool {
	return e.Kind == KindNarrativeText
}

// IsAnchor 判断元素能否作为后续内容的上下文锚点
// 只有标题和叙述文本可以为列表和表格提供语境
func (e Element) IsAnchor() bool {
	return e.Kind == KindTitle || e.Kind == KindNarrativeText
}

// WithText 返回替换文本后的元素副本
func (e Element) WithText(text string) Element {
	e.Text = text
	return e
}

// WithMetadata 返回替换元数据后的元素副本
func (e Element) WithMetadata(md Metadata) Element {
	e.Metadata = md
	return e
}
