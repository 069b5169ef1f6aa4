package parsers

import (
	"context"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
	"github.com/fyerfyer/semantic-doc-parser/internal/splitter"
)

// elementGroup 以标题为界的元素分组
// 标题之间的元素属于不同的语义单元，分组边界是天然的语义边界
type elementGroup struct {
	titleNode element.Element   // 组的标题元素
	nodes     []element.Element // 标题之后、下一个标题之前的元素
}

// SemanticParser 语义分组与分割阶段
// 按标题分组后，将组内的叙述文本交给语义分割器细分
type SemanticParser struct {
	nodeSplitter   splitter.NodeSplitter // 语义分割器
	maxWorkers     int                   // 并行分割的最大工作线程数
	returnOriginal bool                  // 返回原始序列而非分割结果（兼容旧行为）
	logger         *logrus.Logger        // 日志记录器
}

// SemanticOption 语义分割阶段配置选项
type SemanticOption func(*SemanticParser)

// WithMaxWorkers 设置并行分割的最大工作线程数
func WithMaxWorkers(workers int) SemanticOption {
	return func(p *SemanticParser) {
		if workers > 0 {
			p.maxWorkers = workers
		}
	}
}

// WithReturnOriginal 设置是否返回原始输入序列
// 历史实现计算分割结果后返回了原始序列；该开关保留旧行为以便迁移，
// 默认关闭，即返回分割后的新序列
func WithReturnOriginal(enabled bool) SemanticOption {
	return func(p *SemanticParser) {
		p.returnOriginal = enabled
	}
}

// WithSemanticLogger 设置日志记录器
func WithSemanticLogger(logger *logrus.Logger) SemanticOption {
	return func(p *SemanticParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewSemanticParser 创建语义分组与分割阶段
func NewSemanticParser(nodeSplitter splitter.NodeSplitter, opts ...SemanticOption) *SemanticParser {
	p := &SemanticParser{
		nodeSplitter: nodeSplitter,
		maxWorkers:   4,
		logger:       logrus.New(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse 按标题分组并对叙述文本做语义分割
// 第一个标题之前的元素没有可用的语境锚点，会被丢弃
// 每个叙述文本只调用一次分割器；不同元素的分割并行执行，输出保持文档顺序
func (p *SemanticParser) Parse(ctx context.Context, elements []element.Element) ([]element.Element, error) {
	groups := createElementGroups(elements)

	// 收集所有需要分割的叙述文本，记录它们在输出中的槽位
	type splitTask struct {
		titleText string
		node      element.Element
		slot      int
	}

	// 输出骨架：每个槽位对应一个元素的展开结果
	var slots [][]element.Element
	var tasks []splitTask

	for _, group := range groups {
		for _, node := range group.nodes {
			slot := len(slots)
			if node.Kind == element.KindNarrativeText {
				slots = append(slots, nil)
				tasks = append(tasks, splitTask{titleText: group.titleNode.Text, node: node, slot: slot})
			} else {
				// 其他类型的元素本身就是独立语义单元，原样传递
				slots = append(slots, []element.Element{node})
			}
		}
	}

	// 并行执行分割任务，结果写入各自槽位
	wp := workerpool.New(p.maxWorkers)
	var mu sync.Mutex
	var firstErr error

	for _, task := range tasks {
		task := task
		wp.Submit(func() {
			subTexts, err := p.nodeSplitter.Split(ctx, task.node.Text)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}

			// 标题文本前置，保留子单元的来源语境
			split := make([]element.Element, 0, len(subTexts))
			for _, subText := range subTexts {
				split = append(split, element.NewNarrativeTextWithMetadata(
					task.titleText+"\n"+subText,
					task.node.Metadata,
				))
			}
			slots[task.slot] = split
		})
	}

	wp.StopWait()

	if firstErr != nil {
		return nil, firstErr
	}

	if p.returnOriginal {
		p.logger.Debug("Semantic split computed but returning original sequence")
		return elements, nil
	}

	var nodes []element.Element
	for _, slot := range slots {
		nodes = append(nodes, slot...)
	}

	return nodes, nil
}

// createElementGroups 以标题元素为界切分元素组
// 相邻标题产生只有标题没有内容的组，这是合法的
func createElementGroups(elements []element.Element) []elementGroup {
	var groups []elementGroup
	var current *elementGroup

	for _, el := range elements {
		if el.Kind == element.KindTitle {
			if current != nil {
				groups = append(groups, *current)
			}
			current = &elementGroup{titleNode: el}
		} else if current != nil {
			current.nodes = append(current.nodes, el)
		}
	}

	if current != nil {
		groups = append(groups, *current)
	}

	return groups
}
