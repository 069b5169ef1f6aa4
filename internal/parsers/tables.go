package parsers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/fyerfyer/semantic-doc-parser/internal/cache"
	"github.com/fyerfyer/semantic-doc-parser/internal/element"
	"github.com/fyerfyer/semantic-doc-parser/internal/llm"
)

// semanticUnitsPrompt 表格逐行提取的系统指令
// 要求模型返回严格的JSON字符串数组，每个字符串描述一行记录
const semanticUnitsPrompt = `You will be given a table. Convert the table into a valid JSON array of natural language strings.
Do NOT include HTML.

Here is an example response to a table:

["Tutorial 1 with TA Donald Ipperciel is scheduled for Thursday from 4:30 PM to 5:15 PM in room VH 1018. You can join the Zoom session at https://yorku.zoom.us/j/98541900339.", "Tutorial 2 with TA Susan Cawley is scheduled for Thursday from 4:30 PM to 5:15 PM in room HNE 105. You can join the Zoom session at https://yorku.zoom.us/j/98541900339.", "Tutorial 3 with TA Susan Cawley is scheduled for Thursday from 5:30 PM to 6:15 PM in room VH 2005. You can join the Zoom session at https://yorku.zoom.us/j/98541900339."]

Now you try:`

// semanticSummaryPrompt 表格结构摘要的系统指令
// 返回的散文不做解析，按原样采信
const semanticSummaryPrompt = `You will be given a table.
The header cells may be in the first row, first column, both, or neither.

First, describe the table.
Then, determine the header cells, and use them to list the number of each item in the table.

Here is an example response for a table:

Tutorials are offered at different times in different locations.
There are 3 total tutorials, 2 different TAs, 3 times to meet, 3 rooms to meet, and 3 Zoom URLs.

Now you try:`

// TableParser 表格语义化阶段
// 每个表格展开为纯文本渲染、逐行语义单元和结构摘要三部分
type TableParser struct {
	llmClient llm.Client     // 大模型客户端
	cache     cache.Cache    // 可选的LLM响应缓存
	logger    *logrus.Logger // 日志记录器
}

// TableOption 表格阶段配置选项
type TableOption func(*TableParser)

// WithTableCache 设置LLM响应缓存
// 相同的表格HTML不会重复请求大模型
func WithTableCache(c cache.Cache) TableOption {
	return func(p *TableParser) {
		p.cache = c
	}
}

// WithTableLogger 设置日志记录器
func WithTableLogger(logger *logrus.Logger) TableOption {
	return func(p *TableParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewTableParser 创建表格语义化阶段
func NewTableParser(llmClient llm.Client, opts ...TableOption) *TableParser {
	p := &TableParser{
		llmClient: llmClient,
		logger:    logrus.New(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse 将表格元素展开为自然语言元素
// 全文档的表格派生任务一并发起；单个表格的单元提取失败只影响该表格，
// 其余错误（如LLM传输失败）向上传播并终止整个阶段
func (p *TableParser) Parse(ctx context.Context, elements []element.Element) ([]element.Element, error) {
	// 输出骨架：非表格元素直接占位，表格元素的槽位由并发任务填充
	slots := make([][]element.Element, len(elements))

	type tableTask struct {
		table  element.Element
		anchor *element.Element
		slot   int
	}

	var tasks []tableTask
	for idx, el := range elements {
		if el.Kind != element.KindTable {
			slots[idx] = []element.Element{el}
			continue
		}

		// 仅当前一个元素是标题或叙述文本时才作为语境锚点
		var anchor *element.Element
		if idx > 0 && elements[idx-1].IsAnchor() {
			prev := elements[idx-1]
			anchor = &prev
		}

		tasks = append(tasks, tableTask{table: el, anchor: anchor, slot: idx})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, task := range tasks {
		task := task
		wg.Add(1)
		go func() {
			defer wg.Done()

			expanded, err := p.ingestTable(ctx, task.table, task.anchor)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			slots[task.slot] = expanded
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	var nodes []element.Element
	for _, slot := range slots {
		nodes = append(nodes, slot...)
	}

	return nodes, nil
}

// ingestTable 对单个表格执行三种派生
// 输出顺序固定：纯文本渲染、逐行语义单元、结构摘要
func (p *TableParser) ingestTable(ctx context.Context, table element.Element, anchor *element.Element) ([]element.Element, error) {
	raw := element.NewNarrativeTextWithMetadata(
		stripHTMLTags(table.Metadata.TextAsHTML),
		table.Metadata,
	)

	// 单元提取与摘要互不依赖，并行请求
	var units []element.Element
	var summary []element.Element
	var unitsErr, summaryErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		units, unitsErr = p.extractUnits(ctx, table, anchor)
	}()
	go func() {
		defer wg.Done()
		summary, summaryErr = p.summarize(ctx, table, anchor)
	}()
	wg.Wait()

	if unitsErr != nil {
		return nil, unitsErr
	}
	if summaryErr != nil {
		return nil, summaryErr
	}

	nodes := make([]element.Element, 0, len(units)+2)
	nodes = append(nodes, raw)
	nodes = append(nodes, units...)
	nodes = append(nodes, summary...)

	return nodes, nil
}

// extractUnits 通过LLM将表格的每行转换为自然语言语义单元
// 响应不符合JSON数组约定时记录日志并返回空结果，不视为致命错误
func (p *TableParser) extractUnits(ctx context.Context, table element.Element, anchor *element.Element) ([]element.Element, error) {
	responseText, err := p.chat(ctx, semanticUnitsPrompt, table.Metadata.TextAsHTML)
	if err != nil {
		return nil, err
	}

	unitTexts, ok := p.parseUnitsResponse(responseText)
	if !ok {
		return []element.Element{}, nil
	}

	headerText := ""
	if anchor != nil {
		headerText = anchor.Text + "\n\n"
	}

	nodes := make([]element.Element, 0, len(unitTexts))
	for idx, unitText := range unitTexts {
		nodes = append(nodes, element.NewNarrativeTextWithMetadata(
			headerText+fmt.Sprintf("List Item %d: %s", idx+1, unitText),
			table.Metadata,
		))
	}

	return nodes, nil
}

// parseUnitsResponse 校验LLM的JSON响应
// 约定为字符串数组；解析失败或首元素非字符串均视为违约
func (p *TableParser) parseUnitsResponse(responseText string) ([]string, bool) {
	var unitTexts []string
	if err := json.Unmarshal([]byte(responseText), &unitTexts); err != nil {
		p.logger.WithFields(logrus.Fields{
			"response": responseText,
			"stack":    string(debug.Stack()),
		}).Error("Failed to parse a table: LLM returned invalid JSON")
		return nil, false
	}

	return unitTexts, true
}

// summarize 通过LLM生成表格的结构摘要
func (p *TableParser) summarize(ctx context.Context, table element.Element, anchor *element.Element) ([]element.Element, error) {
	responseText, err := p.chat(ctx, semanticSummaryPrompt, table.Metadata.TextAsHTML)
	if err != nil {
		return nil, err
	}

	headerText := ""
	if anchor != nil {
		headerText = anchor.Text + "\n"
	}

	return []element.Element{
		element.NewNarrativeTextWithMetadata(headerText+responseText, table.Metadata),
	}, nil
}

// chat 发送表格理解请求，命中缓存时跳过LLM调用
func (p *TableParser) chat(ctx context.Context, systemPrompt string, tableHTML string) (string, error) {
	cacheKey := ""
	if p.cache != nil {
		cacheKey = tableCacheKey(systemPrompt, tableHTML)
		if cached, found, err := p.cache.Get(cacheKey); err == nil && found {
			return cached, nil
		}
	}

	resp, err := p.llmClient.Chat(ctx, []llm.Message{
		llm.SystemMessage(systemPrompt),
		llm.UserMessage(tableHTML),
	})
	if err != nil {
		return "", err
	}

	if p.cache != nil {
		if err := p.cache.Set(cacheKey, resp.Text, 0); err != nil {
			p.logger.WithError(err).Warn("Failed to cache table response")
		}
	}

	return resp.Text, nil
}

// tableCacheKey 生成表格理解请求的缓存键
func tableCacheKey(systemPrompt string, tableHTML string) string {
	sum := sha256.Sum256([]byte(systemPrompt + "\x00" + tableHTML))
	return "table:" + hex.EncodeToString(sum[:])
}

// stripHTMLTags 去除HTML标记，保留单元格文本
// 行结束处换行，单元格之间以空格分隔
func stripHTMLTags(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	var b strings.Builder

	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			text := strings.TrimSpace(string(tokenizer.Text()))
			if text != "" {
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteString(" ")
				}
				b.WriteString(text)
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "tr" {
				b.WriteString("\n")
			}
		}
	}
}
