package partition

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
)

// PDFPartitioner PDF文档分区器
// 使用pdfcpu提取每页文本，页与页之间插入分页符
type PDFPartitioner struct{}

// NewPDFPartitioner 创建一个新的PDF分区器
func NewPDFPartitioner() Partitioner {
	return &PDFPartitioner{}
}

// Partition 从Reader解析PDF内容
// pdfcpu的内容提取需要文件路径，因此先落盘到临时文件
func (p *PDFPartitioner) Partition(r io.Reader, _ string) ([]element.Element, error) {
	tmpDir, err := os.MkdirTemp("", "pdfcpu_extract_")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpFile := filepath.Join(tmpDir, "input.pdf")
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf content: %v", err)
	}
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp pdf: %v", err)
	}

	// 提取文本到临时目录，每页一个txt文件
	outDir := filepath.Join(tmpDir, "out")
	if err := os.Mkdir(outDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create extract dir: %v", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tmpFile, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract text from PDF: %v", err)
	}

	files, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted text dir: %v", err)
	}

	// 按文件名排序（页码顺序）
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})

	var elements []element.Element
	pageNumber := 0
	for _, f := range files {
		if !strings.HasSuffix(f.Name(), ".txt") {
			continue
		}
		pageData, err := os.ReadFile(filepath.Join(outDir, f.Name()))
		if err != nil {
			continue
		}

		pageText := strings.TrimSpace(string(pageData))
		if pageText == "" {
			continue
		}

		pageNumber++
		if pageNumber > 1 {
			elements = append(elements, element.NewPageBreak())
		}

		page := pageNumber
		for _, paragraph := range splitParagraphs(pageText) {
			elements = append(elements, element.NewNarrativeText(paragraph).
				WithMetadata(element.Metadata{PageNumber: &page}))
		}
	}

	return elements, nil
}
