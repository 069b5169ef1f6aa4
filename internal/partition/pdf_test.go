package partition

import (
	"bytes"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/semantic-doc-parser/internal/element"
)

// createTestPDF 生成内存中的测试PDF，每个字符串一页
func createTestPDF(t *testing.T, pages ...string) []byte {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	for _, text := range pages {
		pdf.AddPage()
		pdf.MultiCell(0, 10, text, "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("Failed to write PDF: %v", err)
	}
	return buf.Bytes()
}

// TestPDFPartition 测试PDF分区
func TestPDFPartition(t *testing.T) {
	data := createTestPDF(t, "This is a PDF test.", "Second page content.")

	elements, err := NewPDFPartitioner().Partition(bytes.NewReader(data), "doc.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, elements)

	var sawPageBreak bool
	var pageTexts []string
	for _, el := range elements {
		switch el.Kind {
		case element.KindPageBreak:
			sawPageBreak = true
		case element.KindNarrativeText:
			require.NotNil(t, el.Metadata.PageNumber)
			pageTexts = append(pageTexts, el.Text)
		default:
			t.Fatalf("unexpected element kind: %s", el.Kind)
		}
	}

	assert.True(t, sawPageBreak, "多页PDF应产出分页符")
	require.Len(t, pageTexts, 2)
	assert.Contains(t, pageTexts[0], "PDF test")
	assert.Contains(t, pageTexts[1], "Second page")
}

// TestPDFPartitionInvalid 测试非PDF输入报错
func TestPDFPartitionInvalid(t *testing.T) {
	_, err := NewPDFPartitioner().Partition(bytes.NewReader([]byte("not a pdf")), "doc.pdf")
	assert.Error(t, err)
}
