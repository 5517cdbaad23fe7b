package ontology

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/panini/ontology-go/internal/logger"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unipdf/v3/extractor"
	pdfmodel "github.com/unidoc/unipdf/v3/model"
	"go.uber.org/zap"
)

// TextExtractor 按文档逻辑单元（页/段）提取文本，保持原始顺序
type TextExtractor interface {
	Extract(path string) ([]string, error)
	Supports(filename string) bool
}

// PDFExtractor PDF文本提取器，一页一个单元
type PDFExtractor struct{}

func (p *PDFExtractor) Supports(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".pdf"
}

func (p *PDFExtractor) Extract(path string) ([]string, error) {
	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf file: %w", err)
	}

	pdfReader, err := pdfmodel.NewPdfReader(bytes.NewReader(pdfBytes))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("get pdf page count: %w", err)
	}

	// 单页损坏跳过该页，剩余页照常提取
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			logger.Warn("pdf page skipped", zap.Int("page", i), zap.Error(err))
			continue
		}

		ex, err := extractor.New(page)
		if err != nil {
			logger.Warn("pdf page skipped", zap.Int("page", i), zap.Error(err))
			continue
		}

		text, err := ex.ExtractText()
		if err != nil {
			logger.Warn("pdf page skipped", zap.Int("page", i), zap.Error(err))
			continue
		}

		pages = append(pages, text)
	}

	return pages, nil
}

// WordExtractor Word文档提取器，一段一个单元
type WordExtractor struct{}

func (p *WordExtractor) Supports(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".docx"
}

func (p *WordExtractor) Extract(path string) ([]string, error) {
	docBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read docx file: %w", err)
	}

	readerAt := bytes.NewReader(docBytes)
	doc, err := document.Read(readerAt, int64(len(docBytes)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()

	var units []string
	for _, para := range doc.Paragraphs() {
		var textBuilder strings.Builder
		for _, run := range para.Runs() {
			textBuilder.WriteString(run.Text())
		}
		if text := textBuilder.String(); text != "" {
			units = append(units, text)
		}
	}

	return units, nil
}

// PlainTextExtractor 纯文本提取器，整个文件一个单元
type PlainTextExtractor struct{}

func (p *PlainTextExtractor) Supports(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".txt" || ext == ".md" || ext == ".markdown"
}

func (p *PlainTextExtractor) Extract(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}
	return []string{string(content)}, nil
}

// ExtractorManager 文本提取器管理器
type ExtractorManager struct {
	extractors []TextExtractor
}

// NewExtractorManager 创建文本提取器管理器
func NewExtractorManager() *ExtractorManager {
	return &ExtractorManager{
		extractors: []TextExtractor{
			&PDFExtractor{},
			&WordExtractor{},
			&PlainTextExtractor{},
		},
	}
}

// Extract 按文件类型提取有序单元文本
func (m *ExtractorManager) Extract(path string) ([]string, error) {
	name := filepath.Base(path)
	for _, ex := range m.extractors {
		if ex.Supports(name) {
			return ex.Extract(path)
		}
	}
	return nil, fmt.Errorf("unsupported file format: %s", name)
}
