// Package extract reads uploaded PDF files into per-page text artifacts.
package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/readlingo/readlingo/internal/core"
)

// PDF implements core.Extractor for PDF documents.
type PDF struct{}

// NewPDF creates a PDF extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// Extract opens the PDF at path and returns its per-page text, full text, and
// document metadata. Pages are numbered sequentially from 1 in source order;
// pages without extractable text contribute an empty string, not a gap.
func (e *PDF) Extract(path string) (*core.Extraction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat PDF %s: %w", path, err)
	}

	reader, err := pdf.NewReader(file, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF %s: %w", path, err)
	}

	totalPages := reader.NumPage()
	pages := make([]core.Page, 0, totalPages)

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := reader.Page(pageNum)

		pageText := ""

		if !page.V.IsNull() {
			pageText, err = page.GetPlainText(nil)
			if err != nil {
				return nil, fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
			}
		}

		pages = append(pages, core.Page{
			PageNumber: pageNum,
			Text:       pageText,
			CharCount:  len(pageText),
		})
	}

	return BuildExtraction(pages, readMetadata(reader)), nil
}

// BuildExtraction assembles the extracted-text artifact from pages: full text
// is the page texts joined by blank lines and trimmed, with totals recomputed.
func BuildExtraction(pages []core.Page, metadata map[string]string) *core.Extraction {
	texts := make([]string, 0, len(pages))
	for _, page := range pages {
		texts = append(texts, page.Text)
	}

	fullText := strings.TrimSpace(strings.Join(texts, "\n\n"))

	if metadata == nil {
		metadata = map[string]string{}
	}

	return &core.Extraction{
		FullText:   fullText,
		Pages:      pages,
		Metadata:   metadata,
		TotalPages: len(pages),
		TotalChars: len(fullText),
	}
}

// readMetadata pulls string entries out of the document Info dictionary.
func readMetadata(reader *pdf.Reader) map[string]string {
	metadata := map[string]string{}

	info := reader.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return metadata
	}

	for _, key := range info.Keys() {
		value := info.Key(key)
		if value.Kind() == pdf.String {
			metadata[key] = value.Text()
		}
	}

	return metadata
}
