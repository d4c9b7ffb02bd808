// internal/extract/extract.go
// Package extract reads document files into plain text, dispatching on the
// file extension: plain read for text files, paragraph-joined extraction for
// word-processor documents, page-joined extraction for PDFs.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"

	"github.com/mwiater/ragmill/internal/logging"
)

// ErrUnsupported marks a file whose extension has no registered extractor.
var ErrUnsupported = errors.New("unsupported document format")

// Extensions lists the document extensions ingestion recognizes.
var Extensions = []string{".txt", ".md", ".doc", ".docx", ".pdf"}

// Supported reports whether path has a recognized document extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Text extracts the full text of the document at path.
func Text(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	case ".doc", ".docx":
		return wordText(path)
	case ".pdf":
		return pdfText(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
}

// wordText joins the document's paragraphs with newlines.
func wordText(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	doc, err := docx.Parse(file, info.Size())
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, p.String())
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

// pdfText joins the document's pages with newlines. A page whose text cannot
// be decoded is logged and skipped rather than failing the whole document.
func pdfText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logging.LogEvent("skipping unreadable page %d of %s: %v", i, path, err)
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}
