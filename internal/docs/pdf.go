// Package docs loads source documents for ingestion.
package docs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/saathi-ai/saathi/internal/core"
)

// PDFLoader loads PDF documents from a directory.
type PDFLoader struct{}

// NewPDFLoader creates a PDF document loader.
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// List returns the PDF files in dir, sorted by name so ingestion order is
// stable across runs.
func (l *PDFLoader) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read documents directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Load extracts the plain text of one PDF file.
func (l *PDFLoader) Load(path string) (core.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return core.Document{}, fmt.Errorf("open PDF %s: %w", path, err)
	}
	defer f.Close()

	b, err := r.GetPlainText()
	if err != nil {
		return core.Document{}, fmt.Errorf("extract text from %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(b); err != nil {
		return core.Document{}, fmt.Errorf("read text from %s: %w", path, err)
	}

	return core.Document{Source: filepath.Base(path), Text: buf.String()}, nil
}
