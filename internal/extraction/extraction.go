// Package extraction turns uploaded documents into plain text ready for
// chunking and summarization.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFormat indicates a file type no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrExtractionFailed indicates the document could not be read.
	ErrExtractionFailed = errors.New("text extraction failed")
)

// maxDocumentBytes bounds how much of a document is read.
const maxDocumentBytes = 32 << 20

// Extractor extracts plain text from a document. The path may be a local
// file or an HTTP(S) URL; fileType is a hint like "txt" or "md" and may be
// empty, in which case the file extension decides.
type Extractor interface {
	Extract(ctx context.Context, path, fileType string) (string, error)
}

// TextExtractor handles plain-text and markdown documents.
type TextExtractor struct {
	client *http.Client
	logger *zap.Logger
}

// NewTextExtractor builds a TextExtractor.
func NewTextExtractor(logger *zap.Logger) *TextExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextExtractor{
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

var textFormats = map[string]bool{
	"txt":      true,
	"text":     true,
	"md":       true,
	"markdown": true,
}

// Extract reads a document and returns its preprocessed text.
func (e *TextExtractor) Extract(ctx context.Context, path, fileType string) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(fileType, "."))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	if !textFormats[format] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	raw, err := e.read(ctx, path)
	if err != nil {
		return "", err
	}

	text := Preprocess(string(raw))
	e.logger.Info("document text extracted",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("words", len(strings.Fields(text))))
	return text, nil
}

func (e *TextExtractor) read(ctx context.Context, path string) ([]byte, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
		}
		resp, err := e.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: download %s: %v", ErrExtractionFailed, path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: download %s: status %d", ErrExtractionFailed, path, resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: download %s: %v", ErrExtractionFailed, path, err)
		}
		return body, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrExtractionFailed, path, err)
	}
	return raw, nil
}

// Preprocess normalizes extracted text: runs of spaces collapse, lines
// within a paragraph join into one, and paragraphs separate with a single
// blank line.
func Preprocess(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = current[:0]
		}
	}
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			flush()
			continue
		}
		current = append(current, strings.Join(fields, " "))
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}
