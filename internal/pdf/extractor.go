// Package pdf extracts plain text from uploaded PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/file-intake/internal/domain"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Extractor reads PDF bytes and returns their text content.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new PDF text extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{
		logger: logger.Named("pdf_extractor"),
	}
}

// Extract returns the text of every page, each followed by a blank line.
// Input the library cannot read yields domain.ErrUnreadablePDF.
func (e *Extractor) Extract(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", domain.ErrEmptyFile
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("pdf parser panicked", zap.Any("panic", r))
			text, err = "", fmt.Errorf("%w: %v", domain.ErrUnreadablePDF, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnreadablePDF, err)
	}

	pages := reader.NumPage()
	if pages == 0 {
		return "", fmt.Errorf("%w: document has no pages", domain.ErrUnreadablePDF)
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", domain.ErrUnreadablePDF, i, err)
		}
		sb.WriteString(content)
		sb.WriteString("\n\n")
	}

	e.logger.Debug("pdf text extracted",
		zap.Int("pages", pages),
		zap.Int("text_length", sb.Len()),
	)

	return sb.String(), nil
}
