// Package ai provides the AI client interface and implementations.
package ai

import (
	"strings"

	"github.com/file-intake/internal/domain"
)

// RequestBuilder validates inputs and composes the outbound AI request.
type RequestBuilder struct {
	catalog *PromptCatalog
}

// NewRequestBuilder creates a request builder backed by the catalog.
func NewRequestBuilder(catalog *PromptCatalog) *RequestBuilder {
	return &RequestBuilder{catalog: catalog}
}

// Build checks the text first, then the intent, and only then joins the
// intent's template and the text with a blank line.
func (b *RequestBuilder) Build(text string, intent domain.QueryIntent) (domain.AIRequest, error) {
	if strings.TrimSpace(text) == "" {
		return domain.AIRequest{}, domain.WrapError(domain.KindValidation, "", domain.ErrInvalidPrompt, false)
	}

	if !intent.IsValid() {
		return domain.AIRequest{}, domain.WrapError(domain.KindValidation, "", domain.ErrInvalidQuery, false)
	}

	tmpl, err := b.catalog.Lookup(intent)
	if err != nil {
		return domain.AIRequest{}, err
	}

	return domain.AIRequest{FinalizedText: tmpl + "\n\n" + text}, nil
}
