// Package ai provides the AI client interface and implementations.
package ai

import (
	"fmt"
	"strings"

	"github.com/file-intake/internal/domain"
)

// Default prompt templates. Versioned as code so they can be reviewed and
// tested; the document text is appended after a blank line.
const (
	summarizePrompt     = "You are a professional text evaluator. Please summarize the following:"
	explainSimplyPrompt = "Explain the following like I am 5 years old:"
	pointFormPrompt     = "Break the following document into point-form notes:"
)

// PromptCatalog maps each query intent to its prompt template.
// It is built once at startup and never mutated.
type PromptCatalog struct {
	templates map[domain.QueryIntent]string
}

// NewDefaultPromptCatalog creates a catalog with the built-in templates.
func NewDefaultPromptCatalog() *PromptCatalog {
	return &PromptCatalog{
		templates: map[domain.QueryIntent]string{
			domain.IntentSummarize:     summarizePrompt,
			domain.IntentExplainSimply: explainSimplyPrompt,
			domain.IntentPointForm:     pointFormPrompt,
		},
	}
}

// NewPromptCatalog creates a catalog from the defaults with overrides keyed
// by intent name (e.g. "summarize", "eli5"). Every intent must end up with a
// non-empty template.
func NewPromptCatalog(overrides map[string]string) (*PromptCatalog, error) {
	catalog := NewDefaultPromptCatalog()

	for name, tmpl := range overrides {
		intent, ok := domain.ParseQueryIntent(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown intent %q in prompt overrides", domain.ErrInvalidConfig, name)
		}
		tmpl = strings.TrimSpace(tmpl)
		if tmpl == "" {
			return nil, fmt.Errorf("%w: empty prompt override for %s", domain.ErrInvalidConfig, intent)
		}
		catalog.templates[intent] = tmpl
	}

	for _, intent := range domain.AllIntents() {
		if catalog.templates[intent] == "" {
			return nil, fmt.Errorf("%w: %v", domain.ErrPromptNotRegistered, intent)
		}
	}

	return catalog, nil
}

// Lookup returns the template for the intent. A missing template means the
// intent enumeration and the catalog are out of sync.
func (p *PromptCatalog) Lookup(intent domain.QueryIntent) (string, error) {
	tmpl, ok := p.templates[intent]
	if !ok {
		return "", domain.WrapError(domain.KindConfiguration, "prompt_lookup",
			fmt.Errorf("%w: %v", domain.ErrPromptNotRegistered, intent), false)
	}
	return tmpl, nil
}
