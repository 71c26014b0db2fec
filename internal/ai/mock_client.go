// Package ai provides the AI client interface and implementations.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/file-intake/internal/domain"
	"go.uber.org/zap"
)

// MockTransport implements the Transport interface without network calls.
// It answers with a canned summary body so the interpreter and facade still
// run in mock mode.
type MockTransport struct {
	logger *zap.Logger
}

// NewMockTransport creates a new mock AI transport.
func NewMockTransport(logger *zap.Logger) *MockTransport {
	return &MockTransport{
		logger: logger.Named("mock_ai_transport"),
	}
}

// Send returns a mock response body for the intent.
func (c *MockTransport) Send(ctx context.Context, req domain.AIRequest, intent domain.QueryIntent) ([]byte, error) {
	if _, err := EndpointFor(intent); err != nil {
		return nil, err
	}

	c.logger.Debug("mock AI request",
		zap.String("intent", intent.String()),
		zap.Int("text_length", len(req.FinalizedText)),
	)

	// Drop the template so the preview shows document text.
	text := req.FinalizedText
	if idx := strings.Index(text, "\n\n"); idx != -1 {
		text = text[idx+2:]
	}
	preview := truncate(strings.Join(strings.Fields(text), " "), 160)

	var summary string
	switch intent {
	case domain.IntentExplainSimply:
		summary = fmt.Sprintf("This is a mock simple explanation. The document starts with: %s", preview)
	case domain.IntentPointForm:
		summary = fmt.Sprintf("- This is a mock point-form note\n- Document preview: %s", preview)
	default:
		summary = fmt.Sprintf("This is a mock summary. Enable the real AI service by setting AI_MOCK_MODE=false. Preview: %s", preview)
	}

	return json.Marshal(map[string]string{"summary": summary})
}

// HealthCheck always returns success for mock transport.
func (c *MockTransport) HealthCheck(ctx context.Context) error {
	return nil
}
