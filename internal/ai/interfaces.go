// Package ai provides the AI request pipeline: prompt templates, request
// building, the resilient HTTP transport and response interpretation.
package ai

import (
	"context"

	"github.com/file-intake/internal/domain"
)

// Transport defines the outbound call to the AI service.
// This interface allows for easy mocking and swapping of the transport.
type Transport interface {
	// Send posts the request to the endpoint for the intent and returns the
	// raw 2xx response body.
	Send(ctx context.Context, req domain.AIRequest, intent domain.QueryIntent) ([]byte, error)

	// HealthCheck verifies the AI service is reachable.
	HealthCheck(ctx context.Context) error
}

// Builder defines how validated AI requests are constructed.
type Builder interface {
	// Build validates the inputs and composes the finalized prompt.
	Build(text string, intent domain.QueryIntent) (domain.AIRequest, error)
}

// Interpreter defines how AI response bodies are parsed.
type Interpreter interface {
	// Interpret extracts the summary from a raw response body.
	Interpret(body []byte) (string, error)
}
