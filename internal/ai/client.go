// Package ai provides the AI client interface and implementations.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/file-intake/internal/config"
	"github.com/file-intake/internal/domain"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// endpoints maps each intent to its path on the AI service.
var endpoints = map[domain.QueryIntent]string{
	domain.IntentSummarize:     "/summarize",
	domain.IntentExplainSimply: "/eli5",
	domain.IntentPointForm:     "/pointform",
}

// EndpointFor returns the AI service path for the intent.
func EndpointFor(intent domain.QueryIntent) (string, error) {
	path, ok := endpoints[intent]
	if !ok {
		return "", domain.WrapError(domain.KindConfiguration, "endpoint_lookup",
			fmt.Errorf("%w: %v", domain.ErrEndpointNotMapped, intent), false)
	}
	return path, nil
}

// aiRequestBody is the wire format expected by the AI service.
type aiRequestBody struct {
	Text string `json:"text"`
}

// HTTPTransport implements Transport over HTTP with retries and a circuit
// breaker shared by all callers.
type HTTPTransport struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryBase  time.Duration
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewHTTPTransport creates a transport for the configured AI service.
// An empty base URL is a configuration error.
func NewHTTPTransport(cfg *config.AIConfig, logger *zap.Logger) (*HTTPTransport, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: AI base URL is not configured", domain.ErrInvalidConfig)
	}

	named := logger.Named("ai_transport")
	threshold := uint32(cfg.BreakerThreshold)
	if threshold == 0 {
		threshold = 1
	}

	t := &HTTPTransport{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries: cfg.MaxRetries,
		retryBase:  cfg.RetryBaseDelay,
		logger:     named,
	}

	t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ai-service",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Only transient failures count against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !domain.IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			named.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return t, nil
}

// Send posts the request to the AI service and returns the raw 2xx body.
func (c *HTTPTransport) Send(ctx context.Context, req domain.AIRequest, intent domain.QueryIntent) ([]byte, error) {
	startTime := time.Now()

	path, err := EndpointFor(intent)
	if err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(aiRequestBody{Text: req.FinalizedText})
	if err != nil {
		return nil, domain.WrapError(domain.KindConnection, "marshal_request", err, false)
	}

	url := c.baseURL + path
	c.logger.Debug("sending AI request",
		zap.String("url", url),
		zap.String("intent", intent.String()),
		zap.Int("body_size", len(jsonBody)),
	)

	// Execute request with retry logic
	var body []byte
	var lastErr error
	var lastStatus *domain.AIError

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: base * 2^attempt
			backoff := c.backoff(attempt)
			c.logger.Debug("retrying AI request",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, domain.WrapError(domain.KindConnection, "context_cancelled", ctx.Err(), false)
			case <-time.After(backoff):
			}
		}

		body, lastErr = c.attempt(ctx, url, jsonBody)
		if lastErr == nil {
			break
		}

		var ae *domain.AIError
		if errors.As(lastErr, &ae) && ae.Kind == domain.KindStatus {
			lastStatus = ae
		}

		// Check if error is retryable
		if !domain.IsRetryable(lastErr) {
			break
		}
	}

	if lastErr != nil {
		// A breaker rejection after a failed status still reports the status.
		if errors.Is(lastErr, domain.ErrCircuitOpen) && lastStatus != nil {
			lastErr = lastStatus
		}
		c.logger.Warn("AI request failed",
			zap.String("intent", intent.String()),
			zap.String("kind", domain.KindOf(lastErr).String()),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(lastErr),
		)
		return nil, lastErr
	}

	c.logger.Debug("AI request completed",
		zap.String("intent", intent.String()),
		zap.Duration("duration", time.Since(startTime)),
	)

	return body, nil
}

func (c *HTTPTransport) backoff(attempt int) time.Duration {
	return c.retryBase * time.Duration(1<<uint(attempt))
}

// attempt runs one request through the circuit breaker.
func (c *HTTPTransport) attempt(ctx context.Context, url string, jsonBody []byte) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.executeRequest(ctx, url, jsonBody)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, domain.WrapError(domain.KindConnection, "circuit_open", domain.ErrCircuitOpen, false)
		}
		return nil, err
	}
	return result.([]byte), nil
}

// executeRequest performs a single HTTP request to the AI service.
func (c *HTTPTransport) executeRequest(ctx context.Context, url string, jsonBody []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, domain.WrapError(domain.KindConnection, "create_request", err, false)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.WrapError(domain.KindConnection, "context_cancelled", err, false)
		}
		return nil, domain.WrapError(domain.KindConnection, "http_request", err, true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.KindConnection, "read_response", err, true)
	}

	// The error body is ignored; only the status code is reported.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("AI service returned failure status",
			zap.Int("status", resp.StatusCode),
			zap.String("body_preview", truncate(string(body), 200)),
		)
		return nil, domain.StatusError(resp.StatusCode)
	}

	return body, nil
}

// HealthCheck verifies the AI service is reachable. An open breaker counts
// as unhealthy without touching the network.
func (c *HTTPTransport) HealthCheck(ctx context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return domain.WrapError(domain.KindConnection, "health_check", domain.ErrCircuitOpen, false)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.KindConnection, "health_check", err, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return domain.StatusError(resp.StatusCode)
	}

	return nil
}

// BreakerState reports the circuit breaker state for diagnostics.
func (c *HTTPTransport) BreakerState() string {
	return c.breaker.State().String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
