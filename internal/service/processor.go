// Package service contains the business logic layer.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/file-intake/internal/ai"
	"github.com/file-intake/internal/domain"
	"go.uber.org/zap"
)

// Processor orchestrates the AI processing pipeline. It is the only entry
// point callers use to run document text through the AI service.
type Processor struct {
	builder     ai.Builder
	transport   ai.Transport
	interpreter ai.Interpreter
	logger      *zap.Logger
}

// NewProcessor creates a new Processor with all dependencies.
func NewProcessor(
	builder ai.Builder,
	transport ai.Transport,
	interpreter ai.Interpreter,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		builder:     builder,
		transport:   transport,
		interpreter: interpreter,
		logger:      logger.Named("processor"),
	}
}

// Process runs text through the pipeline:
// 1. Build the request from the intent template
// 2. Send it to the AI service
// 3. Interpret the response body
// The first failure ends the pipeline and is reported in the outcome.
func (p *Processor) Process(ctx context.Context, text string, intent domain.QueryIntent) (outcome domain.AIOutcome) {
	startTime := time.Now()
	p.logger.Debug("starting AI processing",
		zap.String("intent", intent.String()),
		zap.Int("text_length", len(text)),
	)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("AI processing panicked", zap.Any("panic", r))
			outcome = domain.FailedWith(domain.UserMessage(fmt.Errorf("%v", r)))
		}
	}()

	// Step 1: Build the request
	req, err := p.builder.Build(text, intent)
	if err != nil {
		return p.fail(intent, err, startTime)
	}

	// Step 2: Send to the AI service
	body, err := p.transport.Send(ctx, req, intent)
	if err != nil {
		return p.fail(intent, err, startTime)
	}

	// Step 3: Interpret the response
	summary, err := p.interpreter.Interpret(body)
	if err != nil {
		return p.fail(intent, err, startTime)
	}

	p.logger.Info("AI processing completed",
		zap.String("intent", intent.String()),
		zap.Int("response_length", len(summary)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return domain.SucceededWith(summary)
}

// HealthCheck reports whether the AI service is reachable.
func (p *Processor) HealthCheck(ctx context.Context) error {
	return p.transport.HealthCheck(ctx)
}

func (p *Processor) fail(intent domain.QueryIntent, err error, startTime time.Time) domain.AIOutcome {
	kind := domain.KindOf(err)
	fields := []zap.Field{
		zap.String("intent", intent.String()),
		zap.String("kind", kind.String()),
		zap.Duration("duration", time.Since(startTime)),
		zap.Error(err),
	}
	if kind == domain.KindValidation {
		p.logger.Debug("AI request rejected", fields...)
	} else {
		p.logger.Error("AI processing failed", fields...)
	}
	return domain.FailedWith(domain.UserMessage(err))
}
