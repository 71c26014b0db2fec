package rules

import (
	"sort"

	"github.com/file-intake/internal/domain"
	"go.uber.org/zap"
)

// Engine applies tagging rules to document text.
type Engine struct {
	rules               []*Rule
	confidenceThreshold float64
	logger              *zap.Logger
}

// NewEngine creates a new rule engine with the provided configuration.
func NewEngine(rules []*Rule, confidenceThreshold float64, logger *zap.Logger) *Engine {
	return &Engine{
		rules:               rules,
		confidenceThreshold: confidenceThreshold,
		logger:              logger.Named("rule_engine"),
	}
}

// Analyze applies all rules to the text and returns matches.
func (e *Engine) Analyze(text string) []domain.TagMatch {
	var matches []domain.TagMatch

	for _, rule := range e.rules {
		if rule.Match(text) {
			e.logger.Debug("rule matched",
				zap.String("rule_id", rule.ID),
				zap.Float64("confidence", rule.Confidence),
			)

			matches = append(matches, domain.TagMatch{
				RuleID:     rule.ID,
				Tag:        rule.Tag,
				Confidence: rule.Confidence,
			})
		}
	}

	return matches
}

// Tags returns the tags of matches at or above the confidence threshold,
// highest confidence first, without duplicates.
func (e *Engine) Tags(text string) []string {
	matches := e.Analyze(text)

	kept := matches[:0]
	for _, m := range matches {
		if m.Confidence >= e.confidenceThreshold {
			kept = append(kept, m)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Confidence > kept[j].Confidence
	})

	seen := make(map[string]bool, len(kept))
	tags := make([]string, 0, len(kept))
	for _, m := range kept {
		if seen[m.Tag] {
			continue
		}
		seen[m.Tag] = true
		tags = append(tags, m.Tag)
	}

	return tags
}
