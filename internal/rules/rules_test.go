package rules

import (
	"reflect"
	"regexp"
	"testing"

	"go.uber.org/zap"
)

func TestRule_Match(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name      string
		text      string
		wantMatch bool
		wantRule  string
	}{
		{
			name:      "invoice number",
			text:      "ACME Corp\nInvoice No: INV-2024-001\nWidgets x3",
			wantMatch: true,
			wantRule:  "invoice",
		},
		{
			name:      "invoice keywords",
			text:      "Bill To: Jane\nAmount due upon receipt of goods",
			wantMatch: true,
			wantRule:  "invoice",
		},
		{
			name:      "sales receipt",
			text:      "Corner Shop\nSales Receipt\nCoffee 3.50",
			wantMatch: true,
			wantRule:  "receipt",
		},
		{
			name:      "contract preamble",
			text:      "This Services Agreement is made on 1 May between the parties.",
			wantMatch: true,
			wantRule:  "contract",
		},
		{
			name:      "curriculum vitae",
			text:      "Curriculum Vitae\nJane Doe\nSoftware engineer",
			wantMatch: true,
			wantRule:  "resume",
		},
		{
			name:      "research paper sections",
			text:      "Abstract\nWe study X.\nIntroduction\n...\nMethodology\n...\nConclusion\n...",
			wantMatch: true,
			wantRule:  "research_paper",
		},
		{
			name:      "research paper doi",
			text:      "Published as doi: 10.1145/3290605.3300233",
			wantMatch: true,
			wantRule:  "research_paper",
		},
		{
			name:      "meeting minutes",
			text:      "Minutes of the meeting held on Tuesday\nAttendees: A, B",
			wantMatch: true,
			wantRule:  "meeting_notes",
		},
		{
			name:      "medical record",
			text:      "Patient: John Smith\nDiagnosis: seasonal flu",
			wantMatch: true,
			wantRule:  "medical",
		},
		{
			name:      "bank statement",
			text:      "First Bank\nBank Statement\nPeriod: March",
			wantMatch: true,
			wantRule:  "financial_statement",
		},
		{
			name:      "no match",
			text:      "The quick brown fox jumps over the lazy dog.",
			wantMatch: false,
		},
		{
			name:      "no match - single invoice keyword",
			text:      "We discussed the invoice notes process.",
			wantMatch: false,
		},
		{
			name:      "no match - single contract keyword",
			text:      "The agreement between us was verbal.",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var matched bool
			var matchedRuleID string

			for _, rule := range rules {
				if rule.Match(tt.text) {
					matched = true
					matchedRuleID = rule.ID
					break
				}
			}

			if matched != tt.wantMatch {
				t.Errorf("Match() = %v, want %v (rule %q)", matched, tt.wantMatch, matchedRuleID)
			}

			if tt.wantMatch && matchedRuleID != tt.wantRule {
				t.Errorf("Matched rule ID = %v, want %v", matchedRuleID, tt.wantRule)
			}
		})
	}
}

func TestEngine_Tags(t *testing.T) {
	engine := NewEngine(DefaultRules(), 0.8, zap.NewNop())

	text := "Invoice Number: 4471\nAccount Statement for March\nPatient: x\nDiagnosis: y"
	got := engine.Tags(text)
	want := []string{"invoice", "financial statement"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tags() = %v, want %v", got, want)
	}

	if tags := engine.Tags("nothing to see"); len(tags) != 0 {
		t.Errorf("Tags() = %v, want none", tags)
	}
}

func TestEngine_TagsDeduplicated(t *testing.T) {
	custom := []*Rule{
		{ID: "a", Tag: "report", Keywords: []string{"quarterly"}, Confidence: 0.7},
		{ID: "b", Tag: "report", Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)annual report`)}, Confidence: 0.9},
		{ID: "c", Tag: "summary", Keywords: []string{"overview"}, Confidence: 0.8},
	}
	engine := NewEngine(custom, 0.5, zap.NewNop())

	got := engine.Tags("Annual Report with quarterly overview")
	want := []string{"report", "summary"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tags() = %v, want %v", got, want)
	}

	if n := len(engine.Analyze("Annual Report with quarterly overview")); n != 3 {
		t.Errorf("Analyze() returned %d matches, want 3", n)
	}
}
