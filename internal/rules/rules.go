// Package rules provides rule-based document tagging.
// Rules run over extracted PDF text at upload time and attach labels such
// as "invoice" or "contract" to the stored file.
package rules

import (
	"regexp"
	"strings"
)

// Rule represents a single tagging rule.
type Rule struct {
	// ID is the unique identifier for this rule.
	ID string

	// Tag is the label stored on files matching this rule.
	Tag string

	// Description explains what this rule detects.
	Description string

	// Patterns are regex patterns to match against document text.
	Patterns []*regexp.Regexp

	// Keywords are simple string matches (case-insensitive).
	Keywords []string

	// MinKeywords is how many distinct keywords must appear when no pattern
	// matches. Zero means one.
	MinKeywords int

	// Confidence is the confidence level when this rule matches (0.0-1.0).
	Confidence float64
}

// Match checks if the text matches this rule.
func (r *Rule) Match(text string) bool {
	// Check regex patterns first; they are the stronger signal
	for _, pattern := range r.Patterns {
		if pattern.MatchString(text) {
			return true
		}
	}

	need := r.MinKeywords
	if need < 1 {
		need = 1
	}

	textLower := strings.ToLower(text)
	hits := 0
	for _, kw := range r.Keywords {
		if strings.Contains(textLower, strings.ToLower(kw)) {
			hits++
			if hits >= need {
				return true
			}
		}
	}

	return false
}

// DefaultRules returns the built-in set of document tagging rules.
func DefaultRules() []*Rule {
	return []*Rule{
		invoice(),
		receipt(),
		contract(),
		resume(),
		researchPaper(),
		meetingNotes(),
		medicalRecord(),
		financialStatement(),
	}
}

func invoice() *Rule {
	return &Rule{
		ID:          "invoice",
		Tag:         "invoice",
		Description: "Bills requesting payment for goods or services",
		Keywords:    []string{"invoice", "amount due", "bill to", "payment terms", "due date"},
		MinKeywords: 2,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)invoice\s*(no\.?|number|#)\s*[:#]?\s*[A-Z]*-?\d+`),
			regexp.MustCompile(`(?i)total\s+amount\s+due`),
		},
		Confidence: 0.9,
	}
}

func receipt() *Rule {
	return &Rule{
		ID:          "receipt",
		Tag:         "receipt",
		Description: "Proof of a completed purchase",
		Keywords:    []string{"receipt", "thank you for your purchase", "amount paid", "change due", "subtotal"},
		MinKeywords: 2,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(sales|payment)\s+receipt`),
			regexp.MustCompile(`(?i)receipt\s*(no\.?|number|#)`),
		},
		Confidence: 0.85,
	}
}

func contract() *Rule {
	return &Rule{
		ID:          "contract",
		Tag:         "contract",
		Description: "Agreements between parties",
		Keywords:    []string{"agreement", "hereinafter", "whereas", "governing law", "indemnif", "termination"},
		MinKeywords: 3,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)this\s+(\w+\s+)?agreement\s+is\s+(made|entered)`),
			regexp.MustCompile(`(?i)in\s+witness\s+whereof`),
		},
		Confidence: 0.9,
	}
}

func resume() *Rule {
	return &Rule{
		ID:          "resume",
		Tag:         "resume",
		Description: "Curricula vitae and job applications",
		Keywords:    []string{"work experience", "professional experience", "education", "skills", "references available"},
		MinKeywords: 3,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)curriculum\s+vitae`),
			regexp.MustCompile(`(?i)^\s*r[eé]sum[eé]\s*$`),
		},
		Confidence: 0.8,
	}
}

func researchPaper() *Rule {
	return &Rule{
		ID:          "research_paper",
		Tag:         "research paper",
		Description: "Academic and scientific publications",
		Keywords:    []string{"abstract", "introduction", "methodology", "related work", "conclusion", "references"},
		MinKeywords: 4,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bdoi:\s*10\.\d{4,9}/\S+`),
			regexp.MustCompile(`(?i)arxiv:\d{4}\.\d{4,5}`),
		},
		Confidence: 0.85,
	}
}

func meetingNotes() *Rule {
	return &Rule{
		ID:          "meeting_notes",
		Tag:         "meeting notes",
		Description: "Minutes and notes from meetings",
		Keywords:    []string{"attendees", "agenda", "action items", "minutes", "next meeting"},
		MinKeywords: 2,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)minutes\s+of\s+(the\s+)?meeting`),
			regexp.MustCompile(`(?i)action\s+items?\s*:`),
		},
		Confidence: 0.8,
	}
}

func medicalRecord() *Rule {
	return &Rule{
		ID:          "medical",
		Tag:         "medical",
		Description: "Clinical records, prescriptions and lab results",
		Keywords:    []string{"patient", "diagnosis", "prescription", "dosage", "lab results", "physician"},
		MinKeywords: 2,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)date\s+of\s+birth.*patient|patient.*date\s+of\s+birth`),
			regexp.MustCompile(`(?i)\b\d+\s?mg\b.*(daily|twice|once)`),
		},
		Confidence: 0.75,
	}
}

func financialStatement() *Rule {
	return &Rule{
		ID:          "financial_statement",
		Tag:         "financial statement",
		Description: "Balance sheets, income statements and bank statements",
		Keywords:    []string{"balance sheet", "income statement", "cash flow", "total assets", "liabilities", "opening balance", "closing balance"},
		MinKeywords: 2,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)statement\s+of\s+(financial\s+position|cash\s+flows|operations)`),
			regexp.MustCompile(`(?i)(bank|account)\s+statement`),
		},
		Confidence: 0.85,
	}
}
