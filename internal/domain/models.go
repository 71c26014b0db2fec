// Package domain contains the core domain models and types.
// These models represent the business logic contracts and are independent
// of any infrastructure concerns.
package domain

import (
	"strings"
	"time"
)

// QueryIntent is the AI processing mode selected by the user.
type QueryIntent int

const (
	// IntentUnknown is the zero value and never passes validation.
	IntentUnknown QueryIntent = iota
	IntentSummarize
	IntentExplainSimply
	IntentPointForm
)

// AllIntents lists every defined intent in display order.
func AllIntents() []QueryIntent {
	return []QueryIntent{IntentSummarize, IntentExplainSimply, IntentPointForm}
}

// IsValid checks if the intent is one of the defined values.
func (q QueryIntent) IsValid() bool {
	switch q {
	case IntentSummarize, IntentExplainSimply, IntentPointForm:
		return true
	default:
		return false
	}
}

// String returns the wire name of the intent.
func (q QueryIntent) String() string {
	switch q {
	case IntentSummarize:
		return "summarize"
	case IntentExplainSimply:
		return "eli5"
	case IntentPointForm:
		return "pointform"
	default:
		return "unknown"
	}
}

// ParseQueryIntent maps a user supplied name to an intent. Names are matched
// case-insensitively; "explain_simply" is accepted as an alias of "eli5".
// Unrecognized names return IntentUnknown and false.
func ParseQueryIntent(name string) (QueryIntent, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "summarize":
		return IntentSummarize, true
	case "eli5", "explain_simply", "explainsimply":
		return IntentExplainSimply, true
	case "pointform", "point_form":
		return IntentPointForm, true
	default:
		return IntentUnknown, false
	}
}

// AIRequest is the validated payload sent to the AI service.
type AIRequest struct {
	// FinalizedText is the prompt template followed by a blank line and the
	// document text.
	FinalizedText string
}

// AIOutcome is the uniform result of one AI processing call.
// ResponseText is meaningful only when Succeeded is true, ErrorMessage only
// when it is false.
type AIOutcome struct {
	Succeeded    bool
	ResponseText string
	ErrorMessage string
}

// SucceededWith builds a successful outcome.
func SucceededWith(text string) AIOutcome {
	return AIOutcome{Succeeded: true, ResponseText: text}
}

// FailedWith builds a failed outcome.
func FailedWith(message string) AIOutcome {
	return AIOutcome{Succeeded: false, ErrorMessage: message}
}

// UserProfile is the application-side profile of an authenticated user.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// FileTag is a label attached to an uploaded file by the tagging rules.
type FileTag struct {
	ID      string `json:"id"`
	TagName string `json:"tag_name"`
}

// FileRecord is the persisted metadata of an uploaded PDF.
type FileRecord struct {
	ID            string       `json:"id"`
	FileName      string       `json:"file_name"`
	ContentType   string       `json:"content_type"`
	FileSize      int64        `json:"file_size"`
	UploadedAt    time.Time    `json:"uploaded_at"`
	FileText      string       `json:"file_text,omitempty"`
	ContentSHA256 string       `json:"content_sha256"`
	UserProfileID string       `json:"user_profile_id"`
	UserProfile   *UserProfile `json:"uploader,omitempty"`
	Tags          []FileTag    `json:"tags"`
}

// TagNames returns the tag names of the record in stored order.
func (f *FileRecord) TagNames() []string {
	names := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		names = append(names, t.TagName)
	}
	return names
}

// TagMatch represents a match from the rule-based document tagging.
type TagMatch struct {
	// RuleID is the unique identifier of the matched rule.
	RuleID string

	// Tag is the label the rule assigns.
	Tag string

	// Confidence indicates how confident the rule match is (0.0 - 1.0).
	Confidence float64
}

// SortOrder selects how recent files are listed.
type SortOrder string

const (
	SortNameAsc      SortOrder = ""
	SortNameDesc     SortOrder = "name_desc"
	SortDateAsc      SortOrder = "Date"
	SortDateDesc     SortOrder = "date_desc"
	SortUploaderAsc  SortOrder = "Uploader"
	SortUploaderDesc SortOrder = "uploader_desc"
)

// ParseSortOrder returns the matching sort order. Unknown values fall back to
// ordering by file name.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortNameDesc, SortDateAsc, SortDateDesc, SortUploaderAsc, SortUploaderDesc:
		return SortOrder(s)
	default:
		return SortNameAsc
	}
}

// ProcessTextRequest is the body of POST /api/v1/ai/process.
type ProcessTextRequest struct {
	Text   string `json:"text"`
	Intent string `json:"intent"`
}

// ProcessFileRequest is the body of POST /api/v1/files/:id/ai.
type ProcessFileRequest struct {
	Intent string `json:"intent"`
}

// AIProcessResponse wraps an AI outcome for the HTTP API.
type AIProcessResponse struct {
	// Success indicates whether the AI call completed successfully.
	Success bool `json:"success"`

	// Response contains the AI text if successful.
	Response string `json:"response,omitempty"`

	// Error contains the user-facing message if the call failed.
	Error string `json:"error,omitempty"`

	// Intent echoes the requested processing mode.
	Intent string `json:"intent"`

	// FileID is set when the text came from a stored file.
	FileID string `json:"file_id,omitempty"`

	// ProcessedAt is the timestamp when the call completed.
	ProcessedAt time.Time `json:"processed_at"`
}

// UploadResponse is the body returned after an upload attempt.
type UploadResponse struct {
	Success   bool        `json:"success"`
	File      *FileRecord `json:"file,omitempty"`
	Duplicate bool        `json:"duplicate,omitempty"`
	Error     string      `json:"error,omitempty"`
}
