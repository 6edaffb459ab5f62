package core

import (
	"strings"
	"time"
)

// Category is the triage label assigned to an email
type Category string

const (
	// CategoryProductive marks emails that need an action or a substantive reply
	CategoryProductive Category = "Productive"
	// CategoryUnproductive marks greetings, thanks and other emails that need no action
	CategoryUnproductive Category = "Unproductive"
)

// ParseCategory maps a model-produced label to a Category. Matching is
// case-insensitive and accepts the Portuguese labels used in prompts.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "productive", "produtivo":
		return CategoryProductive, nil
	case "unproductive", "improdutivo":
		return CategoryUnproductive, nil
	default:
		return "", ErrInvalidCategory
	}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	return c == CategoryProductive || c == CategoryUnproductive
}

// Label returns the Portuguese label shown to end users and used in prompts
func (c Category) Label() string {
	switch c {
	case CategoryProductive:
		return "Produtivo"
	case CategoryUnproductive:
		return "Improdutivo"
	default:
		return string(c)
	}
}

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// Classification is the validated result of a classification call
type Classification struct {
	Category   Category
	Confidence float64
	Reason     string
	ModelUsed  string
	AnalyzedAt time.Time
	Cached     bool
}

// TriageRequest is the input of a triage run. Content holds raw text or HTML;
// FilePath, when set, points to an uploaded .txt or .pdf and takes precedence.
// Inline content is never interpreted as a file path, which network callers
// rely on.
type TriageRequest struct {
	Content  *string
	FilePath string
	Sender   string
	Inline   bool
}

// TriageResult is the output of a triage run
type TriageResult struct {
	ID            string        `json:"id"`
	Category      Category      `json:"category"`
	Label         string        `json:"label"`
	Confidence    float64       `json:"confidence"`
	Reason        string        `json:"reason"`
	Reply         string        `json:"reply"`
	ModelUsed     string        `json:"model_used"`
	Cached        bool          `json:"cached"`
	ProcessedText string        `json:"processed_text"`
	Duration      time.Duration `json:"duration_ns"`
}

// CacheEntry is a cached classification keyed by a hash of the normalized text
type CacheEntry struct {
	Key        string
	Category   Category
	Confidence float64
	Reason     string
	ModelUsed  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the entry is past its expiry at now
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// GenerationRequest carries a prompt and the sampling settings for one call
type GenerationRequest struct {
	Prompt      string
	Temperature float32
	TopP        float32
	TopK        int32
	MaxTokens   int
	// JSON asks the provider to constrain the output to a JSON object
	JSON bool
}
