// Package cache provides the classification cache backends.
package cache

import (
	"errors"
	"time"

	"github.com/mikey/email-triage/internal/core"
)

// ErrNotFound is returned when a cache entry is missing or has expired
var ErrNotFound = errors.New("cache entry not found")

// Stopper is implemented by backends that own background work or connections
type Stopper interface {
	Stop()
}

// storedEntry is the serialized form used by backends that store bytes
type storedEntry struct {
	Category   string    `json:"category"`
	Confidence float64   `json:"confidence"`
	Reason     string    `json:"reason"`
	ModelUsed  string    `json:"model_used"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func toStored(e *core.CacheEntry) storedEntry {
	return storedEntry{
		Category:   string(e.Category),
		Confidence: e.Confidence,
		Reason:     e.Reason,
		ModelUsed:  e.ModelUsed,
		CreatedAt:  e.CreatedAt,
		ExpiresAt:  e.ExpiresAt,
	}
}

func (s storedEntry) toEntry(key string) *core.CacheEntry {
	return &core.CacheEntry{
		Key:        key,
		Category:   core.Category(s.Category),
		Confidence: s.Confidence,
		Reason:     s.Reason,
		ModelUsed:  s.ModelUsed,
		CreatedAt:  s.CreatedAt,
		ExpiresAt:  s.ExpiresAt,
	}
}
