package ports

import (
	"context"

	"github.com/mikey/email-triage/internal/core"
)

// Listener is a long-running inbound surface that feeds emails into triage
type Listener interface {
	// Name identifies the listener in logs
	Name() string

	// Start starts serving; it returns once the listener is accepting
	Start() error

	// Stop stops the listener and waits for in-flight work
	Stop(ctx context.Context) error
}

// Triager is the part of the triage service used by inbound surfaces
type Triager interface {
	Triage(ctx context.Context, req core.TriageRequest) (*core.TriageResult, error)
	Classify(ctx context.Context, req core.TriageRequest) (*core.Classification, error)
}
