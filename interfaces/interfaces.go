// Package interfaces defines core abstractions for the CareMate front-end
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"time"

	"github.com/caremate/caremate-web/chat"
	"github.com/caremate/caremate-web/forms"
	"github.com/caremate/caremate-web/session"
)

// PageStore defines the contract for page-local state storage.
// A visitor has at most one mounted page; mounting discards the previous one.
type PageStore interface {
	// Mount replaces the visitor's mounted page with state
	Mount(visitorID string, state forms.PageState) *session.Mount

	// Apply runs fn on the mounted state when visitor, route and token match
	// and returns a snapshot taken after fn
	Apply(visitorID, route, token string, fn func(forms.PageState) error) (*session.Mount, error)

	// Sweep drops visitors idle for longer than the store TTL
	Sweep() int

	// Len reports the number of visitors with a mounted page
	Len() int
}

// ChatWidget is the single capability the pages need from a chat integration
type ChatWidget interface {
	Kind() string
	Ready() bool
	Open() (chat.Launch, error)
}

// ChatProber is implemented by widgets whose readiness depends on a remote script
type ChatProber interface {
	Probe(ctx context.Context) error
}

// Scheduler defines the contract for background job scheduling.
type Scheduler interface {
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the status label, details and HTTP status code
	HealthCheck() (status string, details map[string]any, httpStatus int)

	// StartedAt returns the process start time
	StartedAt() time.Time
}
