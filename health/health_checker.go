// Package health reports whether the front-end can serve its pages.
package health

import (
	"net/http"
	"time"

	"github.com/caremate/caremate-web/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store     interfaces.PageStore
	widget    interfaces.ChatWidget
	startedAt time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(store interfaces.PageStore, widget interfaces.ChatWidget, startedAt time.Time) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		store:     store,
		widget:    widget,
		startedAt: startedAt,
	}
}

// HealthCheck returns the status used by the /health endpoint.
// Pages work without chat, so a widget that is not ready only degrades the status.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	chatReady := h.widget.Ready()

	if chatReady {
		status = "healthy"
	} else {
		status = "degraded"
	}
	httpStatus = http.StatusOK

	data = map[string]any{
		"mounted_pages": h.store.Len(),
		"chat": map[string]any{
			"kind":  h.widget.Kind(),
			"ready": chatReady,
		},
	}

	return status, data, httpStatus
}

// StartedAt returns the time the server started
func (h *HealthCheckerImpl) StartedAt() time.Time {
	return h.startedAt
}
