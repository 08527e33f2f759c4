package handlers

import (
	"math"
	"net/http"
	"runtime"
	"time"

	"github.com/caremate/caremate-web/forms"
	"github.com/caremate/caremate-web/interfaces"
)

// APIHandler serves the JSON endpoints
type APIHandler struct {
	health interfaces.HealthChecker
	widget interfaces.ChatWidget
}

// NewAPIHandler creates the JSON handler with injected dependencies
func NewAPIHandler(health interfaces.HealthChecker, widget interfaces.ChatWidget) *APIHandler {
	return &APIHandler{health: health, widget: widget}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// ChatStatus is the body of /api/chat/status
type ChatStatus struct {
	Kind  string `json:"kind"`
	Ready bool   `json:"ready"`
}

// Results serves the mock results the results page displays
func (h *APIHandler) Results(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, forms.MockResults())
}

// Ping is the short liveness answer of /api/health
func (h *APIHandler) Ping(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ChatStatus reports which chat widget is configured and whether it can open
func (h *APIHandler) ChatStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, ChatStatus{
		Kind:  h.widget.Kind(),
		Ready: h.widget.Ready(),
	})
}

// HealthCheck returns server health information
func (h *APIHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.health.HealthCheck()
	uptime := time.Since(h.health.StartedAt())

	RespondWithJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Uptime:        formatUptimeHuman(uptime),
		UptimeSeconds: math.Round(uptime.Seconds()),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	})
}
