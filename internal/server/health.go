package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// HealthChecker serves liveness and readiness probes for the assistant
// process. It starts out not ready; serve marks it ready once the MCP tools
// are registered.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext
	startedAt time.Time
}

// NewHealthChecker creates a HealthChecker. sc may be nil in tests.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	return &HealthChecker{sc: sc, startedAt: time.Now()}
}

// SetReady sets the readiness state.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the readiness state.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed.
type DetailedHealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks"`
	// Turns is the number of turns in the served conversation.
	Turns int `json:"turns"`
	// HasLastAction reports whether an update would have a target to search for.
	HasLastAction bool `json:"has_last_action"`
}

// checks evaluates readiness. status is the overall result; it is
// "shutting down" only when the process is ready but stopping.
func (h *HealthChecker) checks() (status string, checks map[string]string) {
	checks = map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	status = healthStatusOK

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		status = healthStatusNotReady
	}
	if h.sc != nil && h.sc.IsShutdown() {
		checks["shutdown"] = healthStatusShuttingDown
		if status == healthStatusOK {
			status = healthStatusShuttingDown
		}
	}
	return status, checks
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func statusCode(status string) int {
	if status == healthStatusOK {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// LivenessHandler serves /healthz. It always answers ok while the process runs.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.checks()
		if status != healthStatusOK {
			// Probes only distinguish ready from not ready.
			status = healthStatusNotReady
		}
		writeJSON(w, statusCode(status), HealthResponse{Status: status, Checks: checks})
	})
}

// DetailedHealthHandler serves /healthz/detailed, which adds uptime and the
// size of the served conversation to the readiness checks.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status, checks := h.checks()
		resp := DetailedHealthResponse{
			Status: status,
			Uptime: time.Since(h.startedAt).Truncate(time.Second).String(),
			Checks: checks,
		}
		if h.sc != nil {
			store := h.sc.Assistant().Store()
			resp.Turns = store.Len()
			resp.HasLastAction = store.LastAction() != nil
		}
		writeJSON(w, statusCode(status), resp)
	})
}

// RegisterHealthEndpoints registers the three probe endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}
