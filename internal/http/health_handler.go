package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// ReadyCheck reports whether a dependency can serve requests.
type ReadyCheck func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checks    map[string]ReadyCheck
	timeout   time.Duration
	responder responder
}

// NewHealthHandler constructs probe handlers. Each named check runs on /readyz.
func NewHealthHandler(checks map[string]ReadyCheck, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second, responder: newResponder(logger)}
}

// Live handles GET /healthz.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
}

// Ready handles GET /readyz.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check(ctx); err != nil {
			handlerLogger(ctx, h.responder.logger, "HealthHandler", "Ready").
				WarnContext(ctx, "readiness check failed", "check", name, "error", err)
			if resp.Failed == nil {
				resp.Failed = make(map[string]string)
			}
			resp.Failed[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	h.responder.writeJSON(ctx, w, status, resp)
}

type healthResponse struct {
	Status string            `json:"status"`
	Failed map[string]string `json:"failed,omitempty"`
}
