package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/slot-availability/internal/availability"
)

type availabilityService interface {
	ParseReference(raw string) (time.Time, error)
	GetAvailabilities(ctx context.Context, reference time.Time) (availability.Availability, error)
}

// AvailabilityHandler serves the weekly availability mapping.
type AvailabilityHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

// NewAvailabilityHandler constructs the handler for GET /availabilities.
func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

// Get handles GET /availabilities?date=yyyy-MM-dd.
func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	raw := r.URL.Query().Get("date")
	logger := handlerLogger(ctx, h.logger, "AvailabilityHandler", "Get", "date", raw)

	reference, err := h.service.ParseReference(raw)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	result, err := h.service.GetAvailabilities(ctx, reference)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	body, err := json.Marshal(availabilitiesResponse{Availabilities: result})
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode availabilities", "error", err)
		h.responder.writeError(ctx, w, http.StatusInternalServerError, "internal", nil)
		return
	}
	body = append(body, '\n')

	etag := computeETag(body)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		logger.DebugContext(ctx, "availabilities not modified", "etag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.responder.writeBody(ctx, w, http.StatusOK, body)
}

type availabilitiesResponse struct {
	Availabilities availability.Availability `json:"availabilities"`
}
