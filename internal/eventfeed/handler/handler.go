// Package handler exposes the append-only event streams for replay. The UI
// polls these endpoints to build its audit and reporting views.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"aidchain/internal/transport/http/shared"
	dErrors "aidchain/pkg/domain-errors"
	"aidchain/pkg/platform/events"
)

// Stream defines the replay interface the feed serves.
type Stream interface {
	List(ctx context.Context, kind events.Kind, from, to uint64) ([]events.Record, error)
}

// Handler handles event replay endpoints.
type Handler struct {
	logger *slog.Logger
	stream Stream
}

// New creates a new event feed Handler.
func New(stream Stream, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, stream: stream}
}

// Register registers the event feed routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/events/issued", h.list(events.KindUnitIssued))
	r.Get("/events/status", h.list(events.KindStatusChanged))
}

func (h *Handler) list(kind events.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := seqParam(r, "from", 0)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		to, err := seqParam(r, "to", 0)
		if err != nil {
			shared.WriteError(w, err)
			return
		}

		records, err := h.stream.List(r.Context(), kind, from, to)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		if records == nil {
			records = []events.Record{}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]any{
			"kind":   string(kind),
			"events": records,
		})
	}
}

func seqParam(r *http.Request, name string, fallback uint64) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "malformed %s parameter", name)
	}
	return n, nil
}
