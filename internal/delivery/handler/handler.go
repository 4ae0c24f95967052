package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aidchain/internal/platform/middleware"
	"aidchain/internal/transport/http/shared"
	"aidchain/pkg/domain"
)

// Service defines the interface for delivery transitions and status reads.
type Service interface {
	MarkInTransit(ctx context.Context, caller domain.Account, unitID domain.UnitID) error
	MarkDelivered(ctx context.Context, caller domain.Account, unitID domain.UnitID) error
	Claim(ctx context.Context, caller domain.Account, unitID domain.UnitID) error
	GetStatus(ctx context.Context, unitID domain.UnitID) (domain.DeliveryStatus, error)
}

// Handler handles delivery state machine endpoints.
type Handler struct {
	logger    *slog.Logger
	delivery  Service
	validator middleware.TokenValidator
}

// New creates a new delivery Handler.
func New(delivery Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{logger: logger, delivery: delivery, validator: validator}
}

// Register registers the delivery routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/units/{id}/status", h.handleGetStatus)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Post("/units/{id}/transit", h.transition(Service.MarkInTransit))
		r.Post("/units/{id}/delivered", h.transition(Service.MarkDelivered))
		r.Post("/units/{id}/claim", h.transition(Service.Claim))
	})
}

func (h *Handler) transition(op func(Service, context.Context, domain.Account, domain.UnitID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller := middleware.GetCaller(ctx)

		unitID, err := domain.ParseUnitID(chi.URLParam(r, "id"))
		if err != nil {
			shared.WriteError(w, err)
			return
		}

		if err := op(h.delivery, ctx, caller, unitID); err != nil {
			h.logger.WarnContext(ctx, "transition rejected",
				"request_id", middleware.GetRequestID(ctx),
				"unit_id", unitID.String(),
				"error", err.Error(),
			)
			shared.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	unitID, err := domain.ParseUnitID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	status, err := h.delivery.GetStatus(r.Context(), unitID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"unit_id": unitID.String(),
		"status":  status.Label(),
	})
}
