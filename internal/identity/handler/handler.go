package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aidchain/internal/identity/models"
	"aidchain/internal/platform/middleware"
	"aidchain/internal/transport/http/shared"
	"aidchain/pkg/domain"
	dErrors "aidchain/pkg/domain-errors"
)

// Service defines the interface for registry operations.
type Service interface {
	RegisterRole(ctx context.Context, caller domain.Account, role domain.Role, account domain.Account, location string) error
	GetRecord(ctx context.Context, account domain.Account) (models.RoleRecord, bool, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error)
}

// Handler handles registry endpoints.
type Handler struct {
	logger    *slog.Logger
	registry  Service
	validator middleware.TokenValidator
}

// New creates a new registry Handler.
func New(registry Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{logger: logger, registry: registry, validator: validator}
}

// Register registers the registry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/registry/roles", h.handleListByRole)
	r.Get("/registry/roles/{account}", h.handleGetRecord)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Post("/registry/roles", h.handleRegisterRole)
	})
}

type registerRoleRequest struct {
	Role     string `json:"role"`
	Account  string `json:"account"`
	Location string `json:"location"`
}

func (h *Handler) handleRegisterRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req registerRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	account, err := domain.ParseAccount(req.Account)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.registry.RegisterRole(ctx, caller, role, account, req.Location); err != nil {
		h.logger.WarnContext(ctx, "register role failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type roleRecordResponse struct {
	Account    string `json:"account"`
	Identifier string `json:"identifier"`
	Role       string `json:"role"`
	Location   string `json:"location"`
}

func (h *Handler) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAccount(chi.URLParam(r, "account"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, ok, err := h.registry.GetRecord(r.Context(), account)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if !ok {
		// Unregistered accounts read as role none with empty fields, the
		// same default the original registry exposed.
		record = models.RoleRecord{Account: account, Role: domain.RoleNone}
	}
	shared.WriteJSON(w, http.StatusOK, roleRecordResponse{
		Account:    record.Account.String(),
		Identifier: record.Identifier,
		Role:       record.Role.String(),
		Location:   record.Location,
	})
}

func (h *Handler) handleListByRole(w http.ResponseWriter, r *http.Request) {
	role, err := domain.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	accounts, err := h.registry.ListByRole(r.Context(), role)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]string, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, account.String())
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"role":     role.String(),
		"accounts": out,
	})
}
