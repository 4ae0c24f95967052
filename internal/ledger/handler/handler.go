package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aidchain/internal/ledger/models"
	"aidchain/internal/platform/middleware"
	"aidchain/internal/transport/http/shared"
	"aidchain/pkg/domain"
	dErrors "aidchain/pkg/domain-errors"
)

// Service defines the interface for ledger operations.
type Service interface {
	Donate(ctx context.Context, caller domain.Account, amount domain.Amount) (models.DonationOutcome, error)
	AssignRecipients(ctx context.Context, caller domain.Account, unitID domain.UnitID, transferTeam, groundRelief, recipient domain.Account, location string) error
	GetAssignment(ctx context.Context, unitID domain.UnitID) (models.Assignment, error)
	DonorBalance(ctx context.Context, account domain.Account) (domain.Amount, error)
	PoolState(ctx context.Context) (models.PoolState, error)
	IsUnitIssued(ctx context.Context, unitID domain.UnitID) (bool, error)
}

// StatusReader is the read side of the delivery state machine the unit
// summary endpoint surfaces alongside issuance data.
type StatusReader interface {
	GetStatus(ctx context.Context, unitID domain.UnitID) (domain.DeliveryStatus, error)
}

// Handler handles donation and unit endpoints.
type Handler struct {
	logger    *slog.Logger
	ledger    Service
	status    StatusReader
	validator middleware.TokenValidator
}

// New creates a new ledger Handler.
func New(ledger Service, status StatusReader, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{logger: logger, ledger: ledger, status: status, validator: validator}
}

// Register registers the ledger routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/pool", h.handlePoolState)
	r.Get("/donors/{account}", h.handleDonorBalance)
	r.Get("/units/{id}", h.handleGetUnit)
	r.Get("/units/{id}/assignment", h.handleGetAssignment)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.validator, h.logger))
		r.Post("/donations", h.handleDonate)
		r.Post("/units/{id}/assignment", h.handleAssignRecipients)
	})
}

type donateRequest struct {
	Amount string `json:"amount"`
}

type donateResponse struct {
	DonorBalance string `json:"donor_balance"`
	PoolBalance  string `json:"pool_balance"`
	Issued       bool   `json:"issued"`
	UnitID       string `json:"unit_id,omitempty"`
}

func (h *Handler) handleDonate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req donateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	outcome, err := h.ledger.Donate(ctx, caller, amount)
	if err != nil {
		h.logger.WarnContext(ctx, "donation rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	resp := donateResponse{
		DonorBalance: outcome.DonorBalance.String(),
		PoolBalance:  outcome.PoolBalance.String(),
		Issued:       outcome.Issued,
	}
	if outcome.Issued {
		resp.UnitID = outcome.UnitID.String()
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

type assignRequest struct {
	TransferTeam string `json:"transfer_team"`
	GroundRelief string `json:"ground_relief"`
	Recipient    string `json:"recipient"`
	Location     string `json:"location"`
}

func (h *Handler) handleAssignRecipients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	unitID, err := domain.ParseUnitID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	transferTeam, err := domain.ParseAccount(req.TransferTeam)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	groundRelief, err := domain.ParseAccount(req.GroundRelief)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	recipient, err := domain.ParseAccount(req.Recipient)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	err = h.ledger.AssignRecipients(ctx, caller, unitID, transferTeam, groundRelief, recipient, req.Location)
	if err != nil {
		h.logger.WarnContext(ctx, "assignment rejected",
			"request_id", middleware.GetRequestID(ctx),
			"unit_id", unitID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignmentResponse struct {
	TransferTeam string `json:"transfer_team"`
	GroundRelief string `json:"ground_relief"`
	Recipient    string `json:"recipient"`
	Location     string `json:"location"`
}

func (h *Handler) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	unitID, err := domain.ParseUnitID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	assignment, err := h.ledger.GetAssignment(r.Context(), unitID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, assignmentResponse{
		TransferTeam: assignment.TransferTeam.String(),
		GroundRelief: assignment.GroundRelief.String(),
		Recipient:    assignment.Recipient.String(),
		Location:     assignment.Location,
	})
}

type unitResponse struct {
	UnitID string `json:"unit_id"`
	Issued bool   `json:"issued"`
	Status string `json:"status,omitempty"`
}

func (h *Handler) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	unitID, err := domain.ParseUnitID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	issued, err := h.ledger.IsUnitIssued(ctx, unitID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	resp := unitResponse{UnitID: unitID.String(), Issued: issued}
	if issued {
		status, err := h.status.GetStatus(ctx, unitID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		resp.Status = status.Label()
	}
	shared.WriteJSON(w, http.StatusOK, resp)
}

type poolStateResponse struct {
	CurrentBalance string `json:"current_balance"`
	Threshold      string `json:"threshold"`
	MinDonation    string `json:"min_donation"`
	NextUnitID     string `json:"next_unit_id"`
}

func (h *Handler) handlePoolState(w http.ResponseWriter, r *http.Request) {
	state, err := h.ledger.PoolState(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, poolStateResponse{
		CurrentBalance: state.CurrentBalance.String(),
		Threshold:      state.Threshold.String(),
		MinDonation:    state.MinDonation.String(),
		NextUnitID:     state.NextUnitID.String(),
	})
}

func (h *Handler) handleDonorBalance(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAccount(chi.URLParam(r, "account"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	balance, err := h.ledger.DonorBalance(r.Context(), account)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"account": account.String(),
		"balance": balance.String(),
	})
}
