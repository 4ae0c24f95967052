// Package service implements the delivery state machine. Each aid unit
// moves Issued -> InTransit -> Delivered -> Claimed, one direction only,
// and each step may be driven solely by the account on record for it.
package service

import (
	"context"
	"log/slog"
	"sync"

	"aidchain/internal/ledger/models"
	"aidchain/internal/ledger/store"
	"aidchain/internal/platform/metrics"
	"aidchain/pkg/domain"
	dErrors "aidchain/pkg/domain-errors"
	"aidchain/pkg/platform/events"
)

// Service drives unit status transitions. Status lives on the ledger's unit
// record so the ledger and the state machine can never disagree about a
// unit's existence. The single writer lock serializes callers; each
// transition's status write and audit event commit in one store transaction.
type Service struct {
	mu        sync.Mutex
	units     store.LedgerStore
	publisher *events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(units store.LedgerStore, publisher *events.Publisher, logger *slog.Logger, opts ...Option) (*Service, error) {
	if units == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unit store is required")
	}
	if publisher == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event publisher is required")
	}
	svc := &Service{units: units, publisher: publisher, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// MarkInTransit moves an Issued unit to InTransit. Only the assigned
// transfer team may call it; an unassigned unit is unreachable here because
// no caller can equal the zero account.
func (s *Service) MarkInTransit(ctx context.Context, caller domain.Account, unitID domain.UnitID) error {
	return s.transition(ctx, caller, unitID, transitionSpec{
		next:        domain.StatusInTransit,
		callerSlot:  func(u models.AidUnit) domain.Account { return u.TransferTeam },
		wrongCaller: "only the assigned transfer team can mark a unit in transit",
		from:        domain.StatusIssued,
		wrongState:  dErrors.New(dErrors.CodeAlreadyInTransit, "unit has already left the issued state"),
	})
}

// MarkDelivered moves an InTransit unit to Delivered. Only the assigned
// ground relief team may call it.
func (s *Service) MarkDelivered(ctx context.Context, caller domain.Account, unitID domain.UnitID) error {
	return s.transition(ctx, caller, unitID, transitionSpec{
		next:        domain.StatusDelivered,
		callerSlot:  func(u models.AidUnit) domain.Account { return u.GroundRelief },
		wrongCaller: "only the assigned ground relief team can mark a unit delivered",
		from:        domain.StatusInTransit,
		wrongState:  dErrors.New(dErrors.CodeMustBeInTransitFirst, "unit must be in transit first"),
	})
}

// Claim moves a Delivered unit to Claimed, the terminal state. Only the
// assigned recipient may call it.
func (s *Service) Claim(ctx context.Context, caller domain.Account, unitID domain.UnitID) error {
	return s.transition(ctx, caller, unitID, transitionSpec{
		next:        domain.StatusClaimed,
		callerSlot:  func(u models.AidUnit) domain.Account { return u.Recipient },
		wrongCaller: "only the assigned recipient can claim a unit",
		from:        domain.StatusDelivered,
		wrongState:  dErrors.New(dErrors.CodeMustBeDeliveredFirst, "unit must be delivered first"),
	})
}

type transitionSpec struct {
	next        domain.DeliveryStatus
	callerSlot  func(models.AidUnit) domain.Account
	wrongCaller string
	from        domain.DeliveryStatus
	wrongState  error
}

func (s *Service) transition(ctx context.Context, caller domain.Account, unitID domain.UnitID, spec transitionSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.units.WithTx(ctx, func(tx store.LedgerStore) error {
		unit, ok, err := tx.GetUnit(ctx, unitID)
		if err != nil {
			return err
		}
		if !ok {
			return dErrors.Newf(dErrors.CodeUnknownUnit, "unit %s was never issued", unitID)
		}

		slot := spec.callerSlot(unit)
		if slot.IsZero() || caller != slot {
			return dErrors.New(dErrors.CodeUnauthorized, spec.wrongCaller)
		}
		if unit.Status == domain.StatusClaimed {
			return dErrors.New(dErrors.CodeAlreadyClaimed, "unit has already been claimed")
		}
		if unit.Status != spec.from {
			return spec.wrongState
		}

		if err := tx.UpdateStatus(ctx, unitID, spec.next); err != nil {
			return err
		}
		return s.publisher.Emit(ctx, events.StatusChanged(unitID, caller, spec.next))
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(spec.next.Label()).Inc()
	}
	s.logger.InfoContext(ctx, "delivery status changed",
		"unit_id", unitID.String(),
		"actor", caller.String(),
		"new_status", spec.next.Label(),
	)
	return nil
}

// GetStatus returns a unit's current delivery status.
//
// Errors: CodeUnknownUnit for an id never issued.
func (s *Service) GetStatus(ctx context.Context, unitID domain.UnitID) (domain.DeliveryStatus, error) {
	unit, ok, err := s.units.GetUnit(ctx, unitID)
	if err != nil {
		return domain.StatusIssued, err
	}
	if !ok {
		return domain.StatusIssued, dErrors.Newf(dErrors.CodeUnknownUnit, "unit %s was never issued", unitID)
	}
	return unit.Status, nil
}

// GetStatusLabel returns the canonical display label for a unit's status.
func (s *Service) GetStatusLabel(ctx context.Context, unitID domain.UnitID) (string, error) {
	status, err := s.GetStatus(ctx, unitID)
	if err != nil {
		return "", err
	}
	return status.Label(), nil
}
