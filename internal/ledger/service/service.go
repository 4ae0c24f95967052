// Package service implements the donation ledger and issuance engine:
// pooled donations, deterministic unit issuance at the threshold, and the
// administrator's one-shot assignment of role holders to a unit.
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

// RoleReader is the slice of the identity registry the engine needs to
// validate assignment targets. Checked at call time, never cached.
type RoleReader interface {
	GetRole(ctx context.Context, account domain.Account) (domain.Role, error)
}

// Service owns every ledger mutation. The single writer lock serializes
// donors, and compound flows run inside a store transaction: a donation
// either commits its balance update together with any conditional issuance,
// or not at all.
type Service struct {
	mu            sync.Mutex
	administrator domain.Account
	threshold     domain.Amount
	minDonation   domain.Amount
	ledger        store.LedgerStore
	registry      RoleReader
	publisher     *events.Publisher
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(
	administrator domain.Account,
	threshold domain.Amount,
	minDonation domain.Amount,
	ledger store.LedgerStore,
	registry RoleReader,
	publisher *events.Publisher,
	logger *slog.Logger,
	opts ...Option,
) (*Service, error) {
	if administrator.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "administrator account is required")
	}
	if threshold.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "threshold must be positive")
	}
	if ledger == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "ledger store is required")
	}
	if registry == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "role reader is required")
	}
	if publisher == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event publisher is required")
	}
	svc := &Service{
		administrator: administrator,
		threshold:     threshold,
		minDonation:   minDonation,
		ledger:        ledger,
		registry:      registry,
		publisher:     publisher,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Donate credits the caller's lifetime balance, grows the pool, and issues
// a new aid unit the instant the pool reaches the threshold. Excess above
// the threshold is absorbed into the issued unit's backing; the pool
// restarts from exactly zero.
//
// The whole flow, including the issuance event append, runs inside one
// store transaction: a failure anywhere discards the balance credit, the
// cycle membership, and any issuance work together.
//
// Errors: CodeBelowMinimum when the amount is under the configured minimum;
// state is untouched on every failure path.
func (s *Service) Donate(ctx context.Context, caller domain.Account, amount domain.Amount) (models.DonationOutcome, error) {
	if amount.Cmp(s.minDonation) < 0 {
		return models.DonationOutcome{}, dErrors.Newf(dErrors.CodeBelowMinimum,
			"donation must be at least %s", s.minDonation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var outcome models.DonationOutcome
	err := s.ledger.WithTx(ctx, func(tx store.LedgerStore) error {
		donorBalance, err := tx.CreditDonor(ctx, caller, amount)
		if err != nil {
			return err
		}
		if err := tx.AddCycleDonor(ctx, caller); err != nil {
			return err
		}

		poolBalance, nextUnitID, err := tx.Pool(ctx)
		if err != nil {
			return err
		}
		poolBalance = poolBalance.Add(amount)

		outcome = models.DonationOutcome{DonorBalance: donorBalance, PoolBalance: poolBalance}
		if poolBalance.Cmp(s.threshold) < 0 {
			return tx.SetPool(ctx, poolBalance, nextUnitID)
		}

		// Threshold crossed: mint the unit, reset the pool, close the cycle.
		unit := models.AidUnit{ID: nextUnitID, Status: domain.StatusIssued}
		if err := tx.InsertUnit(ctx, unit); err != nil {
			return err
		}
		donors, err := tx.CycleDonors(ctx)
		if err != nil {
			return err
		}
		if err := tx.ClearCycleDonors(ctx); err != nil {
			return err
		}
		if err := tx.SetPool(ctx, domain.ZeroAmount(), nextUnitID+1); err != nil {
			return err
		}

		if err := s.publisher.Emit(ctx, events.UnitIssued(unit.ID, donors)); err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "aid unit issued",
			"unit_id", unit.ID.String(),
			"donors", len(donors),
		)

		outcome.PoolBalance = domain.ZeroAmount()
		outcome.Issued = true
		outcome.UnitID = unit.ID
		return nil
	})
	if err != nil {
		return models.DonationOutcome{}, err
	}

	if s.metrics != nil {
		s.metrics.DonationsReceived.Inc()
		if outcome.Issued {
			s.metrics.UnitsIssued.Inc()
		}
	}
	return outcome, nil
}

// AssignRecipients fills a unit's three role slots and location. The call
// validates each target against the registry at call time; a later
// re-registration does not retroactively invalidate an assignment.
// Calling again silently overwrites, matching the original deployment.
//
// Errors: CodeUnauthorized for a non-administrator caller; CodeUnknownUnit
// for an id never issued; CodeRoleMismatch when a target lacks the required
// role.
func (s *Service) AssignRecipients(
	ctx context.Context,
	caller domain.Account,
	unitID domain.UnitID,
	transferTeam, groundRelief, recipient domain.Account,
	location string,
) error {
	if caller != s.administrator {
		return dErrors.New(dErrors.CodeUnauthorized, "only the administrator can assign recipients")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.ledger.GetUnit(ctx, unitID)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.Newf(dErrors.CodeUnknownUnit, "unit %s was never issued", unitID)
	}

	if err := s.requireRole(ctx, transferTeam, domain.RoleTransporter, "transfer team"); err != nil {
		return err
	}
	if err := s.requireRole(ctx, groundRelief, domain.RoleGroundRelief, "ground relief"); err != nil {
		return err
	}
	if err := s.requireRole(ctx, recipient, domain.RoleRecipient, "recipient"); err != nil {
		return err
	}

	assignment := models.Assignment{
		TransferTeam: transferTeam,
		GroundRelief: groundRelief,
		Recipient:    recipient,
		Location:     location,
	}
	if err := s.ledger.UpdateAssignment(ctx, unitID, assignment); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.UnitsAssigned.Inc()
	}
	s.logger.InfoContext(ctx, "aid unit assigned",
		"unit_id", unitID.String(),
		"transfer_team", transferTeam.String(),
		"ground_relief", groundRelief.String(),
		"recipient", recipient.String(),
		"location", location,
	)
	return nil
}

func (s *Service) requireRole(ctx context.Context, account domain.Account, want domain.Role, slot string) error {
	role, err := s.registry.GetRole(ctx, account)
	if err != nil {
		return err
	}
	if role != want {
		return dErrors.Newf(dErrors.CodeRoleMismatch, "%s address must have %s role", slot, want)
	}
	return nil
}

// GetAssignment returns a unit's role slots, zero accounts when not yet
// assigned.
//
// Errors: CodeUnknownUnit for an id never issued, so callers can tell an
// unassigned unit from a nonexistent one.
func (s *Service) GetAssignment(ctx context.Context, unitID domain.UnitID) (models.Assignment, error) {
	unit, ok, err := s.ledger.GetUnit(ctx, unitID)
	if err != nil {
		return models.Assignment{}, err
	}
	if !ok {
		return models.Assignment{}, dErrors.Newf(dErrors.CodeUnknownUnit, "unit %s was never issued", unitID)
	}
	return models.Assignment{
		TransferTeam: unit.TransferTeam,
		GroundRelief: unit.GroundRelief,
		Recipient:    unit.Recipient,
		Location:     unit.Location,
	}, nil
}

// DonorBalance returns an account's cumulative lifetime donations.
func (s *Service) DonorBalance(ctx context.Context, account domain.Account) (domain.Amount, error) {
	return s.ledger.DonorBalance(ctx, account)
}

// PoolState returns the pool balance, counters, and immutable configuration.
func (s *Service) PoolState(ctx context.Context) (models.PoolState, error) {
	balance, nextUnitID, err := s.ledger.Pool(ctx)
	if err != nil {
		return models.PoolState{}, err
	}
	return models.PoolState{
		CurrentBalance: balance,
		Threshold:      s.threshold,
		MinDonation:    s.minDonation,
		NextUnitID:     nextUnitID,
	}, nil
}

// IsUnitIssued reports whether a unit id exists in the catalog.
func (s *Service) IsUnitIssued(ctx context.Context, unitID domain.UnitID) (bool, error) {
	_, ok, err := s.ledger.GetUnit(ctx, unitID)
	return ok, err
}

// Administrator returns the configured agency account.
func (s *Service) Administrator() domain.Account { return s.administrator }
