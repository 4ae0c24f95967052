// Package service implements the identity registry: the administrator binds
// accounts to operational roles and declared locations, and everyone else
// reads them.
package service

import (
	"context"
	"log/slog"
	"sync"

	"aidchain/internal/identity/models"
	"aidchain/internal/identity/store"
	"aidchain/internal/platform/metrics"
	"aidchain/pkg/domain"
	dErrors "aidchain/pkg/domain-errors"
)

// Service owns all registry reads and writes. Writes are serialized by a
// single writer lock so the record upsert and the membership append commit
// as one logical step.
type Service struct {
	mu            sync.Mutex
	administrator domain.Account
	registry      store.RegistryStore
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(administrator domain.Account, registry store.RegistryStore, logger *slog.Logger, opts ...Option) (*Service, error) {
	if administrator.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "administrator account is required")
	}
	if registry == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "registry store is required")
	}
	svc := &Service{
		administrator: administrator,
		registry:      registry,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// RegisterRole sets the role record for an account and adds the account to
// the role's membership set on first registration under that role.
//
// Overwrite semantics are deliberate: re-registering an account under a
// different role replaces the live record without touching previously
// joined membership sets.
//
// Errors: CodeUnauthorized when the caller is not the administrator;
// CodeInvalidInput for a non-registrable role.
func (s *Service) RegisterRole(ctx context.Context, caller domain.Account, role domain.Role, account domain.Account, location string) error {
	if caller != s.administrator {
		return dErrors.New(dErrors.CodeUnauthorized, "only the administrator can register roles")
	}
	if !role.IsAssignable() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "role %s cannot be registered", role)
	}
	if account.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "account is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := models.RoleRecord{
		Account:    account,
		Identifier: models.IdentifierFor(account),
		Role:       role,
		Location:   location,
	}
	if err := s.registry.SaveRecord(ctx, record); err != nil {
		return err
	}
	if err := s.registry.AddMember(ctx, role, account); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RolesRegistered.WithLabelValues(role.String()).Inc()
	}
	s.logger.InfoContext(ctx, "role registered",
		"account", account.String(),
		"role", role.String(),
		"location", location,
	)
	return nil
}

// GetRole returns the account's current role, RoleNone for accounts the
// registry has never seen. Pure read, no failure path beyond storage.
func (s *Service) GetRole(ctx context.Context, account domain.Account) (domain.Role, error) {
	record, ok, err := s.registry.GetRecord(ctx, account)
	if err != nil {
		return domain.RoleNone, err
	}
	if !ok {
		return domain.RoleNone, nil
	}
	return record.Role, nil
}

// GetLocation returns the account's declared location, empty if unregistered.
func (s *Service) GetLocation(ctx context.Context, account domain.Account) (string, error) {
	record, ok, err := s.registry.GetRecord(ctx, account)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return record.Location, nil
}

// GetRecord returns the whole role record and whether one exists.
func (s *Service) GetRecord(ctx context.Context, account domain.Account) (models.RoleRecord, bool, error) {
	return s.registry.GetRecord(ctx, account)
}

// ListByRole returns the membership set snapshot in first-join order. Empty
// slice, never an error, when nothing is registered.
func (s *Service) ListByRole(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	return s.registry.ListMembers(ctx, role)
}
