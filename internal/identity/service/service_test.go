package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"aidchain/internal/identity/store/memory"
	"aidchain/pkg/domain"
	dErrors "aidchain/pkg/domain-errors"
)

const (
	adminAccount = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	userAccount  = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	otherAccount = "0xcccccccccccccccccccccccccccccccccccccccc"
)

type RegistrySuite struct {
	suite.Suite
	store   *memory.InMemoryStore
	service *Service
	admin   domain.Account
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.store = memory.NewInMemoryStore()
	s.admin = domain.Account(adminAccount)

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	var err error
	s.service, err = New(s.admin, s.store, logger)
	s.Require().NoError(err)
}

func (s *RegistrySuite) TestNew() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	s.Run("zero administrator returns error", func() {
		_, err := New("", s.store, logger)
		s.Error(err)
	})

	s.Run("nil store returns error", func() {
		_, err := New(s.admin, nil, logger)
		s.Error(err)
	})
}

func (s *RegistrySuite) TestRegisterRole() {
	ctx := context.Background()
	account := domain.Account(userAccount)

	s.Run("non-administrator is rejected", func() {
		err := s.service.RegisterRole(ctx, account, domain.RoleTransporter, account, "FIJI")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		role, err := s.service.GetRole(ctx, account)
		s.NoError(err)
		s.Equal(domain.RoleNone, role)
	})

	s.Run("role none cannot be registered", func() {
		err := s.service.RegisterRole(ctx, s.admin, domain.RoleNone, account, "FIJI")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("administrator registers transporter", func() {
		err := s.service.RegisterRole(ctx, s.admin, domain.RoleTransporter, account, "FIJI")
		s.Require().NoError(err)

		role, err := s.service.GetRole(ctx, account)
		s.NoError(err)
		s.Equal(domain.RoleTransporter, role)

		location, err := s.service.GetLocation(ctx, account)
		s.NoError(err)
		s.Equal("FIJI", location)

		record, ok, err := s.service.GetRecord(ctx, account)
		s.NoError(err)
		s.True(ok)
		s.Equal("did:aidchain:"+userAccount, record.Identifier)
	})

	s.Run("double registration lists the account once", func() {
		err := s.service.RegisterRole(ctx, s.admin, domain.RoleTransporter, account, "FIJI")
		s.Require().NoError(err)
		err = s.service.RegisterRole(ctx, s.admin, domain.RoleTransporter, account, "PNG")
		s.Require().NoError(err)

		members, err := s.service.ListByRole(ctx, domain.RoleTransporter)
		s.NoError(err)
		s.Equal([]domain.Account{account}, members)

		// The later registration wins on the live record.
		location, err := s.service.GetLocation(ctx, account)
		s.NoError(err)
		s.Equal("PNG", location)
	})

	s.Run("re-registration under another role overwrites the record but keeps old membership", func() {
		err := s.service.RegisterRole(ctx, s.admin, domain.RoleTransporter, account, "FIJI")
		s.Require().NoError(err)
		err = s.service.RegisterRole(ctx, s.admin, domain.RoleRecipient, account, "FIJI")
		s.Require().NoError(err)

		role, err := s.service.GetRole(ctx, account)
		s.NoError(err)
		s.Equal(domain.RoleRecipient, role)

		transporters, err := s.service.ListByRole(ctx, domain.RoleTransporter)
		s.NoError(err)
		s.Contains(transporters, account)

		recipients, err := s.service.ListByRole(ctx, domain.RoleRecipient)
		s.NoError(err)
		s.Contains(recipients, account)
	})
}

func (s *RegistrySuite) TestReads() {
	ctx := context.Background()

	s.Run("unregistered account reads as role none with empty location", func() {
		role, err := s.service.GetRole(ctx, domain.Account(otherAccount))
		s.NoError(err)
		s.Equal(domain.RoleNone, role)

		location, err := s.service.GetLocation(ctx, domain.Account(otherAccount))
		s.NoError(err)
		s.Equal("", location)
	})

	s.Run("empty role set lists as empty, not error", func() {
		members, err := s.service.ListByRole(ctx, domain.RoleGroundRelief)
		s.NoError(err)
		s.Empty(members)
	})

	s.Run("membership preserves insertion order", func() {
		first := domain.Account(userAccount)
		second := domain.Account(otherAccount)
		s.Require().NoError(s.service.RegisterRole(ctx, s.admin, domain.RoleGroundRelief, first, "FIJI"))
		s.Require().NoError(s.service.RegisterRole(ctx, s.admin, domain.RoleGroundRelief, second, "SAMOA"))

		members, err := s.service.ListByRole(ctx, domain.RoleGroundRelief)
		s.NoError(err)
		s.Equal([]domain.Account{first, second}, members)
	})
}
