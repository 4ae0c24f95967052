package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	deliveryservice "aidchain/internal/delivery/service"
	identityservice "aidchain/internal/identity/service"
	identitymemory "aidchain/internal/identity/store/memory"
	"aidchain/internal/jwtauth"
	ledgerservice "aidchain/internal/ledger/service"
	ledgermemory "aidchain/internal/ledger/store/memory"
	"aidchain/pkg/domain"
	"aidchain/pkg/platform/events"
	eventsmemory "aidchain/pkg/platform/events/store/memory"
)

const (
	adminAccount       = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	donorAccount       = "0xd000000000000000000000000000000000000001"
	transporterAccount = "0x1000000000000000000000000000000000000001"
	groundAccount      = "0x2000000000000000000000000000000000000002"
	recipientAccount   = "0x3000000000000000000000000000000000000003"
)

type fixture struct {
	router   http.Handler
	registry *identityservice.Service
	tokens   *jwtauth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	publisher := events.NewPublisher(eventsmemory.NewInMemoryStore(), logger)
	ledgerStore := ledgermemory.NewInMemoryStore()

	registry, err := identityservice.New(adminAccount, identitymemory.NewInMemoryStore(), logger)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}
	ledger, err := ledgerservice.New(
		adminAccount,
		domain.NewAmount(320000000000000000),
		domain.NewAmount(13000000000000000),
		ledgerStore, registry, publisher, logger,
	)
	if err != nil {
		t.Fatalf("failed to build ledger: %v", err)
	}
	delivery, err := deliveryservice.New(ledgerStore, publisher, logger)
	if err != nil {
		t.Fatalf("failed to build delivery: %v", err)
	}

	tokens := jwtauth.NewService("test-signing-key", "test-issuer", "test-audience")
	r := chi.NewRouter()
	New(ledger, delivery, logger, tokens).Register(r)
	return &fixture{router: r, registry: registry, tokens: tokens}
}

func (f *fixture) do(t *testing.T, method, path, account string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		token, err := f.tokens.GenerateAccessToken(domain.Account(account), time.Hour)
		if err != nil {
			t.Fatalf("failed to mint token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestDonateRequiresToken(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/donations", "", map[string]string{"amount": "400000000000000000"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestDonateBelowMinimum(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/donations", donorAccount, map[string]string{"amount": "1"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for donation below minimum, got %d", rec.Code)
	}
}

func TestDonateIssuesUnit(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/donations", donorAccount, map[string]string{"amount": "400000000000000000"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		DonorBalance string `json:"donor_balance"`
		PoolBalance  string `json:"pool_balance"`
		Issued       bool   `json:"issued"`
		UnitID       string `json:"unit_id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Issued || resp.UnitID != "0" {
		t.Fatalf("expected unit 0 issued, got issued=%v unit_id=%q", resp.Issued, resp.UnitID)
	}
	if resp.DonorBalance != "400000000000000000" {
		t.Fatalf("expected full donor balance retained, got %q", resp.DonorBalance)
	}
	if resp.PoolBalance != "0" {
		t.Fatalf("expected pool reset to zero, got %q", resp.PoolBalance)
	}

	rec = f.do(t, http.MethodGet, "/units/0", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching unit, got %d", rec.Code)
	}
	var unit struct {
		Issued bool   `json:"issued"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&unit); err != nil {
		t.Fatalf("failed to decode unit: %v", err)
	}
	if !unit.Issued || unit.Status != "Issued" {
		t.Fatalf("expected issued unit with status Issued, got %+v", unit)
	}
}

func TestPoolStateIsPublic(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/pool", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var pool struct {
		CurrentBalance string `json:"current_balance"`
		Threshold      string `json:"threshold"`
		MinDonation    string `json:"min_donation"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&pool); err != nil {
		t.Fatalf("failed to decode pool: %v", err)
	}
	if pool.Threshold != "320000000000000000" || pool.MinDonation != "13000000000000000" {
		t.Fatalf("unexpected pool configuration: %+v", pool)
	}
}

func TestAssignRecipients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for account, role := range map[string]domain.Role{
		transporterAccount: domain.RoleTransporter,
		groundAccount:      domain.RoleGroundRelief,
		recipientAccount:   domain.RoleRecipient,
	} {
		if err := f.registry.RegisterRole(ctx, adminAccount, role, domain.Account(account), "FIJI"); err != nil {
			t.Fatalf("failed to register %s: %v", account, err)
		}
	}
	if rec := f.do(t, http.MethodPost, "/donations", donorAccount, map[string]string{"amount": "400000000000000000"}); rec.Code != http.StatusOK {
		t.Fatalf("failed to seed unit: %d", rec.Code)
	}

	assign := map[string]string{
		"transfer_team": transporterAccount,
		"ground_relief": groundAccount,
		"recipient":     recipientAccount,
		"location":      "FIJI",
	}

	t.Run("non-administrator gets 403", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/units/0/assignment", donorAccount, assign)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("unknown unit gets 404", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/units/9/assignment", adminAccount, assign)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("role mismatch gets 422", func(t *testing.T) {
		bad := map[string]string{
			"transfer_team": donorAccount,
			"ground_relief": groundAccount,
			"recipient":     recipientAccount,
			"location":      "FIJI",
		}
		rec := f.do(t, http.MethodPost, "/units/0/assignment", adminAccount, bad)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("administrator assigns and reads back", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/units/0/assignment", adminAccount, assign)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = f.do(t, http.MethodGet, "/units/0/assignment", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got struct {
			TransferTeam string `json:"transfer_team"`
			Location     string `json:"location"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode assignment: %v", err)
		}
		if got.TransferTeam != transporterAccount || got.Location != "FIJI" {
			t.Fatalf("unexpected assignment: %+v", got)
		}
	})
}

func TestDonorBalanceRejectsMalformedAccount(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/donors/not-an-address", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
