package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"aidchain/pkg/domain"
	"aidchain/pkg/platform/events"
	eventsmemory "aidchain/pkg/platform/events/store/memory"
)

func newFeedRouter(t *testing.T) (http.Handler, *events.Publisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	publisher := events.NewPublisher(eventsmemory.NewInMemoryStore(), logger)

	r := chi.NewRouter()
	New(publisher, logger).Register(r)
	return r, publisher
}

func TestEmptyStreamIsAnEmptyList(t *testing.T) {
	router, _ := newFeedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/events/issued", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Kind   string           `json:"kind"`
		Events []map[string]any `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Kind != "unit_issued" {
		t.Fatalf("expected kind unit_issued, got %q", resp.Kind)
	}
	if resp.Events == nil || len(resp.Events) != 0 {
		t.Fatalf("expected empty events list, got %v", resp.Events)
	}
}

func TestReplayWithRange(t *testing.T) {
	router, publisher := newFeedRouter(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		err := publisher.Emit(ctx, events.StatusChanged(domain.UnitID(i), "0x1000000000000000000000000000000000000001", domain.StatusInTransit))
		if err != nil {
			t.Fatalf("failed to emit: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/events/status?from=2&to=3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Events []struct {
			Seq    uint64 `json:"seq"`
			UnitID uint64 `json:"unit_id"`
		} `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Fatalf("expected 2 events in range, got %d", len(resp.Events))
	}
	if resp.Events[0].Seq != 2 || resp.Events[1].Seq != 3 {
		t.Fatalf("unexpected sequence range: %+v", resp.Events)
	}
}

func TestMalformedRangeIsBadRequest(t *testing.T) {
	router, _ := newFeedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/events/issued?from=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
