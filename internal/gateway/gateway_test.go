package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rubentrancoso/energy-trade/internal/domain"
)

func TestPriceEndpointQuotesWithinRange(t *testing.T) {
	g := NewGateway()

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/price", nil)
		rec := httptest.NewRecorder()
		g.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var quote domain.PriceQuote
		if err := json.NewDecoder(rec.Body).Decode(&quote); err != nil {
			t.Fatalf("failed to decode quote: %v", err)
		}
		if quote.Value < 100 || quote.Value > 120 {
			t.Errorf("quote %v outside [100, 120]", quote.Value)
		}
		if quote.Unit != "USD/MWh" {
			t.Errorf("unexpected unit %q", quote.Unit)
		}
	}
}

func TestPriceEndpointConcurrentRequests(t *testing.T) {
	g := NewGateway()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				req := httptest.NewRequest(http.MethodGet, "/price", nil)
				rec := httptest.NewRecorder()
				g.Handler().ServeHTTP(rec, req)

				if rec.Code != http.StatusOK {
					t.Errorf("expected 200, got %d", rec.Code)
					return
				}
				var quote domain.PriceQuote
				if err := json.NewDecoder(rec.Body).Decode(&quote); err != nil {
					t.Errorf("failed to decode quote: %v", err)
					return
				}
				if quote.Value < 100 || quote.Value > 120 {
					t.Errorf("quote %v outside [100, 120]", quote.Value)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestStartStopsOnContextCancel(t *testing.T) {
	g := NewGateway()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Start(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("gateway did not stop on context cancellation")
	}
}

func TestAuditSinkRecordsEvents(t *testing.T) {
	g := NewGateway()

	ev := domain.AuditEvent{
		Source:    "order-service",
		Type:      domain.EventOrderCreated,
		Payload:   `{"orderId":"o1","marketPrice":101.50}`,
		Timestamp: time.Now(),
	}
	body, _ := json.Marshal(ev)
	req := httptest.NewRequest(http.MethodPost, "/audit", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/audit/view", nil)
	rec = httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	var events []domain.AuditEvent
	if err := json.NewDecoder(rec.Body).Decode(&events); err != nil {
		t.Fatalf("failed to decode audit view: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(events))
	}
	if events[0].Type != ev.Type || events[0].Payload != ev.Payload {
		t.Errorf("recorded event mismatch: %+v", events[0])
	}
}

func TestAuditSinkRejectsMalformedBody(t *testing.T) {
	g := NewGateway()

	req := httptest.NewRequest(http.MethodPost, "/audit", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestLogCollectorRoundTrip(t *testing.T) {
	g := NewGateway()

	entry := domain.LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     "INFO",
		Service:   "order-service",
		Message:   "order cancelled",
	}
	body, _ := json.Marshal(entry)
	req := httptest.NewRequest(http.MethodPost, "/log", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/log/view", nil)
	rec = httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, req)

	var entries []domain.LogEntry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("failed to decode log view: %v", err)
	}
	if len(entries) != 1 || entries[0].Message != entry.Message {
		t.Errorf("unexpected log view contents: %+v", entries)
	}
}

func TestRingEvictsOldestWhenFull(t *testing.T) {
	r := newRing[string](3)

	for i := 0; i < 5; i++ {
		r.Append(fmt.Sprintf("e%d", i))
	}
	if r.Len() != 3 {
		t.Fatalf("expected ring capped at 3, got %d", r.Len())
	}
	got := r.Snapshot()
	want := []string{"e2", "e3", "e4"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
