package infra

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rubentrancoso/energy-trade/internal/domain"
)

func TestCurrentPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(domain.PriceQuote{Value: 104.25, Unit: "USD/MWh"})
	}))
	defer srv.Close()

	c := NewPricingClient(srv.URL, time.Second)
	quote, err := c.CurrentPrice(context.Background())
	if err != nil {
		t.Fatalf("CurrentPrice failed: %v", err)
	}
	if quote.Value != 104.25 || quote.Unit != "USD/MWh" {
		t.Errorf("unexpected quote: %+v", quote)
	}
}

func TestCurrentPriceUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewPricingClient(srv.URL, time.Second)
	_, err := c.CurrentPrice(context.Background())
	if err == nil {
		t.Fatal("expected error on 500 response")
	}
	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %T", err)
	}
	if upstream.Service != "pricing" {
		t.Errorf("expected pricing service tag, got %s", upstream.Service)
	}
}

func TestAuditClientPost(t *testing.T) {
	var received domain.AuditEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}
		json.NewDecoder(r.Body).Decode(&received)
	}))
	defer srv.Close()

	c := NewAuditClient(srv.URL, time.Second)
	ev := domain.AuditEvent{
		Source:    "order-service",
		Type:      domain.EventOrderCreated,
		Payload:   `{"orderId":"o1","marketPrice":100.00}`,
		Timestamp: time.Now(),
	}
	if err := c.Post(context.Background(), ev); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if received.Type != ev.Type || received.Payload != ev.Payload {
		t.Errorf("sink received wrong event: %+v", received)
	}
}

func TestAuditClientPostRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewAuditClient(srv.URL, time.Second)
	err := c.Post(context.Background(), domain.AuditEvent{Type: domain.EventOrderCreated})
	if err == nil {
		t.Fatal("expected error on 503 response")
	}
}

func TestNotificationClientSend(t *testing.T) {
	var received domain.Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
	}))
	defer srv.Close()

	c := NewNotificationClient(srv.URL, time.Second)
	n := domain.Notification{Target: "admin@energytrade.com", Message: "Order o1 cancelled"}
	if err := c.Send(context.Background(), n); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if received.Target != n.Target || received.Message != n.Message {
		t.Errorf("sink received wrong notification: %+v", received)
	}
}
