package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/rubentrancoso/energy-trade/internal/domain"
)

// Gateway bundles the order service's collaborators for local development
// and simulation: an external quote source, the pricing passthrough, the
// audit sink, the notification sink and the log collector. All of it is
// plain request/response plumbing around the matching core.
type Gateway struct {
	router *mux.Router
	audits *ring[domain.AuditEvent]
	logs   *ring[domain.LogEntry]
}

// NewGateway creates the collaborator suite.
func NewGateway() *Gateway {
	g := &Gateway{
		router: mux.NewRouter(),
		audits: newRing[domain.AuditEvent](1024),
		logs:   newRing[domain.LogEntry](4096),
	}
	g.setupRoutes()
	return g
}

// randomQuote draws a spot price between 100 and 120 USD/MWh, rounded to
// cents. The top-level rand functions are safe under concurrent handlers.
func randomQuote() domain.PriceQuote {
	raw := 100 + rand.Float64()*20
	price := decimal.NewFromFloat(raw).Round(2)
	value, _ := price.Float64()
	return domain.PriceQuote{Value: value, Unit: "USD/MWh"}
}

func (g *Gateway) setupRoutes() {
	g.router.HandleFunc("/external-price", g.handleExternalPrice).Methods("GET")
	g.router.HandleFunc("/price", g.handlePrice).Methods("GET")
	g.router.HandleFunc("/audit", g.handleAudit).Methods("POST")
	g.router.HandleFunc("/audit/view", g.handleAuditView).Methods("GET")
	g.router.HandleFunc("/notify", g.handleNotify).Methods("POST")
	g.router.HandleFunc("/log", g.handleLog).Methods("POST")
	g.router.HandleFunc("/log/view", g.handleLogView).Methods("GET")
}

// Handler returns the routed handler.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Start runs the gateway HTTP server until the context is cancelled.
func (g *Gateway) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      g.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("market gateway starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleExternalPrice simulates the upstream market feed.
func (g *Gateway) handleExternalPrice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, randomQuote())
}

// handlePrice is the pricing collaborator consumed by order creation. It
// quotes off the same source as /external-price.
func (g *Gateway) handlePrice(w http.ResponseWriter, r *http.Request) {
	quote := randomQuote()
	slog.Info("calculated price for trade",
		slog.Float64("value", quote.Value), slog.String("unit", quote.Unit))
	writeJSON(w, http.StatusOK, quote)
}

// handleAudit is the audit sink: it records the event and acks it.
func (g *Gateway) handleAudit(w http.ResponseWriter, r *http.Request) {
	var ev domain.AuditEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	g.audits.Append(ev)
	slog.Info("audit event received",
		slog.String("source", ev.Source), slog.String("type", ev.Type))
	writeJSON(w, http.StatusOK, ev)
}

func (g *Gateway) handleAuditView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, g.audits.Snapshot())
}

// handleNotify is the best-effort notification sink.
func (g *Gateway) handleNotify(w http.ResponseWriter, r *http.Request) {
	var n domain.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Info("notification sent",
		slog.String("target", n.Target), slog.String("message", n.Message))
	w.WriteHeader(http.StatusOK)
}

// handleLog accepts shipped log entries from the services.
func (g *Gateway) handleLog(w http.ResponseWriter, r *http.Request) {
	var entry domain.LogEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g.logs.Append(entry)
	w.WriteHeader(http.StatusOK)
}

func (g *Gateway) handleLogView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, g.logs.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
