package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/rubentrancoso/energy-trade/internal/domain"
	"github.com/rubentrancoso/energy-trade/internal/infra"
	"github.com/rubentrancoso/energy-trade/internal/service"
)

// Server exposes the order lifecycle over REST plus a websocket event feed.
type Server struct {
	orders *service.OrderService
	router *mux.Router
	hub    *Hub
	http   *http.Server
}

// NewServer creates the API server.
func NewServer(orders *service.OrderService) *Server {
	s := &Server{
		orders: orders,
		router: mux.NewRouter(),
		hub:    NewHub(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/orders", s.handleCreateOrder).Methods("POST")
	s.router.HandleFunc("/orders", s.handleListOrders).Methods("GET")
	s.router.HandleFunc("/orders/{id}", s.handleGetOrder).Methods("GET")
	s.router.HandleFunc("/orders/{id}", s.handleCancelOrder).Methods("DELETE")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
}

// Hub returns the websocket hub, so the publisher can fan audit events out
// to live subscribers.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	go s.hub.Run(ctx)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.http = &http.Server{
		Addr:         addr,
		Handler:      c.Handler(s.router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// Handler returns the routed handler, used directly in tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	order, err := s.orders.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	order, err := s.orders.Get(id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	order, err := s.orders.Cancel(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, infra.GlobalMetrics.Snapshot())
}

// ==============================
// Helper Functions
// ==============================

// respondServiceError maps the domain error taxonomy onto HTTP statuses:
// bad input and invalid transitions are 400, unknown ids 404, and a dead
// pricing collaborator 502 (the creation is never half-done).
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidVolume), errors.Is(err, domain.ErrInvalidSide):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		respondError(w, http.StatusBadRequest, "invalid_state", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrPricingUnavailable):
		respondError(w, http.StatusBadGateway, "pricing_unavailable", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code string, message string) {
	respondJSON(w, status, ErrorResponse{Error: code, Message: message})
}
