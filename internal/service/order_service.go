package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rubentrancoso/energy-trade/internal/domain"
	"github.com/rubentrancoso/energy-trade/internal/infra"
)

const notificationTarget = "admin@energytrade.com"

// Matcher fills a freshly persisted PENDING order against the book.
type Matcher interface {
	Match(ctx context.Context, incoming *domain.Order) error
}

// CreateOrderRequest carries the caller-supplied fields of a new order.
type CreateOrderRequest struct {
	Side       string    `json:"side"`
	LimitPrice float64   `json:"limitPrice"`
	Volume     float64   `json:"volume"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// OrderService implements the order lifecycle: create (with synchronous
// matching), lookup, listing and cancellation.
//
// A single mutex serializes every mutation of order state (match, cancel,
// sweep), so concurrent requests can never double-spend the same
// counterpart volume. Reads go through unlocked.
type OrderService struct {
	mu        sync.Mutex
	store     domain.OrderRepository
	pricing   domain.PricingProvider
	matcher   Matcher
	publisher domain.EventPublisher
}

// NewOrderService creates the order lifecycle service.
func NewOrderService(store domain.OrderRepository, pricing domain.PricingProvider, matcher Matcher, publisher domain.EventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		pricing:   pricing,
		matcher:   matcher,
		publisher: publisher,
	}
}

// Create validates, prices and persists a new order, then matches it
// synchronously. The returned order carries its final post-matching state.
// Pricing failures abort the whole creation: there is no local fallback
// for the market price snapshot.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if req.Volume <= 0 {
		return nil, domain.ErrInvalidVolume
	}
	side := strings.ToUpper(req.Side)
	if side != domain.SideBuy && side != domain.SideSell {
		return nil, domain.ErrInvalidSide
	}

	quote, err := s.pricing.CurrentPrice(ctx)
	if err != nil {
		slog.Error("market price fetch failed, rejecting order", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", domain.ErrPricingUnavailable, err)
	}

	order := &domain.Order{
		Side:        side,
		LimitPrice:  req.LimitPrice,
		Volume:      req.Volume,
		Status:      domain.StatusPending,
		MarketPrice: quote.Value,
		CreatedAt:   time.Now(),
		ExpiresAt:   req.ExpiresAt,
	}
	if err := s.store.CreateOrder(order); err != nil {
		return nil, err
	}
	infra.GlobalMetrics.RecordOrderCreated()

	s.mu.Lock()
	matchErr := s.matcher.Match(ctx, order)
	s.mu.Unlock()
	if matchErr != nil {
		// The order is persisted; matching can be retriggered, so surface
		// the failure without undoing the creation.
		slog.Error("matching failed", slog.String("order_id", order.ID), slog.Any("error", matchErr))
		return nil, matchErr
	}

	s.publisher.PublishAudit(ctx, domain.AuditEvent{
		Source:    "order-service",
		Type:      domain.EventOrderCreated,
		Payload:   fmt.Sprintf(`{"orderId":%q,"marketPrice":%.2f}`, order.ID, order.MarketPrice),
		Timestamp: time.Now(),
	})
	s.publisher.PublishNotification(ctx, domain.Notification{
		Target:  notificationTarget,
		Message: fmt.Sprintf("New order created with ID %s", order.ID),
	})

	return order, nil
}

// Get returns the order with the given id.
func (s *OrderService) Get(id string) (*domain.Order, error) {
	order, err := s.store.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// List returns all orders, in store-defined sequence.
func (s *OrderService) List() ([]domain.Order, error) {
	return s.store.AllOrders()
}

// Cancel transitions a live order to CANCELLED. Orders already EXECUTED or
// CANCELLED are rejected; EXPIRED orders may still be cancelled explicitly.
func (s *OrderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.store.GetOrder(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if order.Status == domain.StatusExecuted || order.Status == domain.StatusCancelled {
		return nil, fmt.Errorf("%w: order %s is %s", domain.ErrInvalidState, order.ID, order.Status)
	}

	now := time.Now()
	order.Status = domain.StatusCancelled
	order.CancelledAt = &now
	if err := s.store.SaveOrder(order); err != nil {
		return nil, err
	}
	infra.GlobalMetrics.RecordOrderCancelled()

	s.publisher.PublishAudit(ctx, domain.AuditEvent{
		Source:    "order-service",
		Type:      domain.EventOrderCancelled,
		Payload:   fmt.Sprintf(`{"orderId":%q,"cancelledAt":%q}`, order.ID, now.Format(time.RFC3339)),
		Timestamp: now,
	})
	s.publisher.PublishNotification(ctx, domain.Notification{
		Target:  notificationTarget,
		Message: fmt.Sprintf("Order %s cancelled", order.ID),
	})

	slog.Info("order cancelled", slog.String("order_id", order.ID))
	return order, nil
}

// Lock exposes the mutation mutex to the background sweeper, which mutates
// order state outside the request path.
func (s *OrderService) Lock() *sync.Mutex {
	return &s.mu
}
