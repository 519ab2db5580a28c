package domain

import (
	"context"
	"time"
)

// OrderRepository is the durable store of Order records.
type OrderRepository interface {
	CreateOrder(o *Order) error
	SaveOrder(o *Order) error
	// SaveOrders persists a batch inside one transaction so a match is
	// either fully recorded or not at all.
	SaveOrders(orders []*Order) error
	// GetOrder returns (nil, nil) when the id is unknown.
	GetOrder(id string) (*Order, error)
	AllOrders() ([]Order, error)
	// FindCounterparts returns orders of the given side whose limit price
	// crosses the given price (<= for SELL candidates, >= for BUY).
	FindCounterparts(side string, price float64) ([]Order, error)
	FindExpired(status string, cutoff time.Time) ([]Order, error)
}

// FallbackRepository is the durable queue of undelivered audit events.
type FallbackRepository interface {
	AddFallback(f *AuditFallback) error
	ListFallbacks() ([]AuditFallback, error)
	DeleteFallback(id uint) error
}

// PricingProvider returns the current market price for a traded unit.
type PricingProvider interface {
	CurrentPrice(ctx context.Context) (PriceQuote, error)
}

// EventPublisher delivers domain side-effects. Implementations must never
// fail the caller: an undeliverable audit event is parked for retry, an
// undeliverable notification is dropped.
type EventPublisher interface {
	PublishAudit(ctx context.Context, ev AuditEvent)
	PublishNotification(ctx context.Context, n Notification)
}

// AuditPoster is the raw synchronous audit sink transport.
type AuditPoster interface {
	Post(ctx context.Context, ev AuditEvent) error
}

// NotificationPoster is the raw synchronous notification transport.
type NotificationPoster interface {
	Send(ctx context.Context, n Notification) error
}
