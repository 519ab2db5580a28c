package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rubentrancoso/energy-trade/internal/domain"
	"github.com/rubentrancoso/energy-trade/internal/infra"
)

// Sweeper periodically marks stale PENDING orders as EXPIRED. PARTIAL
// orders are deliberately left alone: a partially filled order lives out
// its fills or gets cancelled explicitly.
type Sweeper struct {
	store     domain.OrderRepository
	publisher domain.EventPublisher
	mu        *sync.Mutex // shared with the order service; sweep mutates order state
	enabled   bool
	interval  time.Duration
}

// NewSweeper creates the expiration sweeper.
func NewSweeper(store domain.OrderRepository, publisher domain.EventPublisher, mu *sync.Mutex, enabled bool, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:     store,
		publisher: publisher,
		mu:        mu,
		enabled:   enabled,
		interval:  interval,
	}
}

// Run loops until the context is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) error {
	if !s.enabled {
		slog.Info("expiration sweeper disabled by configuration")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("expiration sweeper stopped")
			return nil
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				slog.Error("expiration sweep failed", slog.Any("error", err))
			}
		}
	}
}

// Sweep performs one pass: every PENDING order past its expiry becomes
// EXPIRED, persisted as one batch. A non-empty batch emits a single
// summary audit event so sweeper-driven expiry shows up in the trail.
func (s *Sweeper) Sweep(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	expired, err := s.store.FindExpired(domain.StatusPending, now)
	if err != nil {
		return err
	}
	if len(expired) == 0 {
		slog.Debug("no expired pending orders found")
		return nil
	}

	batch := make([]*domain.Order, len(expired))
	for i := range expired {
		expired[i].Status = domain.StatusExpired
		batch[i] = &expired[i]
	}
	if err := s.store.SaveOrders(batch); err != nil {
		return err
	}
	infra.GlobalMetrics.RecordOrdersExpired(len(batch))

	s.publisher.PublishAudit(ctx, domain.AuditEvent{
		Source:    "order-service",
		Type:      domain.EventOrderExpired,
		Payload:   fmt.Sprintf(`{"expiredCount":%d,"sweptAt":%q}`, len(batch), now.Format(time.RFC3339)),
		Timestamp: now,
	})

	slog.Info("expired pending orders swept", slog.Int("count", len(batch)))
	return nil
}
