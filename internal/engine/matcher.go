package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/rubentrancoso/energy-trade/internal/domain"
	"github.com/rubentrancoso/energy-trade/internal/infra"
)

const source = "order-service"

// MatchingEngine fills an incoming PENDING order against eligible
// counterpart orders using price-time priority. It owns no locking: the
// order service serializes calls so two matches never race on the same
// counterpart volume.
type MatchingEngine struct {
	store     domain.OrderRepository
	publisher domain.EventPublisher
}

// NewMatchingEngine creates a matching engine.
func NewMatchingEngine(store domain.OrderRepository, publisher domain.EventPublisher) *MatchingEngine {
	return &MatchingEngine{store: store, publisher: publisher}
}

// Match is invoked once, right after the incoming order is persisted as
// PENDING. Re-invocation on an already processed order is a no-op.
// Audit and notification failures never abort a match: once volumes are
// persisted the trade is final.
func (e *MatchingEngine) Match(ctx context.Context, incoming *domain.Order) error {
	if incoming.Status != domain.StatusPending {
		slog.Info("order already processed, skipping match", slog.String("order_id", incoming.ID))
		return nil
	}

	now := time.Now()
	if incoming.IsExpiredAt(now) {
		// An already-expired order must never match.
		incoming.Status = domain.StatusExpired
		if err := e.store.SaveOrder(incoming); err != nil {
			return err
		}
		slog.Info("incoming order already expired", slog.String("order_id", incoming.ID))
		return nil
	}

	candidates, err := e.eligibleCounterparts(incoming, now)
	if err != nil {
		return err
	}

	mutated := e.fill(ctx, incoming, candidates)

	// One batch: the incoming order plus every counterpart it touched.
	batch := append(mutated, incoming)
	if err := e.store.SaveOrders(batch); err != nil {
		return err
	}

	if incoming.Status == domain.StatusExecuted {
		infra.GlobalMetrics.RecordOrderExecuted()
	}

	e.publisher.PublishAudit(ctx, domain.AuditEvent{
		Source: source,
		Type:   domain.EventOrderMatched,
		Payload: fmt.Sprintf(`{"orderId":%q,"executedVolume":%.2f,"status":%q}`,
			incoming.ID, incoming.ExecutedVolume, incoming.Status),
		Timestamp: time.Now(),
	})

	slog.Info("matching completed",
		slog.String("order_id", incoming.ID),
		slog.Float64("executed_volume", incoming.ExecutedVolume),
		slog.Float64("remaining_volume", incoming.RemainingVolume()),
		slog.String("status", incoming.Status),
	)
	return nil
}

// eligibleCounterparts queries price-crossing opposite-side orders and
// filters out everything the engine must not touch: terminal orders,
// fully consumed orders, and expired candidates. Expired candidates are
// left as-is; marking them EXPIRED is the sweeper's job.
func (e *MatchingEngine) eligibleCounterparts(incoming *domain.Order, now time.Time) ([]*domain.Order, error) {
	found, err := e.store.FindCounterparts(domain.OppositeSide(incoming.Side), incoming.LimitPrice)
	if err != nil {
		return nil, err
	}

	candidates := make([]*domain.Order, 0, len(found))
	for i := range found {
		c := &found[i]
		if c.IsTerminal() || c.IsExpiredAt(now) || c.RemainingVolume() <= domain.VolumeEpsilon {
			continue
		}
		candidates = append(candidates, c)
	}

	// Price-time priority: best price for the incoming side first, then
	// earliest creation as the tie-break.
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.LimitPrice != b.LimitPrice {
			if incoming.Side == domain.SideBuy {
				return a.LimitPrice < b.LimitPrice
			}
			return a.LimitPrice > b.LimitPrice
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return candidates, nil
}

// fill walks the sorted candidates, greedily consuming volume until the
// incoming order's remainder is negligible. Returns the mutated candidates.
func (e *MatchingEngine) fill(ctx context.Context, incoming *domain.Order, candidates []*domain.Order) []*domain.Order {
	var mutated []*domain.Order

	for _, candidate := range candidates {
		if incoming.RemainingVolume() <= domain.VolumeEpsilon {
			break
		}

		traded := min(incoming.RemainingVolume(), candidate.RemainingVolume())
		candidate.ApplyFill(traded)
		incoming.ApplyFill(traded)
		mutated = append(mutated, candidate)

		infra.GlobalMetrics.RecordFill()
		if candidate.Status == domain.StatusExecuted {
			infra.GlobalMetrics.RecordOrderExecuted()
		}

		e.publisher.PublishAudit(ctx, domain.AuditEvent{
			Source: source,
			Type:   domain.EventOrderPairwise,
			Payload: fmt.Sprintf(`{"takerOrderId":%q,"makerOrderId":%q,"matchedVolume":%.2f,"price":%.2f,"timestamp":%q}`,
				incoming.ID, candidate.ID, traded, candidate.LimitPrice, time.Now().Format(time.RFC3339)),
			Timestamp: time.Now(),
		})

		e.publisher.PublishNotification(ctx, domain.Notification{
			Target: "admin@energytrade.com",
			Message: fmt.Sprintf("Order %s matched with %s: %.2f @ %.2f",
				incoming.ID, candidate.ID, traded, candidate.LimitPrice),
		})
	}

	return mutated
}
