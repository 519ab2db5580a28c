package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rubentrancoso/energy-trade/internal/domain"
	"github.com/rubentrancoso/energy-trade/internal/infra"
)

// AuditRetrier redelivers parked audit events at a fixed interval. Events
// are retried until the sink acknowledges them: at-least-once delivery,
// with unbounded delay under a sustained sink outage.
type AuditRetrier struct {
	fallbacks domain.FallbackRepository
	audit     domain.AuditPoster
	interval  time.Duration
}

// NewAuditRetrier creates the audit reliability loop.
func NewAuditRetrier(fallbacks domain.FallbackRepository, audit domain.AuditPoster, interval time.Duration) *AuditRetrier {
	return &AuditRetrier{fallbacks: fallbacks, audit: audit, interval: interval}
}

// Run loops until the context is cancelled, retrying once per interval.
func (r *AuditRetrier) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("audit retry loop stopped")
			return nil
		case <-ticker.C:
			if err := r.RetryAll(ctx); err != nil {
				slog.Error("audit retry cycle failed", slog.Any("error", err))
			}
		}
	}
}

// RetryAll attempts redelivery of every parked event, deleting each one the
// sink accepts. Failed events stay parked for the next cycle.
func (r *AuditRetrier) RetryAll(ctx context.Context) error {
	parked, err := r.fallbacks.ListFallbacks()
	if err != nil {
		return err
	}

	for _, fb := range parked {
		ev := domain.AuditEvent{
			Source:    fb.Source,
			Type:      fb.Type,
			Payload:   fb.Payload,
			Timestamp: fb.CreatedAt,
		}
		if err := r.audit.Post(ctx, ev); err != nil {
			slog.Warn("audit redelivery failed",
				slog.Uint64("fallback_id", uint64(fb.ID)), slog.Any("error", err))
			continue
		}
		if err := r.fallbacks.DeleteFallback(fb.ID); err != nil {
			// Deletion failure means the event will be delivered again next
			// cycle; acceptable under at-least-once semantics.
			slog.Error("failed to delete delivered fallback",
				slog.Uint64("fallback_id", uint64(fb.ID)), slog.Any("error", err))
			continue
		}
		infra.GlobalMetrics.RecordAuditRedelivered()
		slog.Info("audit event redelivered", slog.Uint64("fallback_id", uint64(fb.ID)))
	}
	return nil
}
