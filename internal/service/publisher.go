package service

import (
	"context"
	"log/slog"

	"github.com/rubentrancoso/energy-trade/internal/domain"
	"github.com/rubentrancoso/energy-trade/internal/infra"
)

// ReliablePublisher delivers audit events with a local fallback: when the
// audit sink is down, the event is parked in the fallback store and the
// retry loop redelivers it later. Notifications are fire-and-forget.
// Publishing never fails the caller; the trade outcome is already final
// by the time side-effects go out.
type ReliablePublisher struct {
	audit     domain.AuditPoster
	notify    domain.NotificationPoster
	fallbacks domain.FallbackRepository
	broadcast func(domain.AuditEvent) // optional live feed hook
}

// NewReliablePublisher creates a publisher backed by the fallback store.
func NewReliablePublisher(audit domain.AuditPoster, notify domain.NotificationPoster, fallbacks domain.FallbackRepository) *ReliablePublisher {
	return &ReliablePublisher{audit: audit, notify: notify, fallbacks: fallbacks}
}

// SetBroadcast installs a hook invoked for every published audit event,
// used to fan events out to live websocket subscribers.
func (p *ReliablePublisher) SetBroadcast(fn func(domain.AuditEvent)) {
	p.broadcast = fn
}

// PublishAudit posts the event to the audit sink, parking it locally on failure.
func (p *ReliablePublisher) PublishAudit(ctx context.Context, ev domain.AuditEvent) {
	if p.broadcast != nil {
		p.broadcast(ev)
	}

	if err := p.audit.Post(ctx, ev); err != nil {
		slog.Warn("audit delivery failed, parking event for retry",
			slog.String("type", ev.Type), slog.Any("error", err))
		infra.GlobalMetrics.RecordAuditFallback()

		fallback := &domain.AuditFallback{
			Source:  ev.Source,
			Type:    ev.Type,
			Payload: ev.Payload,
		}
		if err := p.fallbacks.AddFallback(fallback); err != nil {
			// Both the sink and the local store are down: the event is lost.
			slog.Error("failed to persist audit fallback",
				slog.String("type", ev.Type), slog.Any("error", err))
		}
		return
	}
	infra.GlobalMetrics.RecordAuditDelivered()
}

// PublishNotification sends a best-effort notification. Failures are dropped.
func (p *ReliablePublisher) PublishNotification(ctx context.Context, n domain.Notification) {
	if err := p.notify.Send(ctx, n); err != nil {
		slog.Warn("notification delivery failed", slog.Any("error", err))
	}
}
