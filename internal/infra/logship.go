package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rubentrancoso/energy-trade/internal/domain"
)

const shipQueueSize = 256

// ShippingHandler decorates another slog.Handler and forwards each record to
// the log collector as a JSON LogEntry. Delivery is asynchronous and lossy:
// a slow or dead collector must never block or fail application logging.
type ShippingHandler struct {
	next    slog.Handler
	queue   chan domain.LogEntry
	client  *http.Client
	url     string
	service string
}

// NewShippingHandler wraps next with collector shipping.
func NewShippingHandler(next slog.Handler, collectorURL, serviceName string) *ShippingHandler {
	h := &ShippingHandler{
		next:    next,
		queue:   make(chan domain.LogEntry, shipQueueSize),
		client:  &http.Client{Timeout: 2 * time.Second},
		url:     collectorURL,
		service: serviceName,
	}
	go h.drain()
	return h
}

func (h *ShippingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ShippingHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := domain.LogEntry{
		Timestamp: r.Time.UTC().Format(time.RFC3339Nano),
		Level:     r.Level.String(),
		Service:   h.service,
		Source:    "slog",
		Message:   r.Message,
	}
	select {
	case h.queue <- entry:
	default:
		// Queue full: drop rather than stall the caller.
	}
	return h.next.Handle(ctx, r)
}

func (h *ShippingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	return &clone
}

func (h *ShippingHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	return &clone
}

func (h *ShippingHandler) drain() {
	for entry := range h.queue {
		body, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		resp, err := h.client.Post(h.url, "application/json", bytes.NewReader(body))
		if err != nil {
			continue
		}
		resp.Body.Close()
	}
}
