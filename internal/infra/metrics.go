package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	ordersCreated   atomic.Uint64
	ordersMatched   atomic.Uint64 // pairwise fills
	ordersExecuted  atomic.Uint64 // orders reaching EXECUTED
	ordersCancelled atomic.Uint64
	ordersExpired   atomic.Uint64
	auditDelivered  atomic.Uint64
	auditFallbacks  atomic.Uint64
	auditRedeliver  atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordOrderCreated records an accepted order.
func (m *Metrics) RecordOrderCreated() { m.ordersCreated.Add(1) }

// RecordFill records one pairwise fill.
func (m *Metrics) RecordFill() { m.ordersMatched.Add(1) }

// RecordOrderExecuted records an order reaching EXECUTED.
func (m *Metrics) RecordOrderExecuted() { m.ordersExecuted.Add(1) }

// RecordOrderCancelled records a successful cancel.
func (m *Metrics) RecordOrderCancelled() { m.ordersCancelled.Add(1) }

// RecordOrdersExpired records orders swept to EXPIRED.
func (m *Metrics) RecordOrdersExpired(n int) { m.ordersExpired.Add(uint64(n)) }

// RecordAuditDelivered records a synchronous audit delivery.
func (m *Metrics) RecordAuditDelivered() { m.auditDelivered.Add(1) }

// RecordAuditFallback records an audit event parked for retry.
func (m *Metrics) RecordAuditFallback() { m.auditFallbacks.Add(1) }

// RecordAuditRedelivered records a fallback event flushed by the retry loop.
func (m *Metrics) RecordAuditRedelivered() { m.auditRedeliver.Add(1) }

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersCreated    uint64    `json:"orders_created"`
	Fills            uint64    `json:"fills"`
	OrdersExecuted   uint64    `json:"orders_executed"`
	OrdersCancelled  uint64    `json:"orders_cancelled"`
	OrdersExpired    uint64    `json:"orders_expired"`
	AuditDelivered   uint64    `json:"audit_delivered"`
	AuditFallbacks   uint64    `json:"audit_fallbacks"`
	AuditRedelivered uint64    `json:"audit_redelivered"`
	Timestamp        time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		OrdersCreated:    m.ordersCreated.Load(),
		Fills:            m.ordersMatched.Load(),
		OrdersExecuted:   m.ordersExecuted.Load(),
		OrdersCancelled:  m.ordersCancelled.Load(),
		OrdersExpired:    m.ordersExpired.Load(),
		AuditDelivered:   m.auditDelivered.Load(),
		AuditFallbacks:   m.auditFallbacks.Load(),
		AuditRedelivered: m.auditRedeliver.Load(),
		Timestamp:        time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ordersCreated.Store(0)
	m.ordersMatched.Store(0)
	m.ordersExecuted.Store(0)
	m.ordersCancelled.Store(0)
	m.ordersExpired.Store(0)
	m.auditDelivered.Store(0)
	m.auditFallbacks.Store(0)
	m.auditRedeliver.Store(0)
}
