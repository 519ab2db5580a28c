package domain

import "time"

// Audit event types emitted by the order service.
const (
	EventOrderCreated   = "ORDER_CREATED"
	EventOrderMatched   = "ORDER_MATCHED"
	EventOrderPairwise  = "ORDER_EXECUTED_PAIRWISE"
	EventOrderCancelled = "ORDER_CANCELLED"
	EventOrderExpired   = "ORDER_EXPIRED"
)

// AuditEvent is a single entry of the audit trail. The payload is a
// pre-serialized JSON body so redelivery never depends on domain state.
type AuditEvent struct {
	Source    string    `json:"source"`
	Type      string    `json:"type"`
	Payload   string    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditFallback is an audit event that failed synchronous delivery and is
// parked locally until the retry loop pushes it through. Deleted on ack.
type AuditFallback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Source    string    `json:"source"`
	Type      string    `json:"type"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is a best-effort human-facing alert. Never retried.
type Notification struct {
	Target  string `json:"target"`
	Message string `json:"message"`
}

// PriceQuote is the pricing collaborator's response.
type PriceQuote struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// LogEntry is the wire format accepted by the log collector.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service"`
	Source    string `json:"source"`
	Message   string `json:"message"`
}
