package domain

import "time"

// Volume and price comparisons share a single tolerance so that a partially
// filled order never gets stuck with a microscopic float residual.
const VolumeEpsilon = 1e-5

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	StatusPending   = "PENDING"
	StatusPartial   = "PARTIAL"
	StatusExecuted  = "EXECUTED"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"
)

// Order is a buy or sell order for a traded energy unit.
// Prices are limit prices in the marketplace currency, volumes in MWh.
type Order struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	Side           string     `gorm:"index;not null" json:"side"` // BUY or SELL
	LimitPrice     float64    `gorm:"not null" json:"limitPrice"`
	Volume         float64    `gorm:"not null" json:"volume"`
	ExecutedVolume float64    `json:"executedVolume"`
	Status         string     `gorm:"index;not null" json:"status"`
	MarketPrice    float64    `json:"marketPrice"` // pricing snapshot at creation, immutable
	CreatedAt      time.Time  `json:"createdAt"`
	ExpiresAt      time.Time  `gorm:"index" json:"expiresAt"`
	CancelledAt    *time.Time `json:"cancelledAt,omitempty"`
}

// RemainingVolume is the volume still open for matching.
func (o *Order) RemainingVolume() float64 {
	return o.Volume - o.ExecutedVolume
}

// IsFilled reports whether the order is filled up to the volume tolerance.
func (o *Order) IsFilled() bool {
	return o.ExecutedVolume >= o.Volume-VolumeEpsilon
}

// IsTerminal reports whether the order reached a final state. Terminal
// orders are immutable; the engine and the cancel path must skip them.
func (o *Order) IsTerminal() bool {
	switch o.Status {
	case StatusExecuted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// IsExpiredAt reports whether the order's expiry has passed at the given time.
func (o *Order) IsExpiredAt(now time.Time) bool {
	return o.ExpiresAt.Before(now)
}

// ApplyFill records a traded volume and advances the status. Status moves
// strictly forward: PENDING/PARTIAL -> PARTIAL or EXECUTED.
func (o *Order) ApplyFill(traded float64) {
	o.ExecutedVolume += traded
	if o.IsFilled() {
		o.Status = StatusExecuted
	} else if o.ExecutedVolume > VolumeEpsilon {
		o.Status = StatusPartial
	}
}

// OppositeSide returns the counterpart side for matching.
func OppositeSide(side string) string {
	if side == SideBuy {
		return SideSell
	}
	return SideBuy
}
