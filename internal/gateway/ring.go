package gateway

import "sync"

// ring is a bounded, thread-safe append-only buffer. Once full, the oldest
// entries are discarded so an unbounded stream of events can never grow
// the gateway's memory without limit.
type ring[T any] struct {
	mu      sync.Mutex
	entries []T
	limit   int
}

func newRing[T any](limit int) *ring[T] {
	return &ring[T]{limit: limit}
}

// Append adds an entry, evicting the oldest when the buffer is full.
func (r *ring[T]) Append(entry T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) >= r.limit {
		r.entries = r.entries[1:]
	}
	r.entries = append(r.entries, entry)
}

// Snapshot returns a copy of the current entries, oldest first.
func (r *ring[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the current number of buffered entries.
func (r *ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
