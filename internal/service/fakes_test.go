package service

import (
	"context"
	"errors"
	"time"

	"github.com/rubentrancoso/energy-trade/internal/domain"
)

// In-memory doubles shared by the service tests.

type fakeStore struct {
	orders     map[string]*domain.Order
	fallbacks  map[uint]*domain.AuditFallback
	nextFbID   uint
	savedBatch int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:    make(map[string]*domain.Order),
		fallbacks: make(map[uint]*domain.AuditFallback),
	}
}

func (s *fakeStore) CreateOrder(o *domain.Order) error {
	if o.ID == "" {
		o.ID = "order-" + time.Now().Format("150405.000000000")
	}
	s.orders[o.ID] = o
	return nil
}

func (s *fakeStore) SaveOrder(o *domain.Order) error {
	s.orders[o.ID] = o
	return nil
}

func (s *fakeStore) SaveOrders(orders []*domain.Order) error {
	s.savedBatch++
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return nil
}

func (s *fakeStore) GetOrder(id string) (*domain.Order, error) {
	return s.orders[id], nil
}

func (s *fakeStore) AllOrders() ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeStore) FindCounterparts(side string, price float64) ([]domain.Order, error) {
	return nil, nil
}

func (s *fakeStore) FindExpired(status string, cutoff time.Time) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		if o.Status == status && o.ExpiresAt.Before(cutoff) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeStore) AddFallback(f *domain.AuditFallback) error {
	s.nextFbID++
	f.ID = s.nextFbID
	f.CreatedAt = time.Now()
	s.fallbacks[f.ID] = f
	return nil
}

func (s *fakeStore) ListFallbacks() ([]domain.AuditFallback, error) {
	var out []domain.AuditFallback
	for _, f := range s.fallbacks {
		out = append(out, *f)
	}
	return out, nil
}

func (s *fakeStore) DeleteFallback(id uint) error {
	delete(s.fallbacks, id)
	return nil
}

type fakePricing struct {
	quote domain.PriceQuote
	err   error
}

func (p *fakePricing) CurrentPrice(context.Context) (domain.PriceQuote, error) {
	return p.quote, p.err
}

type fakeMatcher struct {
	called   int
	lastSeen *domain.Order
	err      error
}

func (m *fakeMatcher) Match(_ context.Context, o *domain.Order) error {
	m.called++
	m.lastSeen = o
	return m.err
}

type fakePublisher struct {
	audits  []domain.AuditEvent
	notices []domain.Notification
}

func (p *fakePublisher) PublishAudit(_ context.Context, ev domain.AuditEvent) {
	p.audits = append(p.audits, ev)
}

func (p *fakePublisher) PublishNotification(_ context.Context, n domain.Notification) {
	p.notices = append(p.notices, n)
}

// fakePoster is an audit/notification transport that can be switched between
// healthy and failing.
type fakePoster struct {
	failing bool
	posted  []domain.AuditEvent
	sent    []domain.Notification
}

var errSinkDown = errors.New("sink down")

func (p *fakePoster) Post(_ context.Context, ev domain.AuditEvent) error {
	if p.failing {
		return errSinkDown
	}
	p.posted = append(p.posted, ev)
	return nil
}

func (p *fakePoster) Send(_ context.Context, n domain.Notification) error {
	if p.failing {
		return errSinkDown
	}
	p.sent = append(p.sent, n)
	return nil
}
