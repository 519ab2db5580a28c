package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rubentrancoso/energy-trade/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the durable repository for orders and audit fallbacks.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance at the given path.
func NewStorage(path string) (*Storage, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Order{}, &domain.AuditFallback{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Order Operations
// ======================================================================================

// CreateOrder inserts a new order, assigning its identifier.
func (s *Storage) CreateOrder(o *domain.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return s.db.Create(o).Error
}

// SaveOrder updates an existing order.
func (s *Storage) SaveOrder(o *domain.Order) error {
	return s.db.Save(o).Error
}

// SaveOrders persists a batch of orders in a single transaction, so a match
// outcome is recorded either completely or not at all.
func (s *Storage) SaveOrders(orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			if err := tx.Save(o).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetOrder retrieves an order by id. Returns (nil, nil) when absent.
func (s *Storage) GetOrder(id string) (*domain.Order, error) {
	var o domain.Order
	err := s.db.First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// AllOrders retrieves all orders.
func (s *Storage) AllOrders() ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.Find(&orders).Error
	return orders, err
}

// FindCounterparts returns orders on the given side whose limit price
// crosses the given price: sellers at or below it, buyers at or above it.
func (s *Storage) FindCounterparts(side string, price float64) ([]domain.Order, error) {
	var orders []domain.Order
	q := s.db.Where("side = ?", side)
	if side == domain.SideSell {
		q = q.Where("limit_price <= ?", price)
	} else {
		q = q.Where("limit_price >= ?", price)
	}
	err := q.Find(&orders).Error
	return orders, err
}

// FindExpired returns orders in the given status whose expiry passed before cutoff.
func (s *Storage) FindExpired(status string, cutoff time.Time) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.Where("status = ? AND expires_at < ?", status, cutoff).Find(&orders).Error
	return orders, err
}

// ======================================================================================
// Audit Fallback Operations
// ======================================================================================

// AddFallback parks an undelivered audit event for the retry loop.
func (s *Storage) AddFallback(f *domain.AuditFallback) error {
	return s.db.Create(f).Error
}

// ListFallbacks returns all parked audit events, oldest first.
func (s *Storage) ListFallbacks() ([]domain.AuditFallback, error) {
	var fallbacks []domain.AuditFallback
	err := s.db.Order("id").Find(&fallbacks).Error
	return fallbacks, err
}

// DeleteFallback removes a parked event after successful redelivery.
func (s *Storage) DeleteFallback(id uint) error {
	return s.db.Delete(&domain.AuditFallback{}, id).Error
}
