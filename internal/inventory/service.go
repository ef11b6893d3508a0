package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Store is the persistence used by Service.
type Store interface {
	ListBatches(ctx context.Context, productID uuid.UUID) ([]Batch, error)
	ListExpiring(ctx context.Context, cutoff time.Time, limit uint64) ([]Batch, error)
	CountExpiring(ctx context.Context, cutoff time.Time) (int64, error)
	ListStockHistory(ctx context.Context, productID uuid.UUID, limit uint64) ([]StockHistory, error)
	ListPriceHistory(ctx context.Context, productID uuid.UUID, limit uint64) ([]PriceHistory, error)
}

// Service answers inventory read queries.
type Service struct {
	store Store
	clock func() time.Time
}

// NewService constructs inventory service.
func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// Batches lists the lots of a product.
func (s *Service) Batches(ctx context.Context, productID uuid.UUID) ([]Batch, error) {
	return s.store.ListBatches(ctx, productID)
}

// StockHistory lists the latest stock movements of a product.
func (s *Service) StockHistory(ctx context.Context, productID uuid.UUID, limit int) ([]StockHistory, error) {
	return s.store.ListStockHistory(ctx, productID, clampLimit(limit))
}

// PriceHistory lists the latest price changes of a product.
func (s *Service) PriceHistory(ctx context.Context, productID uuid.UUID, limit int) ([]PriceHistory, error) {
	return s.store.ListPriceHistory(ctx, productID, clampLimit(limit))
}

// ExpiringWithin lists batches with stock on hand expiring inside window.
func (s *Service) ExpiringWithin(ctx context.Context, window time.Duration, limit int) ([]Batch, error) {
	return s.store.ListExpiring(ctx, s.cutoff(window), clampLimit(limit))
}

// CountExpiringWithin counts all batches with stock on hand expiring inside window,
// regardless of any listing limit.
func (s *Service) CountExpiringWithin(ctx context.Context, window time.Duration) (int64, error) {
	return s.store.CountExpiring(ctx, s.cutoff(window))
}

func (s *Service) cutoff(window time.Duration) time.Time {
	if window < 0 {
		window = 0
	}
	return s.clock().Add(window)
}

func clampLimit(limit int) uint64 {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return uint64(limit)
	}
}
