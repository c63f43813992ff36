package persistence

import (
	"context"
	"errors"

	"github.com/bazaar/backend/internal/domain/seller"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPerformanceRepository implements PerformanceRepository using GORM
type GormPerformanceRepository struct {
	db *gorm.DB
}

// NewGormPerformanceRepository creates a new GormPerformanceRepository
func NewGormPerformanceRepository(db *gorm.DB) *GormPerformanceRepository {
	return &GormPerformanceRepository{db: db}
}

// FindBySeller finds the performance snapshot for a seller
func (r *GormPerformanceRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID) (*seller.SellerPerformance, error) {
	var perf seller.SellerPerformance
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		First(&perf).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &perf, nil
}

// FindBySellers returns snapshots for the given sellers keyed by seller ID.
// Sellers without a snapshot are absent from the map.
func (r *GormPerformanceRepository) FindBySellers(ctx context.Context, sellerIDs []uuid.UUID) (map[uuid.UUID]seller.SellerPerformance, error) {
	result := make(map[uuid.UUID]seller.SellerPerformance, len(sellerIDs))
	if len(sellerIDs) == 0 {
		return result, nil
	}

	var perfs []seller.SellerPerformance
	if err := r.db.WithContext(ctx).
		Where("seller_id IN ?", sellerIDs).
		Find(&perfs).Error; err != nil {
		return nil, err
	}

	for _, perf := range perfs {
		result[perf.SellerID] = perf
	}
	return result, nil
}

// Save creates or updates a performance snapshot
func (r *GormPerformanceRepository) Save(ctx context.Context, p *seller.SellerPerformance) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Ensure GormPerformanceRepository implements PerformanceRepository
var _ seller.PerformanceRepository = (*GormPerformanceRepository)(nil)
