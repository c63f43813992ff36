package persistence

import (
	"context"
	"errors"

	"github.com/bazaar/backend/internal/domain/seller"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSellerRepository implements SellerRepository using GORM
type GormSellerRepository struct {
	db *gorm.DB
}

// NewGormSellerRepository creates a new GormSellerRepository
func NewGormSellerRepository(db *gorm.DB) *GormSellerRepository {
	return &GormSellerRepository{db: db}
}

// FindByID finds a seller by its ID
func (r *GormSellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*seller.Seller, error) {
	var s seller.Seller
	if err := r.db.WithContext(ctx).
		First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindApproved returns all sellers eligible for payout generation, in a
// stable order so generation runs visit sellers deterministically
func (r *GormSellerRepository) FindApproved(ctx context.Context) ([]seller.Seller, error) {
	var sellers []seller.Seller
	err := r.db.WithContext(ctx).
		Where("status = ?", seller.SellerStatusApproved).
		Order("created_at ASC").
		Find(&sellers).Error
	if err != nil {
		return nil, err
	}
	return sellers, nil
}

// Save creates or updates a seller
func (r *GormSellerRepository) Save(ctx context.Context, s *seller.Seller) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// Ensure GormSellerRepository implements SellerRepository
var _ seller.SellerRepository = (*GormSellerRepository)(nil)
