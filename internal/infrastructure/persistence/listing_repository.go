package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/bazaar/backend/internal/domain/catalog"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormListingRepository implements ListingRepository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID finds a listing by its ID
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.SellerListing, error) {
	var listing catalog.SellerListing
	if err := r.db.WithContext(ctx).
		First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// FindActiveByProduct returns active listings for a product with at least
// minStock units, oldest first. The insertion order is the routing
// tie-break of last resort, so created_at ASC is part of the contract.
func (r *GormListingRepository) FindActiveByProduct(ctx context.Context, productID uuid.UUID, minStock int64) ([]catalog.SellerListing, error) {
	var listings []catalog.SellerListing
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND active = ? AND stock >= ?", productID, true, minStock).
		Order("created_at ASC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// FindBySeller finds listings owned by a seller
func (r *GormListingRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]catalog.SellerListing, error) {
	var listings []catalog.SellerListing
	query := r.db.WithContext(ctx).
		Model(&catalog.SellerListing{}).
		Where("seller_id = ?", sellerID)

	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	if err := query.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// Save creates or updates a listing
func (r *GormListingRepository) Save(ctx context.Context, listing *catalog.SellerListing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

// Ensure GormListingRepository implements ListingRepository
var _ catalog.ListingRepository = (*GormListingRepository)(nil)
