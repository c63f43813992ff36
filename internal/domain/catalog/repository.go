package catalog

import (
	"context"

	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ListingRepository defines persistence operations for seller listings
type ListingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SellerListing, error)
	// FindActiveByProduct returns active listings for a product with at
	// least minStock units available, in insertion order (oldest first).
	// Insertion order is the routing tie-break of last resort, so the
	// ordering here is part of the contract.
	FindActiveByProduct(ctx context.Context, productID uuid.UUID, minStock int64) ([]SellerListing, error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]SellerListing, error)
	Save(ctx context.Context, listing *SellerListing) error
}
