package seller

import (
	"context"

	"github.com/google/uuid"
)

// SellerRepository defines persistence operations for seller accounts
type SellerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Seller, error)
	// FindApproved returns all sellers eligible for payout generation
	FindApproved(ctx context.Context) ([]Seller, error)
	Save(ctx context.Context, s *Seller) error
}

// PerformanceRepository defines persistence operations for performance snapshots
type PerformanceRepository interface {
	FindBySeller(ctx context.Context, sellerID uuid.UUID) (*SellerPerformance, error)
	// FindBySellers returns snapshots for the given sellers keyed by seller ID.
	// Sellers without a snapshot are simply absent from the map.
	FindBySellers(ctx context.Context, sellerIDs []uuid.UUID) (map[uuid.UUID]SellerPerformance, error)
	Save(ctx context.Context, p *SellerPerformance) error
}
