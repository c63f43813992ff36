package catalog

import (
	"context"
	"time"

	domaincatalog "github.com/bazaar/backend/internal/domain/catalog"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListingService handles seller-facing listing maintenance
type ListingService struct {
	listingRepo domaincatalog.ListingRepository
}

// NewListingService creates a new ListingService
func NewListingService(listingRepo domaincatalog.ListingRepository) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
	}
}

// Create creates a new listing for a seller
func (s *ListingService) Create(ctx context.Context, req CreateListingRequest) (*ListingResponse, error) {
	listing, err := domaincatalog.NewSellerListing(req.SellerID, req.ProductID, req.Price, req.Stock, req.UnitValue, req.UnitMeasure)
	if err != nil {
		return nil, err
	}
	if err := s.listingRepo.Save(ctx, listing); err != nil {
		return nil, err
	}
	response := ToListingResponse(listing)
	return &response, nil
}

// GetByID retrieves a listing by ID
func (s *ListingService) GetByID(ctx context.Context, listingID uuid.UUID) (*ListingResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	response := ToListingResponse(listing)
	return &response, nil
}

// ListBySeller retrieves all listings owned by a seller
func (s *ListingService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]ListingResponse, error) {
	listings, err := s.listingRepo.FindBySeller(ctx, sellerID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	responses := make([]ListingResponse, len(listings))
	for i := range listings {
		responses[i] = ToListingResponse(&listings[i])
	}
	return responses, nil
}

// Update applies price, stock, and activation changes to a listing
func (s *ListingService) Update(ctx context.Context, listingID uuid.UUID, req UpdateListingRequest) (*ListingResponse, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if req.Price != nil {
		if err := listing.UpdatePrice(*req.Price); err != nil {
			return nil, err
		}
	}
	if req.Stock != nil {
		if err := listing.SetStock(*req.Stock); err != nil {
			return nil, err
		}
	}
	if req.Active != nil {
		if *req.Active {
			listing.Activate()
		} else {
			listing.Deactivate()
		}
	}

	if err := s.listingRepo.Save(ctx, listing); err != nil {
		return nil, err
	}
	response := ToListingResponse(listing)
	return &response, nil
}

// ==================== Listing DTOs ====================

// CreateListingRequest represents a request to create a listing
type CreateListingRequest struct {
	SellerID    uuid.UUID       `json:"seller_id" binding:"required"`
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int64           `json:"stock" binding:"min=0"`
	UnitValue   decimal.Decimal `json:"unit_value" binding:"required"`
	UnitMeasure string          `json:"unit_measure" binding:"required,min=1,max=20"`
}

// UpdateListingRequest represents a request to update a listing
type UpdateListingRequest struct {
	Price  *decimal.Decimal `json:"price"`
	Stock  *int64           `json:"stock"`
	Active *bool            `json:"active"`
}

// ListingResponse represents a listing in API responses
type ListingResponse struct {
	ID          uuid.UUID       `json:"id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	UnitMeasure string          `json:"unit_measure"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToListingResponse converts a domain listing to a response DTO
func ToListingResponse(l *domaincatalog.SellerListing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		SellerID:    l.SellerID,
		ProductID:   l.ProductID,
		Price:       l.Price,
		Stock:       l.Stock,
		UnitValue:   l.UnitValue,
		UnitMeasure: l.UnitMeasure,
		Active:      l.Active,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
