package catalog

import (
	"time"

	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerListing represents one seller's priced, stocked offer for a catalog
// product. Many sellers may list the same product at different prices; the
// routing engine picks among them. Listings are maintained by seller-facing
// CRUD and are read-only to the routing/settlement core.
type SellerListing struct {
	shared.BaseAggregateRoot
	SellerID    uuid.UUID
	ProductID   uuid.UUID
	Price       decimal.Decimal // per-unit seller price
	Stock       int64
	UnitValue   decimal.Decimal // e.g. 500 for a 500g pack
	UnitMeasure string          // e.g. "g", "kg", "pcs"
	Active      bool
}

// NewSellerListing creates a new seller listing
func NewSellerListing(sellerID, productID uuid.UUID, price decimal.Decimal, stock int64, unitValue decimal.Decimal, unitMeasure string) (*SellerListing, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Listing price must be positive")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if unitValue.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit value must be positive")
	}
	if unitMeasure == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit measure cannot be empty")
	}

	return &SellerListing{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
		ProductID:         productID,
		Price:             price,
		Stock:             stock,
		UnitValue:         unitValue,
		UnitMeasure:       unitMeasure,
		Active:            true,
	}, nil
}

// UpdatePrice changes the per-unit seller price
func (l *SellerListing) UpdatePrice(price decimal.Decimal) error {
	if price.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Listing price must be positive")
	}
	l.Price = price
	l.UpdatedAt = time.Now()
	return nil
}

// SetStock replaces the available stock count
func (l *SellerListing) SetStock(stock int64) error {
	if stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	l.Stock = stock
	l.UpdatedAt = time.Now()
	return nil
}

// DecrementStock reduces stock after an order is placed against the listing
func (l *SellerListing) DecrementStock(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if l.Stock < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Listing stock is insufficient")
	}
	l.Stock -= quantity
	l.UpdatedAt = time.Now()
	return nil
}

// Activate makes the listing routable again
func (l *SellerListing) Activate() {
	l.Active = true
	l.UpdatedAt = time.Now()
}

// Deactivate removes the listing from routing consideration
func (l *SellerListing) Deactivate() {
	l.Active = false
	l.UpdatedAt = time.Now()
}

// CanFulfill returns true if the listing is active with enough stock
func (l *SellerListing) CanFulfill(quantity int64) bool {
	return l.Active && l.Stock >= quantity
}

// HasStockBuffer returns true if stock is at least double the requested
// quantity, which earns the routing stock-buffer bonus
func (l *SellerListing) HasStockBuffer(quantity int64) bool {
	return l.Stock >= 2*quantity
}
