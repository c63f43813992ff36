package seller

import (
	"time"

	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier classifies a seller's trust level. It drives both the tiered
// commission rate and the routing tier bonus.
type Tier string

const (
	TierNew      Tier = "new"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// IsValid checks if the tier is a known Tier
func (t Tier) IsValid() bool {
	switch t {
	case TierNew, TierStandard, TierPremium:
		return true
	}
	return false
}

// String returns the string representation of Tier
func (t Tier) String() string {
	return string(t)
}

// SellerPerformance is a per-seller trust/quality snapshot maintained by an
// external aggregation job after each delivered or cancelled order. The
// routing and settlement core reads it as an immutable snapshot and never
// mutates it.
type SellerPerformance struct {
	shared.BaseAggregateRoot
	SellerID        uuid.UUID
	Tier            Tier
	FulfillmentRate decimal.Decimal // 0-100
	QualityScore    decimal.Decimal // 0-5
	Suspended       bool
	LastComputedAt  time.Time
}

// NewSellerPerformance creates a performance snapshot for a seller
func NewSellerPerformance(sellerID uuid.UUID, tier Tier, fulfillmentRate, qualityScore decimal.Decimal) (*SellerPerformance, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if !tier.IsValid() {
		return nil, shared.NewDomainError("INVALID_TIER", "Unknown seller tier")
	}
	if fulfillmentRate.IsNegative() || fulfillmentRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_RATE", "Fulfillment rate must be between 0 and 100")
	}
	if qualityScore.IsNegative() || qualityScore.GreaterThan(decimal.NewFromInt(5)) {
		return nil, shared.NewDomainError("INVALID_SCORE", "Quality score must be between 0 and 5")
	}

	return &SellerPerformance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
		Tier:              tier,
		FulfillmentRate:   fulfillmentRate,
		QualityScore:      qualityScore,
		LastComputedAt:    time.Now(),
	}, nil
}

// Record replaces the snapshot values after an external recomputation
func (p *SellerPerformance) Record(tier Tier, fulfillmentRate, qualityScore decimal.Decimal) error {
	if !tier.IsValid() {
		return shared.NewDomainError("INVALID_TIER", "Unknown seller tier")
	}
	if fulfillmentRate.IsNegative() || fulfillmentRate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_RATE", "Fulfillment rate must be between 0 and 100")
	}
	if qualityScore.IsNegative() || qualityScore.GreaterThan(decimal.NewFromInt(5)) {
		return shared.NewDomainError("INVALID_SCORE", "Quality score must be between 0 and 5")
	}
	now := time.Now()
	p.Tier = tier
	p.FulfillmentRate = fulfillmentRate
	p.QualityScore = qualityScore
	p.LastComputedAt = now
	p.UpdatedAt = now
	return nil
}

// SetSuspended flips the routing suspension flag
func (p *SellerPerformance) SetSuspended(suspended bool) {
	p.Suspended = suspended
	p.UpdatedAt = time.Now()
}

// IsRoutable returns true if the seller may be considered by the router
func (p *SellerPerformance) IsRoutable() bool {
	return !p.Suspended
}
