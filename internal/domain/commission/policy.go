package commission

import (
	"time"

	"github.com/bazaar/backend/internal/domain/seller"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/bazaar/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Mode selects how the commission rate is resolved
type Mode string

const (
	ModeFlat   Mode = "flat"
	ModeTiered Mode = "tiered"
)

// IsValid checks if the mode is a known Mode
func (m Mode) IsValid() bool {
	return m == ModeFlat || m == ModeTiered
}

// DefaultFlatRate is the safe fallback commission rate used when no policy
// record exists. Checkout must never fail on missing pricing config.
var DefaultFlatRate = decimal.NewFromInt(10)

// CommissionPolicy is the platform's singleton pricing rule. The commission
// rate is added on top of the seller price to form the customer price.
// Rates are captured into order lines at routing time; editing the policy
// never changes already-routed lines.
type CommissionPolicy struct {
	shared.BaseAggregateRoot
	Mode             Mode
	FlatRate         decimal.Decimal
	TierRateNew      decimal.Decimal
	TierRateStandard decimal.Decimal
	TierRatePremium  decimal.Decimal
	DeliveryFee      decimal.Decimal
	Active           bool
}

// NewCommissionPolicy creates a new active policy
func NewCommissionPolicy(mode Mode, flatRate, rateNew, rateStandard, ratePremium, deliveryFee decimal.Decimal) (*CommissionPolicy, error) {
	p := &CommissionPolicy{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Mode:              mode,
		FlatRate:          flatRate,
		TierRateNew:       rateNew,
		TierRateStandard:  rateStandard,
		TierRatePremium:   ratePremium,
		DeliveryFee:       deliveryFee,
		Active:            true,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// DefaultPolicy returns the hardcoded fallback used when no policy record
// exists: a flat 10% commission and no delivery fee.
func DefaultPolicy() *CommissionPolicy {
	return &CommissionPolicy{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Mode:              ModeFlat,
		FlatRate:          DefaultFlatRate,
		TierRateNew:       DefaultFlatRate,
		TierRateStandard:  DefaultFlatRate,
		TierRatePremium:   DefaultFlatRate,
		DeliveryFee:       decimal.Zero,
		Active:            true,
	}
}

// ResolveRate returns the commission percentage to apply for a seller tier.
// Flat mode ignores the tier; tiered mode falls back to the standard rate
// for unknown tiers.
func (p *CommissionPolicy) ResolveRate(tier seller.Tier) decimal.Decimal {
	if p.Mode == ModeFlat {
		return p.FlatRate
	}
	switch tier {
	case seller.TierNew:
		return p.TierRateNew
	case seller.TierStandard:
		return p.TierRateStandard
	case seller.TierPremium:
		return p.TierRatePremium
	default:
		return p.TierRateStandard
	}
}

// Update replaces the policy values after an admin edit
func (p *CommissionPolicy) Update(mode Mode, flatRate, rateNew, rateStandard, ratePremium, deliveryFee decimal.Decimal) error {
	prev := *p
	p.Mode = mode
	p.FlatRate = flatRate
	p.TierRateNew = rateNew
	p.TierRateStandard = rateStandard
	p.TierRatePremium = ratePremium
	p.DeliveryFee = deliveryFee
	if err := p.validate(); err != nil {
		*p = prev
		return err
	}
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewCommissionPolicyUpdatedEvent(p))
	return nil
}

func (p *CommissionPolicy) validate() error {
	if !p.Mode.IsValid() {
		return shared.NewDomainError("INVALID_MODE", "Commission mode must be flat or tiered")
	}
	for _, rate := range []decimal.Decimal{p.FlatRate, p.TierRateNew, p.TierRateStandard, p.TierRatePremium} {
		if _, err := valueobject.NewPercent(rate); err != nil {
			return shared.NewDomainError("INVALID_RATE", "Commission rates must be between 0 and 100")
		}
	}
	if p.DeliveryFee.IsNegative() {
		return shared.NewDomainError("INVALID_FEE", "Delivery fee cannot be negative")
	}
	return nil
}
