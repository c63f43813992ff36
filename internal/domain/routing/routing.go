package routing

import (
	"github.com/bazaar/backend/internal/domain/catalog"
	"github.com/bazaar/backend/internal/domain/commission"
	"github.com/bazaar/backend/internal/domain/seller"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineRequest is one product line a customer wants routed
type LineRequest struct {
	ProductID uuid.UUID
	Quantity  int64
}

// LineKind discriminates routed from unavailable lines
type LineKind string

const (
	LineKindRouted      LineKind = "routed"
	LineKindUnavailable LineKind = "unavailable"
)

// Unavailability reasons
const (
	ReasonOutOfStock       = "out_of_stock"
	ReasonNoEligibleSeller = "no_eligible_seller"
)

// RoutedLine is a line that was assigned to a winning seller, with the
// commission rate captured at routing time
type RoutedLine struct {
	ProductID        uuid.UUID
	ListingID        uuid.UUID
	SellerID         uuid.UUID
	Quantity         int64
	SellerPrice      decimal.Decimal
	CustomerPrice    decimal.Decimal
	CommissionRate   decimal.Decimal
	CommissionAmount decimal.Decimal
	Score            decimal.Decimal
	Breakdown        ScoreBreakdown
}

// UnavailableLine is a line no seller could fulfill
type UnavailableLine struct {
	ProductID uuid.UUID
	Quantity  int64
	Reason    string
}

// Line is the per-request routing outcome. Exactly one of Routed and
// Unavailable is set, according to Kind.
type Line struct {
	Kind        LineKind
	Routed      *RoutedLine
	Unavailable *UnavailableLine
}

// RouteResult is the outcome of routing a full quote request
type RouteResult struct {
	Lines       []Line
	DeliveryFee decimal.Decimal
}

// Subtotal sums the customer price times quantity over routed lines
func (r RouteResult) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Lines {
		if line.Kind == LineKindRouted {
			total = total.Add(line.Routed.CustomerPrice.Mul(decimal.NewFromInt(line.Routed.Quantity)))
		}
	}
	return total
}

// AllRouted reports whether every requested line found a seller
func (r RouteResult) AllRouted() bool {
	for _, line := range r.Lines {
		if line.Kind != LineKindRouted {
			return false
		}
	}
	return true
}

// Scoring weights. Price dominates, then reliability, then quality, with a
// small tier bonus and a stock-buffer nudge on top.
var (
	weightPrice       = decimal.NewFromInt(40)
	weightFulfillment = decimal.NewFromInt(30)
	weightQuality     = decimal.NewFromInt(20)
	bonusTierPremium  = decimal.NewFromInt(10)
	bonusTierStandard = decimal.NewFromInt(5)
	bonusStockBuffer  = decimal.NewFromInt(5)

	hundred = decimal.NewFromInt(100)
	five    = decimal.NewFromInt(5)
)

// ScoreBreakdown shows how a candidate's score decomposes, for quote
// transparency and debugging
type ScoreBreakdown struct {
	Price       decimal.Decimal
	Fulfillment decimal.Decimal
	Quality     decimal.Decimal
	TierBonus   decimal.Decimal
	StockBonus  decimal.Decimal
	Total       decimal.Decimal
}

// Score computes the breakdown for one candidate listing. minPrice is the
// lowest seller price among eligible candidates for the same product; the
// cheapest candidate gets the full price component.
func Score(listing *catalog.SellerListing, perf *SellerPerformance, minPrice decimal.Decimal, wantQty int64) ScoreBreakdown {
	var b ScoreBreakdown

	if listing.Price.IsPositive() {
		b.Price = minPrice.Div(listing.Price).Mul(weightPrice)
	}
	b.Fulfillment = perf.FulfillmentRate.Div(hundred).Mul(weightFulfillment)
	b.Quality = perf.QualityScore.Div(five).Mul(weightQuality)

	switch perf.Tier {
	case seller.TierPremium:
		b.TierBonus = bonusTierPremium
	case seller.TierStandard:
		b.TierBonus = bonusTierStandard
	}
	if listing.HasStockBuffer(wantQty) {
		b.StockBonus = bonusStockBuffer
	}

	b.Total = b.Price.Add(b.Fulfillment).Add(b.Quality).Add(b.TierBonus).Add(b.StockBonus)
	return b
}

// SellerPerformance is the snapshot slice the router needs. Sellers without
// a stored snapshot are not routable.
type SellerPerformance struct {
	Tier            seller.Tier
	FulfillmentRate decimal.Decimal
	QualityScore    decimal.Decimal
	Suspended       bool
}

// RouteItems assigns each requested line to the best eligible seller.
// listingsByProduct carries active candidate listings per product in stable
// repository order; perfs carries performance snapshots keyed by seller.
// Ties break on lower seller price, then first-seen listing order, so the
// same inputs always route the same way.
func RouteItems(reqs []LineRequest, listingsByProduct map[uuid.UUID][]catalog.SellerListing, perfs map[uuid.UUID]SellerPerformance, policy *commission.CommissionPolicy) (RouteResult, error) {
	if policy == nil {
		return RouteResult{}, shared.NewDomainError("INVALID_POLICY", "Commission policy is required")
	}

	result := RouteResult{
		Lines:       make([]Line, 0, len(reqs)),
		DeliveryFee: policy.DeliveryFee,
	}

	for _, req := range reqs {
		if req.Quantity <= 0 {
			return RouteResult{}, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
		}
		result.Lines = append(result.Lines, routeLine(req, listingsByProduct[req.ProductID], perfs, policy))
	}
	return result, nil
}

func routeLine(req LineRequest, candidates []catalog.SellerListing, perfs map[uuid.UUID]SellerPerformance, policy *commission.CommissionPolicy) Line {
	// Stock check comes first: a product with no listing covering the
	// quantity is out_of_stock regardless of seller eligibility.
	inStock := make([]*catalog.SellerListing, 0, len(candidates))
	for i := range candidates {
		if candidates[i].CanFulfill(req.Quantity) {
			inStock = append(inStock, &candidates[i])
		}
	}
	if len(inStock) == 0 {
		return unavailable(req, ReasonOutOfStock)
	}

	type eligible struct {
		listing *catalog.SellerListing
		perf    SellerPerformance
	}

	// A seller routes only with a performance record on file and no
	// active suspension.
	pool := make([]eligible, 0, len(inStock))
	for _, listing := range inStock {
		perf, ok := perfs[listing.SellerID]
		if !ok || perf.Suspended {
			continue
		}
		pool = append(pool, eligible{listing: listing, perf: perf})
	}

	if len(pool) == 0 {
		return unavailable(req, ReasonNoEligibleSeller)
	}

	minPrice := pool[0].listing.Price
	for _, c := range pool[1:] {
		if c.listing.Price.LessThan(minPrice) {
			minPrice = c.listing.Price
		}
	}

	best := pool[0]
	bestScore := Score(best.listing, &best.perf, minPrice, req.Quantity)
	for _, c := range pool[1:] {
		s := Score(c.listing, &c.perf, minPrice, req.Quantity)
		if s.Total.GreaterThan(bestScore.Total) ||
			(s.Total.Equal(bestScore.Total) && c.listing.Price.LessThan(best.listing.Price)) {
			best, bestScore = c, s
		}
	}

	rate := policy.ResolveRate(best.perf.Tier)
	qty := decimal.NewFromInt(req.Quantity)
	sellerPrice := best.listing.Price
	customerPrice := sellerPrice.Mul(decimal.NewFromInt(1).Add(rate.Div(hundred))).Round(2)
	commissionAmount := sellerPrice.Mul(qty).Mul(rate).Div(hundred).Round(2)

	return Line{
		Kind: LineKindRouted,
		Routed: &RoutedLine{
			ProductID:        req.ProductID,
			ListingID:        best.listing.ID,
			SellerID:         best.listing.SellerID,
			Quantity:         req.Quantity,
			SellerPrice:      sellerPrice,
			CustomerPrice:    customerPrice,
			CommissionRate:   rate,
			CommissionAmount: commissionAmount,
			Score:            bestScore.Total,
			Breakdown:        bestScore,
		},
	}
}

func unavailable(req LineRequest, reason string) Line {
	return Line{
		Kind: LineKindUnavailable,
		Unavailable: &UnavailableLine{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Reason:    reason,
		},
	}
}
