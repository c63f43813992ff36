package routing

import (
	"testing"

	"github.com/bazaar/backend/internal/domain/catalog"
	"github.com/bazaar/backend/internal/domain/commission"
	"github.com/bazaar/backend/internal/domain/seller"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func testListing(t *testing.T, sellerID uuid.UUID, productID uuid.UUID, price float64, stock int64) catalog.SellerListing {
	l, err := catalog.NewSellerListing(sellerID, productID, decimal.NewFromFloat(price), stock, decimal.NewFromInt(1), "pcs")
	require.NoError(t, err)
	return *l
}

func testPerf(tier seller.Tier, fulfillment, quality float64) SellerPerformance {
	return SellerPerformance{
		Tier:            tier,
		FulfillmentRate: decimal.NewFromFloat(fulfillment),
		QualityScore:    decimal.NewFromFloat(quality),
	}
}

func tieredPolicy(t *testing.T, rateNew, rateStandard, ratePremium float64) *commission.CommissionPolicy {
	p, err := commission.NewCommissionPolicy(
		commission.ModeTiered,
		decimal.NewFromInt(10),
		decimal.NewFromFloat(rateNew),
		decimal.NewFromFloat(rateStandard),
		decimal.NewFromFloat(ratePremium),
		decimal.Zero,
	)
	require.NoError(t, err)
	return p
}

// ============================================
// Scoring Tests
// ============================================

func TestScore_CheapestGetsFullPriceComponent(t *testing.T) {
	productID := uuid.New()
	cheap := testListing(t, uuid.New(), productID, 90, 100)
	pricey := testListing(t, uuid.New(), productID, 100, 100)
	perf := testPerf(seller.TierNew, 100, 5)
	minPrice := decimal.NewFromInt(90)

	cheapScore := Score(&cheap, &perf, minPrice, 1)
	priceyScore := Score(&pricey, &perf, minPrice, 1)

	assert.True(t, cheapScore.Price.Equal(decimal.NewFromInt(40)))
	assert.True(t, priceyScore.Price.Equal(decimal.NewFromInt(36)), "price component was %s", priceyScore.Price)
}

func TestScore_Components(t *testing.T) {
	productID := uuid.New()
	listing := testListing(t, uuid.New(), productID, 100, 20)
	perf := testPerf(seller.TierPremium, 95, 4.5)

	b := Score(&listing, &perf, decimal.NewFromInt(100), 5)

	assert.True(t, b.Price.Equal(decimal.NewFromInt(40)))
	assert.True(t, b.Fulfillment.Equal(decimal.NewFromFloat(28.5)))
	assert.True(t, b.Quality.Equal(decimal.NewFromInt(18)))
	assert.True(t, b.TierBonus.Equal(decimal.NewFromInt(10)))
	// stock 20 >= 2*5, buffer bonus applies
	assert.True(t, b.StockBonus.Equal(decimal.NewFromInt(5)))
	assert.True(t, b.Total.Equal(decimal.NewFromFloat(101.5)))
}

func TestScore_NoStockBufferBonus(t *testing.T) {
	productID := uuid.New()
	listing := testListing(t, uuid.New(), productID, 50, 9)
	perf := testPerf(seller.TierStandard, 80, 4)

	b := Score(&listing, &perf, decimal.NewFromInt(50), 5)
	assert.True(t, b.StockBonus.IsZero())
	assert.True(t, b.TierBonus.Equal(decimal.NewFromInt(5)))
}

// ============================================
// Routing Tests
// ============================================

func TestRouteItems_PicksBestSeller(t *testing.T) {
	productID := uuid.New()
	premiumSeller := uuid.New()
	newSeller := uuid.New()

	listings := map[uuid.UUID][]catalog.SellerListing{
		productID: {
			testListing(t, newSeller, productID, 90, 50),
			testListing(t, premiumSeller, productID, 95, 50),
		},
	}
	perfs := map[uuid.UUID]SellerPerformance{
		newSeller:     testPerf(seller.TierNew, 70, 3),
		premiumSeller: testPerf(seller.TierPremium, 98, 4.8),
	}

	result, err := RouteItems(
		[]LineRequest{{ProductID: productID, Quantity: 2}},
		listings, perfs, tieredPolicy(t, 15, 10, 5),
	)
	require.NoError(t, err)
	require.Len(t, result.Lines, 1)
	require.Equal(t, LineKindRouted, result.Lines[0].Kind)

	routed := result.Lines[0].Routed
	// premium wins on reliability and tier despite the higher price
	assert.Equal(t, premiumSeller, routed.SellerID)
	assert.True(t, routed.CommissionRate.Equal(decimal.NewFromInt(5)))
	// 95 * 1.05 = 99.75
	assert.True(t, routed.CustomerPrice.Equal(decimal.NewFromFloat(99.75)), "customer price was %s", routed.CustomerPrice)
	// 95 * 2 * 5% = 9.50
	assert.True(t, routed.CommissionAmount.Equal(decimal.NewFromFloat(9.5)), "commission was %s", routed.CommissionAmount)
	// the winner carries its score decomposition
	assert.True(t, routed.Breakdown.Total.Equal(routed.Score))
	sum := routed.Breakdown.Price.
		Add(routed.Breakdown.Fulfillment).
		Add(routed.Breakdown.Quality).
		Add(routed.Breakdown.TierBonus).
		Add(routed.Breakdown.StockBonus)
	assert.True(t, sum.Equal(routed.Score))
}

func TestRouteItems_CommissionMarkup(t *testing.T) {
	productID := uuid.New()
	sellerID := uuid.New()
	listings := map[uuid.UUID][]catalog.SellerListing{
		productID: {testListing(t, sellerID, productID, 90, 10)},
	}
	perfs := map[uuid.UUID]SellerPerformance{
		sellerID: testPerf(seller.TierPremium, 100, 5),
	}

	result, err := RouteItems(
		[]LineRequest{{ProductID: productID, Quantity: 1}},
		listings, perfs, tieredPolicy(t, 15, 10, 5),
	)
	require.NoError(t, err)

	routed := result.Lines[0].Routed
	// 90 at 5% -> 94.50 customer price, 4.50 commission
	assert.True(t, routed.CustomerPrice.Equal(decimal.NewFromFloat(94.5)))
	assert.True(t, routed.CommissionAmount.Equal(decimal.NewFromFloat(4.5)))
	assert.True(t, routed.SellerPrice.Equal(decimal.NewFromInt(90)))
}

func TestRouteItems_Deterministic(t *testing.T) {
	productID := uuid.New()
	sellerA := uuid.New()
	sellerB := uuid.New()

	// identical prices and snapshots: the first-seen listing must win,
	// run after run
	listings := map[uuid.UUID][]catalog.SellerListing{
		productID: {
			testListing(t, sellerA, productID, 100, 50),
			testListing(t, sellerB, productID, 100, 50),
		},
	}
	perfs := map[uuid.UUID]SellerPerformance{
		sellerA: testPerf(seller.TierStandard, 90, 4),
		sellerB: testPerf(seller.TierStandard, 90, 4),
	}
	policy := tieredPolicy(t, 15, 10, 5)

	for i := 0; i < 10; i++ {
		result, err := RouteItems([]LineRequest{{ProductID: productID, Quantity: 1}}, listings, perfs, policy)
		require.NoError(t, err)
		assert.Equal(t, sellerA, result.Lines[0].Routed.SellerID)
	}
}

func TestRouteItems_TieBreaksOnLowerPrice(t *testing.T) {
	productID := uuid.New()
	cheapSeller := uuid.New()
	bufferSeller := uuid.New()

	// bufferSeller's stock bonus exactly offsets its higher price
	// (87.5/100*40 + 5 == 40), so the totals tie and the cheaper listing
	// must win
	listings := map[uuid.UUID][]catalog.SellerListing{
		productID: {
			testListing(t, bufferSeller, productID, 100, 50),
			testListing(t, cheapSeller, productID, 87.5, 1),
		},
	}
	perfs := map[uuid.UUID]SellerPerformance{
		cheapSeller:  testPerf(seller.TierStandard, 90, 4),
		bufferSeller: testPerf(seller.TierStandard, 90, 4),
	}

	result, err := RouteItems([]LineRequest{{ProductID: productID, Quantity: 1}}, listings, perfs, tieredPolicy(t, 15, 10, 5))
	require.NoError(t, err)

	assert.Equal(t, cheapSeller, result.Lines[0].Routed.SellerID)
}

func TestRouteItems_Unavailability(t *testing.T) {
	inStock := uuid.New()
	outOfStock := uuid.New()
	unlisted := uuid.New()
	suspendedProduct := uuid.New()
	suspendedSeller := uuid.New()

	listings := map[uuid.UUID][]catalog.SellerListing{
		inStock:          {testListing(t, uuid.New(), inStock, 10, 100)},
		outOfStock:       {testListing(t, uuid.New(), outOfStock, 10, 1)},
		suspendedProduct: {testListing(t, suspendedSeller, suspendedProduct, 10, 100)},
	}
	perfs := map[uuid.UUID]SellerPerformance{
		suspendedSeller: {Tier: seller.TierStandard, FulfillmentRate: decimal.NewFromInt(90), QualityScore: decimal.NewFromInt(4), Suspended: true},
	}

	result, err := RouteItems([]LineRequest{
		{ProductID: inStock, Quantity: 5},
		{ProductID: outOfStock, Quantity: 5},
		{ProductID: unlisted, Quantity: 1},
		{ProductID: suspendedProduct, Quantity: 1},
	}, listings, perfs, tieredPolicy(t, 15, 10, 5))
	require.NoError(t, err)
	require.Len(t, result.Lines, 4)

	assert.Equal(t, LineKindRouted, result.Lines[0].Kind)

	assert.Equal(t, LineKindUnavailable, result.Lines[1].Kind)
	assert.Equal(t, ReasonOutOfStock, result.Lines[1].Unavailable.Reason)

	// no listing at all means no stock to sell
	assert.Equal(t, LineKindUnavailable, result.Lines[2].Kind)
	assert.Equal(t, ReasonOutOfStock, result.Lines[2].Unavailable.Reason)

	assert.Equal(t, LineKindUnavailable, result.Lines[3].Kind)
	assert.Equal(t, ReasonNoEligibleSeller, result.Lines[3].Unavailable.Reason)

	assert.False(t, result.AllRouted())
}

func TestRouteItems_SellerWithoutPerformanceRecordIsNotRoutable(t *testing.T) {
	productID := uuid.New()
	sellerID := uuid.New()
	listings := map[uuid.UUID][]catalog.SellerListing{
		productID: {testListing(t, sellerID, productID, 25, 10)},
	}

	result, err := RouteItems(
		[]LineRequest{{ProductID: productID, Quantity: 1}},
		listings, map[uuid.UUID]SellerPerformance{}, tieredPolicy(t, 15, 10, 5),
	)
	require.NoError(t, err)
	require.Equal(t, LineKindUnavailable, result.Lines[0].Kind)
	assert.Equal(t, ReasonNoEligibleSeller, result.Lines[0].Unavailable.Reason)
}

func TestRouteItems_RecordlessSellerCannotOutscoreProvenSeller(t *testing.T) {
	productID := uuid.New()
	recordless := uuid.New()
	proven := uuid.New()

	// the recordless seller undercuts on price but has no snapshot, so the
	// proven seller must win
	listings := map[uuid.UUID][]catalog.SellerListing{
		productID: {
			testListing(t, recordless, productID, 80, 100),
			testListing(t, proven, productID, 100, 100),
		},
	}
	perfs := map[uuid.UUID]SellerPerformance{
		proven: testPerf(seller.TierStandard, 85, 4),
	}

	result, err := RouteItems(
		[]LineRequest{{ProductID: productID, Quantity: 1}},
		listings, perfs, tieredPolicy(t, 15, 10, 5),
	)
	require.NoError(t, err)
	require.Equal(t, LineKindRouted, result.Lines[0].Kind)
	assert.Equal(t, proven, result.Lines[0].Routed.SellerID)
}

func TestRouteItems_Validation(t *testing.T) {
	productID := uuid.New()

	t.Run("nil policy", func(t *testing.T) {
		_, err := RouteItems([]LineRequest{{ProductID: productID, Quantity: 1}}, nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := RouteItems([]LineRequest{{ProductID: productID, Quantity: 0}}, nil, nil, commission.DefaultPolicy())
		assert.Error(t, err)
	})
}

func TestRouteResult_Subtotal(t *testing.T) {
	productID := uuid.New()
	sellerID := uuid.New()
	listings := map[uuid.UUID][]catalog.SellerListing{
		productID: {testListing(t, sellerID, productID, 100, 50)},
	}
	perfs := map[uuid.UUID]SellerPerformance{
		sellerID: testPerf(seller.TierStandard, 90, 4),
	}

	policy, err := commission.NewCommissionPolicy(
		commission.ModeFlat,
		decimal.NewFromInt(10),
		decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.NewFromInt(10),
		decimal.NewFromInt(40),
	)
	require.NoError(t, err)

	result, err := RouteItems([]LineRequest{{ProductID: productID, Quantity: 3}}, listings, perfs, policy)
	require.NoError(t, err)

	// 3 * 110 routed lines, delivery fee reported separately
	assert.True(t, result.Subtotal().Equal(decimal.NewFromInt(330)))
	assert.True(t, result.DeliveryFee.Equal(decimal.NewFromInt(40)))
	assert.True(t, result.AllRouted())
}
