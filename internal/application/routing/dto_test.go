package routing

import (
	"testing"

	domainrouting "github.com/bazaar/backend/internal/domain/routing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToQuoteResponse_ExposesScoreBreakdown(t *testing.T) {
	breakdown := domainrouting.ScoreBreakdown{
		Price:       decimal.NewFromInt(40),
		Fulfillment: decimal.NewFromInt(27),
		Quality:     decimal.NewFromInt(16),
		TierBonus:   decimal.NewFromInt(5),
		StockBonus:  decimal.NewFromInt(5),
		Total:       decimal.NewFromInt(93),
	}
	result := domainrouting.RouteResult{
		Lines: []domainrouting.Line{{
			Kind: domainrouting.LineKindRouted,
			Routed: &domainrouting.RoutedLine{
				ProductID:        uuid.New(),
				ListingID:        uuid.New(),
				SellerID:         uuid.New(),
				Quantity:         2,
				SellerPrice:      decimal.NewFromInt(100),
				CustomerPrice:    decimal.NewFromInt(110),
				CommissionRate:   decimal.NewFromInt(10),
				CommissionAmount: decimal.NewFromInt(20),
				Score:            breakdown.Total,
				Breakdown:        breakdown,
			},
		}},
		DeliveryFee: decimal.NewFromInt(40),
	}

	resp := ToQuoteResponse(result)
	require.Len(t, resp.Lines, 1)

	line := resp.Lines[0]
	require.NotNil(t, line.Score)
	assert.True(t, line.Score.Equal(decimal.NewFromInt(93)))
	require.NotNil(t, line.ScoreBreakdown)
	assert.True(t, line.ScoreBreakdown.Fulfillment.Equal(decimal.NewFromInt(27)))
	assert.True(t, line.ScoreBreakdown.Total.Equal(*line.Score))
}

func TestToQuoteResponse_UnavailableLineCarriesReason(t *testing.T) {
	productID := uuid.New()
	result := domainrouting.RouteResult{
		Lines: []domainrouting.Line{{
			Kind: domainrouting.LineKindUnavailable,
			Unavailable: &domainrouting.UnavailableLine{
				ProductID: productID,
				Quantity:  1,
				Reason:    domainrouting.ReasonOutOfStock,
			},
		}},
	}

	resp := ToQuoteResponse(result)
	require.Len(t, resp.Lines, 1)
	assert.False(t, resp.Lines[0].Available)
	assert.Equal(t, domainrouting.ReasonOutOfStock, resp.Lines[0].Reason)
	assert.Nil(t, resp.Lines[0].Score)
	assert.False(t, resp.AllRouted)
}
