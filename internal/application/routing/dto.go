package routing

import (
	"time"

	domainrouting "github.com/bazaar/backend/internal/domain/routing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Quote DTOs ====================

// QuoteRequest represents a request to route a basket of product lines
type QuoteRequest struct {
	Lines []QuoteLineInput `json:"lines" binding:"required,min=1,dive"`
}

// QuoteLineInput represents one requested product line
type QuoteLineInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,min=1"`
}

// QuoteLineResponse represents one routed or unavailable line in the quote
type QuoteLineResponse struct {
	ProductID        uuid.UUID               `json:"product_id"`
	Quantity         int64                   `json:"quantity"`
	Available        bool                    `json:"available"`
	Reason           string                  `json:"reason,omitempty"`
	ListingID        *uuid.UUID              `json:"listing_id,omitempty"`
	SellerID         *uuid.UUID              `json:"seller_id,omitempty"`
	UnitPrice        *decimal.Decimal        `json:"unit_price,omitempty"`
	LineTotal        *decimal.Decimal        `json:"line_total,omitempty"`
	CommissionRate   *decimal.Decimal        `json:"commission_rate,omitempty"`
	CommissionAmount *decimal.Decimal        `json:"commission_amount,omitempty"`
	Score            *decimal.Decimal        `json:"score,omitempty"`
	ScoreBreakdown   *ScoreBreakdownResponse `json:"score_breakdown,omitempty"`
}

// ScoreBreakdownResponse shows how the winning candidate's score decomposes
type ScoreBreakdownResponse struct {
	Price       decimal.Decimal `json:"price"`
	Fulfillment decimal.Decimal `json:"fulfillment"`
	Quality     decimal.Decimal `json:"quality"`
	TierBonus   decimal.Decimal `json:"tier_bonus"`
	StockBonus  decimal.Decimal `json:"stock_bonus"`
	Total       decimal.Decimal `json:"total"`
}

// QuoteResponse represents the routed quote for a basket
type QuoteResponse struct {
	Lines       []QuoteLineResponse `json:"lines"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	DeliveryFee decimal.Decimal     `json:"delivery_fee"`
	Total       decimal.Decimal     `json:"total"`
	AllRouted   bool                `json:"all_routed"`
	QuotedAt    time.Time           `json:"quoted_at"`
}

// ToQuoteResponse converts a domain route result to the response DTO
func ToQuoteResponse(result domainrouting.RouteResult) QuoteResponse {
	lines := make([]QuoteLineResponse, 0, len(result.Lines))
	for _, line := range result.Lines {
		if line.Kind == domainrouting.LineKindRouted {
			r := line.Routed
			lineTotal := r.CustomerPrice.Mul(decimal.NewFromInt(r.Quantity))
			lines = append(lines, QuoteLineResponse{
				ProductID:        r.ProductID,
				Quantity:         r.Quantity,
				Available:        true,
				ListingID:        &r.ListingID,
				SellerID:         &r.SellerID,
				UnitPrice:        &r.CustomerPrice,
				LineTotal:        &lineTotal,
				CommissionRate:   &r.CommissionRate,
				CommissionAmount: &r.CommissionAmount,
				Score:            &r.Score,
				ScoreBreakdown: &ScoreBreakdownResponse{
					Price:       r.Breakdown.Price,
					Fulfillment: r.Breakdown.Fulfillment,
					Quality:     r.Breakdown.Quality,
					TierBonus:   r.Breakdown.TierBonus,
					StockBonus:  r.Breakdown.StockBonus,
					Total:       r.Breakdown.Total,
				},
			})
			continue
		}
		u := line.Unavailable
		lines = append(lines, QuoteLineResponse{
			ProductID: u.ProductID,
			Quantity:  u.Quantity,
			Reason:    u.Reason,
		})
	}

	subtotal := result.Subtotal()
	return QuoteResponse{
		Lines:       lines,
		Subtotal:    subtotal,
		DeliveryFee: result.DeliveryFee,
		Total:       subtotal.Add(result.DeliveryFee),
		AllRouted:   result.AllRouted(),
		QuotedAt:    time.Now(),
	}
}
