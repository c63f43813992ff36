package payout

import (
	"time"

	domainpayout "github.com/bazaar/backend/internal/domain/payout"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Payout DTOs ====================

// GeneratePayoutsRequest represents the weekly payout generation request.
// When PeriodStart is omitted the previous full ISO week is used.
type GeneratePayoutsRequest struct {
	PeriodStart *time.Time `json:"period_start"`
}

// GeneratePayoutsResponse summarizes one generation run. Re-running for the
// same period reports zero created payouts once everything is settled.
type GeneratePayoutsResponse struct {
	PeriodStart  time.Time                `json:"period_start"`
	PeriodEnd    time.Time                `json:"period_end"`
	SellersSeen  int                      `json:"sellers_seen"`
	CreatedCount int                      `json:"created_count"`
	Payouts      []PayoutListItemResponse `json:"payouts"`
}

// UpdatePayoutStatusRequest drives a payout through its ledger states
type UpdatePayoutStatusRequest struct {
	Status        string `json:"status" binding:"required,oneof=processing completed failed"`
	TransactionID string `json:"transaction_id"`
	FailureReason string `json:"failure_reason"`
}

// AdjustPayoutRequest applies a signed manual correction to a payout
type AdjustPayoutRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note" binding:"required,min=1,max=255"`
}

// PayoutListFilter represents filter options for payout list
type PayoutListFilter struct {
	SellerID *uuid.UUID `form:"seller_id"`
	Status   *string    `form:"status"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PayoutOrderResponse represents one order covered by a payout
type PayoutOrderResponse struct {
	OrderID    uuid.UUID       `json:"order_id"`
	Gross      decimal.Decimal `json:"gross"`
	Commission decimal.Decimal `json:"commission"`
}

// PayoutResponse represents a payout batch in API responses
type PayoutResponse struct {
	ID                 uuid.UUID             `json:"id"`
	PayoutNumber       string                `json:"payout_number"`
	SellerID           uuid.UUID             `json:"seller_id"`
	PeriodStart        time.Time             `json:"period_start"`
	PeriodEnd          time.Time             `json:"period_end"`
	Year               int                   `json:"year"`
	WeekNumber         int                   `json:"week_number"`
	Orders             []PayoutOrderResponse `json:"orders"`
	GrossRevenue       decimal.Decimal       `json:"gross_revenue"`
	PlatformCommission decimal.Decimal       `json:"platform_commission"`
	Adjustments        decimal.Decimal       `json:"adjustments"`
	NetPayout          decimal.Decimal       `json:"net_payout"`
	Status             string                `json:"status"`
	TransactionID      string                `json:"transaction_id,omitempty"`
	FailureReason      string                `json:"failure_reason,omitempty"`
	PaidAt             *time.Time            `json:"paid_at,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	Version            int                   `json:"version"`
}

// PayoutListItemResponse represents a payout in list responses
type PayoutListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	PayoutNumber string          `json:"payout_number"`
	SellerID     uuid.UUID       `json:"seller_id"`
	Year         int             `json:"year"`
	WeekNumber   int             `json:"week_number"`
	OrderCount   int             `json:"order_count"`
	NetPayout    decimal.Decimal `json:"net_payout"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToPayoutResponse converts a domain payout to a response DTO
func ToPayoutResponse(p *domainpayout.Payout) PayoutResponse {
	orders := make([]PayoutOrderResponse, len(p.Orders))
	for i, ref := range p.Orders {
		orders[i] = PayoutOrderResponse{
			OrderID:    ref.OrderID,
			Gross:      ref.Gross,
			Commission: ref.Commission,
		}
	}

	return PayoutResponse{
		ID:                 p.ID,
		PayoutNumber:       p.PayoutNumber,
		SellerID:           p.SellerID,
		PeriodStart:        p.PeriodStart,
		PeriodEnd:          p.PeriodEnd,
		Year:               p.Year,
		WeekNumber:         p.WeekNumber,
		Orders:             orders,
		GrossRevenue:       p.GrossRevenue,
		PlatformCommission: p.PlatformCommission,
		Adjustments:        p.Adjustments,
		NetPayout:          p.NetPayout,
		Status:             string(p.Status),
		TransactionID:      p.TransactionID,
		FailureReason:      p.FailureReason,
		PaidAt:             p.PaidAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
		Version:            p.Version,
	}
}

// ToPayoutListItemResponse converts a domain payout to a list item DTO
func ToPayoutListItemResponse(p *domainpayout.Payout) PayoutListItemResponse {
	return PayoutListItemResponse{
		ID:           p.ID,
		PayoutNumber: p.PayoutNumber,
		SellerID:     p.SellerID,
		Year:         p.Year,
		WeekNumber:   p.WeekNumber,
		OrderCount:   len(p.Orders),
		NetPayout:    p.NetPayout,
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt,
	}
}
