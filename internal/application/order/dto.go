package order

import (
	"time"

	domainorder "github.com/bazaar/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Order DTOs ====================

// PlaceOrderRequest represents a request to place a routed order. The
// client echoes the quoted unit prices so the server can detect stale or
// tampered pricing before committing.
type PlaceOrderRequest struct {
	CustomerID uuid.UUID             `json:"customer_id" binding:"required"`
	Lines      []PlaceOrderLineInput `json:"lines" binding:"required,min=1,dive"`
}

// PlaceOrderLineInput represents one line of the order being placed
type PlaceOrderLineInput struct {
	ProductID         uuid.UUID       `json:"product_id" binding:"required"`
	Quantity          int64           `json:"quantity" binding:"required,min=1"`
	ExpectedUnitPrice decimal.Decimal `json:"expected_unit_price" binding:"required"`
}

// TransitionOrderRequest represents a lifecycle transition request
type TransitionOrderRequest struct {
	Status   string     `json:"status" binding:"required"`
	SellerID *uuid.UUID `json:"seller_id"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// AcceptLineRequest represents a seller accepting an assigned line
type AcceptLineRequest struct {
	SellerID uuid.UUID `json:"seller_id" binding:"required"`
}

// OrderListFilter represents filter options for order list
type OrderListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	SellerID   *uuid.UUID `form:"seller_id"`
	Status     *string    `form:"status"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderLineResponse represents an order line in API responses
type OrderLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ListingID        uuid.UUID       `json:"listing_id"`
	SellerID         uuid.UUID       `json:"seller_id"`
	Quantity         int64           `json:"quantity"`
	SellerPrice      decimal.Decimal `json:"seller_price"`
	CustomerPrice    decimal.Decimal `json:"customer_price"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	LineTotal        decimal.Decimal `json:"line_total"`
	SellerStatus     string          `json:"seller_status"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                 uuid.UUID           `json:"id"`
	OrderNumber        string              `json:"order_number"`
	CustomerID         uuid.UUID           `json:"customer_id"`
	Status             string              `json:"status"`
	PayoutStatus       string              `json:"payout_status"`
	Lines              []OrderLineResponse `json:"lines"`
	Subtotal           decimal.Decimal     `json:"subtotal"`
	DeliveryFee        decimal.Decimal     `json:"delivery_fee"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	PayoutHoldUntil    *time.Time          `json:"payout_hold_until,omitempty"`
	ActualDeliveryTime *time.Time          `json:"actual_delivery_time,omitempty"`
	CancelledAt        *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason       string              `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Version            int                 `json:"version"`
}

// OrderListItemResponse represents an order in list responses (less detail)
type OrderListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	OrderNumber  string          `json:"order_number"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	Status       string          `json:"status"`
	PayoutStatus string          `json:"payout_status"`
	LineCount    int             `json:"line_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToOrderLineResponse converts a domain order line to a response DTO
func ToOrderLineResponse(line *domainorder.OrderLine) OrderLineResponse {
	return OrderLineResponse{
		ID:               line.ID,
		ProductID:        line.ProductID,
		ListingID:        line.ListingID,
		SellerID:         line.SellerID,
		Quantity:         line.Quantity,
		SellerPrice:      line.SellerPrice,
		CustomerPrice:    line.CustomerPrice,
		CommissionRate:   line.CommissionRate,
		CommissionAmount: line.CommissionAmount,
		LineTotal:        line.LineTotal(),
		SellerStatus:     string(line.SellerStatus),
	}
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(o *domainorder.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i := range o.Lines {
		lines[i] = ToOrderLineResponse(&o.Lines[i])
	}

	return OrderResponse{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		CustomerID:         o.CustomerID,
		Status:             string(o.Status),
		PayoutStatus:       string(o.PayoutStatus),
		Lines:              lines,
		Subtotal:           o.Subtotal(),
		DeliveryFee:        o.DeliveryFee,
		TotalAmount:        o.TotalAmount,
		PayoutHoldUntil:    o.PayoutHoldUntil,
		ActualDeliveryTime: o.ActualDeliveryTime,
		CancelledAt:        o.CancelledAt,
		CancelReason:       o.CancelReason,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		Version:            o.Version,
	}
}

// ToOrderListItemResponse converts a domain order to a list item DTO
func ToOrderListItemResponse(o *domainorder.Order) OrderListItemResponse {
	return OrderListItemResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		CustomerID:   o.CustomerID,
		Status:       string(o.Status),
		PayoutStatus: string(o.PayoutStatus),
		LineCount:    len(o.Lines),
		TotalAmount:  o.TotalAmount,
		CreatedAt:    o.CreatedAt,
	}
}
