package payout

import (
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePayout = "Payout"

// Event type constants
const (
	EventTypePayoutGenerated     = "PayoutGenerated"
	EventTypePayoutStatusChanged = "PayoutStatusChanged"
	EventTypePayoutCompleted     = "PayoutCompleted"
	EventTypePayoutFailed        = "PayoutFailed"
	EventTypePayoutAdjusted      = "PayoutAdjusted"
)

// PayoutGeneratedEvent is raised when a weekly batch is created
type PayoutGeneratedEvent struct {
	shared.BaseDomainEvent
	PayoutNumber string          `json:"payout_number"`
	SellerID     uuid.UUID       `json:"seller_id"`
	OrderCount   int             `json:"order_count"`
	NetPayout    decimal.Decimal `json:"net_payout"`
}

// NewPayoutGeneratedEvent creates a new PayoutGeneratedEvent
func NewPayoutGeneratedEvent(p *Payout) *PayoutGeneratedEvent {
	return &PayoutGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutGenerated, AggregateTypePayout, p.ID),
		PayoutNumber:    p.PayoutNumber,
		SellerID:        p.SellerID,
		OrderCount:      len(p.Orders),
		NetPayout:       p.NetPayout,
	}
}

// EventType returns the event type name
func (e *PayoutGeneratedEvent) EventType() string {
	return EventTypePayoutGenerated
}

// PayoutStatusChangedEvent is raised on non-terminal status moves
type PayoutStatusChangedEvent struct {
	shared.BaseDomainEvent
	PayoutNumber string       `json:"payout_number"`
	ToStatus     PayoutStatus `json:"to_status"`
}

// NewPayoutStatusChangedEvent creates a new PayoutStatusChangedEvent
func NewPayoutStatusChangedEvent(p *Payout, to PayoutStatus) *PayoutStatusChangedEvent {
	return &PayoutStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutStatusChanged, AggregateTypePayout, p.ID),
		PayoutNumber:    p.PayoutNumber,
		ToStatus:        to,
	}
}

// EventType returns the event type name
func (e *PayoutStatusChangedEvent) EventType() string {
	return EventTypePayoutStatusChanged
}

// PayoutCompletedEvent is raised when the payment rail confirms the payout
type PayoutCompletedEvent struct {
	shared.BaseDomainEvent
	PayoutNumber  string          `json:"payout_number"`
	SellerID      uuid.UUID       `json:"seller_id"`
	NetPayout     decimal.Decimal `json:"net_payout"`
	TransactionID string          `json:"transaction_id"`
}

// NewPayoutCompletedEvent creates a new PayoutCompletedEvent
func NewPayoutCompletedEvent(p *Payout) *PayoutCompletedEvent {
	return &PayoutCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutCompleted, AggregateTypePayout, p.ID),
		PayoutNumber:    p.PayoutNumber,
		SellerID:        p.SellerID,
		NetPayout:       p.NetPayout,
		TransactionID:   p.TransactionID,
	}
}

// EventType returns the event type name
func (e *PayoutCompletedEvent) EventType() string {
	return EventTypePayoutCompleted
}

// PayoutFailedEvent is raised when a payment attempt fails or the batch
// empties out
type PayoutFailedEvent struct {
	shared.BaseDomainEvent
	PayoutNumber string    `json:"payout_number"`
	SellerID     uuid.UUID `json:"seller_id"`
	Reason       string    `json:"reason"`
}

// NewPayoutFailedEvent creates a new PayoutFailedEvent
func NewPayoutFailedEvent(p *Payout, reason string) *PayoutFailedEvent {
	return &PayoutFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutFailed, AggregateTypePayout, p.ID),
		PayoutNumber:    p.PayoutNumber,
		SellerID:        p.SellerID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *PayoutFailedEvent) EventType() string {
	return EventTypePayoutFailed
}

// PayoutAdjustedEvent is raised when an admin applies a manual correction
type PayoutAdjustedEvent struct {
	shared.BaseDomainEvent
	PayoutNumber string          `json:"payout_number"`
	Amount       decimal.Decimal `json:"amount"`
	Note         string          `json:"note"`
	NetPayout    decimal.Decimal `json:"net_payout"`
}

// NewPayoutAdjustedEvent creates a new PayoutAdjustedEvent
func NewPayoutAdjustedEvent(p *Payout, amount decimal.Decimal, note string) *PayoutAdjustedEvent {
	return &PayoutAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayoutAdjusted, AggregateTypePayout, p.ID),
		PayoutNumber:    p.PayoutNumber,
		Amount:          amount,
		Note:            note,
		NetPayout:       p.NetPayout,
	}
}

// EventType returns the event type name
func (e *PayoutAdjustedEvent) EventType() string {
	return EventTypePayoutAdjusted
}
