package payout

import (
	"fmt"
	"time"

	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayoutStatus represents the lifecycle state of a payout batch
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
)

// IsValid checks if the status is a valid PayoutStatus
func (s PayoutStatus) IsValid() bool {
	switch s {
	case PayoutStatusPending, PayoutStatusProcessing, PayoutStatusCompleted, PayoutStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of PayoutStatus
func (s PayoutStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the payout can no longer change
func (s PayoutStatus) IsTerminal() bool {
	return s == PayoutStatusCompleted || s == PayoutStatusFailed
}

// CanTransitionTo checks if transitioning to the target status is allowed
func (s PayoutStatus) CanTransitionTo(target PayoutStatus) bool {
	switch s {
	case PayoutStatusPending:
		return target == PayoutStatusProcessing || target == PayoutStatusCompleted || target == PayoutStatusFailed
	case PayoutStatusProcessing:
		return target == PayoutStatusCompleted || target == PayoutStatusFailed
	default:
		return false
	}
}

// FailureReasonAllOrdersCancelled marks a payout automatically failed
// because every order it covered was cancelled before settlement.
const FailureReasonAllOrdersCancelled = "all_orders_cancelled"

// PayoutOrderRef links a payout batch to one settled order with the
// amounts captured at generation time
type PayoutOrderRef struct {
	shared.BaseEntity
	PayoutID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Gross      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Commission decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// Payout is one seller's weekly settlement batch. Net is always gross
// minus commission plus adjustments; every mutation recomputes it.
type Payout struct {
	shared.BaseAggregateRoot
	PayoutNumber       string           `gorm:"type:varchar(32);uniqueIndex;not null"`
	SellerID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	PeriodStart        time.Time        `gorm:"not null"`
	PeriodEnd          time.Time        `gorm:"not null"`
	Year               int              `gorm:"not null"`
	WeekNumber         int              `gorm:"not null"`
	Orders             []PayoutOrderRef `gorm:"foreignKey:PayoutID"`
	GrossRevenue       decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	PlatformCommission decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	Adjustments        decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0"`
	NetPayout          decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	Status             PayoutStatus     `gorm:"type:varchar(20);not null;default:'pending';index"`
	TransactionID      string           `gorm:"type:varchar(64)"`
	FailureReason      string           `gorm:"type:varchar(255)"`
	PaidAt             *time.Time
}

// OrderEntry is one order's contribution used to build a payout batch
type OrderEntry struct {
	OrderID    uuid.UUID
	Gross      decimal.Decimal
	Commission decimal.Decimal
}

// NewPayout creates a pending payout batch for one seller and period
func NewPayout(payoutNumber string, sellerID uuid.UUID, periodStart, periodEnd time.Time, entries []OrderEntry) (*Payout, error) {
	if payoutNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYOUT_NUMBER", "Payout number cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end must be after period start")
	}
	if len(entries) == 0 {
		return nil, shared.NewDomainError("EMPTY_PAYOUT", "Payout must cover at least one order")
	}

	year, week := periodStart.ISOWeek()
	p := &Payout{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		PayoutNumber:       payoutNumber,
		SellerID:           sellerID,
		PeriodStart:        periodStart,
		PeriodEnd:          periodEnd,
		Year:               year,
		WeekNumber:         week,
		Adjustments:        decimal.Zero,
		Status:             PayoutStatusPending,
	}
	for _, entry := range entries {
		if entry.OrderID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
		}
		p.Orders = append(p.Orders, PayoutOrderRef{
			BaseEntity: shared.NewBaseEntity(),
			PayoutID:   p.ID,
			OrderID:    entry.OrderID,
			Gross:      entry.Gross,
			Commission: entry.Commission,
		})
	}
	p.recompute()

	p.AddDomainEvent(NewPayoutGeneratedEvent(p))
	return p, nil
}

// recompute rebuilds the totals from the order refs. Net stays
// gross - commission + adjustments by construction.
func (p *Payout) recompute() {
	gross := decimal.Zero
	commission := decimal.Zero
	for _, ref := range p.Orders {
		gross = gross.Add(ref.Gross)
		commission = commission.Add(ref.Commission)
	}
	p.GrossRevenue = gross
	p.PlatformCommission = commission
	p.NetPayout = gross.Sub(commission).Add(p.Adjustments)
}

// OrderIDs returns the IDs of the orders locked into this batch
func (p *Payout) OrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Orders))
	for _, ref := range p.Orders {
		ids = append(ids, ref.OrderID)
	}
	return ids
}

// CoversOrder reports whether the batch includes the order
func (p *Payout) CoversOrder(orderID uuid.UUID) bool {
	for _, ref := range p.Orders {
		if ref.OrderID == orderID {
			return true
		}
	}
	return false
}

// MarkProcessing moves the payout into the hands of the payment rail
func (p *Payout) MarkProcessing() error {
	if !p.Status.CanTransitionTo(PayoutStatusProcessing) {
		return shared.ErrInvalidTransition
	}
	p.Status = PayoutStatusProcessing
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewPayoutStatusChangedEvent(p, PayoutStatusProcessing))
	return nil
}

// Complete records a successful payment. The external transaction
// reference is mandatory for the admin ledger.
func (p *Payout) Complete(transactionID string) error {
	if transactionID == "" {
		return shared.NewDomainError("MISSING_TRANSACTION_ID", "Completed payouts require a transaction reference")
	}
	if !p.Status.CanTransitionTo(PayoutStatusCompleted) {
		return shared.ErrInvalidTransition
	}
	now := time.Now()
	p.Status = PayoutStatusCompleted
	p.TransactionID = transactionID
	p.PaidAt = &now
	p.UpdatedAt = now
	p.AddDomainEvent(NewPayoutCompletedEvent(p))
	return nil
}

// Fail records a failed payment attempt. The covered orders go back to the
// pending pool so a later run can settle them again.
func (p *Payout) Fail(reason string) error {
	if reason == "" {
		return shared.NewDomainError("MISSING_REASON", "Failed payouts require a failure reason")
	}
	if !p.Status.CanTransitionTo(PayoutStatusFailed) {
		return shared.ErrInvalidTransition
	}
	p.Status = PayoutStatusFailed
	p.FailureReason = reason
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewPayoutFailedEvent(p, reason))
	return nil
}

// ApplyAdjustment adds a signed manual correction and recomputes the net.
// Only non-terminal payouts can be adjusted.
func (p *Payout) ApplyAdjustment(amount decimal.Decimal, note string) error {
	if p.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	if amount.IsZero() {
		return shared.NewDomainError("INVALID_ADJUSTMENT", "Adjustment amount cannot be zero")
	}
	p.Adjustments = p.Adjustments.Add(amount)
	p.recompute()
	p.UpdatedAt = time.Now()
	p.AddDomainEvent(NewPayoutAdjustedEvent(p, amount, note))
	return nil
}

// RemoveOrder drops a cancelled order from the batch and recomputes the
// totals. When the last order is removed the payout auto-fails; there is
// nothing left to pay.
func (p *Payout) RemoveOrder(orderID uuid.UUID) error {
	if p.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	idx := -1
	for i, ref := range p.Orders {
		if ref.OrderID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return shared.NewDomainError("ORDER_NOT_IN_PAYOUT", fmt.Sprintf("Order %s is not part of this payout", orderID))
	}

	p.Orders = append(p.Orders[:idx], p.Orders[idx+1:]...)
	p.recompute()
	p.UpdatedAt = time.Now()

	if len(p.Orders) == 0 {
		return p.Fail(FailureReasonAllOrdersCancelled)
	}
	return nil
}

// TableName returns the database table name
func (Payout) TableName() string {
	return "payouts"
}

// TableName returns the database table name
func (PayoutOrderRef) TableName() string {
	return "payout_orders"
}
