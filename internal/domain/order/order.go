package order

import (
	"time"

	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the customer-facing lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if transitioning to the target status is allowed.
// Forward moves follow the fulfillment chain one step at a time; cancel is
// allowed from any non-terminal state.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if target == OrderStatusCancelled {
		return !s.IsTerminal()
	}
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed
	case OrderStatusConfirmed:
		return target == OrderStatusProcessing
	case OrderStatusProcessing:
		return target == OrderStatusOutForDelivery
	case OrderStatusOutForDelivery:
		return target == OrderStatusDelivered
	default:
		return false
	}
}

// PayoutStatus tracks where an order sits in the settlement pipeline.
// Delivered orders stay pending until a payout batch locks them in.
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusOnHold    PayoutStatus = "on_hold"
	PayoutStatusCompleted PayoutStatus = "completed"
)

// IsValid checks if the status is a valid PayoutStatus
func (s PayoutStatus) IsValid() bool {
	return s == PayoutStatusPending || s == PayoutStatusOnHold || s == PayoutStatusCompleted
}

// String returns the string representation of PayoutStatus
func (s PayoutStatus) String() string {
	return string(s)
}

// LineSellerStatus is the seller-side progress of one order line
type LineSellerStatus string

const (
	LineSellerStatusAssigned  LineSellerStatus = "assigned"
	LineSellerStatusAccepted  LineSellerStatus = "accepted"
	LineSellerStatusCompleted LineSellerStatus = "completed"
)

// OrderLine is one routed product line. Pricing fields are captured at
// routing time and never change afterwards, even if the commission policy
// or the listing price does.
type OrderLine struct {
	shared.BaseEntity
	OrderID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID        `gorm:"type:uuid;not null"`
	ListingID        uuid.UUID        `gorm:"type:uuid;not null"`
	SellerID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	Quantity         int64            `gorm:"not null"`
	SellerPrice      decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CustomerPrice    decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CommissionRate   decimal.Decimal  `gorm:"type:decimal(5,2);not null"`
	CommissionAmount decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	SellerStatus     LineSellerStatus `gorm:"type:varchar(20);not null;default:'assigned'"`
}

// LineTotal is the customer-facing amount for the line
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.CustomerPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// SellerGross is what the seller earns on the line before commission
func (l OrderLine) SellerGross() decimal.Decimal {
	return l.SellerPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Order is the marketplace order aggregate. A single order can span
// multiple sellers; settlement works per seller over the embedded lines.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber        string       `gorm:"type:varchar(32);uniqueIndex;not null"`
	CustomerID         uuid.UUID    `gorm:"type:uuid;not null;index"`
	Status             OrderStatus  `gorm:"type:varchar(20);not null;default:'pending'"`
	PayoutStatus       PayoutStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Lines              []OrderLine  `gorm:"foreignKey:OrderID"`
	DeliveryFee        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PayoutHoldUntil    *time.Time
	ActualDeliveryTime *time.Time
	CancelledAt        *time.Time
	CancelReason       string `gorm:"type:varchar(255)"`
}

// NewOrder creates a pending order from routed lines
func NewOrder(orderNumber string, customerID uuid.UUID, lines []OrderLine, deliveryFee decimal.Decimal) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one line")
	}
	if deliveryFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Delivery fee cannot be negative")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		Status:            OrderStatusPending,
		PayoutStatus:      PayoutStatusPending,
		DeliveryFee:       deliveryFee,
	}
	for i := range lines {
		line := lines[i]
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
		}
		line.BaseEntity = shared.NewBaseEntity()
		line.OrderID = o.ID
		line.SellerStatus = LineSellerStatusAssigned
		o.Lines = append(o.Lines, line)
	}
	o.TotalAmount = o.computeTotal()

	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

func (o *Order) computeTotal() decimal.Decimal {
	total := o.DeliveryFee
	for _, line := range o.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Subtotal is the customer total excluding the delivery fee
func (o *Order) Subtotal() decimal.Decimal {
	return o.TotalAmount.Sub(o.DeliveryFee)
}

// HasSeller reports whether the seller owns at least one line on the order
func (o *Order) HasSeller(sellerID uuid.UUID) bool {
	for _, line := range o.Lines {
		if line.SellerID == sellerID {
			return true
		}
	}
	return false
}

// SellerIDs returns the distinct sellers on the order in line order
func (o *Order) SellerIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(o.Lines))
	ids := make([]uuid.UUID, 0, len(o.Lines))
	for _, line := range o.Lines {
		if !seen[line.SellerID] {
			seen[line.SellerID] = true
			ids = append(ids, line.SellerID)
		}
	}
	return ids
}

// SellerGross sums the seller's pre-commission earnings across their lines
func (o *Order) SellerGross(sellerID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		if line.SellerID == sellerID {
			total = total.Add(line.SellerGross())
		}
	}
	return total
}

// SellerCommission sums the platform commission across the seller's lines
func (o *Order) SellerCommission(sellerID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		if line.SellerID == sellerID {
			total = total.Add(line.CommissionAmount)
		}
	}
	return total
}

// TransitionBySeller advances the order on behalf of a seller. The seller
// must own a line on the order; cancel and delivered confirmation stay
// admin-only.
func (o *Order) TransitionBySeller(sellerID uuid.UUID, target OrderStatus) error {
	if !o.HasSeller(sellerID) {
		return shared.ErrNotSellerOnOrder
	}
	if target == OrderStatusCancelled {
		return shared.NewDomainError("FORBIDDEN_TRANSITION", "Sellers cannot cancel orders")
	}
	return o.transition(target)
}

// Transition advances the order lifecycle one step (admin / system path)
func (o *Order) Transition(target OrderStatus) error {
	if target == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_TRANSITION", "Use Cancel to cancel an order")
	}
	return o.transition(target)
}

func (o *Order) transition(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.ErrInvalidTransition
	}
	if target == OrderStatusDelivered {
		return shared.NewDomainError("INVALID_TRANSITION", "Use Deliver to record delivery")
	}

	from := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target))
	return nil
}

// Deliver records the delivery and opens the payout hold window. The order
// stays payout-pending; it only becomes eligible for settlement once the
// hold has elapsed.
func (o *Order) Deliver(now time.Time, holdDuration time.Duration) error {
	if !o.Status.CanTransitionTo(OrderStatusDelivered) {
		return shared.ErrInvalidTransition
	}

	from := o.Status
	o.Status = OrderStatusDelivered
	deliveredAt := now
	holdUntil := now.Add(holdDuration)
	o.ActualDeliveryTime = &deliveredAt
	o.PayoutHoldUntil = &holdUntil
	o.UpdatedAt = now
	for i := range o.Lines {
		o.Lines[i].SellerStatus = LineSellerStatusCompleted
		o.Lines[i].UpdatedAt = now
	}

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, OrderStatusDelivered))
	o.AddDomainEvent(NewOrderDeliveredEvent(o, holdUntil))
	return nil
}

// Cancel cancels the order from any non-terminal state. If the order was
// already locked into a payout batch, the settlement side has to remove it
// from the batch; the event carries that flag.
func (o *Order) Cancel(reason string) error {
	if o.Status.IsTerminal() {
		return shared.ErrInvalidTransition
	}
	if o.PayoutStatus == PayoutStatusCompleted {
		return shared.NewDomainError("ALREADY_SETTLED", "Cannot cancel an order that has been paid out")
	}

	from := o.Status
	wasInPayout := o.PayoutStatus == PayoutStatusOnHold
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.PayoutStatus = PayoutStatusPending
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, OrderStatusCancelled))
	o.AddDomainEvent(NewOrderCancelledEvent(o, reason, wasInPayout))
	return nil
}

// AcceptLine records that a seller accepted their assigned line
func (o *Order) AcceptLine(sellerID uuid.UUID, lineID uuid.UUID) error {
	for i := range o.Lines {
		line := &o.Lines[i]
		if line.ID != lineID {
			continue
		}
		if line.SellerID != sellerID {
			return shared.ErrNotSellerOnOrder
		}
		if line.SellerStatus != LineSellerStatusAssigned {
			return shared.ErrInvalidTransition
		}
		line.SellerStatus = LineSellerStatusAccepted
		line.UpdatedAt = time.Now()
		o.UpdatedAt = line.UpdatedAt
		return nil
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// EligibleForPayout reports whether the order can enter a payout batch at
// the given time: delivered, unsettled, and past the hold window.
func (o *Order) EligibleForPayout(now time.Time) bool {
	if o.Status != OrderStatusDelivered || o.PayoutStatus != PayoutStatusPending {
		return false
	}
	return o.PayoutHoldUntil == nil || !now.Before(*o.PayoutHoldUntil)
}

// MarkPayoutOnHold locks the order into a live payout batch
func (o *Order) MarkPayoutOnHold() error {
	if o.PayoutStatus != PayoutStatusPending {
		return shared.ErrInvalidState
	}
	o.PayoutStatus = PayoutStatusOnHold
	o.UpdatedAt = time.Now()
	return nil
}

// MarkPayoutCompleted settles the order after its payout batch was paid
func (o *Order) MarkPayoutCompleted() error {
	if o.PayoutStatus != PayoutStatusOnHold {
		return shared.ErrInvalidState
	}
	o.PayoutStatus = PayoutStatusCompleted
	o.UpdatedAt = time.Now()
	return nil
}

// ReleasePayout returns the order to the pending pool after its payout
// batch failed, so a later regeneration can pick it up again
func (o *Order) ReleasePayout() error {
	if o.PayoutStatus != PayoutStatusOnHold {
		return shared.ErrInvalidState
	}
	o.PayoutStatus = PayoutStatusPending
	o.UpdatedAt = time.Now()
	return nil
}

// TableName returns the database table name
func (Order) TableName() string {
	return "orders"
}

// TableName returns the database table name
func (OrderLine) TableName() string {
	return "order_lines"
}
