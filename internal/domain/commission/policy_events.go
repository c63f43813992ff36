package commission

import (
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCommissionPolicy = "CommissionPolicy"

// Event type constants
const (
	EventTypeCommissionPolicyUpdated = "CommissionPolicyUpdated"
)

// CommissionPolicyUpdatedEvent is raised when an admin edits the policy.
// Already-routed order lines keep their captured rate.
type CommissionPolicyUpdatedEvent struct {
	shared.BaseDomainEvent
	Mode        Mode            `json:"mode"`
	FlatRate    decimal.Decimal `json:"flat_rate"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
}

// NewCommissionPolicyUpdatedEvent creates a new CommissionPolicyUpdatedEvent
func NewCommissionPolicyUpdatedEvent(policy *CommissionPolicy) *CommissionPolicyUpdatedEvent {
	return &CommissionPolicyUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCommissionPolicyUpdated, AggregateTypeCommissionPolicy, policy.ID),
		Mode:            policy.Mode,
		FlatRate:        policy.FlatRate,
		DeliveryFee:     policy.DeliveryFee,
	}
}

// EventType returns the event type name
func (e *CommissionPolicyUpdatedEvent) EventType() string {
	return EventTypeCommissionPolicyUpdated
}
