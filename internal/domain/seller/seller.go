package seller

import (
	"fmt"
	"time"

	"github.com/bazaar/backend/internal/domain/shared"
)

// SellerStatus represents the approval status of a seller account
type SellerStatus string

const (
	SellerStatusPending   SellerStatus = "pending"
	SellerStatusApproved  SellerStatus = "approved"
	SellerStatusSuspended SellerStatus = "suspended"
)

// IsValid checks if the status is a valid SellerStatus
func (s SellerStatus) IsValid() bool {
	switch s {
	case SellerStatusPending, SellerStatusApproved, SellerStatusSuspended:
		return true
	}
	return false
}

// String returns the string representation of SellerStatus
func (s SellerStatus) String() string {
	return string(s)
}

// Seller represents a seller account on the platform.
// Onboarding, KYC and profile management live outside the core; the
// settlement engine only cares about approval status.
type Seller struct {
	shared.BaseAggregateRoot
	Name   string
	Status SellerStatus
}

// NewSeller creates a new seller in pending status
func NewSeller(name string) (*Seller, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Seller name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Seller name cannot exceed 200 characters")
	}
	return &Seller{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Status:            SellerStatusPending,
	}, nil
}

// Approve makes the seller eligible for routing and payouts
func (s *Seller) Approve() error {
	if s.Status == SellerStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Seller is already approved")
	}
	s.Status = SellerStatusApproved
	s.UpdatedAt = time.Now()
	return nil
}

// Suspend removes the seller from routing and payout generation
func (s *Seller) Suspend() error {
	if s.Status == SellerStatusSuspended {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Seller is already %s", s.Status))
	}
	s.Status = SellerStatusSuspended
	s.UpdatedAt = time.Now()
	return nil
}

// IsApproved returns true if the seller may receive payouts
func (s *Seller) IsApproved() bool {
	return s.Status == SellerStatusApproved
}
