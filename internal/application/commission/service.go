package commission

import (
	"context"
	"errors"

	domaincommission "github.com/bazaar/backend/internal/domain/commission"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PolicyService handles commission policy administration
type PolicyService struct {
	policyRepo     domaincommission.PolicyRepository
	eventPublisher shared.EventPublisher
}

// NewPolicyService creates a new PolicyService
func NewPolicyService(policyRepo domaincommission.PolicyRepository) *PolicyService {
	return &PolicyService{
		policyRepo: policyRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PolicyService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Get returns the active policy, or the flat default when none was
// configured yet
func (s *PolicyService) Get(ctx context.Context) (*PolicyResponse, error) {
	policy, err := s.policyRepo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			response := ToPolicyResponse(domaincommission.DefaultPolicy())
			response.IsDefault = true
			return &response, nil
		}
		return nil, err
	}
	response := ToPolicyResponse(policy)
	return &response, nil
}

// Update edits the active policy, creating it on first use. Rates captured
// into existing order lines are unaffected.
func (s *PolicyService) Update(ctx context.Context, req UpdatePolicyRequest) (*PolicyResponse, error) {
	mode := domaincommission.Mode(req.Mode)

	policy, err := s.policyRepo.FindActive(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		policy, err = domaincommission.NewCommissionPolicy(mode, req.FlatRate, req.TierRateNew, req.TierRateStandard, req.TierRatePremium, req.DeliveryFee)
		if err != nil {
			return nil, err
		}
	} else {
		if err := policy.Update(mode, req.FlatRate, req.TierRateNew, req.TierRateStandard, req.TierRatePremium, req.DeliveryFee); err != nil {
			return nil, err
		}
	}

	if err := s.policyRepo.Save(ctx, policy); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		for _, event := range policy.GetDomainEvents() {
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				// Log error but don't fail the operation
			}
		}
		policy.ClearDomainEvents()
	}

	response := ToPolicyResponse(policy)
	return &response, nil
}

// ==================== Policy DTOs ====================

// UpdatePolicyRequest represents an admin policy edit
type UpdatePolicyRequest struct {
	Mode             string          `json:"mode" binding:"required,oneof=flat tiered"`
	FlatRate         decimal.Decimal `json:"flat_rate"`
	TierRateNew      decimal.Decimal `json:"tier_rate_new"`
	TierRateStandard decimal.Decimal `json:"tier_rate_standard"`
	TierRatePremium  decimal.Decimal `json:"tier_rate_premium"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
}

// PolicyResponse represents the commission policy in API responses
type PolicyResponse struct {
	Mode             string          `json:"mode"`
	FlatRate         decimal.Decimal `json:"flat_rate"`
	TierRateNew      decimal.Decimal `json:"tier_rate_new"`
	TierRateStandard decimal.Decimal `json:"tier_rate_standard"`
	TierRatePremium  decimal.Decimal `json:"tier_rate_premium"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
	IsDefault        bool            `json:"is_default"`
}

// ToPolicyResponse converts a domain policy to a response DTO
func ToPolicyResponse(p *domaincommission.CommissionPolicy) PolicyResponse {
	return PolicyResponse{
		Mode:             string(p.Mode),
		FlatRate:         p.FlatRate,
		TierRateNew:      p.TierRateNew,
		TierRateStandard: p.TierRateStandard,
		TierRatePremium:  p.TierRatePremium,
		DeliveryFee:      p.DeliveryFee,
	}
}
