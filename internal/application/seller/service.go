package seller

import (
	"context"
	"errors"
	"time"

	domainseller "github.com/bazaar/backend/internal/domain/seller"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerService handles seller onboarding and the performance snapshots the
// router reads
type SellerService struct {
	sellerRepo domainseller.SellerRepository
	perfRepo   domainseller.PerformanceRepository
}

// NewSellerService creates a new SellerService
func NewSellerService(sellerRepo domainseller.SellerRepository, perfRepo domainseller.PerformanceRepository) *SellerService {
	return &SellerService{
		sellerRepo: sellerRepo,
		perfRepo:   perfRepo,
	}
}

// Register creates a pending seller account
func (s *SellerService) Register(ctx context.Context, req RegisterSellerRequest) (*SellerResponse, error) {
	sl, err := domainseller.NewSeller(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.sellerRepo.Save(ctx, sl); err != nil {
		return nil, err
	}
	response := ToSellerResponse(sl)
	return &response, nil
}

// GetByID retrieves a seller with their performance snapshot
func (s *SellerService) GetByID(ctx context.Context, sellerID uuid.UUID) (*SellerResponse, error) {
	sl, err := s.sellerRepo.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	response := ToSellerResponse(sl)

	perf, err := s.perfRepo.FindBySeller(ctx, sellerID)
	if err == nil {
		p := ToPerformanceResponse(perf)
		response.Performance = &p
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	return &response, nil
}

// Approve approves a pending seller for routing and payouts
func (s *SellerService) Approve(ctx context.Context, sellerID uuid.UUID) (*SellerResponse, error) {
	sl, err := s.sellerRepo.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if err := sl.Approve(); err != nil {
		return nil, err
	}
	if err := s.sellerRepo.Save(ctx, sl); err != nil {
		return nil, err
	}
	response := ToSellerResponse(sl)
	return &response, nil
}

// Suspend suspends a seller and pulls them out of routing
func (s *SellerService) Suspend(ctx context.Context, sellerID uuid.UUID) (*SellerResponse, error) {
	sl, err := s.sellerRepo.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if err := sl.Suspend(); err != nil {
		return nil, err
	}
	if err := s.sellerRepo.Save(ctx, sl); err != nil {
		return nil, err
	}

	// Mirror the suspension into the routing snapshot
	perf, err := s.perfRepo.FindBySeller(ctx, sellerID)
	if err == nil {
		perf.SetSuspended(true)
		if err := s.perfRepo.Save(ctx, perf); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	response := ToSellerResponse(sl)
	return &response, nil
}

// RecordPerformance upserts the seller's performance snapshot after an
// external recomputation
func (s *SellerService) RecordPerformance(ctx context.Context, sellerID uuid.UUID, req RecordPerformanceRequest) (*PerformanceResponse, error) {
	if _, err := s.sellerRepo.FindByID(ctx, sellerID); err != nil {
		return nil, err
	}

	tier := domainseller.Tier(req.Tier)
	perf, err := s.perfRepo.FindBySeller(ctx, sellerID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		perf, err = domainseller.NewSellerPerformance(sellerID, tier, req.FulfillmentRate, req.QualityScore)
		if err != nil {
			return nil, err
		}
	} else {
		if err := perf.Record(tier, req.FulfillmentRate, req.QualityScore); err != nil {
			return nil, err
		}
	}

	if err := s.perfRepo.Save(ctx, perf); err != nil {
		return nil, err
	}
	response := ToPerformanceResponse(perf)
	return &response, nil
}

// ==================== Seller DTOs ====================

// RegisterSellerRequest represents a seller registration
type RegisterSellerRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// RecordPerformanceRequest represents a performance snapshot update
type RecordPerformanceRequest struct {
	Tier            string          `json:"tier" binding:"required,oneof=new standard premium"`
	FulfillmentRate decimal.Decimal `json:"fulfillment_rate"`
	QualityScore    decimal.Decimal `json:"quality_score"`
}

// PerformanceResponse represents a performance snapshot in API responses
type PerformanceResponse struct {
	Tier            string          `json:"tier"`
	FulfillmentRate decimal.Decimal `json:"fulfillment_rate"`
	QualityScore    decimal.Decimal `json:"quality_score"`
	Suspended       bool            `json:"suspended"`
	LastComputedAt  time.Time       `json:"last_computed_at"`
}

// SellerResponse represents a seller in API responses
type SellerResponse struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Status      string               `json:"status"`
	Performance *PerformanceResponse `json:"performance,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ToSellerResponse converts a domain seller to a response DTO
func ToSellerResponse(s *domainseller.Seller) SellerResponse {
	return SellerResponse{
		ID:        s.ID,
		Name:      s.Name,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ToPerformanceResponse converts a domain snapshot to a response DTO
func ToPerformanceResponse(p *domainseller.SellerPerformance) PerformanceResponse {
	return PerformanceResponse{
		Tier:            string(p.Tier),
		FulfillmentRate: p.FulfillmentRate,
		QualityScore:    p.QualityScore,
		Suspended:       p.Suspended,
		LastComputedAt:  p.LastComputedAt,
	}
}
