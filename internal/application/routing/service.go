package routing

import (
	"context"
	"errors"

	"github.com/bazaar/backend/internal/domain/catalog"
	"github.com/bazaar/backend/internal/domain/commission"
	domainrouting "github.com/bazaar/backend/internal/domain/routing"
	"github.com/bazaar/backend/internal/domain/seller"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MetricsRecorder records routing outcomes for monitoring
type MetricsRecorder interface {
	RecordLineRouted(ctx context.Context, sellerID uuid.UUID)
	RecordLineUnavailable(ctx context.Context, reason string)
}

// RoutingService assembles the market snapshot (listings, performance,
// commission policy) and runs the routing engine over it
type RoutingService struct {
	listingRepo catalog.ListingRepository
	perfRepo    seller.PerformanceRepository
	policyRepo  commission.PolicyRepository
	metrics     MetricsRecorder
}

// NewRoutingService creates a new RoutingService
func NewRoutingService(listingRepo catalog.ListingRepository, perfRepo seller.PerformanceRepository, policyRepo commission.PolicyRepository) *RoutingService {
	return &RoutingService{
		listingRepo: listingRepo,
		perfRepo:    perfRepo,
		policyRepo:  policyRepo,
	}
}

// SetMetrics sets the routing outcome recorder
func (s *RoutingService) SetMetrics(metrics MetricsRecorder) {
	s.metrics = metrics
}

// Quote routes the requested basket and returns the customer-facing quote
func (s *RoutingService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	reqs := make([]domainrouting.LineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		reqs = append(reqs, domainrouting.LineRequest{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	result, err := s.Route(ctx, reqs)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(result)
	return &response, nil
}

// Route fetches a consistent snapshot and runs the routing engine. Order
// placement re-runs this to verify client-submitted pricing.
func (s *RoutingService) Route(ctx context.Context, reqs []domainrouting.LineRequest) (domainrouting.RouteResult, error) {
	listingsByProduct := make(map[uuid.UUID][]catalog.SellerListing, len(reqs))
	sellerSet := make(map[uuid.UUID]bool)
	for _, req := range reqs {
		if _, done := listingsByProduct[req.ProductID]; done {
			continue
		}
		listings, err := s.listingRepo.FindActiveByProduct(ctx, req.ProductID, 1)
		if err != nil {
			return domainrouting.RouteResult{}, err
		}
		listingsByProduct[req.ProductID] = listings
		for _, l := range listings {
			sellerSet[l.SellerID] = true
		}
	}

	sellerIDs := make([]uuid.UUID, 0, len(sellerSet))
	for id := range sellerSet {
		sellerIDs = append(sellerIDs, id)
	}
	snapshots, err := s.perfRepo.FindBySellers(ctx, sellerIDs)
	if err != nil {
		return domainrouting.RouteResult{}, err
	}
	perfs := make(map[uuid.UUID]domainrouting.SellerPerformance, len(snapshots))
	for id, snap := range snapshots {
		perfs[id] = domainrouting.SellerPerformance{
			Tier:            snap.Tier,
			FulfillmentRate: snap.FulfillmentRate,
			QualityScore:    snap.QualityScore,
			Suspended:       snap.Suspended,
		}
	}

	policy, err := s.activePolicy(ctx)
	if err != nil {
		return domainrouting.RouteResult{}, err
	}

	result, err := domainrouting.RouteItems(reqs, listingsByProduct, perfs, policy)
	if err != nil {
		return result, err
	}
	s.recordOutcomes(ctx, result)
	return result, nil
}

func (s *RoutingService) recordOutcomes(ctx context.Context, result domainrouting.RouteResult) {
	if s.metrics == nil {
		return
	}
	for _, line := range result.Lines {
		if line.Kind == domainrouting.LineKindRouted {
			s.metrics.RecordLineRouted(ctx, line.Routed.SellerID)
		} else {
			s.metrics.RecordLineUnavailable(ctx, line.Unavailable.Reason)
		}
	}
}

// activePolicy loads the stored policy, falling back to the flat default
// when none was ever configured
func (s *RoutingService) activePolicy(ctx context.Context) (*commission.CommissionPolicy, error) {
	policy, err := s.policyRepo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return commission.DefaultPolicy(), nil
		}
		return nil, err
	}
	return policy, nil
}
