package payout

import (
	"context"
	"time"

	domainpayout "github.com/bazaar/backend/internal/domain/payout"
	"github.com/bazaar/backend/internal/domain/seller"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// generateGuardKey serializes concurrent generation runs across instances
const generateGuardKey = "payouts:generate"

// defaultGenerateGuardTTL bounds how long a crashed run can block the next one
const defaultGenerateGuardTTL = 5 * time.Minute

// MetricsRecorder records settlement activity for monitoring
type MetricsRecorder interface {
	RecordPayoutGenerated(ctx context.Context, sellerID uuid.UUID)
	RecordPayoutSettled(ctx context.Context, sellerID uuid.UUID, net decimal.Decimal)
}

// PayoutService handles weekly payout generation and the admin ledger
type PayoutService struct {
	payoutRepo     domainpayout.PayoutRepository
	sellerRepo     seller.SellerRepository
	runGuard       shared.RunGuard
	guardTTL       time.Duration
	eventPublisher shared.EventPublisher
	metrics        MetricsRecorder
	logger         *zap.Logger
}

// NewPayoutService creates a new PayoutService
func NewPayoutService(payoutRepo domainpayout.PayoutRepository, sellerRepo seller.SellerRepository, runGuard shared.RunGuard, logger *zap.Logger) *PayoutService {
	return &PayoutService{
		payoutRepo: payoutRepo,
		sellerRepo: sellerRepo,
		runGuard:   runGuard,
		guardTTL:   defaultGenerateGuardTTL,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PayoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetGuardTTL overrides the generation lock TTL
func (s *PayoutService) SetGuardTTL(ttl time.Duration) {
	if ttl > 0 {
		s.guardTTL = ttl
	}
}

// SetMetrics sets the settlement activity recorder
func (s *PayoutService) SetMetrics(metrics MetricsRecorder) {
	s.metrics = metrics
}

// PreviousWeek returns the last full ISO week [Monday 00:00, next Monday)
// relative to now, in UTC
func PreviousWeek(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -daysSinceMonday)
	return weekStart.AddDate(0, 0, -7), weekStart
}

// Generate creates payout batches for every approved seller with settleable
// orders in the period. Orders are claimed with a conditional update inside
// each seller's transaction, so concurrent or repeated runs cannot settle
// the same order twice; a re-run over a settled period simply creates
// nothing.
func (s *PayoutService) Generate(ctx context.Context, req GeneratePayoutsRequest) (*GeneratePayoutsResponse, error) {
	now := time.Now()
	var periodStart, periodEnd time.Time
	if req.PeriodStart != nil {
		periodStart = req.PeriodStart.UTC().Truncate(24 * time.Hour)
		periodEnd = periodStart.AddDate(0, 0, 7)
	} else {
		periodStart, periodEnd = PreviousWeek(now)
	}

	acquired, err := s.runGuard.TryAcquire(ctx, generateGuardKey, s.guardTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, shared.NewDomainError("GENERATION_IN_PROGRESS", "A payout generation run is already in progress")
	}
	defer func() {
		if err := s.runGuard.Release(ctx, generateGuardKey); err != nil {
			s.logger.Warn("failed to release payout generation guard", zap.Error(err))
		}
	}()

	sellers, err := s.sellerRepo.FindApproved(ctx)
	if err != nil {
		return nil, err
	}

	response := &GeneratePayoutsResponse{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		SellersSeen: len(sellers),
		Payouts:     []PayoutListItemResponse{},
	}

	for i := range sellers {
		sellerID := sellers[i].ID
		p, err := s.payoutRepo.GenerateForSeller(ctx, sellerID, periodStart, periodEnd, now,
			func(payoutNumber string, entries []domainpayout.OrderEntry) (*domainpayout.Payout, error) {
				return domainpayout.NewPayout(payoutNumber, sellerID, periodStart, periodEnd, entries)
			})
		if err != nil {
			s.logger.Error("payout generation failed for seller",
				zap.String("seller_id", sellerID.String()),
				zap.Error(err),
			)
			return nil, err
		}
		if p == nil {
			// nothing settleable for this seller in the period
			continue
		}

		s.logger.Info("payout generated",
			zap.String("payout_number", p.PayoutNumber),
			zap.String("seller_id", sellerID.String()),
			zap.Int("order_count", len(p.Orders)),
			zap.String("net_payout", p.NetPayout.String()),
		)
		s.publishEvents(ctx, p)
		if s.metrics != nil {
			s.metrics.RecordPayoutGenerated(ctx, sellerID)
		}
		response.CreatedCount++
		response.Payouts = append(response.Payouts, ToPayoutListItemResponse(p))
	}

	return response, nil
}

// GetByID retrieves a payout by ID
func (s *PayoutService) GetByID(ctx context.Context, payoutID uuid.UUID) (*PayoutResponse, error) {
	p, err := s.payoutRepo.FindByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	response := ToPayoutResponse(p)
	return &response, nil
}

// List retrieves payouts with filtering and pagination
func (s *PayoutService) List(ctx context.Context, filter PayoutListFilter) ([]PayoutListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
	if filter.Status != nil {
		domainFilter.Filters = map[string]interface{}{"status": *filter.Status}
	}

	var (
		page *shared.Paginated[domainpayout.Payout]
		err  error
	)
	if filter.SellerID != nil {
		page, err = s.payoutRepo.FindBySeller(ctx, *filter.SellerID, domainFilter)
	} else {
		page, err = s.payoutRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	items := make([]PayoutListItemResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToPayoutListItemResponse(&page.Items[i])
	}
	return items, page.Total, nil
}

// UpdateStatus drives the payout ledger. Completion settles the covered
// orders and failure releases them, each atomically with the payout row.
func (s *PayoutService) UpdateStatus(ctx context.Context, payoutID uuid.UUID, req UpdatePayoutStatusRequest) (*PayoutResponse, error) {
	p, err := s.payoutRepo.FindByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}

	switch domainpayout.PayoutStatus(req.Status) {
	case domainpayout.PayoutStatusProcessing:
		if err := p.MarkProcessing(); err != nil {
			return nil, err
		}
		if err := s.payoutRepo.Save(ctx, p); err != nil {
			return nil, err
		}
	case domainpayout.PayoutStatusCompleted:
		if err := p.Complete(req.TransactionID); err != nil {
			return nil, err
		}
		if err := s.payoutRepo.CompleteAndSettleOrders(ctx, p); err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.RecordPayoutSettled(ctx, p.SellerID, p.NetPayout)
		}
	case domainpayout.PayoutStatusFailed:
		if err := p.Fail(req.FailureReason); err != nil {
			return nil, err
		}
		if err := s.payoutRepo.FailAndReleaseOrders(ctx, p); err != nil {
			return nil, err
		}
	default:
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown payout status")
	}

	s.publishEvents(ctx, p)

	response := ToPayoutResponse(p)
	return &response, nil
}

// Adjust applies a signed manual correction to a non-terminal payout
func (s *PayoutService) Adjust(ctx context.Context, payoutID uuid.UUID, req AdjustPayoutRequest) (*PayoutResponse, error) {
	p, err := s.payoutRepo.FindByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}

	if err := p.ApplyAdjustment(req.Amount, req.Note); err != nil {
		return nil, err
	}

	if err := s.payoutRepo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, p)

	response := ToPayoutResponse(p)
	return &response, nil
}

func (s *PayoutService) publishEvents(ctx context.Context, p *domainpayout.Payout) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range p.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			// Log error but don't fail the operation - event handling is async
			s.logger.Warn("failed to publish payout event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	p.ClearDomainEvents()
}
