package payout

import (
	"context"
	"testing"
	"time"

	domainorder "github.com/bazaar/backend/internal/domain/order"
	domainpayout "github.com/bazaar/backend/internal/domain/payout"
	domainseller "github.com/bazaar/backend/internal/domain/seller"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPayoutRepository is a mock implementation of PayoutRepository
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainpayout.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainpayout.Payout), args.Error(1)
}

func (m *MockPayoutRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[domainpayout.Payout], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[domainpayout.Payout]), args.Error(1)
}

func (m *MockPayoutRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (*shared.Paginated[domainpayout.Payout], error) {
	args := m.Called(ctx, sellerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[domainpayout.Payout]), args.Error(1)
}

func (m *MockPayoutRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*domainpayout.Payout, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainpayout.Payout), args.Error(1)
}

func (m *MockPayoutRepository) Save(ctx context.Context, p *domainpayout.Payout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPayoutRepository) GeneratePayoutNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPayoutRepository) GenerateForSeller(ctx context.Context, sellerID uuid.UUID, periodStart, periodEnd, asOf time.Time, build domainpayout.PayoutBuilder) (*domainpayout.Payout, error) {
	args := m.Called(ctx, sellerID, periodStart, periodEnd, asOf, build)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainpayout.Payout), args.Error(1)
}

func (m *MockPayoutRepository) CompleteAndSettleOrders(ctx context.Context, p *domainpayout.Payout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPayoutRepository) FailAndReleaseOrders(ctx context.Context, p *domainpayout.Payout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockSellerRepository is a mock implementation of SellerRepository
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainseller.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainseller.Seller), args.Error(1)
}

func (m *MockSellerRepository) FindApproved(ctx context.Context) ([]domainseller.Seller, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domainseller.Seller), args.Error(1)
}

func (m *MockSellerRepository) Save(ctx context.Context, s *domainseller.Seller) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockRunGuard is a mock implementation of RunGuard
type MockRunGuard struct {
	mock.Mock
}

func (m *MockRunGuard) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockRunGuard) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockRunGuard) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Test helpers
func approvedSeller(t *testing.T) domainseller.Seller {
	s, err := domainseller.NewSeller("Test Seller")
	require.NoError(t, err)
	require.NoError(t, s.Approve())
	return *s
}

func testPayout(t *testing.T, sellerID uuid.UUID) *domainpayout.Payout {
	start := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	p, err := domainpayout.NewPayout("PAY-2026-0001", sellerID, start, start.AddDate(0, 0, 7), []domainpayout.OrderEntry{
		{OrderID: uuid.New(), Gross: decimal.NewFromInt(500), Commission: decimal.NewFromInt(50)},
	})
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func newTestService(payoutRepo *MockPayoutRepository, sellerRepo *MockSellerRepository, guard *MockRunGuard) *PayoutService {
	return NewPayoutService(payoutRepo, sellerRepo, guard, zap.NewNop())
}

// ============================================
// Period Tests
// ============================================

func TestPreviousWeek(t *testing.T) {
	tests := []struct {
		name          string
		now           time.Time
		expectedStart time.Time
	}{
		{
			"mid-week wednesday",
			time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC),
			time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday maps to the full prior week",
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday still inside current week",
			time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC),
			time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := PreviousWeek(tt.now)
			assert.Equal(t, tt.expectedStart, start)
			assert.Equal(t, tt.expectedStart.AddDate(0, 0, 7), end)
		})
	}
}

// ============================================
// Generation Tests
// ============================================

func TestPayoutService_Generate(t *testing.T) {
	payoutRepo := new(MockPayoutRepository)
	sellerRepo := new(MockSellerRepository)
	guard := new(MockRunGuard)
	svc := newTestService(payoutRepo, sellerRepo, guard)

	sellerWithOrders := approvedSeller(t)
	sellerWithout := approvedSeller(t)
	created := testPayout(t, sellerWithOrders.ID)

	guard.On("TryAcquire", mock.Anything, generateGuardKey, defaultGenerateGuardTTL).Return(true, nil)
	guard.On("Release", mock.Anything, generateGuardKey).Return(nil)
	sellerRepo.On("FindApproved", mock.Anything).Return([]domainseller.Seller{sellerWithOrders, sellerWithout}, nil)
	payoutRepo.On("GenerateForSeller", mock.Anything, sellerWithOrders.ID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(created, nil)
	payoutRepo.On("GenerateForSeller", mock.Anything, sellerWithout.ID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil)

	resp, err := svc.Generate(context.Background(), GeneratePayoutsRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.SellersSeen)
	assert.Equal(t, 1, resp.CreatedCount)
	require.Len(t, resp.Payouts, 1)
	assert.Equal(t, "PAY-2026-0001", resp.Payouts[0].PayoutNumber)

	guard.AssertExpectations(t)
	payoutRepo.AssertExpectations(t)
}

func TestPayoutService_Generate_IdempotentRerun(t *testing.T) {
	payoutRepo := new(MockPayoutRepository)
	sellerRepo := new(MockSellerRepository)
	guard := new(MockRunGuard)
	svc := newTestService(payoutRepo, sellerRepo, guard)

	s := approvedSeller(t)

	guard.On("TryAcquire", mock.Anything, generateGuardKey, defaultGenerateGuardTTL).Return(true, nil)
	guard.On("Release", mock.Anything, generateGuardKey).Return(nil)
	sellerRepo.On("FindApproved", mock.Anything).Return([]domainseller.Seller{s}, nil)
	// everything already on_hold or completed: the conditional claim finds
	// nothing and the run creates zero payouts
	payoutRepo.On("GenerateForSeller", mock.Anything, s.ID, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil)

	resp, err := svc.Generate(context.Background(), GeneratePayoutsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.CreatedCount)
	assert.Empty(t, resp.Payouts)
}

func TestPayoutService_Generate_GuardBusy(t *testing.T) {
	payoutRepo := new(MockPayoutRepository)
	sellerRepo := new(MockSellerRepository)
	guard := new(MockRunGuard)
	svc := newTestService(payoutRepo, sellerRepo, guard)

	guard.On("TryAcquire", mock.Anything, generateGuardKey, defaultGenerateGuardTTL).Return(false, nil)

	_, err := svc.Generate(context.Background(), GeneratePayoutsRequest{})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "GENERATION_IN_PROGRESS", domainErr.Code)
	sellerRepo.AssertNotCalled(t, "FindApproved", mock.Anything)
}

func TestPayoutService_Generate_ExplicitPeriod(t *testing.T) {
	payoutRepo := new(MockPayoutRepository)
	sellerRepo := new(MockSellerRepository)
	guard := new(MockRunGuard)
	svc := newTestService(payoutRepo, sellerRepo, guard)

	start := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	guard.On("TryAcquire", mock.Anything, generateGuardKey, defaultGenerateGuardTTL).Return(true, nil)
	guard.On("Release", mock.Anything, generateGuardKey).Return(nil)
	sellerRepo.On("FindApproved", mock.Anything).Return([]domainseller.Seller{}, nil)

	resp, err := svc.Generate(context.Background(), GeneratePayoutsRequest{PeriodStart: &start})
	require.NoError(t, err)
	assert.Equal(t, start, resp.PeriodStart)
	assert.Equal(t, start.AddDate(0, 0, 7), resp.PeriodEnd)
}

// ============================================
// Ledger Tests
// ============================================

func TestPayoutService_UpdateStatus_Complete(t *testing.T) {
	payoutRepo := new(MockPayoutRepository)
	sellerRepo := new(MockSellerRepository)
	guard := new(MockRunGuard)
	svc := newTestService(payoutRepo, sellerRepo, guard)

	p := testPayout(t, uuid.New())
	payoutRepo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	payoutRepo.On("CompleteAndSettleOrders", mock.Anything, p).Return(nil)

	resp, err := svc.UpdateStatus(context.Background(), p.ID, UpdatePayoutStatusRequest{
		Status:        "completed",
		TransactionID: "TXN-77",
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "TXN-77", resp.TransactionID)
	payoutRepo.AssertCalled(t, "CompleteAndSettleOrders", mock.Anything, p)
	payoutRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPayoutService_UpdateStatus_CompleteWithoutTransactionID(t *testing.T) {
	payoutRepo := new(MockPayoutRepository)
	sellerRepo := new(MockSellerRepository)
	guard := new(MockRunGuard)
	svc := newTestService(payoutRepo, sellerRepo, guard)

	p := testPayout(t, uuid.New())
	payoutRepo.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := svc.UpdateStatus(context.Background(), p.ID, UpdatePayoutStatusRequest{Status: "completed"})
	require.Error(t, err)
	payoutRepo.AssertNotCalled(t, "CompleteAndSettleOrders", mock.Anything, mock.Anything)
}

func TestPayoutService_UpdateStatus_FailReleasesOrders(t *testing.T) {
	payoutRepo := new(MockPayoutRepository)
	sellerRepo := new(MockSellerRepository)
	guard := new(MockRunGuard)
	svc := newTestService(payoutRepo, sellerRepo, guard)

	p := testPayout(t, uuid.New())
	payoutRepo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	payoutRepo.On("FailAndReleaseOrders", mock.Anything, p).Return(nil)

	resp, err := svc.UpdateStatus(context.Background(), p.ID, UpdatePayoutStatusRequest{
		Status:        "failed",
		FailureReason: "bank transfer bounced",
	})
	require.NoError(t, err)
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, "bank transfer bounced", resp.FailureReason)
	payoutRepo.AssertCalled(t, "FailAndReleaseOrders", mock.Anything, p)
}

func TestPayoutService_Adjust(t *testing.T) {
	payoutRepo := new(MockPayoutRepository)
	sellerRepo := new(MockSellerRepository)
	guard := new(MockRunGuard)
	svc := newTestService(payoutRepo, sellerRepo, guard)

	p := testPayout(t, uuid.New()) // gross 500, commission 50, net 450
	payoutRepo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	payoutRepo.On("Save", mock.Anything, p).Return(nil)

	resp, err := svc.Adjust(context.Background(), p.ID, AdjustPayoutRequest{
		Amount: decimal.NewFromInt(-30),
		Note:   "damaged parcel penalty",
	})
	require.NoError(t, err)
	assert.True(t, resp.NetPayout.Equal(decimal.NewFromInt(420)))
	assert.True(t, resp.Adjustments.Equal(decimal.NewFromInt(-30)))
}

// ============================================
// Cancellation Handler Tests
// ============================================

func cancelledEventFor(t *testing.T, orderID uuid.UUID, inBatch bool) *domainorder.OrderCancelledEvent {
	o := &domainorder.Order{}
	o.ID = orderID
	o.OrderNumber = "ORD-2026-0042"
	return domainorder.NewOrderCancelledEvent(o, "customer request", inBatch)
}

func TestOrderCancelledHandler_RemovesOrderFromBatch(t *testing.T) {
	payoutRepo := new(MockPayoutRepository)
	handler := NewOrderCancelledHandler(payoutRepo, zap.NewNop())

	sellerID := uuid.New()
	start := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	keepOrder := uuid.New()
	dropOrder := uuid.New()
	p, err := domainpayout.NewPayout("PAY-2026-0002", sellerID, start, start.AddDate(0, 0, 7), []domainpayout.OrderEntry{
		{OrderID: keepOrder, Gross: decimal.NewFromInt(300), Commission: decimal.NewFromInt(30)},
		{OrderID: dropOrder, Gross: decimal.NewFromInt(200), Commission: decimal.NewFromInt(20)},
	})
	require.NoError(t, err)

	payoutRepo.On("FindActiveByOrder", mock.Anything, dropOrder).Return(p, nil)
	payoutRepo.On("Save", mock.Anything, p).Return(nil)

	err = handler.Handle(context.Background(), cancelledEventFor(t, dropOrder, true))
	require.NoError(t, err)

	assert.False(t, p.CoversOrder(dropOrder))
	assert.True(t, p.GrossRevenue.Equal(decimal.NewFromInt(300)))
	assert.True(t, p.NetPayout.Equal(decimal.NewFromInt(270)))
	assert.Equal(t, domainpayout.PayoutStatusPending, p.Status)
}

func TestOrderCancelledHandler_IgnoresOrdersOutsideBatches(t *testing.T) {
	payoutRepo := new(MockPayoutRepository)
	handler := NewOrderCancelledHandler(payoutRepo, zap.NewNop())

	err := handler.Handle(context.Background(), cancelledEventFor(t, uuid.New(), false))
	require.NoError(t, err)
	payoutRepo.AssertNotCalled(t, "FindActiveByOrder", mock.Anything, mock.Anything)
}

func TestOrderCancelledHandler_LastOrderFailsBatch(t *testing.T) {
	payoutRepo := new(MockPayoutRepository)
	handler := NewOrderCancelledHandler(payoutRepo, zap.NewNop())

	orderID := uuid.New()
	p := testPayoutWithOrder(t, orderID)

	payoutRepo.On("FindActiveByOrder", mock.Anything, orderID).Return(p, nil)
	payoutRepo.On("Save", mock.Anything, p).Return(nil)

	err := handler.Handle(context.Background(), cancelledEventFor(t, orderID, true))
	require.NoError(t, err)

	assert.Equal(t, domainpayout.PayoutStatusFailed, p.Status)
	assert.Equal(t, domainpayout.FailureReasonAllOrdersCancelled, p.FailureReason)
}

func testPayoutWithOrder(t *testing.T, orderID uuid.UUID) *domainpayout.Payout {
	start := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	p, err := domainpayout.NewPayout("PAY-2026-0003", uuid.New(), start, start.AddDate(0, 0, 7), []domainpayout.OrderEntry{
		{OrderID: orderID, Gross: decimal.NewFromInt(100), Commission: decimal.NewFromInt(10)},
	})
	require.NoError(t, err)
	return p
}
