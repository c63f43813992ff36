package payout

import (
	"testing"
	"time"

	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func testEntries(n int, grossEach, commissionEach float64) []OrderEntry {
	entries := make([]OrderEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, OrderEntry{
			OrderID:    uuid.New(),
			Gross:      decimal.NewFromFloat(grossEach),
			Commission: decimal.NewFromFloat(commissionEach),
		})
	}
	return entries
}

func createTestPayout(t *testing.T, entries []OrderEntry) *Payout {
	start := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC) // a Monday
	end := start.AddDate(0, 0, 7)
	p, err := NewPayout("PAY-2026-0001", uuid.New(), start, end, entries)
	require.NoError(t, err)
	return p
}

// ============================================
// Creation Tests
// ============================================

func TestNewPayout(t *testing.T) {
	p := createTestPayout(t, testEntries(3, 100, 10))

	assert.Equal(t, PayoutStatusPending, p.Status)
	assert.Equal(t, 2026, p.Year)
	assert.Equal(t, 34, p.WeekNumber)
	assert.Len(t, p.Orders, 3)
	assert.True(t, p.GrossRevenue.Equal(decimal.NewFromInt(300)))
	assert.True(t, p.PlatformCommission.Equal(decimal.NewFromInt(30)))
	assert.True(t, p.Adjustments.IsZero())
	assert.True(t, p.NetPayout.Equal(decimal.NewFromInt(270)))
	assert.Len(t, p.GetDomainEvents(), 1)
}

func TestNewPayout_Validation(t *testing.T) {
	start := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	entries := testEntries(1, 100, 10)

	t.Run("empty payout number", func(t *testing.T) {
		_, err := NewPayout("", uuid.New(), start, end, entries)
		assert.Error(t, err)
	})

	t.Run("nil seller", func(t *testing.T) {
		_, err := NewPayout("PAY-1", uuid.Nil, start, end, entries)
		assert.Error(t, err)
	})

	t.Run("inverted period", func(t *testing.T) {
		_, err := NewPayout("PAY-1", uuid.New(), end, start, entries)
		assert.Error(t, err)
	})

	t.Run("no orders", func(t *testing.T) {
		_, err := NewPayout("PAY-1", uuid.New(), start, end, nil)
		assert.Error(t, err)
	})
}

// ============================================
// Status Tests
// ============================================

func TestPayoutStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     PayoutStatus
		to       PayoutStatus
		canTrans bool
	}{
		{PayoutStatusPending, PayoutStatusProcessing, true},
		{PayoutStatusPending, PayoutStatusCompleted, true},
		{PayoutStatusPending, PayoutStatusFailed, true},
		{PayoutStatusProcessing, PayoutStatusCompleted, true},
		{PayoutStatusProcessing, PayoutStatusFailed, true},
		{PayoutStatusProcessing, PayoutStatusPending, false},
		{PayoutStatusCompleted, PayoutStatusFailed, false},
		{PayoutStatusCompleted, PayoutStatusProcessing, false},
		{PayoutStatusFailed, PayoutStatusPending, false},
		{PayoutStatusFailed, PayoutStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPayout_Complete(t *testing.T) {
	p := createTestPayout(t, testEntries(2, 100, 10))
	require.NoError(t, p.MarkProcessing())

	t.Run("requires transaction reference", func(t *testing.T) {
		err := p.Complete("")
		assert.Error(t, err)
		assert.Equal(t, PayoutStatusProcessing, p.Status)
	})

	t.Run("records payment", func(t *testing.T) {
		require.NoError(t, p.Complete("TXN-123456"))
		assert.Equal(t, PayoutStatusCompleted, p.Status)
		assert.Equal(t, "TXN-123456", p.TransactionID)
		assert.NotNil(t, p.PaidAt)
	})

	t.Run("terminal state locks", func(t *testing.T) {
		assert.ErrorIs(t, p.Complete("TXN-999"), shared.ErrInvalidTransition)
		assert.ErrorIs(t, p.Fail("too late"), shared.ErrInvalidTransition)
	})
}

func TestPayout_Fail(t *testing.T) {
	p := createTestPayout(t, testEntries(1, 100, 10))

	err := p.Fail("")
	assert.Error(t, err)

	require.NoError(t, p.Fail("bank rejected transfer"))
	assert.Equal(t, PayoutStatusFailed, p.Status)
	assert.Equal(t, "bank rejected transfer", p.FailureReason)
}

// ============================================
// Ledger Arithmetic Tests
// ============================================

func TestPayout_ApplyAdjustment(t *testing.T) {
	p := createTestPayout(t, testEntries(2, 500, 50)) // gross 1000, commission 100, net 900

	require.NoError(t, p.ApplyAdjustment(decimal.NewFromInt(-75), "damaged goods penalty"))
	assert.True(t, p.NetPayout.Equal(decimal.NewFromInt(825)), "net was %s", p.NetPayout)

	require.NoError(t, p.ApplyAdjustment(decimal.NewFromInt(25), "shipping reimbursement"))
	assert.True(t, p.Adjustments.Equal(decimal.NewFromInt(-50)))
	assert.True(t, p.NetPayout.Equal(decimal.NewFromInt(850)))

	t.Run("zero amount rejected", func(t *testing.T) {
		assert.Error(t, p.ApplyAdjustment(decimal.Zero, "noop"))
	})

	t.Run("terminal payout rejected", func(t *testing.T) {
		require.NoError(t, p.MarkProcessing())
		require.NoError(t, p.Complete("TXN-1"))
		assert.ErrorIs(t, p.ApplyAdjustment(decimal.NewFromInt(10), "late"), shared.ErrInvalidState)
	})
}

func TestPayout_RemoveOrder(t *testing.T) {
	entries := testEntries(2, 100, 10)
	p := createTestPayout(t, entries)

	t.Run("unknown order rejected", func(t *testing.T) {
		assert.Error(t, p.RemoveOrder(uuid.New()))
	})

	t.Run("removal recomputes totals", func(t *testing.T) {
		require.NoError(t, p.RemoveOrder(entries[0].OrderID))
		assert.Len(t, p.Orders, 1)
		assert.False(t, p.CoversOrder(entries[0].OrderID))
		assert.True(t, p.GrossRevenue.Equal(decimal.NewFromInt(100)))
		assert.True(t, p.NetPayout.Equal(decimal.NewFromInt(90)))
		assert.Equal(t, PayoutStatusPending, p.Status)
	})

	t.Run("last removal auto-fails the batch", func(t *testing.T) {
		require.NoError(t, p.RemoveOrder(entries[1].OrderID))
		assert.Empty(t, p.Orders)
		assert.Equal(t, PayoutStatusFailed, p.Status)
		assert.Equal(t, FailureReasonAllOrdersCancelled, p.FailureReason)
		assert.True(t, p.NetPayout.IsZero())
	})
}

func TestPayout_NetInvariant(t *testing.T) {
	p := createTestPayout(t, testEntries(4, 250, 37.5))
	require.NoError(t, p.ApplyAdjustment(decimal.NewFromFloat(-12.25), "chargeback"))
	require.NoError(t, p.RemoveOrder(p.Orders[0].OrderID))

	expected := p.GrossRevenue.Sub(p.PlatformCommission).Add(p.Adjustments)
	assert.True(t, p.NetPayout.Equal(expected), "net %s != gross-commission+adjustments %s", p.NetPayout, expected)
}
