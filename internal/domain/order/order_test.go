package order

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
func testLine(sellerID uuid.UUID, qty int64, sellerPrice, rate float64) OrderLine {
	price := decimal.NewFromFloat(sellerPrice)
	r := decimal.NewFromFloat(rate)
	hundred := decimal.NewFromInt(100)
	return OrderLine{
		ProductID:        uuid.New(),
		ListingID:        uuid.New(),
		SellerID:         sellerID,
		Quantity:         qty,
		SellerPrice:      price,
		CustomerPrice:    price.Mul(decimal.NewFromInt(1).Add(r.Div(hundred))).Round(2),
		CommissionRate:   r,
		CommissionAmount: price.Mul(decimal.NewFromInt(qty)).Mul(r).Div(hundred).Round(2),
	}
}

func createTestOrder(t *testing.T, lines ...OrderLine) *Order {
	if len(lines) == 0 {
		lines = []OrderLine{testLine(uuid.New(), 2, 100, 10)}
	}
	o, err := NewOrder("ORD-2026-0001", uuid.New(), lines, decimal.NewFromInt(40))
	require.NoError(t, err)
	return o
}

func deliverTestOrder(t *testing.T, o *Order) {
	require.NoError(t, o.Transition(OrderStatusConfirmed))
	require.NoError(t, o.Transition(OrderStatusProcessing))
	require.NoError(t, o.Transition(OrderStatusOutForDelivery))
	require.NoError(t, o.Deliver(time.Now(), 24*time.Hour))
}

// ============================================
// OrderStatus Tests
// ============================================

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		isValid bool
	}{
		{OrderStatusPending, true},
		{OrderStatusConfirmed, true},
		{OrderStatusProcessing, true},
		{OrderStatusOutForDelivery, true},
		{OrderStatusDelivered, true},
		{OrderStatusCancelled, true},
		{OrderStatus("INVALID"), false},
		{OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		to       OrderStatus
		canTrans bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusProcessing, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusOutForDelivery, false},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusOutForDelivery, true},
		{OrderStatusProcessing, OrderStatusConfirmed, false},
		{OrderStatusOutForDelivery, OrderStatusDelivered, true},
		{OrderStatusOutForDelivery, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{OrderStatusCancelled, OrderStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// Order Creation Tests
// ============================================

func TestNewOrder(t *testing.T) {
	sellerID := uuid.New()
	o := createTestOrder(t, testLine(sellerID, 2, 100, 10))

	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, PayoutStatusPending, o.PayoutStatus)
	assert.Len(t, o.Lines, 1)
	assert.Equal(t, LineSellerStatusAssigned, o.Lines[0].SellerStatus)
	// 2 * 110 + 40 delivery fee
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromInt(260)), "total was %s", o.TotalAmount)
	assert.True(t, o.Subtotal().Equal(decimal.NewFromInt(220)))
	assert.Len(t, o.GetDomainEvents(), 1)
}

func TestNewOrder_Validation(t *testing.T) {
	validLine := testLine(uuid.New(), 1, 50, 10)

	t.Run("empty order number", func(t *testing.T) {
		_, err := NewOrder("", uuid.New(), []OrderLine{validLine}, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("nil customer", func(t *testing.T) {
		_, err := NewOrder("ORD-1", uuid.Nil, []OrderLine{validLine}, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("no lines", func(t *testing.T) {
		_, err := NewOrder("ORD-1", uuid.New(), nil, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("zero quantity line", func(t *testing.T) {
		bad := validLine
		bad.Quantity = 0
		_, err := NewOrder("ORD-1", uuid.New(), []OrderLine{bad}, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("negative delivery fee", func(t *testing.T) {
		_, err := NewOrder("ORD-1", uuid.New(), []OrderLine{validLine}, decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

// ============================================
// Lifecycle Tests
// ============================================

func TestOrder_Transition(t *testing.T) {
	o := createTestOrder(t)

	require.NoError(t, o.Transition(OrderStatusConfirmed))
	assert.Equal(t, OrderStatusConfirmed, o.Status)

	err := o.Transition(OrderStatusDelivered)
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	require.NoError(t, o.Transition(OrderStatusProcessing))
	require.NoError(t, o.Transition(OrderStatusOutForDelivery))
	assert.Equal(t, OrderStatusOutForDelivery, o.Status)
}

func TestOrder_TransitionBySeller(t *testing.T) {
	sellerID := uuid.New()
	o := createTestOrder(t, testLine(sellerID, 1, 80, 10))

	t.Run("stranger is rejected", func(t *testing.T) {
		err := o.TransitionBySeller(uuid.New(), OrderStatusConfirmed)
		assert.ErrorIs(t, err, shared.ErrNotSellerOnOrder)
		assert.Equal(t, OrderStatusPending, o.Status)
	})

	t.Run("seller on order advances it", func(t *testing.T) {
		require.NoError(t, o.TransitionBySeller(sellerID, OrderStatusConfirmed))
		assert.Equal(t, OrderStatusConfirmed, o.Status)
	})

	t.Run("seller cannot cancel", func(t *testing.T) {
		err := o.TransitionBySeller(sellerID, OrderStatusCancelled)
		assert.Error(t, err)
		assert.Equal(t, OrderStatusConfirmed, o.Status)
	})
}

func TestOrder_Deliver(t *testing.T) {
	o := createTestOrder(t)
	require.NoError(t, o.Transition(OrderStatusConfirmed))
	require.NoError(t, o.Transition(OrderStatusProcessing))
	require.NoError(t, o.Transition(OrderStatusOutForDelivery))

	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	require.NoError(t, o.Deliver(now, 24*time.Hour))

	assert.Equal(t, OrderStatusDelivered, o.Status)
	// Delivery does not lock the order into a batch
	assert.Equal(t, PayoutStatusPending, o.PayoutStatus)
	require.NotNil(t, o.ActualDeliveryTime)
	assert.Equal(t, now, *o.ActualDeliveryTime)
	require.NotNil(t, o.PayoutHoldUntil)
	assert.Equal(t, now.Add(24*time.Hour), *o.PayoutHoldUntil)
	for _, line := range o.Lines {
		assert.Equal(t, LineSellerStatusCompleted, line.SellerStatus)
	}
}

func TestOrder_Deliver_FromWrongState(t *testing.T) {
	o := createTestOrder(t)
	err := o.Deliver(time.Now(), 24*time.Hour)
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("from pending", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.Cancel("customer changed mind"))
		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.Equal(t, "customer changed mind", o.CancelReason)
		assert.NotNil(t, o.CancelledAt)
	})

	t.Run("from delivered is rejected", func(t *testing.T) {
		o := createTestOrder(t)
		deliverTestOrder(t, o)
		err := o.Cancel("too late")
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	})

	t.Run("settled order is rejected", func(t *testing.T) {
		o := createTestOrder(t)
		o.PayoutStatus = PayoutStatusCompleted
		err := o.Cancel("refund attempt")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrInvalidTransition)
	})

	t.Run("order in live batch flags the event", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.Transition(OrderStatusConfirmed))
		o.PayoutStatus = PayoutStatusOnHold
		o.ClearDomainEvents()

		require.NoError(t, o.Cancel("fraud"))
		assert.Equal(t, PayoutStatusPending, o.PayoutStatus)

		var cancelled *OrderCancelledEvent
		for _, ev := range o.GetDomainEvents() {
			if e, ok := ev.(*OrderCancelledEvent); ok {
				cancelled = e
			}
		}
		require.NotNil(t, cancelled)
		assert.True(t, cancelled.WasInPayoutBatch)
	})
}

// ============================================
// Line Acceptance Tests
// ============================================

func TestOrder_AcceptLine(t *testing.T) {
	sellerID := uuid.New()
	o := createTestOrder(t, testLine(sellerID, 1, 60, 10))
	lineID := o.Lines[0].ID

	err := o.AcceptLine(uuid.New(), lineID)
	assert.ErrorIs(t, err, shared.ErrNotSellerOnOrder)

	require.NoError(t, o.AcceptLine(sellerID, lineID))
	assert.Equal(t, LineSellerStatusAccepted, o.Lines[0].SellerStatus)

	err = o.AcceptLine(sellerID, lineID)
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
}

// ============================================
// Settlement Gate Tests
// ============================================

func TestOrder_EligibleForPayout(t *testing.T) {
	deliveredAt := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	newDelivered := func(t *testing.T) *Order {
		o := createTestOrder(t)
		require.NoError(t, o.Transition(OrderStatusConfirmed))
		require.NoError(t, o.Transition(OrderStatusProcessing))
		require.NoError(t, o.Transition(OrderStatusOutForDelivery))
		require.NoError(t, o.Deliver(deliveredAt, 24*time.Hour))
		return o
	}

	t.Run("inside hold window", func(t *testing.T) {
		o := newDelivered(t)
		assert.False(t, o.EligibleForPayout(deliveredAt.Add(23*time.Hour)))
	})

	t.Run("after hold window", func(t *testing.T) {
		o := newDelivered(t)
		assert.True(t, o.EligibleForPayout(deliveredAt.Add(25*time.Hour)))
	})

	t.Run("exactly at hold boundary", func(t *testing.T) {
		o := newDelivered(t)
		assert.True(t, o.EligibleForPayout(deliveredAt.Add(24*time.Hour)))
	})

	t.Run("not delivered", func(t *testing.T) {
		o := createTestOrder(t)
		assert.False(t, o.EligibleForPayout(deliveredAt.Add(48*time.Hour)))
	})

	t.Run("already in a batch", func(t *testing.T) {
		o := newDelivered(t)
		require.NoError(t, o.MarkPayoutOnHold())
		assert.False(t, o.EligibleForPayout(deliveredAt.Add(48*time.Hour)))
	})
}

func TestOrder_PayoutStatusFlow(t *testing.T) {
	o := createTestOrder(t)
	deliverTestOrder(t, o)

	require.NoError(t, o.MarkPayoutOnHold())
	assert.Equal(t, PayoutStatusOnHold, o.PayoutStatus)

	// double-lock is rejected
	assert.ErrorIs(t, o.MarkPayoutOnHold(), shared.ErrInvalidState)

	require.NoError(t, o.MarkPayoutCompleted())
	assert.Equal(t, PayoutStatusCompleted, o.PayoutStatus)

	// settled orders never go back
	assert.ErrorIs(t, o.ReleasePayout(), shared.ErrInvalidState)
	assert.ErrorIs(t, o.MarkPayoutCompleted(), shared.ErrInvalidState)
}

func TestOrder_ReleasePayout(t *testing.T) {
	o := createTestOrder(t)
	deliverTestOrder(t, o)
	require.NoError(t, o.MarkPayoutOnHold())

	require.NoError(t, o.ReleasePayout())
	assert.Equal(t, PayoutStatusPending, o.PayoutStatus)
	assert.True(t, o.EligibleForPayout(o.PayoutHoldUntil.Add(time.Hour)))
}

// ============================================
// Seller Aggregation Tests
// ============================================

func TestOrder_SellerAggregation(t *testing.T) {
	sellerA := uuid.New()
	sellerB := uuid.New()
	o := createTestOrder(t,
		testLine(sellerA, 2, 100, 10), // gross 200, commission 20
		testLine(sellerA, 1, 50, 10),  // gross 50, commission 5
		testLine(sellerB, 3, 30, 15),  // gross 90, commission 13.50
	)

	assert.ElementsMatch(t, []uuid.UUID{sellerA, sellerB}, o.SellerIDs())
	assert.True(t, o.HasSeller(sellerA))
	assert.False(t, o.HasSeller(uuid.New()))

	assert.True(t, o.SellerGross(sellerA).Equal(decimal.NewFromInt(250)))
	assert.True(t, o.SellerCommission(sellerA).Equal(decimal.NewFromInt(25)))
	assert.True(t, o.SellerGross(sellerB).Equal(decimal.NewFromInt(90)))
	assert.True(t, o.SellerCommission(sellerB).Equal(decimal.NewFromFloat(13.50)))
}
