package payout

import (
	"context"
	"time"

	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PayoutBuilder turns the orders locked for a seller into a payout batch.
// It runs inside the generation transaction, after the orders were
// atomically claimed.
type PayoutBuilder func(payoutNumber string, entries []OrderEntry) (*Payout, error)

// PayoutRepository defines persistence operations for payout batches.
// Generation and settlement are transactional: claiming orders and writing
// the batch commit together or not at all, which is what makes the weekly
// run safe to re-click.
type PayoutRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payout, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Payout], error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (*shared.Paginated[Payout], error)
	// FindActiveByOrder returns the non-terminal payout covering the order,
	// or shared.ErrNotFound when the order is not locked into any batch.
	FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*Payout, error)
	Save(ctx context.Context, p *Payout) error
	GeneratePayoutNumber(ctx context.Context) (string, error)

	// GenerateForSeller claims the seller's settleable orders for the period
	// with a conditional update, builds the batch via build, and persists it,
	// all in one transaction. Returns nil, nil when no orders qualify, which
	// is how an idempotent re-run reports "nothing new".
	GenerateForSeller(ctx context.Context, sellerID uuid.UUID, periodStart, periodEnd, asOf time.Time, build PayoutBuilder) (*Payout, error)

	// CompleteAndSettleOrders persists the completed payout and flips its
	// orders to payout-completed in the same transaction.
	CompleteAndSettleOrders(ctx context.Context, p *Payout) error

	// FailAndReleaseOrders persists the failed payout and returns its orders
	// to the pending pool in the same transaction.
	FailAndReleaseOrders(ctx context.Context, p *Payout) error
}
