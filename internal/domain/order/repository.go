package order

import (
	"context"

	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines persistence operations for orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)
	FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Order], error)
	Save(ctx context.Context, o *Order) error
	// SaveWithLock persists the order with an optimistic version check and
	// returns ErrConcurrencyConflict when the row changed underneath.
	SaveWithLock(ctx context.Context, o *Order) error
	GenerateOrderNumber(ctx context.Context) (string, error)
}
