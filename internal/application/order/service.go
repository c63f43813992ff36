package order

import (
	"context"
	"time"

	approuting "github.com/bazaar/backend/internal/application/routing"
	"github.com/bazaar/backend/internal/domain/catalog"
	domainorder "github.com/bazaar/backend/internal/domain/order"
	domainrouting "github.com/bazaar/backend/internal/domain/routing"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultPayoutHold is how long a delivered order waits before it can be
// settled, giving the return/dispute window time to close
const DefaultPayoutHold = 24 * time.Hour

// MetricsRecorder records order placement for monitoring
type MetricsRecorder interface {
	RecordOrderPlaced(ctx context.Context, total decimal.Decimal)
}

// OrderService handles order placement and lifecycle operations
type OrderService struct {
	orderRepo      domainorder.OrderRepository
	listingRepo    catalog.ListingRepository
	router         *approuting.RoutingService
	eventPublisher shared.EventPublisher
	metrics        MetricsRecorder
	payoutHold     time.Duration
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo domainorder.OrderRepository, listingRepo catalog.ListingRepository, router *approuting.RoutingService, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		listingRepo: listingRepo,
		router:      router,
		payoutHold:  DefaultPayoutHold,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the order placement recorder
func (s *OrderService) SetMetrics(metrics MetricsRecorder) {
	s.metrics = metrics
}

// SetPayoutHold overrides the post-delivery settlement hold window
func (s *OrderService) SetPayoutHold(hold time.Duration) {
	if hold > 0 {
		s.payoutHold = hold
	}
}

// Place routes the requested lines against the live market snapshot and
// creates the order. The routing run is authoritative: if any line cannot
// be routed, or the fresh prices disagree with what the client was quoted,
// placement is rejected.
func (s *OrderService) Place(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	reqs := make([]domainrouting.LineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		reqs = append(reqs, domainrouting.LineRequest{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	result, err := s.router.Route(ctx, reqs)
	if err != nil {
		return nil, err
	}

	lines := make([]domainorder.OrderLine, 0, len(result.Lines))
	for i, routed := range result.Lines {
		if routed.Kind != domainrouting.LineKindRouted {
			return nil, shared.NewDomainError("LINE_UNAVAILABLE", "One or more items are no longer available: "+routed.Unavailable.Reason)
		}
		r := routed.Routed
		if !r.CustomerPrice.Equal(req.Lines[i].ExpectedUnitPrice) {
			return nil, shared.ErrPricingMismatch
		}
		lines = append(lines, domainorder.OrderLine{
			ProductID:        r.ProductID,
			ListingID:        r.ListingID,
			SellerID:         r.SellerID,
			Quantity:         r.Quantity,
			SellerPrice:      r.SellerPrice,
			CustomerPrice:    r.CustomerPrice,
			CommissionRate:   r.CommissionRate,
			CommissionAmount: r.CommissionAmount,
		})
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := domainorder.NewOrder(orderNumber, req.CustomerID, lines, result.DeliveryFee)
	if err != nil {
		return nil, err
	}

	// Reserve stock against the winning listings
	for _, line := range order.Lines {
		listing, err := s.listingRepo.FindByID(ctx, line.ListingID)
		if err != nil {
			return nil, err
		}
		if err := listing.DecrementStock(line.Quantity); err != nil {
			return nil, err
		}
		if err := s.listingRepo.Save(ctx, listing); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)
	if s.metrics != nil {
		s.metrics.RecordOrderPlaced(ctx, order.TotalAmount)
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves an order by its order number
func (s *OrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}
	if filter.Status != nil {
		domainFilter.Filters = map[string]interface{}{"status": *filter.Status}
	}

	var (
		page *shared.Paginated[domainorder.Order]
		err  error
	)
	switch {
	case filter.SellerID != nil:
		page, err = s.orderRepo.FindBySeller(ctx, *filter.SellerID, domainFilter)
	case filter.CustomerID != nil:
		page, err = s.orderRepo.FindByCustomer(ctx, *filter.CustomerID, domainFilter)
	default:
		page, err = s.orderRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	items := make([]OrderListItemResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToOrderListItemResponse(&page.Items[i])
	}
	return items, page.Total, nil
}

// Transition advances the order lifecycle. Seller-initiated transitions
// are checked against the lines; delivery opens the payout hold window.
func (s *OrderService) Transition(ctx context.Context, orderID uuid.UUID, req TransitionOrderRequest) (*OrderResponse, error) {
	target := domainorder.OrderStatus(req.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch {
	case target == domainorder.OrderStatusDelivered:
		if req.SellerID != nil && !order.HasSeller(*req.SellerID) {
			return nil, shared.ErrNotSellerOnOrder
		}
		err = order.Deliver(time.Now(), s.payoutHold)
	case req.SellerID != nil:
		err = order.TransitionBySeller(*req.SellerID, target)
	default:
		err = order.Transition(target)
	}
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// Cancel cancels an order and restocks its listings. If the order was
// already locked into a payout batch, the cancellation event tells the
// settlement side to recompute that batch.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	// Return reserved stock to the listings. The order is already
	// cancelled at this point, so restock failures are logged and left for
	// manual reconciliation rather than failing the cancellation.
	for _, line := range order.Lines {
		listing, err := s.listingRepo.FindByID(ctx, line.ListingID)
		if err != nil {
			s.logger.Warn("failed to load listing for restock",
				zap.String("order_number", order.OrderNumber),
				zap.String("listing_id", line.ListingID.String()),
				zap.Error(err),
			)
			continue
		}
		if err := listing.SetStock(listing.Stock + line.Quantity); err != nil {
			s.logger.Warn("failed to restock listing",
				zap.String("order_number", order.OrderNumber),
				zap.String("listing_id", line.ListingID.String()),
				zap.Error(err),
			)
			continue
		}
		if err := s.listingRepo.Save(ctx, listing); err != nil {
			s.logger.Warn("failed to save restocked listing",
				zap.String("order_number", order.OrderNumber),
				zap.String("listing_id", line.ListingID.String()),
				zap.Error(err),
			)
		}
	}

	s.publishEvents(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// AcceptLine records a seller accepting one of their assigned lines
func (s *OrderService) AcceptLine(ctx context.Context, orderID, lineID uuid.UUID, req AcceptLineRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.AcceptLine(req.SellerID, lineID); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) publishEvents(ctx context.Context, order *domainorder.Order) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range order.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			// Log error but don't fail the operation - event handling is async
			s.logger.Warn("failed to publish order event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	order.ClearDomainEvents()
}
