package payout

import (
	"context"
	"errors"
	"fmt"

	domainorder "github.com/bazaar/backend/internal/domain/order"
	domainpayout "github.com/bazaar/backend/internal/domain/payout"
	"github.com/bazaar/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderCancelledHandler handles OrderCancelledEvent and removes the order
// from its live payout batch, recomputing the batch totals
type OrderCancelledHandler struct {
	payoutRepo domainpayout.PayoutRepository
	logger     *zap.Logger
}

// NewOrderCancelledHandler creates a new handler for order cancelled events
func NewOrderCancelledHandler(payoutRepo domainpayout.PayoutRepository, logger *zap.Logger) *OrderCancelledHandler {
	return &OrderCancelledHandler{
		payoutRepo: payoutRepo,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderCancelledHandler) EventTypes() []string {
	return []string{domainorder.EventTypeOrderCancelled}
}

// Handle processes an OrderCancelledEvent by pulling the order out of its
// payout batch. Orders that were never locked into a batch need nothing.
func (h *OrderCancelledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	cancelledEvent, ok := event.(*domainorder.OrderCancelledEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", domainorder.EventTypeOrderCancelled),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			domainorder.EventTypeOrderCancelled, event.EventType())
	}

	if !cancelledEvent.WasInPayoutBatch {
		return nil
	}

	orderID := cancelledEvent.AggregateID()
	p, err := h.payoutRepo.FindActiveByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Idempotent - the order was already removed or the batch resolved
			h.logger.Warn("no active payout covers cancelled order, skipping",
				zap.String("order_id", orderID.String()),
				zap.String("order_number", cancelledEvent.OrderNumber),
			)
			return nil
		}
		return fmt.Errorf("failed to find payout for cancelled order: %w", err)
	}

	if err := p.RemoveOrder(orderID); err != nil {
		return fmt.Errorf("failed to remove cancelled order from payout: %w", err)
	}

	if err := h.payoutRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save recomputed payout: %w", err)
	}

	h.logger.Info("cancelled order removed from payout",
		zap.String("order_id", orderID.String()),
		zap.String("payout_number", p.PayoutNumber),
		zap.String("payout_status", string(p.Status)),
		zap.String("net_payout", p.NetPayout.String()),
	)
	return nil
}
