package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks marketplace activity: routing outcomes, order
// placement, and payout settlement.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	linesRoutedTotal      *Counter
	linesUnavailableTotal *Counter
	orderCreatedTotal     *Counter
	orderAmountTotal      *Counter
	payoutGeneratedTotal  *Counter
	payoutSettledAmount   *Counter
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	bm.linesRoutedTotal, err = NewCounter(
		cfg.Meter,
		"bazaar_lines_routed_total",
		"Total number of order lines successfully routed to a seller",
		"{lines}",
	)
	if err != nil {
		return nil, err
	}

	bm.linesUnavailableTotal, err = NewCounter(
		cfg.Meter,
		"bazaar_lines_unavailable_total",
		"Total number of order lines with no routable seller",
		"{lines}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderCreatedTotal, err = NewCounter(
		cfg.Meter,
		"bazaar_order_created_total",
		"Total number of orders placed",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderAmountTotal, err = NewCounter(
		cfg.Meter,
		"bazaar_order_amount_total",
		"Total order amount in the smallest currency unit",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.payoutGeneratedTotal, err = NewCounter(
		cfg.Meter,
		"bazaar_payout_generated_total",
		"Total number of payout batches generated",
		"{payouts}",
	)
	if err != nil {
		return nil, err
	}

	bm.payoutSettledAmount, err = NewCounter(
		cfg.Meter,
		"bazaar_payout_settled_amount_total",
		"Total net amount settled to sellers in the smallest currency unit",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordLineRouted records a successfully routed order line.
func (bm *BusinessMetrics) RecordLineRouted(ctx context.Context, sellerID uuid.UUID) {
	bm.linesRoutedTotal.Inc(ctx, AttrSellerID.String(sellerID.String()))
}

// RecordLineUnavailable records a line that could not be routed, labelled
// with the unavailability reason.
func (bm *BusinessMetrics) RecordLineUnavailable(ctx context.Context, reason string) {
	bm.linesUnavailableTotal.Inc(ctx, AttrLineOutcome.String(reason))
}

// RecordOrderPlaced records an order placement with its customer-facing total.
// The amount is converted to the smallest currency unit.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal) {
	bm.orderCreatedTotal.Inc(ctx)
	bm.orderAmountTotal.Add(ctx, total.Mul(decimal.NewFromInt(100)).IntPart())
}

// RecordPayoutGenerated records a generated payout batch for a seller.
func (bm *BusinessMetrics) RecordPayoutGenerated(ctx context.Context, sellerID uuid.UUID) {
	bm.payoutGeneratedTotal.Inc(ctx, AttrSellerID.String(sellerID.String()))
}

// RecordPayoutSettled records the net amount paid out when a batch completes.
func (bm *BusinessMetrics) RecordPayoutSettled(ctx context.Context, sellerID uuid.UUID, net decimal.Decimal) {
	bm.payoutSettledAmount.Add(ctx, net.Mul(decimal.NewFromInt(100)).IntPart(),
		AttrSellerID.String(sellerID.String()),
	)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
