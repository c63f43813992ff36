package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bazaar/backend/internal/domain/order"
	"github.com/bazaar/backend/internal/domain/payout"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errClaimLost signals that another generation run locked the candidate
// orders between our read and our conditional update. The transaction
// rolls back and the caller reports "nothing to settle".
var errClaimLost = errors.New("settleable orders were claimed by a concurrent run")

// GormPayoutRepository implements PayoutRepository using GORM
type GormPayoutRepository struct {
	db *gorm.DB
}

// NewGormPayoutRepository creates a new GormPayoutRepository
func NewGormPayoutRepository(db *gorm.DB) *GormPayoutRepository {
	return &GormPayoutRepository{db: db}
}

// FindByID finds a payout by its ID
func (r *GormPayoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*payout.Payout, error) {
	var p payout.Payout
	if err := r.db.WithContext(ctx).
		Preload("Orders").
		First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindAll finds all payouts with filtering
func (r *GormPayoutRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[payout.Payout], error) {
	base := r.db.WithContext(ctx).Model(&payout.Payout{})
	return r.paginate(base, filter)
}

// FindBySeller finds payouts for a seller
func (r *GormPayoutRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (*shared.Paginated[payout.Payout], error) {
	base := r.db.WithContext(ctx).Model(&payout.Payout{}).Where("seller_id = ?", sellerID)
	return r.paginate(base, filter)
}

// FindActiveByOrder returns the non-terminal payout covering the order
func (r *GormPayoutRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*payout.Payout, error) {
	var p payout.Payout
	err := r.db.WithContext(ctx).
		Preload("Orders").
		Where("status IN ?", []payout.PayoutStatus{payout.PayoutStatusPending, payout.PayoutStatusProcessing}).
		Where("id IN (?)", r.db.Model(&payout.PayoutOrderRef{}).
			Select("payout_id").
			Where("order_id = ?", orderID)).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Save creates or updates a payout together with its order references
func (r *GormPayoutRepository) Save(ctx context.Context, p *payout.Payout) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Orders").Save(p).Error; err != nil {
			return err
		}
		return r.saveOrderRefs(tx, p)
	})
}

// saveOrderRefs reconciles the persisted order references with the
// aggregate's references: removed orders are deleted, the rest upserted.
func (r *GormPayoutRepository) saveOrderRefs(tx *gorm.DB, p *payout.Payout) error {
	if p.ID == uuid.Nil {
		return nil
	}

	currentRefIDs := make([]uuid.UUID, len(p.Orders))
	for i, ref := range p.Orders {
		currentRefIDs[i] = ref.ID
	}

	if len(currentRefIDs) > 0 {
		if err := tx.Where("payout_id = ? AND id NOT IN ?", p.ID, currentRefIDs).
			Delete(&payout.PayoutOrderRef{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("payout_id = ?", p.ID).
			Delete(&payout.PayoutOrderRef{}).Error; err != nil {
			return err
		}
	}

	for i := range p.Orders {
		p.Orders[i].PayoutID = p.ID
		if err := tx.Save(&p.Orders[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// GenerateForSeller claims the seller's settleable orders for the period and
// builds the payout batch, all in one transaction. The conditional update on
// payout_status is what makes concurrent generation runs safe: the losing
// run finds its candidates already locked, rolls back and reports nothing
// to settle.
func (r *GormPayoutRepository) GenerateForSeller(ctx context.Context, sellerID uuid.UUID, periodStart, periodEnd, asOf time.Time, build payout.PayoutBuilder) (*payout.Payout, error) {
	var created *payout.Payout

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders []order.Order
		err := tx.
			Preload("Lines").
			Where("status = ?", order.OrderStatusDelivered).
			Where("payout_status = ?", order.PayoutStatusPending).
			Where("actual_delivery_time >= ? AND actual_delivery_time < ?", periodStart, periodEnd).
			Where("payout_hold_until IS NULL OR payout_hold_until <= ?", asOf).
			Where("id IN (?)", tx.Session(&gorm.Session{NewDB: true}).Model(&order.OrderLine{}).
				Select("DISTINCT order_id").
				Where("seller_id = ?", sellerID)).
			Order("actual_delivery_time ASC").
			Find(&orders).Error
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			return nil
		}

		orderIDs := make([]uuid.UUID, len(orders))
		entries := make([]payout.OrderEntry, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
			entries[i] = payout.OrderEntry{
				OrderID:    orders[i].ID,
				Gross:      orders[i].SellerGross(sellerID),
				Commission: orders[i].SellerCommission(sellerID),
			}
		}

		// Atomic claim: only rows still pending flip to on_hold. A row
		// count below the candidate count means a concurrent run got
		// there first.
		result := tx.Model(&order.Order{}).
			Where("id IN ? AND payout_status = ?", orderIDs, order.PayoutStatusPending).
			Updates(map[string]interface{}{
				"payout_status": order.PayoutStatusOnHold,
				"updated_at":    time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(orderIDs)) {
			return errClaimLost
		}

		payoutNumber, err := r.generatePayoutNumber(tx)
		if err != nil {
			return err
		}

		p, err := build(payoutNumber, entries)
		if err != nil {
			return err
		}

		if err := tx.Omit("Orders").Create(p).Error; err != nil {
			return err
		}
		for i := range p.Orders {
			p.Orders[i].PayoutID = p.ID
			if err := tx.Create(&p.Orders[i]).Error; err != nil {
				return err
			}
		}

		created = p
		return nil
	})

	if errors.Is(err, errClaimLost) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CompleteAndSettleOrders persists the completed payout and flips its
// orders from on_hold to completed in the same transaction
func (r *GormPayoutRepository) CompleteAndSettleOrders(ctx context.Context, p *payout.Payout) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Orders").Save(p).Error; err != nil {
			return err
		}
		return tx.Model(&order.Order{}).
			Where("id IN ? AND payout_status = ?", p.OrderIDs(), order.PayoutStatusOnHold).
			Updates(map[string]interface{}{
				"payout_status": order.PayoutStatusCompleted,
				"updated_at":    time.Now(),
			}).Error
	})
}

// FailAndReleaseOrders persists the failed payout and returns its orders to
// the pending pool in the same transaction, so a later generation run can
// pick them up again
func (r *GormPayoutRepository) FailAndReleaseOrders(ctx context.Context, p *payout.Payout) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Orders").Save(p).Error; err != nil {
			return err
		}
		return tx.Model(&order.Order{}).
			Where("id IN ? AND payout_status = ?", p.OrderIDs(), order.PayoutStatusOnHold).
			Updates(map[string]interface{}{
				"payout_status": order.PayoutStatusPending,
				"updated_at":    time.Now(),
			}).Error
	})
}

// GeneratePayoutNumber generates a unique payout number
// Format: PAY-YYYY-NNNNN (e.g., PAY-2026-00001)
func (r *GormPayoutRepository) GeneratePayoutNumber(ctx context.Context) (string, error) {
	return r.generatePayoutNumber(r.db.WithContext(ctx))
}

func (r *GormPayoutRepository) generatePayoutNumber(db *gorm.DB) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("PAY-%d-", year)

	var lastPayout payout.Payout
	err := db.
		Model(&payout.Payout{}).
		Where("payout_number LIKE ?", prefix+"%").
		Order("payout_number DESC").
		First(&lastPayout).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastPayout.PayoutNumber != "" {
		parts := strings.Split(lastPayout.PayoutNumber, "-")
		if len(parts) == 3 {
			var num int64
			_, parseErr := fmt.Sscanf(parts[2], "%d", &num)
			if parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// paginate runs the count and page queries for a filtered listing
func (r *GormPayoutRepository) paginate(base *gorm.DB, filter shared.Filter) (*shared.Paginated[payout.Payout], error) {
	filtered := r.applyFilterWithoutPagination(base, filter)

	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var payouts []payout.Payout
	query := r.applyPagination(filtered.Session(&gorm.Session{}).Preload("Orders"), filter)
	if err := query.Find(&payouts).Error; err != nil {
		return nil, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	result := shared.NewPaginated(payouts, total, page, pageSize)
	return &result, nil
}

// applyPagination applies paging and ordering to the query
func (r *GormPayoutRepository) applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter conditions without pagination
func (r *GormPayoutRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "seller_id":
			query = query.Where("seller_id = ?", value)
		case "year":
			query = query.Where("year = ?", value)
		case "week_number":
			query = query.Where("week_number = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("period_start >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("period_end <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormPayoutRepository implements PayoutRepository
var _ payout.PayoutRepository = (*GormPayoutRepository)(nil)
