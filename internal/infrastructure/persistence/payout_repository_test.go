package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bazaar/backend/internal/domain/payout"
	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPayoutRepository creates a GormPayoutRepository with a mocked SQL connection
func newMockPayoutRepository(t *testing.T) (*GormPayoutRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPayoutRepository(gormDB), mock, mockDB
}

func TestNewGormPayoutRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockPayoutRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormPayoutRepository_FindByID(t *testing.T) {
	t.Run("finds existing payout with order references", func(t *testing.T) {
		repo, mock, mockDB := newMockPayoutRepository(t)
		defer mockDB.Close()

		payoutID := uuid.New()
		sellerID := uuid.New()
		orderID := uuid.New()
		now := time.Now()

		payoutRows := sqlmock.NewRows([]string{
			"id", "payout_number", "seller_id", "period_start", "period_end",
			"year", "week_number", "gross_revenue", "platform_commission",
			"adjustments", "net_payout", "status", "version",
		}).AddRow(
			payoutID, "PAY-2026-00042", sellerID, now.AddDate(0, 0, -7), now,
			2026, 35, decimal.NewFromFloat(500.00), decimal.NewFromFloat(75.00),
			decimal.Zero, decimal.NewFromFloat(425.00), "pending", 1,
		)

		mock.ExpectQuery(`SELECT \* FROM "payouts" WHERE id = \$1`).
			WithArgs(payoutID, 1).
			WillReturnRows(payoutRows)

		refRows := sqlmock.NewRows([]string{
			"id", "payout_id", "order_id", "gross", "commission",
		}).AddRow(
			uuid.New(), payoutID, orderID,
			decimal.NewFromFloat(500.00), decimal.NewFromFloat(75.00),
		)

		mock.ExpectQuery(`SELECT \* FROM "payout_orders"`).
			WithArgs(payoutID).
			WillReturnRows(refRows)

		found, err := repo.FindByID(context.Background(), payoutID)
		require.NoError(t, err)
		assert.Equal(t, "PAY-2026-00042", found.PayoutNumber)
		assert.Equal(t, sellerID, found.SellerID)
		require.Len(t, found.Orders, 1)
		assert.Equal(t, orderID, found.Orders[0].OrderID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing payout", func(t *testing.T) {
		repo, mock, mockDB := newMockPayoutRepository(t)
		defer mockDB.Close()

		payoutID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payouts" WHERE id = \$1`).
			WithArgs(payoutID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		found, err := repo.FindByID(context.Background(), payoutID)
		assert.Nil(t, found)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPayoutRepository_GeneratePayoutNumber(t *testing.T) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("PAY-%d-", year)

	t.Run("increments the highest number for the year", func(t *testing.T) {
		repo, mock, mockDB := newMockPayoutRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "payout_number"}).
			AddRow(uuid.New(), prefix+"00007")

		mock.ExpectQuery(`SELECT \* FROM "payouts" WHERE payout_number LIKE \$1`).
			WithArgs(prefix+"%", 1).
			WillReturnRows(rows)

		number, err := repo.GeneratePayoutNumber(context.Background())
		require.NoError(t, err)
		assert.Equal(t, prefix+"00008", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("starts at one when no payout exists for the year", func(t *testing.T) {
		repo, mock, mockDB := newMockPayoutRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "payouts" WHERE payout_number LIKE \$1`).
			WithArgs(prefix+"%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		number, err := repo.GeneratePayoutNumber(context.Background())
		require.NoError(t, err)
		assert.Equal(t, prefix+"00001", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPayoutRepository_GenerateForSeller(t *testing.T) {
	sellerID := uuid.New()
	periodEnd := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	periodStart := periodEnd.AddDate(0, 0, -7)
	asOf := periodEnd.Add(24 * time.Hour)

	build := func(payoutNumber string, entries []payout.OrderEntry) (*payout.Payout, error) {
		return payout.NewPayout(payoutNumber, sellerID, periodStart, periodEnd, entries)
	}

	t.Run("returns nothing when the period has no settleable orders", func(t *testing.T) {
		repo, mock, mockDB := newMockPayoutRepository(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE status = \$1 AND payout_status = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectCommit()

		created, err := repo.GenerateForSeller(context.Background(), sellerID, periodStart, periodEnd, asOf, build)
		require.NoError(t, err)
		assert.Nil(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports nothing to settle when a concurrent run claims the orders", func(t *testing.T) {
		repo, mock, mockDB := newMockPayoutRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		deliveredAt := periodStart.Add(48 * time.Hour)

		orderRows := sqlmock.NewRows([]string{
			"id", "order_number", "customer_id", "status", "payout_status",
			"delivery_fee", "total_amount", "actual_delivery_time", "version",
		}).AddRow(
			orderID, "ORD-2026-00011", uuid.New(), "delivered", "pending",
			decimal.NewFromFloat(5.00), decimal.NewFromFloat(120.00), deliveredAt, 1,
		)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE status = \$1 AND payout_status = \$2`).
			WillReturnRows(orderRows)
		mock.ExpectQuery(`SELECT \* FROM "order_lines"`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))
		mock.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		created, err := repo.GenerateForSeller(context.Background(), sellerID, periodStart, periodEnd, asOf, build)
		require.NoError(t, err)
		assert.Nil(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
