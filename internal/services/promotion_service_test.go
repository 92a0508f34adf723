package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhakthiseva/darshan-backend/internal/database"
)

// sqlDB adapts a raw *sql.DB to the database.DB interface for sqlmock tests
type sqlDB struct {
	db *sql.DB
}

func (m *sqlDB) Get(dest interface{}, query string, args ...interface{}) error {
	return sql.ErrConnDone
}

func (m *sqlDB) Select(dest interface{}, query string, args ...interface{}) error {
	return sql.ErrConnDone
}

func (m *sqlDB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *sqlDB) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *sqlDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *sqlDB) Close() error { return m.db.Close() }
func (m *sqlDB) Ping() error  { return m.db.Ping() }

var promoColumns = []string{
	"id", "code", "discount_percent", "valid_from", "valid_until",
	"max_uses", "current_uses", "is_active", "created_at", "updated_at",
}

func newPromotionTestService(t *testing.T) (*PromotionService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	repo := database.NewPromoCodeRepository(&sqlDB{db: db})
	return NewPromotionService(repo, nil, logger), mock
}

func expectPromoLookup(mock sqlmock.Sqlmock, code string, discount int, active bool, maxUses, currentUses int64, from, until *time.Time) {
	now := time.Now()
	var fromVal, untilVal, maxUsesVal interface{}
	if from != nil {
		fromVal = *from
	}
	if until != nil {
		untilVal = *until
	}
	if maxUses > 0 {
		maxUsesVal = maxUses
	}
	row := sqlmock.NewRows(promoColumns).AddRow(
		uuid.New().String(), code, discount, fromVal, untilVal,
		maxUsesVal, currentUses, active, now, now,
	)
	mock.ExpectQuery(`SELECT id, code, discount_percent`).
		WithArgs(code).
		WillReturnRows(row)
}

func TestValidateCode(t *testing.T) {
	t.Run("Valid Code", func(t *testing.T) {
		svc, mock := newPromotionTestService(t)
		expectPromoLookup(mock, "DIWALI25", 25, true, 0, 0, nil, nil)

		promo, err := svc.ValidateCode("diwali25")
		require.NoError(t, err)
		assert.Equal(t, "DIWALI25", promo.Code)
		assert.Equal(t, 25, promo.DiscountPercent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		svc, mock := newPromotionTestService(t)
		mock.ExpectQuery(`SELECT id, code, discount_percent`).
			WithArgs("MISSING").
			WillReturnError(sql.ErrNoRows)

		_, err := svc.ValidateCode("missing")
		assert.ErrorIs(t, err, ErrPromoNotFound)
	})

	t.Run("Inactive", func(t *testing.T) {
		svc, mock := newPromotionTestService(t)
		expectPromoLookup(mock, "PAUSED", 10, false, 0, 0, nil, nil)

		_, err := svc.ValidateCode("paused")
		assert.ErrorIs(t, err, ErrPromoInactive)
	})

	t.Run("Exhausted", func(t *testing.T) {
		svc, mock := newPromotionTestService(t)
		expectPromoLookup(mock, "LIMITED", 10, true, 100, 100, nil, nil)

		_, err := svc.ValidateCode("limited")
		assert.ErrorIs(t, err, ErrPromoExhausted)
	})

	t.Run("Not Started", func(t *testing.T) {
		svc, mock := newPromotionTestService(t)
		svc.now = func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }
		from := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
		expectPromoLookup(mock, "SOON", 10, true, 0, 0, &from, nil)

		_, err := svc.ValidateCode("soon")
		assert.ErrorIs(t, err, ErrPromoNotStarted)
	})

	t.Run("Expired", func(t *testing.T) {
		svc, mock := newPromotionTestService(t)
		svc.now = func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }
		until := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		expectPromoLookup(mock, "OLD", 10, true, 0, 0, nil, &until)

		_, err := svc.ValidateCode("old")
		assert.ErrorIs(t, err, ErrPromoExpired)
	})
}

func TestResolve(t *testing.T) {
	t.Run("Promo Overrides Larger Loyalty Discount", func(t *testing.T) {
		svc, mock := newPromotionTestService(t)
		expectPromoLookup(mock, "SMALL20", 20, true, 0, 0, nil, nil)

		code := "small20"
		decision, err := svc.Resolve(&code, 25)
		require.NoError(t, err)
		assert.Equal(t, 20, decision.Percent, "discounts never stack, promo wins even when smaller")
		require.NotNil(t, decision.Source)
		assert.Equal(t, DiscountSourcePromo, *decision.Source)
		require.NotNil(t, decision.Code)
		assert.Equal(t, "SMALL20", *decision.Code)
	})

	t.Run("Invalid Promo Fails Closed", func(t *testing.T) {
		svc, mock := newPromotionTestService(t)
		mock.ExpectQuery(`SELECT id, code, discount_percent`).
			WithArgs("BOGUS").
			WillReturnError(sql.ErrNoRows)

		code := "bogus"
		_, err := svc.Resolve(&code, 25)
		assert.ErrorIs(t, err, ErrPromoNotFound, "a bad code rejects the resolution, it does not fall back to loyalty")
	})

	t.Run("No Code Falls Back To Loyalty", func(t *testing.T) {
		svc, _ := newPromotionTestService(t)

		decision, err := svc.Resolve(nil, 25)
		require.NoError(t, err)
		assert.Equal(t, 25, decision.Percent)
		require.NotNil(t, decision.Source)
		assert.Equal(t, DiscountSourceLoyalty, *decision.Source)
		assert.Nil(t, decision.Code)
	})

	t.Run("Blank Code Falls Back To Loyalty", func(t *testing.T) {
		svc, _ := newPromotionTestService(t)

		code := "   "
		decision, err := svc.Resolve(&code, 10)
		require.NoError(t, err)
		assert.Equal(t, 10, decision.Percent)
	})

	t.Run("No Discount At All", func(t *testing.T) {
		svc, _ := newPromotionTestService(t)

		decision, err := svc.Resolve(nil, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, decision.Percent)
		assert.Nil(t, decision.Source)
	})

	t.Run("Resolve Is Repeatable", func(t *testing.T) {
		svc, mock := newPromotionTestService(t)
		expectPromoLookup(mock, "REPEAT", 15, true, 10, 3, nil, nil)
		expectPromoLookup(mock, "REPEAT", 15, true, 10, 3, nil, nil)

		code := "repeat"
		first, err := svc.Resolve(&code, 0)
		require.NoError(t, err)
		second, err := svc.Resolve(&code, 0)
		require.NoError(t, err)
		assert.Equal(t, first.Percent, second.Percent, "previewing a discount must not consume it")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// onceGuard mimics the Redis SetNX redemption guard in memory
type onceGuard struct {
	seen map[string]bool
	err  error
}

func (g *onceGuard) Acquire(ctx context.Context, orderID string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[orderID] {
		return false, nil
	}
	g.seen[orderID] = true
	return true, nil
}

func TestRedeem(t *testing.T) {
	newService := func(t *testing.T, guard RedemptionGuard) (*PromotionService, sqlmock.Sqlmock) {
		t.Helper()

		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		repo := database.NewPromoCodeRepository(&sqlDB{db: db})
		return NewPromotionService(repo, guard, logrus.New()), mock
	}

	t.Run("Increments Once Per Order", func(t *testing.T) {
		svc, mock := newService(t, &onceGuard{})
		mock.ExpectExec(`UPDATE promo_codes`).
			WithArgs("DIWALI25").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ctx := context.Background()
		svc.Redeem(ctx, "diwali25", "order-1")
		svc.Redeem(ctx, "diwali25", "order-1")

		assert.NoError(t, mock.ExpectationsWereMet(),
			"a repeated redeem for the same order must not touch the counter")
	})

	t.Run("Distinct Orders Each Increment", func(t *testing.T) {
		svc, mock := newService(t, &onceGuard{})
		mock.ExpectExec(`UPDATE promo_codes`).
			WithArgs("DIWALI25").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE promo_codes`).
			WithArgs("DIWALI25").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ctx := context.Background()
		svc.Redeem(ctx, "diwali25", "order-1")
		svc.Redeem(ctx, "diwali25", "order-2")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Guard Failure Skips Increment", func(t *testing.T) {
		svc, mock := newService(t, &onceGuard{err: errors.New("redis unavailable")})

		svc.Redeem(context.Background(), "diwali25", "order-1")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cap Reached Between Resolve And Redeem", func(t *testing.T) {
		svc, mock := newService(t, &onceGuard{})
		mock.ExpectExec(`UPDATE promo_codes`).
			WithArgs("LIMITED").
			WillReturnResult(sqlmock.NewResult(0, 0))

		svc.Redeem(context.Background(), "limited", "order-1")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFinalPrice(t *testing.T) {
	tests := []struct {
		subtotal float64
		percent  int
		want     float64
	}{
		{1000, 0, 1000},
		{1000, 25, 750},
		{1000, 20, 800},
		{999, 25, 749},  // 749.25 rounds down
		{101, 50, 51},   // 50.5 rounds half away from zero
		{1000, 100, 0},
	}

	for _, tt := range tests {
		got := FinalPrice(tt.subtotal, tt.percent)
		assert.Equal(t, tt.want, got, "FinalPrice(%.2f, %d)", tt.subtotal, tt.percent)
	}
}
