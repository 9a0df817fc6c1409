package basket

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/db"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestRepositoryGetByBuyerMissing(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM baskets`)).
		WithArgs("anon-1").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewRepository(mock).GetByBuyer(context.Background(), "anon-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByBuyerEmpty(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM baskets`)).
		WithArgs("bob").
		WillReturnRows(pgxmock.NewRows([]string{"id", "buyer_id", "payment_intent_id", "client_secret"}).
			AddRow(int64(4), "bob", "pi_1", ""))
	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN products p ON p.id = bi.product_id`)).
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	b, err := NewRepository(mock).GetByBuyer(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(4), b.ID)
	assert.Equal(t, "pi_1", b.PaymentIntentID)
	assert.NotNil(t, b.Items)
	assert.Empty(t, b.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryWrites(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO baskets (buyer_id) VALUES ($1) RETURNING id`)).
		WithArgs("anon-1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (basket_id, product_id)`)).
		WithArgs(int64(7), int64(3), 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM basket_items`)).
		WithArgs(int64(7), int64(3), 1).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE basket_items SET quantity = quantity - $3`)).
		WithArgs(int64(7), int64(3), 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	b, err := repo.Create(ctx, "anon-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), b.ID)
	require.NoError(t, repo.AddQuantity(ctx, 7, 3, 2))
	require.NoError(t, repo.RemoveQuantity(ctx, 7, 3, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTransactorMergeBoth(t *testing.T) {
	mock := newMock(t)
	repo := NewRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM baskets WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE baskets SET buyer_id = $2 WHERE id = $1`)).
		WithArgs(int64(2), "bob").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	var _ db.TxBeginner = mock
	err := NewPgTransactor(mock, repo).WithinTx(context.Background(), func(s Store) error {
		if err := s.Delete(context.Background(), 1); err != nil {
			return err
		}
		return s.Reassign(context.Background(), 2, "bob")
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
