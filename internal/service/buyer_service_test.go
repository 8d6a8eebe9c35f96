package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopapi/internal/domain"
	"shopapi/internal/repository"
)

func TestBuyer_DeleteBlockedByOrders(t *testing.T) {
	ctx := context.Background()
	s := setup(t)
	b, err := s.buyers.Create(ctx, domain.Buyer{Name: "Ada", Phone: 5551234})
	require.NoError(t, err)
	o, err := s.orders.CreateOrder(ctx, b.ID, "first")
	require.NoError(t, err)

	err = s.buyers.Delete(ctx, b.ID)
	assert.ErrorIs(t, err, ErrHasOrders)
	// покупатель остался
	_, err = s.buyers.GetByID(ctx, b.ID)
	require.NoError(t, err)

	require.NoError(t, s.orders.CancelOrder(ctx, o.ID))
	require.NoError(t, s.buyers.Delete(ctx, b.ID))
	_, err = s.buyers.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBuyer_DeleteMissingSucceeds(t *testing.T) {
	s := setup(t)
	assert.NoError(t, s.buyers.Delete(context.Background(), 12345))
}

func TestBuyer_UpdateEchoesInput(t *testing.T) {
	ctx := context.Background()
	s := setup(t)
	b, err := s.buyers.Create(ctx, domain.Buyer{Name: "Ada", Phone: 1})
	require.NoError(t, err)

	up, err := s.buyers.Update(ctx, domain.Buyer{ID: b.ID, Name: "Ada L.", Phone: 2})
	require.NoError(t, err)
	got, err := s.buyers.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, *up, *got)
}

func postgresBuyers(t *testing.T) (*BuyerService, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db := repository.New(sqlDB, repository.Postgres)
	return NewBuyerService(repository.NewSQLBuyers(db), repository.NewSQLOrders(db), db), mock
}

func TestBuyer_DeleteReferencedRollsBackWithoutDelete(t *testing.T) {
	s, mock := postgresBuyers(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`LOCK TABLE orders IN SHARE MODE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM orders WHERE customer_id = $1 LIMIT 1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectRollback()

	err := s.Delete(context.Background(), 5)
	assert.ErrorIs(t, err, ErrHasOrders)
	// DELETE FROM customers не ожидается: любой лишний запрос провалит проверку
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuyer_DeleteUnreferencedCommits(t *testing.T) {
	s, mock := postgresBuyers(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`LOCK TABLE orders IN SHARE MODE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM orders WHERE customer_id = $1 LIMIT 1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM customers WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Delete(context.Background(), 5))
	require.NoError(t, mock.ExpectationsWereMet())
}
