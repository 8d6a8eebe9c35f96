package repository

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopapi/internal/domain"
)

func openSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.InitSchema(context.Background()))
	return db
}

func newMock(t *testing.T, dialect Dialect) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(sqlDB, dialect), mock
}

func TestInitSchema_Idempotent(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.InitSchema(context.Background()))
}

func TestProducts_CRUD(t *testing.T) {
	ctx := context.Background()
	products := NewSQLProducts(openSQLite(t))

	p := domain.Product{Name: "Lamp", Price: 19.5}
	require.NoError(t, products.Create(ctx, &p))
	require.NotZero(t, p.ID)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, *got)

	p.Name, p.Price = "Desk lamp", -3
	require.NoError(t, products.Update(ctx, &p))
	got, err = products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk lamp", got.Name)
	assert.Equal(t, -3.0, got.Price)

	require.NoError(t, products.Delete(ctx, p.ID))
	_, err = products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProducts_UpdateDeleteMissingRow(t *testing.T) {
	ctx := context.Background()
	products := NewSQLProducts(openSQLite(t))

	require.NoError(t, products.Update(ctx, &domain.Product{ID: 42, Name: "ghost", Price: 1}))
	require.NoError(t, products.Delete(ctx, 42))
	_, err := products.GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuyers_CRUD(t *testing.T) {
	ctx := context.Background()
	buyers := NewSQLBuyers(openSQLite(t))

	b := domain.Buyer{Name: "Ada", Phone: 5551234}
	require.NoError(t, buyers.Create(ctx, &b))
	assert.Equal(t, int64(1), b.ID)

	b.Phone = 5559999
	require.NoError(t, buyers.Update(ctx, &b))
	got, err := buyers.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, *got)

	require.NoError(t, buyers.Delete(ctx, b.ID))
	_, err = buyers.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrders_CRUDAndExists(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	orders := NewSQLOrders(db)

	// покупатель 7 не существует: ссылка не проверяется
	o := domain.Order{Timestamp: 1700000000, CustomerID: 7, Notes: "first"}
	require.NoError(t, orders.Create(ctx, &o))
	require.NotZero(t, o.ID)

	exists, err := orders.ExistsForCustomer(ctx, 7)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = orders.ExistsForCustomer(ctx, 8)
	require.NoError(t, err)
	assert.False(t, exists)

	o.Timestamp, o.Notes = 1700000100, ""
	require.NoError(t, orders.Update(ctx, &o))
	got, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o, *got)

	require.NoError(t, orders.Delete(ctx, o.ID))
	_, err = orders.GetByID(ctx, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrders_NullNotes(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	require.NoError(t, db.exec(ctx, `INSERT INTO orders (timestamp, customer_id, notes) VALUES (?, ?, NULL)`, 1, 1))

	got, err := NewSQLOrders(db).GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "", got.Notes)
}

func TestWithTransaction_Rollback(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	buyers := NewSQLBuyers(db)

	b := domain.Buyer{Name: "Ada", Phone: 1}
	require.NoError(t, buyers.Create(ctx, &b))

	boom := assert.AnError
	err := db.WithTransaction(ctx, func(ctx context.Context) error {
		if err := buyers.Delete(ctx, b.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = buyers.GetByID(ctx, b.ID)
	assert.NoError(t, err)
}

func TestPostgres_ProductQueries(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t, Postgres)
	products := NewSQLProducts(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO items (name, price) VALUES ($1, $2) RETURNING id`)).
		WithArgs("Lamp", 19.5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	p := domain.Product{Name: "Lamp", Price: 19.5}
	require.NoError(t, products.Create(ctx, &p))
	assert.Equal(t, int64(3), p.ID)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, price FROM items WHERE id = $1`)).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}))
	_, err := products.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE items SET name = $1, price = $2 WHERE id = $3`)).
		WithArgs("Lamp", 20.0, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, products.Update(ctx, &domain.Product{ID: 99, Name: "Lamp", Price: 20}))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ExistsForCustomerLocksInTx(t *testing.T) {
	ctx := context.Background()
	db, mock := newMock(t, Postgres)
	orders := NewSQLOrders(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`LOCK TABLE orders IN SHARE MODE`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM orders WHERE customer_id = $1 LIMIT 1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectCommit()

	var exists bool
	err := db.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		exists, err = orders.ExistsForCustomer(ctx, 1)
		return err
	})
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InitSchema(t *testing.T) {
	db, mock := newMock(t, Postgres)
	schema, err := schemaSQL(Postgres)
	require.NoError(t, err)

	// вся схема уходит одним выражением, без разрезания по ';' в комментариях
	mock.ExpectExec("^" + regexp.QuoteMeta(schema) + "$").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, db.InitSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 3, strings.Count(schema, "CREATE TABLE IF NOT EXISTS"))
}

func TestSQLite_InitSchemaCreatesAllTables(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	var n int
	require.NoError(t, db.queryRow(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name IN ('items', 'customers', 'orders')`,
	).Scan(&n))
	assert.Equal(t, 3, n)
}

func TestDialectByName(t *testing.T) {
	d, err := DialectByName("postgres")
	require.NoError(t, err)
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", d.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	_, err = DialectByName("mysql")
	assert.Error(t, err)
}
