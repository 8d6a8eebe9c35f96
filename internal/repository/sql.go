package repository

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"shopapi/internal/domain"
)

// SQLProducts репозиторий товаров поверх таблицы items
type SQLProducts struct{ db *DB }

func NewSQLProducts(db *DB) *SQLProducts { return &SQLProducts{db: db} }

var _ ProductRepository = (*SQLProducts)(nil)

func (r *SQLProducts) Create(ctx context.Context, p *domain.Product) error {
	err := r.db.queryRow(ctx,
		`INSERT INTO items (name, price) VALUES (?, ?) RETURNING id`,
		p.Name, p.Price,
	).Scan(&p.ID)
	return errors.Wrap(err, "insert product")
}

func (r *SQLProducts) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.queryRow(ctx, `SELECT id, name, price FROM items WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select product %d", id)
	}
	return &p, nil
}

func (r *SQLProducts) Update(ctx context.Context, p *domain.Product) error {
	err := r.db.exec(ctx, `UPDATE items SET name = ?, price = ? WHERE id = ?`, p.Name, p.Price, p.ID)
	return errors.Wrapf(err, "update product %d", p.ID)
}

func (r *SQLProducts) Delete(ctx context.Context, id int64) error {
	return errors.Wrapf(r.db.exec(ctx, `DELETE FROM items WHERE id = ?`, id), "delete product %d", id)
}

// SQLBuyers репозиторий покупателей поверх таблицы customers
type SQLBuyers struct{ db *DB }

func NewSQLBuyers(db *DB) *SQLBuyers { return &SQLBuyers{db: db} }

var _ BuyerRepository = (*SQLBuyers)(nil)

func (r *SQLBuyers) Create(ctx context.Context, b *domain.Buyer) error {
	err := r.db.queryRow(ctx,
		`INSERT INTO customers (name, phone) VALUES (?, ?) RETURNING id`,
		b.Name, b.Phone,
	).Scan(&b.ID)
	return errors.Wrap(err, "insert buyer")
}

func (r *SQLBuyers) GetByID(ctx context.Context, id int64) (*domain.Buyer, error) {
	var b domain.Buyer
	err := r.db.queryRow(ctx, `SELECT id, name, phone FROM customers WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select buyer %d", id)
	}
	return &b, nil
}

func (r *SQLBuyers) Update(ctx context.Context, b *domain.Buyer) error {
	err := r.db.exec(ctx, `UPDATE customers SET name = ?, phone = ? WHERE id = ?`, b.Name, b.Phone, b.ID)
	return errors.Wrapf(err, "update buyer %d", b.ID)
}

func (r *SQLBuyers) Delete(ctx context.Context, id int64) error {
	return errors.Wrapf(r.db.exec(ctx, `DELETE FROM customers WHERE id = ?`, id), "delete buyer %d", id)
}

// SQLOrders репозиторий заказов поверх таблицы orders
type SQLOrders struct{ db *DB }

func NewSQLOrders(db *DB) *SQLOrders { return &SQLOrders{db: db} }

var _ OrderRepository = (*SQLOrders)(nil)

func (r *SQLOrders) Create(ctx context.Context, o *domain.Order) error {
	err := r.db.queryRow(ctx,
		`INSERT INTO orders (timestamp, customer_id, notes) VALUES (?, ?, ?) RETURNING id`,
		o.Timestamp, o.CustomerID, o.Notes,
	).Scan(&o.ID)
	return errors.Wrap(err, "insert order")
}

func (r *SQLOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var (
		o     domain.Order
		notes sql.NullString
	)
	err := r.db.queryRow(ctx, `SELECT id, timestamp, customer_id, notes FROM orders WHERE id = ?`, id).
		Scan(&o.ID, &o.Timestamp, &o.CustomerID, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select order %d", id)
	}
	o.Notes = notes.String
	return &o, nil
}

func (r *SQLOrders) Update(ctx context.Context, o *domain.Order) error {
	err := r.db.exec(ctx,
		`UPDATE orders SET timestamp = ?, customer_id = ?, notes = ? WHERE id = ?`,
		o.Timestamp, o.CustomerID, o.Notes, o.ID,
	)
	return errors.Wrapf(err, "update order %d", o.ID)
}

func (r *SQLOrders) Delete(ctx context.Context, id int64) error {
	return errors.Wrapf(r.db.exec(ctx, `DELETE FROM orders WHERE id = ?`, id), "delete order %d", id)
}

// ExistsForCustomer внутри транзакции сначала блокирует вставку новых заказов,
// если диалект это требует.
func (r *SQLOrders) ExistsForCustomer(ctx context.Context, customerID int64) (bool, error) {
	if _, inTx := txFrom(ctx); inTx && r.db.dialect.lockOrders != "" {
		if err := r.db.exec(ctx, r.db.dialect.lockOrders); err != nil {
			return false, errors.Wrap(err, "lock orders")
		}
	}
	var one int
	err := r.db.queryRow(ctx, `SELECT 1 FROM orders WHERE customer_id = ? LIMIT 1`, customerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "select orders of buyer %d", customerID)
	}
	return true, nil
}
