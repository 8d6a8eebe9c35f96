package repository

import (
	"context"
	"database/sql"
	"embed"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Dialect описывает различия между поддерживаемыми СУБД
type Dialect struct {
	Name   string
	Driver string
	// numbered: плейсхолдеры вида $1, $2 вместо ?
	numbered bool
	// lockOrders выполняется в транзакции удаления покупателя перед проверкой заказов
	lockOrders string
	// singleConn: вся работа идёт через одно соединение (sqlite — один писатель)
	singleConn bool
}

var (
	SQLite = Dialect{
		Name:       "sqlite",
		Driver:     "sqlite",
		singleConn: true,
	}
	Postgres = Dialect{
		Name:       "postgres",
		Driver:     "postgres",
		numbered:   true,
		lockOrders: "LOCK TABLE orders IN SHARE MODE",
	}
)

// DialectByName возвращает диалект по имени драйвера из конфигурации
func DialectByName(name string) (Dialect, error) {
	switch name {
	case SQLite.Name:
		return SQLite, nil
	case Postgres.Name:
		return Postgres, nil
	default:
		return Dialect{}, errors.Newf("unsupported database driver %q", name)
	}
}

// rebind переводит плейсхолдеры ? в формат диалекта
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DB общий дескриптор хранилища. Создаётся один раз в main и передаётся репозиториям.
type DB struct {
	sql     *sql.DB
	dialect Dialect
}

// Open открывает соединение с хранилищем и проверяет его доступность
func Open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	sqlDB, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dialect.Name)
	}
	if dialect.singleConn {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrapf(err, "ping %s", dialect.Name)
	}
	return &DB{sql: sqlDB, dialect: dialect}, nil
}

// New оборачивает уже открытый *sql.DB (используется в тестах с sqlmock)
func New(sqlDB *sql.DB, dialect Dialect) *DB {
	return &DB{sql: sqlDB, dialect: dialect}
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) Dialect() Dialect { return d.dialect }

// InitSchema создаёт таблицы, если их нет. Повторный вызов ничего не меняет.
func (d *DB) InitSchema(ctx context.Context) error {
	raw, err := schemaSQL(d.dialect)
	if err != nil {
		return errors.Wrapf(err, "read %s schema", d.dialect.Name)
	}
	// весь файл одним Exec: оба драйвера принимают несколько выражений без аргументов
	if _, err := d.sql.ExecContext(ctx, raw); err != nil {
		return errors.Wrapf(err, "init %s schema", d.dialect.Name)
	}
	return nil
}

// schemaSQL возвращает встроенную схему диалекта
func schemaSQL(dialect Dialect) (string, error) {
	raw, err := schemaFS.ReadFile("schema/" + dialect.Name + ".sql")
	return string(raw), err
}

// transaction-aware helpers
type txKey struct{}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}

func (d *DB) conn(ctx context.Context) querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return d.sql
}

func (d *DB) exec(ctx context.Context, query string, args ...any) error {
	_, err := d.conn(ctx).ExecContext(ctx, d.dialect.rebind(query), args...)
	return err
}

func (d *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.conn(ctx).QueryRowContext(ctx, d.dialect.rebind(query), args...)
}

var _ TxManager = (*DB)(nil)

// WithTransaction выполняет fn в одной транзакции. Вложенный вызов переиспользует внешнюю.
func (d *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.WithSecondaryError(err, rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}
