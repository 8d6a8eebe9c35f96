package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shopapi/internal/repository"
)

type services struct {
	products *ProductService
	buyers   *BuyerService
	orders   *OrderService
}

func setup(t *testing.T) services {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.InitSchema(ctx))

	orders := repository.NewSQLOrders(db)
	return services{
		products: NewProductService(repository.NewSQLProducts(db)),
		buyers:   NewBuyerService(repository.NewSQLBuyers(db), orders, db),
		orders:   NewOrderService(orders),
	}
}

// fixedClock отдаёт заданные моменты по очереди, последний повторяется
func fixedClock(ts ...int64) func() time.Time {
	i := 0
	return func() time.Time {
		v := ts[i]
		if i < len(ts)-1 {
			i++
		}
		return time.Unix(v, 0)
	}
}
