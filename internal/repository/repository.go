package repository

import (
	"context"

	"github.com/cockroachdb/errors"

	"shopapi/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// ProductRepository интерфейс репозитория товаров.
// Update и Delete не проверяют существование строки.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

// BuyerRepository интерфейс репозитория покупателей
type BuyerRepository interface {
	Create(ctx context.Context, b *domain.Buyer) error
	GetByID(ctx context.Context, id int64) (*domain.Buyer, error)
	Update(ctx context.Context, b *domain.Buyer) error
	Delete(ctx context.Context, id int64) error
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	Delete(ctx context.Context, id int64) error
	// ExistsForCustomer сообщает, ссылается ли хотя бы один заказ на покупателя
	ExistsForCustomer(ctx context.Context, customerID int64) (bool, error)
}

// TxManager абстракция транзакции. Репозитории, вызванные внутри fn,
// работают в той же транзакции.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
