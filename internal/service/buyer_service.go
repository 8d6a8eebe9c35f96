package service

import (
	"context"

	"github.com/cockroachdb/errors"

	"shopapi/internal/domain"
	"shopapi/internal/repository"
)

// ErrHasOrders покупателя нельзя удалить, пока на него ссылаются заказы
var ErrHasOrders = errors.New("delete related orders first")

// BuyerService реализует логику покупателей, включая защищённое удаление
type BuyerService struct {
	buyers repository.BuyerRepository
	orders repository.OrderRepository
	tx     repository.TxManager
}

func NewBuyerService(buyers repository.BuyerRepository, orders repository.OrderRepository, tx repository.TxManager) *BuyerService {
	return &BuyerService{buyers: buyers, orders: orders, tx: tx}
}

func (s *BuyerService) Create(ctx context.Context, b domain.Buyer) (*domain.Buyer, error) {
	cp := b
	if err := s.buyers.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *BuyerService) GetByID(ctx context.Context, id int64) (*domain.Buyer, error) {
	return s.buyers.GetByID(ctx, id)
}

// Update не проверяет существование покупателя и возвращает присланные данные
func (s *BuyerService) Update(ctx context.Context, b domain.Buyer) (*domain.Buyer, error) {
	cp := b
	if err := s.buyers.Update(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// Delete проверяет ссылки из заказов и удаляет покупателя в одной транзакции.
// Отсутствующий покупатель удаляется "успешно".
func (s *BuyerService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		referenced, err := s.orders.ExistsForCustomer(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return ErrHasOrders
		}
		return s.buyers.Delete(ctx, id)
	})
}
