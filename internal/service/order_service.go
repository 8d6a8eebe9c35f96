package service

import (
	"context"
	"time"

	"shopapi/internal/domain"
	"shopapi/internal/repository"
)

// OrderService реализует логику заказов. Метку времени ставит сервер
// при создании и при каждом обновлении.
type OrderService struct {
	orders repository.OrderRepository
	now    func() time.Time
}

func NewOrderService(orders repository.OrderRepository) *OrderService {
	return &OrderService{orders: orders, now: time.Now}
}

// WithClock подменяет источник времени (для тестов)
func (s *OrderService) WithClock(now func() time.Time) *OrderService {
	s.now = now
	return s
}

// CreateOrder не проверяет существование покупателя customerID
func (s *OrderService) CreateOrder(ctx context.Context, customerID int64, notes string) (*domain.Order, error) {
	o := domain.Order{
		Timestamp:  s.now().Unix(),
		CustomerID: customerID,
		Notes:      notes,
	}
	if err := s.orders.Create(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrder возвращает заказ по id
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// UpdateOrder перезаписывает покупателя, заметки и метку времени
func (s *OrderService) UpdateOrder(ctx context.Context, id, customerID int64, notes string) (*domain.Order, error) {
	o := domain.Order{
		ID:         id,
		Timestamp:  s.now().Unix(),
		CustomerID: customerID,
		Notes:      notes,
	}
	if err := s.orders.Update(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CancelOrder удаляет заказ безусловно
func (s *OrderService) CancelOrder(ctx context.Context, id int64) error {
	return s.orders.Delete(ctx, id)
}
