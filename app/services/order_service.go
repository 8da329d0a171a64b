package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// OrderService is the read side of order history.
type OrderService struct {
	repo *repositories.Repository
}

func NewOrderService(repo *repositories.Repository) *OrderService {
	return &OrderService{repo: repo}
}

func (s *OrderService) ListOrders(ctx context.Context, page, perPage int) ([]models.Order, orm.Pagination, error) {
	return s.repo.Orders.Paginate(ctx, page, perPage)
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.repo.Orders.FindWithItems(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}
