package repositories

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository handles orders and their lines.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order row only; lines go through AddItem.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
}

func (r *OrderRepository) AddItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

// Paginate lists orders newest first, each with its lines.
func (r *OrderRepository) Paginate(ctx context.Context, page, perPage int) ([]models.Order, orm.Pagination, error) {
	var orders []models.Order
	p, err := orm.New(r.db).WithContext(ctx).
		Model(&models.Order{}).
		Order("created_at DESC").Order("id DESC").
		Paginate(&orders, page, perPage, "Items")
	return orders, p, err
}

// FindWithItems loads an order, its lines in insertion order and the promo
// that was redeemed on it.
func (r *OrderRepository) FindWithItems(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("PromoCode").
		First(&o, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}
