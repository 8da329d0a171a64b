// Package repositories holds the table-level data access for the storefront.
// Every query is eager: callers get materialised slices and structs back,
// never lazy relations.
package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("record not found")

// Repository bundles the repositories that share one connection or one
// transaction.
type Repository struct {
	DB       *gorm.DB
	Products *ProductRepository
	Carts    *CartRepository
	Promos   *PromoRepository
	Orders   *OrderRepository
}

func New(db *gorm.DB) *Repository {
	return &Repository{
		DB:       db,
		Products: NewProductRepository(db),
		Carts:    NewCartRepository(db),
		Promos:   NewPromoRepository(db),
		Orders:   NewOrderRepository(db),
	}
}

// WithTx runs fn inside a single database transaction. Returning an error
// from fn rolls back every write made through tx.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
