package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInUse is returned when a delete would orphan cart or order rows.
var ErrInUse = errors.New("record is still referenced")

const categoriesCacheKey = "storefront:categories"

// ProductRepository handles catalogue rows: products and categories.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Find looks up a product by primary key.
func (r *ProductRepository) Find(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Paginate lists products newest first.
func (r *ProductRepository) Paginate(ctx context.Context, page, perPage int) ([]models.Product, orm.Pagination, error) {
	var products []models.Product
	p, err := orm.New(r.db).WithContext(ctx).
		Model(&models.Product{}).
		Order("created_at DESC").Order("id DESC").
		Paginate(&products, page, perPage, "Category")
	return products, p, err
}

// Related returns up to limit of the newest products other than id.
func (r *ProductRepository) Related(ctx context.Context, id uint, limit int) ([]models.Product, error) {
	var products []models.Product
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.Product{}).
		Not("id = ?", id).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Get(&products)
	return products, err
}

// LockForCheckout loads the given products and, where the dialect allows it,
// holds row locks on them until the surrounding transaction ends. Rows are
// taken in id order so concurrent checkouts lock in the same sequence.
func (r *ProductRepository) LockForCheckout(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	q := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id")
	if database.SupportsRowLocks(r.db) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}

	out := make(map[uint]models.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// DecrementStock takes qty units off a product only if that many are left.
// It reports false, with no change made, when stock is short.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`,
		qty, time.Now(), id, qty,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SKUTaken reports whether another product already uses sku.
func (r *ProductRepository) SKUTaken(ctx context.Context, sku string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("sku = ? AND id <> ?", sku, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

// Delete removes a product that no cart line or order line points at.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.CartItem{}, &models.OrderItem{}} {
			var n int64
			if err := tx.Model(model).Where("product_id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrInUse
			}
		}

		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ── Categories ───────────────────────────────────────────────────────────────

// Categories lists every category by name. The list is served from the cache
// for a minute at a time.
func (r *ProductRepository) Categories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := orm.New(r.db).WithContext(ctx).
		Model(&models.Category{}).
		Order("name").
		Cache(categoriesCacheKey, time.Minute, &cats)
	return cats, err
}

func (r *ProductRepository) FindCategory(ctx context.Context, id uint) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}
