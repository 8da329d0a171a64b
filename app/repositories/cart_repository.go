package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository handles carts and their lines.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// FindBySession returns the cart owned by sessionKey, without items.
func (r *CartRepository) FindBySession(ctx context.Context, sessionKey string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Where("session_key = ?", sessionKey).First(&cart).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &cart, nil
}

// FirstOrCreate returns the session's cart, inserting it if needed. Two
// requests racing on the same session both end up with the same row.
func (r *CartRepository) FirstOrCreate(ctx context.Context, sessionKey string) (*models.Cart, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_key"}}, DoNothing: true}).
		Create(&models.Cart{SessionKey: sessionKey}).Error
	if err != nil {
		return nil, err
	}
	return r.FindBySession(ctx, sessionKey)
}

// Items returns the cart's lines with their live products, oldest first.
func (r *CartRepository) Items(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&items).Error
	return items, err
}

// FindItem looks up one line with the cart it belongs to.
func (r *CartRepository) FindItem(ctx context.Context, itemID uint) (*models.CartItem, *models.Cart, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		return nil, nil, notFound(err)
	}

	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, item.CartID).Error; err != nil {
		return nil, nil, notFound(err)
	}
	return &item, &cart, nil
}

// EnsureItem makes sure a (cart, product) line exists, starting at zero.
// An existing line is left as it is.
func (r *CartRepository) EnsureItem(ctx context.Context, cartID, productID uint) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&models.CartItem{CartID: cartID, ProductID: productID, Quantity: 0}).Error
}

// IncrementItem adds qty to a line as long as the result stays within limit.
// It reports false, with no change made, when the limit would be exceeded.
func (r *CartRepository) IncrementItem(ctx context.Context, cartID, productID uint, qty, limit int) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE cart_items SET quantity = quantity + ?, updated_at = ?
		 WHERE cart_id = ? AND product_id = ? AND quantity + ? <= ?`,
		qty, time.Now(), cartID, productID, qty, limit,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindLine loads the (cart, product) line with its product.
func (r *CartRepository) FindLine(ctx context.Context, cartID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, itemID uint) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, itemID).Error
}

// Clear removes every line from the cart; the cart row itself stays.
func (r *CartRepository) Clear(ctx context.Context, cartID uint) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// CountItems sums the quantities in the session's cart.
func (r *CartRepository) CountItems(ctx context.Context, sessionKey string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.session_key = ?", sessionKey).
		Scan(&total).Error
	return total, err
}

// PruneIdle deletes carts, lines included, that nobody has touched since
// cutoff. It returns the number of carts removed.
func (r *CartRepository) PruneIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("updated_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM cart_items WHERE cart_items.cart_id = carts.id AND cart_items.updated_at >= ?)", cutoff).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}

	var removed int64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id IN ?", ids).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Cart{})
		removed = res.RowsAffected
		return res.Error
	})
	return removed, err
}
