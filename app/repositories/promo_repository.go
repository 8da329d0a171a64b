package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"gorm.io/gorm"
)

// PromoRepository handles promotional codes.
type PromoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) *PromoRepository {
	return &PromoRepository{db: db}
}

// NormalizeCode is the stored form of a code: trimmed and upper-case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *PromoRepository) FindByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&promo).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &promo, nil
}

func (r *PromoRepository) Find(ctx context.Context, id uint) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := r.db.WithContext(ctx).First(&promo, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &promo, nil
}

func (r *PromoRepository) Create(ctx context.Context, promo *models.PromoCode) error {
	promo.Code = NormalizeCode(promo.Code)
	return r.db.WithContext(ctx).Create(promo).Error
}

// Consume marks the code used at the given time. It reports false when the
// code was already used, so only one caller can ever win.
func (r *PromoRepository) Consume(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE promo_codes SET is_used = ?, used_at = ? WHERE id = ? AND is_used = ?`,
		true, at, id, false,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
