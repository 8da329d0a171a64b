package services

import (
	"context"
	"errors"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
)

type PromoService struct {
	repo *repositories.Repository
	now  func() time.Time
}

func NewPromoService(repo *repositories.Repository) *PromoService {
	return &PromoService{repo: repo, now: time.Now}
}

// IsValid reports whether promo exists and can be redeemed right now.
func (s *PromoService) IsValid(promo *models.PromoCode) bool {
	return promo != nil && promo.Usable(s.now())
}

// FindValidCode looks up a redeemable code. Unknown, used and expired codes
// all come back as ErrInvalidPromoCode.
func (s *PromoService) FindValidCode(ctx context.Context, code string) (*models.PromoCode, error) {
	if repositories.NormalizeCode(code) == "" {
		return nil, ErrInvalidPromoCode
	}

	promo, err := s.repo.Promos.FindByCode(ctx, code)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidPromoCode
	}
	if err != nil {
		return nil, err
	}
	if !s.IsValid(promo) {
		return nil, ErrInvalidPromoCode
	}
	return promo, nil
}

// resolveApplied turns a session's applied promo id into a usable promo.
// A missing, used or expired promo is reported as stale rather than as an
// error; the caller falls back to no discount.
func (s *PromoService) resolveApplied(ctx context.Context, promos *repositories.PromoRepository, id *uint) (promo *models.PromoCode, stale bool, err error) {
	if id == nil {
		return nil, false, nil
	}

	promo, err = promos.Find(ctx, *id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !s.IsValid(promo) {
		return nil, true, nil
	}
	return promo, false, nil
}
