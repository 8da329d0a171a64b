package services_test

import (
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/stretchr/testify/assert"
)

func exampleCart() []models.CartItem {
	sale := int64(1500)
	return []models.CartItem{
		{ProductID: 1, Quantity: 2, Product: models.Product{ID: 1, Name: "A", Price: 1000}},
		{ProductID: 2, Quantity: 1, Product: models.Product{ID: 2, Name: "B", Price: 2000, Sale: true, SalePrice: &sale}},
	}
}

func TestCartTotalUsesEffectivePrice(t *testing.T) {
	lines := services.LinesFromCart(exampleCart())

	assert.Equal(t, int64(3500), services.CartTotal(lines))
	assert.Equal(t, int64(1500), lines[1].UnitPrice)
}

func TestSalePriceIgnoredWithoutSaleFlag(t *testing.T) {
	sale := int64(500)
	p := models.Product{Price: 1000, Sale: false, SalePrice: &sale}
	assert.Equal(t, int64(1000), p.EffectivePrice())

	p = models.Product{Price: 1000, Sale: true}
	assert.Equal(t, int64(1000), p.EffectivePrice())
}

func TestPriceCart(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	tests := []struct {
		name         string
		promo        *models.PromoCode
		wantDiscount int64
		wantTotal    int64
	}{
		{"no promo", nil, 0, 3500},
		{"flat discount", &models.PromoCode{DiscountAmount: 500}, 500, 3000},
		{"discount above total clamps to zero", &models.PromoCode{DiscountAmount: 5000}, 5000, 0},
		{"discount equal to total", &models.PromoCode{DiscountAmount: 3500}, 3500, 0},
		{"used promo ignored", &models.PromoCode{DiscountAmount: 500, IsUsed: true}, 0, 3500},
		{"expired promo ignored", &models.PromoCode{DiscountAmount: 500, ExpiresAt: &past}, 0, 3500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := services.PriceCart(exampleCart(), tt.promo, now)
			assert.Equal(t, int64(3500), q.Subtotal)
			assert.Equal(t, tt.wantDiscount, q.Discount)
			assert.Equal(t, tt.wantTotal, q.Total)
			assert.GreaterOrEqual(t, q.Total, int64(0))
		})
	}
}

func TestApplyPromoOnEmptyCart(t *testing.T) {
	discount, final := services.ApplyPromo(0, &models.PromoCode{DiscountAmount: 100}, time.Now())
	assert.Equal(t, int64(100), discount)
	assert.Equal(t, int64(0), final)
}
