package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutCommitsOrder(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A-1", 1000, nil, 10)
	b := f.product(t, "B-1", 2000, int64p(1500), 5)
	promo := f.promo(t, "SAVE500", 500)
	f.add(t, "s1", a, "2")
	f.add(t, "s1", b, "1")

	res, err := f.checkout.Checkout(context.Background(), services.CheckoutInput{
		SessionKey:     "s1",
		AppliedPromoID: &promo.ID,
		Form:           validForm(),
	})
	require.NoError(t, err)
	assert.Equal(t, services.StateCommitted, res.State)

	order, err := f.orders.GetOrder(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), order.Subtotal)
	assert.Equal(t, int64(500), order.DiscountAmount)
	assert.Equal(t, int64(3000), order.TotalPrice)
	require.NotNil(t, order.PromoCodeID)
	assert.Equal(t, promo.ID, *order.PromoCodeID)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Product A-1", order.Items[0].NameAtPurchase)
	assert.Equal(t, int64(1000), order.Items[0].PriceAtPurchase)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, int64(1500), order.Items[1].PriceAtPurchase)

	assert.Equal(t, 8, f.stock(t, a.ID))
	assert.Equal(t, 4, f.stock(t, b.ID))
	assert.Equal(t, int64(0), f.count(t, &models.CartItem{}))

	var stored models.PromoCode
	require.NoError(t, f.repo.DB.First(&stored, promo.ID).Error)
	assert.True(t, stored.IsUsed)
	assert.NotNil(t, stored.UsedAt)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "taro@example.com", f.notifier.sent[0].Email)
	assert.Equal(t, int64(3000), f.notifier.sent[0].Total)
}

func TestCheckoutSnapshotSurvivesCatalogChanges(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A-1", 1000, nil, 10)
	f.add(t, "s1", a, "1")

	res, err := f.checkout.Checkout(context.Background(), services.CheckoutInput{SessionKey: "s1", Form: validForm()})
	require.NoError(t, err)

	require.NoError(t, f.repo.DB.Model(a).Updates(map[string]interface{}{"name": "Renamed", "price": 9999}).Error)

	order, err := f.orders.GetOrder(context.Background(), res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Product A-1", order.Items[0].NameAtPurchase)
	assert.Equal(t, int64(1000), order.Items[0].PriceAtPurchase)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	res, err := f.checkout.Checkout(context.Background(), services.CheckoutInput{SessionKey: "none", Form: validForm()})
	require.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Equal(t, services.StateRejected, res.State)
	assert.Equal(t, int64(0), f.count(t, &models.Order{}))
	assert.Empty(t, f.notifier.sent)
}

func TestCheckoutRejectsInvalidForm(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A-1", 1000, nil, 10)
	f.add(t, "s1", a, "1")

	form := validForm()
	form.Email = "not-an-email"
	form.ZipCode = "123"
	form.CCExpiration = "01/20"

	_, err := f.checkout.Checkout(context.Background(), services.CheckoutInput{SessionKey: "s1", Form: form})

	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "zip_code")
	assert.Contains(t, verr.Fields, "cc_expiration")
	assert.Equal(t, int64(0), f.count(t, &models.Order{}))
	assert.Equal(t, 10, f.stock(t, a.ID))
}

func TestCheckoutRollsBackOnInsufficientStock(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A-1", 1000, nil, 10)
	b := f.product(t, "B-1", 2000, nil, 10)
	promo := f.promo(t, "SAVE500", 500)
	f.add(t, "s1", a, "2")
	f.add(t, "s1", b, "3")

	// someone else bought most of B since it went into the cart
	require.NoError(t, f.repo.DB.Model(b).Update("stock", 1).Error)

	_, err := f.checkout.Checkout(context.Background(), services.CheckoutInput{
		SessionKey:     "s1",
		AppliedPromoID: &promo.ID,
		Form:           validForm(),
	})
	require.ErrorIs(t, err, services.ErrInsufficientStock)

	var stockErr *services.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, b.ID, stockErr.ProductID)

	assert.Equal(t, 10, f.stock(t, a.ID))
	assert.Equal(t, 1, f.stock(t, b.ID))
	assert.Equal(t, int64(0), f.count(t, &models.Order{}))
	assert.Equal(t, int64(0), f.count(t, &models.OrderItem{}))
	assert.Equal(t, int64(2), f.count(t, &models.CartItem{}))

	var stored models.PromoCode
	require.NoError(t, f.repo.DB.First(&stored, promo.ID).Error)
	assert.False(t, stored.IsUsed)
}

func TestCheckoutWithStalePromoFallsBackToNoDiscount(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A-1", 1000, nil, 10)
	promo := f.promo(t, "SAVE500", 500)
	f.add(t, "s1", a, "1")
	require.NoError(t, f.repo.DB.Model(promo).Update("is_used", true).Error)

	res, err := f.checkout.Checkout(context.Background(), services.CheckoutInput{
		SessionKey:     "s1",
		AppliedPromoID: &promo.ID,
		Form:           validForm(),
	})
	require.NoError(t, err)
	assert.True(t, res.PromoStale)
	assert.Equal(t, int64(0), res.Order.DiscountAmount)
	assert.Equal(t, int64(1000), res.Order.TotalPrice)
	assert.Nil(t, res.Order.PromoCodeID)
}

func TestCheckoutSucceedsWhenNotificationFails(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp: connection refused")
	a := f.product(t, "A-1", 1000, nil, 10)
	f.add(t, "s1", a, "1")

	res, err := f.checkout.Checkout(context.Background(), services.CheckoutInput{SessionKey: "s1", Form: validForm()})
	require.NoError(t, err)
	assert.Equal(t, services.StateCommitted, res.State)
	assert.Equal(t, int64(1), f.count(t, &models.Order{}))
	assert.Len(t, f.notifier.sent, 1)
}

func TestConcurrentCheckoutsConsumePromoOnce(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A-1", 1000, nil, 10)
	promo := f.promo(t, "SAVE500", 500)
	f.add(t, "s1", a, "1")
	f.add(t, "s2", a, "1")

	results := make([]*services.CheckoutResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, session := range []string{"s1", "s2"} {
		wg.Add(1)
		go func(i int, session string) {
			defer wg.Done()
			results[i], errs[i] = f.checkout.Checkout(context.Background(), services.CheckoutInput{
				SessionKey:     session,
				AppliedPromoID: &promo.ID,
				Form:           validForm(),
			})
		}(i, session)
	}
	wg.Wait()

	discounted := 0
	for i := range results {
		if errs[i] != nil {
			assert.ErrorIs(t, errs[i], services.ErrInvalidPromoCode)
			continue
		}
		if results[i].Order.DiscountAmount == 500 {
			discounted++
		} else {
			assert.True(t, results[i].PromoStale)
			assert.Equal(t, int64(0), results[i].Order.DiscountAmount)
		}
	}
	assert.Equal(t, 1, discounted)

	var n int64
	require.NoError(t, f.repo.DB.Model(&models.Order{}).Where("promo_code_id = ?", promo.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "LAST-1", 1000, nil, 1)
	f.add(t, "s1", a, "1")
	f.add(t, "s2", a, "1")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, session := range []string{"s1", "s2"} {
		wg.Add(1)
		go func(i int, session string) {
			defer wg.Done()
			_, errs[i] = f.checkout.Checkout(context.Background(), services.CheckoutInput{SessionKey: session, Form: validForm()})
		}(i, session)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, services.ErrInsufficientStock)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 0, f.stock(t, a.ID))
	assert.Equal(t, int64(1), f.count(t, &models.Order{}))
}
