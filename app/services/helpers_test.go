package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/requests"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	repo     *repositories.Repository
	promos   *services.PromoService
	cart     *services.CartService
	checkout *services.CheckoutService
	orders   *services.OrderService
	notifier *recordingNotifier
	category models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, testdb.New(t))
}

func newFixtureOn(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	repo := repositories.New(db)

	f := &fixture{repo: repo, notifier: &recordingNotifier{}}
	f.promos = services.NewPromoService(repo)
	f.cart = services.NewCartService(repo, f.promos)
	f.checkout = services.NewCheckoutService(repo, f.promos, f.notifier)
	f.orders = services.NewOrderService(repo)

	f.category = models.Category{Name: "T-Shirts"}
	require.NoError(t, repo.DB.Create(&f.category).Error)
	return f
}

func (f *fixture) product(t *testing.T, sku string, price int64, salePrice *int64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		CategoryID: f.category.ID,
		SKU:        sku,
		Name:       "Product " + sku,
		Price:      price,
		Sale:       salePrice != nil,
		SalePrice:  salePrice,
		Stock:      stock,
	}
	require.NoError(t, f.repo.Products.Create(context.Background(), p))
	return p
}

func (f *fixture) promo(t *testing.T, code string, amount int64) *models.PromoCode {
	t.Helper()
	p := &models.PromoCode{Code: code, DiscountAmount: amount}
	require.NoError(t, f.repo.Promos.Create(context.Background(), p))
	return p
}

func (f *fixture) add(t *testing.T, session string, p *models.Product, qty string) {
	t.Helper()
	_, err := f.cart.AddToCart(context.Background(), session, p.ID, qty)
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.repo.DB.First(&p, id).Error)
	return p.Stock
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.repo.DB.Model(model).Count(&n).Error)
	return n
}

func int64p(v int64) *int64 { return &v }

func validForm() requests.CheckoutForm {
	return requests.CheckoutForm{
		LastName:     "Yamada",
		FirstName:    "Taro",
		Email:        "taro@example.com",
		Tel:          "09012345678",
		ZipCode:      "1500001",
		Address:      "1-1 Jingumae, Shibuya",
		CCName:       "TARO YAMADA",
		CCNumber:     "4111111111111111",
		CCExpiration: "12/" + time.Now().AddDate(3, 0, 0).Format("06"),
		CCCVV2:       "123",
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []services.OrderPlaced
	err  error
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, msg services.OrderPlaced) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}
