package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/shashiranjanraj/storefront/pkg/cache"
)

func setup(t *testing.T) (*repositories.Repository, models.Category) {
	t.Helper()
	cache.Use(cache.NewMemoryStore())
	repo := repositories.New(testdb.New(t))

	cat := models.Category{Name: "Coffee"}
	require.NoError(t, repo.DB.Create(&cat).Error)
	return repo, cat
}

func newProduct(t *testing.T, repo *repositories.Repository, cat models.Category, sku string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{CategoryID: cat.ID, SKU: sku, Name: sku, Price: 1000, Stock: stock}
	require.NoError(t, repo.Products.Create(context.Background(), p))
	return p
}

func TestCartFirstOrCreateReturnsSameRow(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()

	a, err := repo.Carts.FirstOrCreate(ctx, "sess-1")
	require.NoError(t, err)
	b, err := repo.Carts.FirstOrCreate(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	_, err = repo.Carts.FindBySession(ctx, "nobody")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestIncrementItemStaysWithinLimit(t *testing.T) {
	repo, cat := setup(t)
	ctx := context.Background()
	p := newProduct(t, repo, cat, "COF-1", 5)
	cart, err := repo.Carts.FirstOrCreate(ctx, "sess-1")
	require.NoError(t, err)

	require.NoError(t, repo.Carts.EnsureItem(ctx, cart.ID, p.ID))
	ok, err := repo.Carts.IncrementItem(ctx, cart.ID, p.ID, 3, p.Stock)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Carts.IncrementItem(ctx, cart.ID, p.ID, 3, p.Stock)
	require.NoError(t, err)
	assert.False(t, ok, "3+3 exceeds stock 5")

	require.NoError(t, repo.Carts.EnsureItem(ctx, cart.ID, p.ID))
	line, err := repo.Carts.FindLine(ctx, cart.ID, p.ID)
	require.NoError(t, err)
	assert.NotZero(t, line.ID)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, "COF-1", line.Product.SKU)

	_, err = repo.Carts.FindLine(ctx, cart.ID, p.ID+100)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	n, err := repo.Carts.CountItems(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = repo.Carts.CountItems(ctx, "sess-2")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClearKeepsCartRow(t *testing.T) {
	repo, cat := setup(t)
	ctx := context.Background()
	p := newProduct(t, repo, cat, "COF-1", 5)
	cart, _ := repo.Carts.FirstOrCreate(ctx, "sess-1")
	require.NoError(t, repo.Carts.EnsureItem(ctx, cart.ID, p.ID))

	require.NoError(t, repo.Carts.Clear(ctx, cart.ID))

	items, err := repo.Carts.Items(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	_, err = repo.Carts.FindBySession(ctx, "sess-1")
	assert.NoError(t, err)
}

func TestDecrementStockRefusesShortfall(t *testing.T) {
	repo, cat := setup(t)
	ctx := context.Background()
	p := newProduct(t, repo, cat, "COF-1", 2)

	ok, err := repo.Products.DecrementStock(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Products.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.Products.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Stock)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Coffee", got.Category.Name)
}

func TestLockForCheckoutLoadsRequestedRows(t *testing.T) {
	repo, cat := setup(t)
	ctx := context.Background()
	a := newProduct(t, repo, cat, "COF-1", 2)
	b := newProduct(t, repo, cat, "COF-2", 4)
	newProduct(t, repo, cat, "COF-3", 6)

	err := repo.WithTx(ctx, func(tx *repositories.Repository) error {
		rows, err := tx.Products.LockForCheckout(ctx, []uint{b.ID, a.ID})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, 4, rows[b.ID].Stock)
		return nil
	})
	require.NoError(t, err)
}

func TestPromoConsumeSucceedsOnce(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()

	promo := &models.PromoCode{Code: " save500 ", DiscountAmount: 500}
	require.NoError(t, repo.Promos.Create(ctx, promo))
	assert.Equal(t, "SAVE500", promo.Code)

	found, err := repo.Promos.FindByCode(ctx, "Save500")
	require.NoError(t, err)
	assert.Equal(t, promo.ID, found.ID)

	now := time.Now()
	ok, err := repo.Promos.Consume(ctx, promo.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Promos.Consume(ctx, promo.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	used, err := repo.Promos.Find(ctx, promo.ID)
	require.NoError(t, err)
	assert.True(t, used.IsUsed)
	assert.NotNil(t, used.UsedAt)
}

func TestDeleteProductReferencedByCartIsRefused(t *testing.T) {
	repo, cat := setup(t)
	ctx := context.Background()
	p := newProduct(t, repo, cat, "COF-1", 5)
	free := newProduct(t, repo, cat, "COF-2", 5)
	cart, _ := repo.Carts.FirstOrCreate(ctx, "sess-1")
	require.NoError(t, repo.Carts.EnsureItem(ctx, cart.ID, p.ID))

	assert.ErrorIs(t, repo.Products.Delete(ctx, p.ID), repositories.ErrInUse)
	assert.NoError(t, repo.Products.Delete(ctx, free.ID))
	assert.ErrorIs(t, repo.Products.Delete(ctx, free.ID), repositories.ErrNotFound)
}

func TestRelatedExcludesTheProductItself(t *testing.T) {
	repo, cat := setup(t)
	ctx := context.Background()
	var ids []uint
	for _, sku := range []string{"COF-1", "COF-2", "COF-3", "COF-4", "COF-5", "COF-6"} {
		ids = append(ids, newProduct(t, repo, cat, sku, 1).ID)
	}

	related, err := repo.Products.Related(ctx, ids[0], 4)
	require.NoError(t, err)
	assert.Len(t, related, 4)
	for _, p := range related {
		assert.NotEqual(t, ids[0], p.ID)
	}
}

func TestCategoriesAreCached(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()

	first, err := repo.Products.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, repo.DB.Create(&models.Category{Name: "Tea"}).Error)

	cached, err := repo.Products.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1, "second read comes from the cache")

	cache.Use(cache.NewMemoryStore())
	fresh, err := repo.Products.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "coffee", fresh[0].Slug)
	assert.Equal(t, "tea", fresh[1].Slug)
}

func TestOrderLinesComeBackInInsertionOrder(t *testing.T) {
	repo, cat := setup(t)
	ctx := context.Background()
	a := newProduct(t, repo, cat, "COF-1", 5)
	b := newProduct(t, repo, cat, "COF-2", 5)

	o := &models.Order{LastName: "Yamada", FirstName: "Taro", Email: "t@example.com", Tel: "0312345678",
		ZipCode: "1500001", Address: "Shibuya", CCName: "T Y", CCNumber: "4111111111111111",
		CCExpiration: "12/30", CCCVV2: "123", Subtotal: 3000, TotalPrice: 3000}
	require.NoError(t, repo.Orders.Create(ctx, o))
	require.NoError(t, repo.Orders.AddItem(ctx, &models.OrderItem{OrderID: o.ID, ProductID: b.ID, NameAtPurchase: "B", PriceAtPurchase: 1000, Quantity: 1}))
	require.NoError(t, repo.Orders.AddItem(ctx, &models.OrderItem{OrderID: o.ID, ProductID: a.ID, NameAtPurchase: "A", PriceAtPurchase: 1000, Quantity: 2}))

	got, err := repo.Orders.FindWithItems(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "B", got.Items[0].NameAtPurchase)
	assert.Equal(t, "A", got.Items[1].NameAtPurchase)
	assert.Nil(t, got.PromoCode)

	orders, page, err := repo.Orders.Paginate(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
	assert.Len(t, orders[0].Items, 2)

	_, err = repo.Orders.FindWithItems(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestPruneIdleCarts(t *testing.T) {
	repo, cat := setup(t)
	ctx := context.Background()
	p := newProduct(t, repo, cat, "P-1", 5)
	old := time.Now().Add(-48 * time.Hour)

	stale, err := repo.Carts.FirstOrCreate(ctx, "stale")
	require.NoError(t, err)
	require.NoError(t, repo.Carts.EnsureItem(ctx, stale.ID, p.ID))
	require.NoError(t, repo.DB.Model(&models.CartItem{}).Where("cart_id = ?", stale.ID).UpdateColumn("updated_at", old).Error)

	// An old cart with a recently touched line survives.
	busy, err := repo.Carts.FirstOrCreate(ctx, "busy")
	require.NoError(t, err)
	require.NoError(t, repo.Carts.EnsureItem(ctx, busy.ID, p.ID))

	_, err = repo.Carts.FirstOrCreate(ctx, "fresh")
	require.NoError(t, err)

	require.NoError(t, repo.DB.Model(&models.Cart{}).Where("id IN ?", []uint{stale.ID, busy.ID}).UpdateColumn("updated_at", old).Error)

	n, err := repo.Carts.PruneIdle(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.Carts.FindBySession(ctx, "stale")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	for _, key := range []string{"busy", "fresh"} {
		_, err = repo.Carts.FindBySession(ctx, key)
		assert.NoError(t, err, key)
	}

	var lines int64
	require.NoError(t, repo.DB.Model(&models.CartItem{}).Count(&lines).Error)
	assert.Equal(t, int64(1), lines)
}
