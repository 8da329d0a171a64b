//go:build integration

package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

// Runs the checkout races against a real Postgres, where row locks are taken
// and transactions genuinely overlap. Needs a Docker daemon:
//
//	go test -tags integration ./app/services/...
func newPostgresFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open("postgres", dsn)
	require.NoError(t, err)
	require.True(t, database.SupportsRowLocks(db))
	_, err = migration.New(db, nil).Run()
	require.NoError(t, err)

	return newFixtureOn(t, db)
}

func TestPostgresCheckoutRace(t *testing.T) {
	f := newPostgresFixture(t)
	last := f.product(t, "LAST-1", 1000, nil, 3)
	promo := f.promo(t, "ONCE500", 500)

	const buyers = 8
	for i := 0; i < buyers; i++ {
		f.add(t, sessionName(i), last, "1")
	}

	errs := make([]error, buyers)
	results := make([]*services.CheckoutResult, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.checkout.Checkout(context.Background(), services.CheckoutInput{
				SessionKey:     sessionName(i),
				AppliedPromoID: &promo.ID,
				Form:           validForm(),
			})
		}(i)
	}
	wg.Wait()

	placed, discounted := 0, 0
	for i, err := range errs {
		if err != nil {
			assert.True(t, errors.Is(err, services.ErrInsufficientStock) || errors.Is(err, services.ErrInvalidPromoCode), err)
			continue
		}
		placed++
		if results[i].Order.DiscountAmount == 500 {
			discounted++
		}
	}

	assert.LessOrEqual(t, placed, 3)
	assert.Equal(t, 1, discounted)
	assert.Equal(t, 3-placed, f.stock(t, last.ID))
	assert.Equal(t, int64(placed), f.count(t, &models.Order{}))

	var used models.PromoCode
	require.NoError(t, f.repo.DB.First(&used, promo.ID).Error)
	assert.True(t, used.IsUsed)
}

func sessionName(i int) string {
	return "pg-session-" + string(rune('a'+i))
}
