package seeders_test

import (
	"bytes"
	"testing"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAllIsRepeatable(t *testing.T) {
	db := testdb.New(t)

	var out bytes.Buffer
	require.NoError(t, seeders.RunAll(db, &out))
	require.NoError(t, seeders.RunAll(db, &out))
	assert.Contains(t, out.String(), "seeding catalog ... done")

	var products, categories, promos int64
	db.Model(&models.Product{}).Count(&products)
	db.Model(&models.Category{}).Count(&categories)
	db.Model(&models.PromoCode{}).Count(&promos)
	assert.EqualValues(t, 7, products)
	assert.EqualValues(t, 3, categories)
	assert.EqualValues(t, 4, promos)

	var sale models.Product
	require.NoError(t, db.Where("sku = ?", "TEA-0002").First(&sale).Error)
	assert.True(t, sale.Sale)
	assert.EqualValues(t, 700, sale.EffectivePrice())
}
