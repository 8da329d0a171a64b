package migrations

import (
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/migration"
	"github.com/shashiranjanraj/storefront/pkg/queue"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260301000000_create_catalog_tables", &CreateCatalogTables{})
	migration.Register("20260301000001_create_cart_tables", &CreateCartTables{})
	migration.Register("20260301000002_create_promo_codes_table", &CreatePromoCodesTable{})
	migration.Register("20260301000003_create_order_tables", &CreateOrderTables{})
	migration.Register("20260301000004_create_failed_jobs_table", &CreateFailedJobsTable{})
}

// -------- 0001: categories, products --------

type CreateCatalogTables struct{}

func (m *CreateCatalogTables) Up(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Category{}); err != nil {
		return err
	}
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateCatalogTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products", "categories")
}

// -------- 0002: carts, cart_items --------

type CreateCartTables struct{}

func (m *CreateCartTables) Up(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Cart{}); err != nil {
		return err
	}
	return db.AutoMigrate(&models.CartItem{})
}

func (m *CreateCartTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("cart_items", "carts")
}

// -------- 0003: promo_codes --------

type CreatePromoCodesTable struct{}

func (m *CreatePromoCodesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.PromoCode{})
}

func (m *CreatePromoCodesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("promo_codes")
}

// -------- 0004: orders, order_items --------

type CreateOrderTables struct{}

func (m *CreateOrderTables) Up(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Order{}); err != nil {
		return err
	}
	return db.AutoMigrate(&models.OrderItem{})
}

func (m *CreateOrderTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("order_items", "orders")
}

// -------- 0005: failed_jobs --------

type CreateFailedJobsTable struct{}

func (m *CreateFailedJobsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&queue.FailedJobRecord{})
}

func (m *CreateFailedJobsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&queue.FailedJobRecord{})
}
