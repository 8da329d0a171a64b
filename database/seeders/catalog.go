package seeders

import (
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"gorm.io/gorm"
)

func init() {
	Register("catalog", SeedCatalog)
	Register("promo_codes", SeedPromoCodes)
}

type demoProduct struct {
	category  string
	sku       string
	name      string
	desc      string
	price     int64
	salePrice int64
	stock     int
}

var demoProducts = []demoProduct{
	{"Coffee", "COF-0001", "House Blend 200g", "Medium roast, chocolate and nut.", 1200, 0, 40},
	{"Coffee", "COF-0002", "Ethiopia Yirgacheffe 200g", "Light roast, floral and citrus.", 1800, 1500, 25},
	{"Coffee", "COF-0003", "Decaf Colombia 200g", "Swiss water process.", 1600, 0, 0},
	{"Tea", "TEA-0001", "Sencha 100g", "First flush from Shizuoka.", 1000, 0, 60},
	{"Tea", "TEA-0002", "Hojicha 80g", "Roasted green tea.", 900, 700, 30},
	{"Equipment", "EQP-0001", "Hand Grinder", "Ceramic burrs, 30g hopper.", 4800, 0, 8},
	{"Equipment", "EQP-0002", "Pour-over Kettle 600ml", "Gooseneck spout.", 5500, 4900, 5},
}

// SeedCatalog inserts the demo categories and products, matching existing
// rows by name and SKU.
func SeedCatalog(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		cats := map[string]uint{}
		for _, d := range demoProducts {
			if _, ok := cats[d.category]; ok {
				continue
			}
			c := models.Category{Name: d.category}
			if err := tx.Where(models.Category{Name: d.category}).FirstOrCreate(&c).Error; err != nil {
				return err
			}
			cats[d.category] = c.ID
		}

		for _, d := range demoProducts {
			p := models.Product{
				CategoryID:  cats[d.category],
				SKU:         d.sku,
				Name:        d.name,
				Description: d.desc,
				Price:       d.price,
				Stock:       d.stock,
			}
			if d.salePrice > 0 {
				sp := d.salePrice
				p.Sale = true
				p.SalePrice = &sp
			}
			if err := tx.Where(models.Product{SKU: d.sku}).FirstOrCreate(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedPromoCodes inserts a handful of unused codes, one already expired.
func SeedPromoCodes(db *gorm.DB) error {
	expired := time.Now().AddDate(0, 0, -1)
	codes := []models.PromoCode{
		{Code: "WELCOME500", DiscountAmount: 500},
		{Code: "SPRING1000", DiscountAmount: 1000},
		{Code: "BIGSPENDER", DiscountAmount: 5000},
		{Code: "OLDCODE300", DiscountAmount: 300, ExpiresAt: &expired},
	}
	for i := range codes {
		if err := db.Where(models.PromoCode{Code: codes[i].Code}).FirstOrCreate(&codes[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
