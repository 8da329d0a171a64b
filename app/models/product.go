package models

import (
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"
)

// MaxStock is the largest stock count a product may carry.
const MaxStock = 99

// Category groups products in the catalogue.
type Category struct {
	gorm.Model
	Name string `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Slug string `gorm:"size:50;not null;uniqueIndex" json:"slug"`
}

// BeforeSave fills an empty slug from the name.
func (c *Category) BeforeSave(*gorm.DB) error {
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	return nil
}

// Slugify lowercases s and joins its runs of letters and digits with
// hyphens, cut to 50 runes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	out := []rune(b.String())
	if len(out) > 50 {
		out = []rune(strings.TrimRight(string(out[:50]), "-"))
	}
	return string(out)
}

// Product is a sellable catalogue entry. Prices are whole currency units.
type Product struct {
	ID          uint      `gorm:"primaryKey"                json:"id"`
	CategoryID  uint      `gorm:"not null;index"            json:"category_id"`
	Category    *Category `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	SKU         string    `gorm:"size:15;not null;uniqueIndex" json:"sku"`
	Name        string    `gorm:"size:50;not null;index"    json:"name"`
	Description string    `gorm:"size:255"                  json:"description"`
	Image       string    `gorm:"size:255"                  json:"image"`
	Price       int64     `gorm:"not null"                  json:"price"`
	Sale        bool      `gorm:"not null;default:false"    json:"sale"`
	SalePrice   *int64    `json:"sale_price"`
	Stock       int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CreatedAt   time.Time `gorm:"index"                     json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EffectivePrice is the sale price when a sale is running and a sale price is
// set, otherwise the list price.
func (p Product) EffectivePrice() int64 {
	if p.Sale && p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool { return p.Stock > 0 }
