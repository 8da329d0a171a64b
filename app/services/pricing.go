package services

import (
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
)

// Line is one priced cart line.
type Line struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

func (l Line) Subtotal() int64 { return l.UnitPrice * int64(l.Quantity) }

// Quote is the price breakdown of a cart.
type Quote struct {
	Lines    []Line            `json:"lines"`
	Subtotal int64             `json:"subtotal"`
	Discount int64             `json:"discount"`
	Total    int64             `json:"total"`
	Promo    *models.PromoCode `json:"promo,omitempty"`
}

// CartTotal sums the line subtotals.
func CartTotal(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// ApplyPromo deducts a usable promo's flat amount from total. The result
// never goes below zero. A nil or unusable promo leaves total unchanged.
func ApplyPromo(total int64, promo *models.PromoCode, now time.Time) (discount, final int64) {
	if promo == nil || !promo.Usable(now) {
		return 0, total
	}
	discount = promo.DiscountAmount
	final = total - discount
	if final < 0 {
		final = 0
	}
	return discount, final
}

// LinesFromCart prices cart items at their products' current effective price.
func LinesFromCart(items []models.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			UnitPrice: it.Product.EffectivePrice(),
			Quantity:  it.Quantity,
		})
	}
	return lines
}

// PriceCart builds the full quote for items with an optional promo.
func PriceCart(items []models.CartItem, promo *models.PromoCode, now time.Time) Quote {
	lines := LinesFromCart(items)
	subtotal := CartTotal(lines)
	discount, total := ApplyPromo(subtotal, promo, now)

	q := Quote{Lines: lines, Subtotal: subtotal, Discount: discount, Total: total}
	if promo != nil && promo.Usable(now) {
		q.Promo = promo
	}
	return q
}
