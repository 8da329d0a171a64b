package models

import "time"

// Cart belongs to exactly one shopper session.
type Cart struct {
	ID         uint       `gorm:"primaryKey"                   json:"id"`
	SessionKey string     `gorm:"size:128;not null;uniqueIndex" json:"-"`
	Items      []CartItem `gorm:"constraint:OnDelete:CASCADE"  json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CartItem is one product line in a cart. (CartID, ProductID) is unique.
type CartItem struct {
	ID        uint      `gorm:"primaryKey"                             json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_product;index" json:"product_id"`
	Product   Product   `gorm:"constraint:OnDelete:RESTRICT"           json:"product"`
	Quantity  int       `gorm:"not null;default:0"                     json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subtotal uses the product's current effective price.
func (i CartItem) Subtotal() int64 {
	return i.Product.EffectivePrice() * int64(i.Quantity)
}
