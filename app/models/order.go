package models

import "time"

// Order is written once by checkout and never changed afterwards.
type Order struct {
	ID        uint   `gorm:"primaryKey"         json:"id"`
	LastName  string `gorm:"size:100;not null"  json:"last_name"`
	FirstName string `gorm:"size:100;not null"  json:"first_name"`
	Email     string `gorm:"size:254;not null;index" json:"email"`
	Tel       string `gorm:"size:11;not null"   json:"tel"`
	ZipCode   string `gorm:"size:7;not null"    json:"zip_code"`
	Address   string `gorm:"size:255;not null"  json:"address"`
	Address2  string `gorm:"size:255"           json:"address2"`

	// Card fields are stored as submitted; number and CVV never leave the server.
	CCName       string `gorm:"size:100;not null" json:"cc_name"`
	CCNumber     string `gorm:"size:19;not null"  json:"-"`
	CCExpiration string `gorm:"size:5;not null"   json:"cc_expiration"`
	CCCVV2       string `gorm:"size:4;not null"   json:"-"`

	Subtotal       int64       `gorm:"not null"                     json:"subtotal"`
	DiscountAmount int64       `gorm:"not null;default:0"           json:"discount_amount"`
	TotalPrice     int64       `gorm:"not null"                     json:"total_price"`
	PromoCodeID    *uint       `gorm:"index"                        json:"promo_code_id"`
	PromoCode      *PromoCode  `gorm:"constraint:OnDelete:SET NULL" json:"promo_code,omitempty"`
	Items          []OrderItem `gorm:"constraint:OnDelete:CASCADE"  json:"items,omitempty"`
	CreatedAt      time.Time   `gorm:"index"                        json:"created_at"`
}

// CardLast4 is the only part of the card number exposed to the back office.
func (o Order) CardLast4() string {
	if len(o.CCNumber) < 4 {
		return ""
	}
	return o.CCNumber[len(o.CCNumber)-4:]
}

// OrderItem snapshots a product's name and effective price at purchase time.
type OrderItem struct {
	ID              uint      `gorm:"primaryKey"                 json:"id"`
	OrderID         uint      `gorm:"not null;index"             json:"order_id"`
	ProductID       uint      `gorm:"not null;index"             json:"product_id"`
	Product         *Product  `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	NameAtPurchase  string    `gorm:"size:50;not null"           json:"name_at_purchase"`
	PriceAtPurchase int64     `gorm:"not null"                   json:"price_at_purchase"`
	Quantity        int       `gorm:"not null"                   json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
}

func (i OrderItem) Subtotal() int64 {
	return i.PriceAtPurchase * int64(i.Quantity)
}
