package models

import "time"

// PromoCode is a single-use flat discount.
type PromoCode struct {
	ID             uint       `gorm:"primaryKey"                  json:"id"`
	Code           string     `gorm:"size:32;not null;uniqueIndex" json:"code"`
	DiscountAmount int64      `gorm:"not null"                    json:"discount_amount"`
	IsUsed         bool       `gorm:"not null;default:false;index" json:"is_used"`
	UsedAt         *time.Time `json:"used_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Usable reports whether the code can still be redeemed at now.
func (p PromoCode) Usable(now time.Time) bool {
	if p.IsUsed {
		return false
	}
	if p.ExpiresAt != nil && !now.Before(*p.ExpiresAt) {
		return false
	}
	return true
}
