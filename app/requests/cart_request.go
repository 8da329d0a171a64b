package requests

import (
	"bytes"
	"encoding/json"
)

// RawQuantity keeps the quantity exactly as sent so the cart can apply its
// own parsing rules. JSON numbers and strings are both accepted.
type RawQuantity string

func (q *RawQuantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*q = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*q = RawQuantity(s)
		return nil
	}
	*q = RawQuantity(b)
	return nil
}

// AddItemForm is the body of POST /cart/items.
type AddItemForm struct {
	ProductID uint        `json:"product_id"`
	Quantity  RawQuantity `json:"quantity"`
}

// PromoForm is the body of POST /cart/promo.
type PromoForm struct {
	Code string `json:"code"`
}
