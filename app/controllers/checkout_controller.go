package controllers

import (
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/requests"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/session"
)

type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

type placedOrder struct {
	OrderID        uint               `json:"order_id"`
	Items          []models.OrderItem `json:"items"`
	Subtotal       int64              `json:"subtotal"`
	DiscountAmount int64              `json:"discount_amount"`
	TotalPrice     int64              `json:"total_price"`
}

// Store places the order. The applied promo is forgotten once it has been
// consumed or has turned out to be unusable.
func (h *CheckoutController) Store(c *ctx.Context) {
	var form requests.CheckoutForm
	if !c.Bind(&form) {
		return
	}

	sess := session.FromCtx(c.R)
	res, err := h.checkout.Checkout(c.Context(), services.CheckoutInput{
		SessionKey:     sess.ID(),
		AppliedPromoID: appliedPromo(sess),
		Form:           form,
	})
	if errors.Is(err, services.ErrInvalidPromoCode) {
		clearAppliedPromo(sess)
	}
	if err != nil {
		fail(c, err)
		return
	}

	clearAppliedPromo(sess)
	o := res.Order
	c.Meta("cart_count", 0)
	if res.PromoStale {
		c.Meta("promo_removed", true)
	}
	c.Created(placedOrder{
		OrderID:        o.ID,
		Items:          o.Items,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		TotalPrice:     o.TotalPrice,
	})
}
