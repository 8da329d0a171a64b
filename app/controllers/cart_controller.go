package controllers

import (
	"errors"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/requests"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/session"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

type cartResponse struct {
	Items        []models.CartItem `json:"items"`
	Subtotal     int64             `json:"subtotal"`
	Discount     int64             `json:"discount"`
	Total        int64             `json:"total"`
	ItemCount    int               `json:"item_count"`
	AppliedPromo *appliedPromoView `json:"applied_promo"`
}

type appliedPromoView struct {
	ID             uint   `json:"id"`
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
}

// Show prices the visitor's cart. A promo that stopped being usable is
// dropped from the session here.
func (h *CartController) Show(c *ctx.Context) {
	sess := session.FromCtx(c.R)
	view, err := h.cart.View(c.Context(), sess.ID(), appliedPromo(sess))
	if err != nil {
		fail(c, err)
		return
	}
	if view.PromoStale {
		clearAppliedPromo(sess)
	}

	res := cartResponse{
		Items:     view.Items,
		Subtotal:  view.Quote.Subtotal,
		Discount:  view.Quote.Discount,
		Total:     view.Quote.Total,
		ItemCount: view.ItemCount,
	}
	if p := view.Quote.Promo; p != nil {
		res.AppliedPromo = &appliedPromoView{ID: p.ID, Code: p.Code, DiscountAmount: p.DiscountAmount}
	}
	c.Meta("cart_count", view.ItemCount)
	if view.PromoStale {
		c.Meta("promo_removed", true)
	}
	c.Success(res)
}

func (h *CartController) AddItem(c *ctx.Context) {
	var form requests.AddItemForm
	if !c.Bind(&form) {
		return
	}
	if form.ProductID == 0 {
		c.ValidationError(map[string]string{"product_id": "The product_id field is required."})
		return
	}

	item, err := h.cart.AddToCart(c.Context(), session.FromCtx(c.R).ID(), form.ProductID, string(form.Quantity))
	if err != nil {
		fail(c, err)
		return
	}
	cartCount(c, h.cart)
	c.Created(item)
}

func (h *CartController) RemoveItem(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	if err := h.cart.RemoveItem(c.Context(), session.FromCtx(c.R).ID(), id); err != nil {
		fail(c, err)
		return
	}
	cartCount(c, h.cart)
	c.Success(nil)
}

func (h *CartController) ApplyPromo(c *ctx.Context) {
	var form requests.PromoForm
	if !c.Bind(&form) {
		return
	}

	promo, err := h.cart.ApplyPromo(c.Context(), form.Code)
	if errors.Is(err, services.ErrInvalidPromoCode) {
		c.ValidationError(map[string]string{"code": "The promo code is invalid or has already been used."})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	setAppliedPromo(session.FromCtx(c.R), promo.ID)
	cartCount(c, h.cart)
	c.Success(appliedPromoView{ID: promo.ID, Code: promo.Code, DiscountAmount: promo.DiscountAmount})
}

func (h *CartController) RemovePromo(c *ctx.Context) {
	clearAppliedPromo(session.FromCtx(c.R))
	c.NoContent()
}

