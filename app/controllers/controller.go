// Package controllers adapts HTTP requests to the services and maps their
// errors to status codes.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/session"
)

const appliedPromoKey = "applied_promo_id"

// fail writes the response for err. Anything unrecognised is a 500 and is
// logged; its message is not shown to the client.
func fail(c *ctx.Context, err error) {
	var verr *services.ValidationError
	var serr *services.StockError

	switch {
	case errors.As(err, &verr):
		c.ValidationError(verr.Fields)
	case errors.As(err, &serr):
		c.Error(http.StatusConflict, serr.Error())
	case errors.Is(err, services.ErrOutOfStock):
		c.Error(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden):
		c.Error(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrCartItemNotFound),
		errors.Is(err, services.ErrCategoryNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, services.ErrProductInUse):
		c.Error(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidPromoCode),
		errors.Is(err, services.ErrEmptyCart):
		c.Error(http.StatusBadRequest, err.Error())
	default:
		logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
		c.Error(http.StatusInternalServerError, "Internal Server Error")
	}
}

// appliedPromo is the promo id the visitor applied, if any.
func appliedPromo(sess *session.Session) *uint {
	id, ok := sess.GetUint(appliedPromoKey)
	if !ok {
		return nil
	}
	return &id
}

func setAppliedPromo(sess *session.Session, id uint) { sess.Set(appliedPromoKey, id) }

func clearAppliedPromo(sess *session.Session) { sess.Delete(appliedPromoKey) }

// cartCount adds meta.cart_count to the response being built. A lookup
// failure only costs the badge.
func cartCount(c *ctx.Context, cart *services.CartService) {
	n, err := cart.ItemCount(c.Context(), session.FromCtx(c.R).ID())
	if err != nil {
		logger.WithCtx(c.Context()).Warn("cart count unavailable", "error", err)
		return
	}
	c.Meta("cart_count", n)
}

// page reads the page and per_page query parameters.
func page(c *ctx.Context) (int, int) {
	return c.QueryInt("page", 1), c.QueryInt("per_page", 0)
}
