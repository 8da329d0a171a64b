// Package routes wires controllers onto the router.
package routes

import (
	"time"

	"github.com/shashiranjanraj/storefront/app/controllers"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/session"
)

// Services are the application services the routes dispatch to.
type Services struct {
	Catalog  *services.CatalogService
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
}

// Register mounts the shopper routes under a session and the back office
// under basic auth.
func Register(r *router.Router, s Services, admin config.AdminConfig, sess session.Options) {
	products := controllers.NewProductController(s.Catalog, s.Cart)
	cart := controllers.NewCartController(s.Cart)
	checkout := controllers.NewCheckoutController(s.Checkout)
	checkoutLimit := middleware.NewRateLimiter(10, time.Minute)

	shop := r.Group("/", session.Middleware(sess))
	shop.Get("/products", "products.index", ctx.Wrap(products.Index))
	shop.Get("/products/{id}", "products.show", ctx.Wrap(products.Show))
	shop.Get("/categories", "categories.index", ctx.Wrap(products.Categories))

	shop.Get("/cart", "cart.show", ctx.Wrap(cart.Show))
	shop.Post("/cart/items", "cart.items.store", ctx.Wrap(cart.AddItem))
	shop.Delete("/cart/items/{id}", "cart.items.destroy", ctx.Wrap(cart.RemoveItem))
	shop.Post("/cart/promo", "cart.promo.apply", ctx.Wrap(cart.ApplyPromo))
	shop.Delete("/cart/promo", "cart.promo.remove", ctx.Wrap(cart.RemovePromo))

	shop.Post("/checkout", "checkout.store", ctx.Wrap(checkout.Store), checkoutLimit.Middleware)

	adminProducts := controllers.NewAdminProductController(s.Catalog)
	adminOrders := controllers.NewAdminOrderController(s.Orders)

	back := r.Group("/admin", middleware.BasicAuth(admin))
	back.Get("/products", "admin.products.index", ctx.Wrap(adminProducts.Index))
	back.Post("/products", "admin.products.store", ctx.Wrap(adminProducts.Store))
	back.Get("/products/{id}", "admin.products.show", ctx.Wrap(adminProducts.Show))
	back.Put("/products/{id}", "admin.products.update", ctx.Wrap(adminProducts.Update))
	back.Delete("/products/{id}", "admin.products.destroy", ctx.Wrap(adminProducts.Destroy))
	back.Get("/orders", "admin.orders.index", ctx.Wrap(adminOrders.Index))
	back.Get("/orders/{id}", "admin.orders.show", ctx.Wrap(adminOrders.Show))
}
