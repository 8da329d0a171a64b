package controllers

import (
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type ProductController struct {
	catalog *services.CatalogService
	cart    *services.CartService
}

func NewProductController(catalog *services.CatalogService, cart *services.CartService) *ProductController {
	return &ProductController{catalog: catalog, cart: cart}
}

// Index lists products, newest first.
func (h *ProductController) Index(c *ctx.Context) {
	p, per := page(c)
	items, pg, err := h.catalog.ListProducts(c.Context(), p, per)
	if err != nil {
		fail(c, err)
		return
	}
	cartCount(c, h.cart)
	c.Paginated(response.Page{Items: items, Pagination: pg})
}

// Show returns one product with its related products.
func (h *ProductController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	detail, err := h.catalog.ProductDetail(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	cartCount(c, h.cart)
	c.Success(detail)
}

func (h *ProductController) Categories(c *ctx.Context) {
	cats, err := h.catalog.ListCategories(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	cartCount(c, h.cart)
	c.Success(cats)
}
