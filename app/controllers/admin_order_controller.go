package controllers

import (
	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type AdminOrderController struct {
	orders *services.OrderService
}

func NewAdminOrderController(orders *services.OrderService) *AdminOrderController {
	return &AdminOrderController{orders: orders}
}

// adminOrder adds the masked card number to an order.
type adminOrder struct {
	models.Order
	CardLast4 string `json:"card_last4"`
}

func (h *AdminOrderController) Index(c *ctx.Context) {
	p, per := page(c)
	orders, pg, err := h.orders.ListOrders(c.Context(), p, per)
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]adminOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, adminOrder{Order: o, CardLast4: o.CardLast4()})
	}
	c.Paginated(response.Page{Items: out, Pagination: pg})
}

func (h *AdminOrderController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	o, err := h.orders.GetOrder(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(adminOrder{Order: *o, CardLast4: o.CardLast4()})
}
