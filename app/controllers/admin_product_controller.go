package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/storefront/app/requests"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/response"
)

type AdminProductController struct {
	catalog *services.CatalogService
}

func NewAdminProductController(catalog *services.CatalogService) *AdminProductController {
	return &AdminProductController{catalog: catalog}
}

func (h *AdminProductController) Index(c *ctx.Context) {
	p, per := page(c)
	items, pg, err := h.catalog.ListProducts(c.Context(), p, per)
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(response.Page{Items: items, Pagination: pg})
}

func (h *AdminProductController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	p, err := h.catalog.GetProduct(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

// Store accepts JSON or a multipart form; only the multipart form can carry
// an image.
func (h *AdminProductController) Store(c *ctx.Context) {
	var form requests.ProductForm
	if !c.Bind(&form) {
		return
	}
	img, closeImg, ok := upload(c)
	if !ok {
		return
	}
	defer closeImg()

	p, err := h.catalog.CreateProduct(c.Context(), form, img)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(p)
}

func (h *AdminProductController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	var form requests.ProductForm
	if !c.Bind(&form) {
		return
	}
	img, closeImg, ok := upload(c)
	if !ok {
		return
	}
	defer closeImg()

	p, err := h.catalog.UpdateProduct(c.Context(), id, form, img)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

func (h *AdminProductController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound()
		return
	}
	if err := h.catalog.DeleteProduct(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// upload returns the "image" file of a multipart request, or nil when there
// is none. The multipart form has already been parsed by Bind.
func upload(c *ctx.Context) (*services.Upload, func(), bool) {
	noop := func() {}
	if c.R.MultipartForm == nil {
		return nil, noop, true
	}
	f, hdr, err := c.R.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, true
	}
	if err != nil {
		c.Error(http.StatusBadRequest, "invalid image upload")
		return nil, noop, false
	}
	return &services.Upload{Filename: hdr.Filename, Size: hdr.Size, Body: f}, func() { _ = f.Close() }, true
}
