package requests

import (
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// MaxImageBytes caps product image uploads.
const MaxImageBytes = 5 << 20

// AllowedImageTypes are the accepted product image MIME types.
var AllowedImageTypes = []string{"image/jpeg", "image/png"}

// ProductForm is the back-office create/update payload.
type ProductForm struct {
	CategoryID  uint   `json:"category_id" validate:"required"`
	SKU         string `json:"sku"         validate:"required,alpha_dash,max=15"`
	Name        string `json:"name"        validate:"required,max=50"`
	Description string `json:"description" validate:"max=255"`
	Price       int64  `json:"price"       validate:"required,gt=0"`
	Sale        bool   `json:"sale"`
	SalePrice   *int64 `json:"sale_price"`
	Stock       int    `json:"stock"       validate:"gte=0,lte=99"`
}

// Validate runs the field rules and then the sale pricing rules. A sale needs
// a sale price below the list price; a sale price without a sale is flagged
// on the sale field.
func (f *ProductForm) Validate() map[string]string {
	f.SKU = strings.TrimSpace(f.SKU)
	f.Name = strings.TrimSpace(f.Name)

	errs := validate.Struct(f)

	switch {
	case f.Sale && f.SalePrice == nil:
		errs["sale_price"] = "The sale_price field is required when sale is enabled."
	case f.Sale && *f.SalePrice <= 0:
		errs["sale_price"] = "The sale_price must be greater than 0."
	case f.Sale && *f.SalePrice >= f.Price:
		errs["sale_price"] = "The sale_price must be less than the price."
	case !f.Sale && f.SalePrice != nil:
		errs["sale"] = "The sale field must be enabled to set a sale_price."
	}
	return errs
}

// Apply copies the form onto p.
func (f ProductForm) Apply(p *models.Product) {
	p.CategoryID = f.CategoryID
	p.SKU = f.SKU
	p.Name = f.Name
	p.Description = f.Description
	p.Price = f.Price
	p.Sale = f.Sale
	p.SalePrice = f.SalePrice
	p.Stock = f.Stock
}
