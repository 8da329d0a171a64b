// Package requests holds the shapes of incoming forms and the rules that
// validate them.
package requests

import (
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// CheckoutForm is the buyer, shipping and card data submitted at checkout.
// Card fields are only format checked; no payment is taken.
type CheckoutForm struct {
	LastName     string `json:"last_name"     validate:"required,max=100"`
	FirstName    string `json:"first_name"    validate:"required,max=100"`
	Email        string `json:"email"         validate:"required,email,max=254"`
	Tel          string `json:"tel"           validate:"required,digits_between=10,11"`
	ZipCode      string `json:"zip_code"      validate:"required,digits=7"`
	Address      string `json:"address"       validate:"required,max=255"`
	Address2     string `json:"address2"      validate:"nullable,max=255"`
	CCName       string `json:"cc_name"       validate:"required,max=100"`
	CCNumber     string `json:"cc_number"     validate:"required,digits_between=14,19"`
	CCExpiration string `json:"cc_expiration" validate:"required,card_expiry"`
	CCCVV2       string `json:"cc_cvv2"       validate:"required,digits_between=3,4"`
}

// Validate returns one message per failing field, or an empty map.
func (f *CheckoutForm) Validate() map[string]string {
	f.trim()
	return validate.Struct(f)
}

func (f *CheckoutForm) trim() {
	for _, s := range []*string{
		&f.LastName, &f.FirstName, &f.Email, &f.Tel, &f.ZipCode, &f.Address,
		&f.Address2, &f.CCName, &f.CCNumber, &f.CCExpiration, &f.CCCVV2,
	} {
		*s = strings.TrimSpace(*s)
	}
}

// Order copies the form into a new, unpriced order.
func (f CheckoutForm) Order() *models.Order {
	return &models.Order{
		LastName:     f.LastName,
		FirstName:    f.FirstName,
		Email:        f.Email,
		Tel:          f.Tel,
		ZipCode:      f.ZipCode,
		Address:      f.Address,
		Address2:     f.Address2,
		CCName:       f.CCName,
		CCNumber:     f.CCNumber,
		CCExpiration: f.CCExpiration,
		CCCVV2:       f.CCCVV2,
	}
}
