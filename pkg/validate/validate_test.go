package validate_test

import (
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/validate"
)

type shippingInput struct {
	Name     string `json:"name"      validate:"required,max=10"`
	Email    string `json:"email"     validate:"required,email"`
	Tel      string `json:"tel"       validate:"required,digits_between=10,11"`
	ZipCode  string `json:"zip_code"  validate:"required,digits=7"`
	Address2 string `json:"address2"  validate:"nullable,max=5"`
	SKU      string `json:"sku"       validate:"required,alpha_dash,max=15"`
	Expiry   string `json:"expiry"    validate:"required,card_expiry"`
	Stock    int    `json:"stock"     validate:"gte=0,lte=99"`
}

func valid() shippingInput {
	return shippingInput{
		Name:    "Taro",
		Email:   "taro@example.com",
		Tel:     "0312345678",
		ZipCode: "1500001",
		SKU:     "COF-0001",
		Expiry:  "12/30",
		Stock:   5,
	}
}

func withClock(t *testing.T, now time.Time) {
	t.Helper()
	prev := validate.Now
	validate.Now = func() time.Time { return now }
	t.Cleanup(func() { validate.Now = prev })
}

func TestValidInput(t *testing.T) {
	withClock(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	if errs := validate.Struct(valid()); validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(shippingInput{})
	for _, field := range []string{"name", "email", "tel", "zip_code", "sku", "expiry"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected %s to be required", field)
		}
	}
	if _, ok := errs["address2"]; ok {
		t.Error("nullable address2 should not be required")
	}
}

func TestDigitsBetween(t *testing.T) {
	cases := map[string]bool{
		"0312345678":   true,
		"09012345678":  true,
		"031234567":    false,
		"090123456789": false,
		"03-1234-5678": false,
	}
	for tel, ok := range cases {
		in := valid()
		in.Tel = tel
		_, failed := validate.Struct(in)["tel"]
		if failed == ok {
			t.Errorf("tel %q: want valid=%v", tel, ok)
		}
	}
}

func TestDigitsExactLength(t *testing.T) {
	in := valid()
	in.ZipCode = "150-0001"
	if msg := validate.Struct(in)["zip_code"]; msg != "The zip_code must be 7 digits." {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestCardExpiry(t *testing.T) {
	withClock(t, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))

	cases := []struct {
		expiry string
		want   string
	}{
		{"05/26", ""},
		{"12/26", ""},
		{"04/26", "The expiry has expired."},
		{"12/25", "The expiry has expired."},
		{"13/27", "The expiry must have a month between 01 and 12."},
		{"5/27", "The expiry must be in MM/YY format."},
		{"05/2027", "The expiry must be in MM/YY format."},
	}
	for _, tc := range cases {
		in := valid()
		in.Expiry = tc.expiry
		if got := validate.Struct(in)["expiry"]; got != tc.want {
			t.Errorf("expiry %q: got %q want %q", tc.expiry, got, tc.want)
		}
	}
}

func TestEmailRule(t *testing.T) {
	in := valid()
	in.Email = "not-an-email"
	if _, ok := validate.Struct(in)["email"]; !ok {
		t.Error("expected email validation error")
	}
}

func TestNullableSkipsRules(t *testing.T) {
	in := valid()
	in.Address2 = ""
	if _, ok := validate.Struct(in)["address2"]; ok {
		t.Error("expected empty nullable to pass")
	}
	in.Address2 = "far too long"
	if _, ok := validate.Struct(in)["address2"]; !ok {
		t.Error("expected long address2 to fail")
	}
}

func TestAlphaDashAndBounds(t *testing.T) {
	in := valid()
	in.SKU = "COF 0001"
	in.Stock = 100
	errs := validate.Struct(in)
	if _, ok := errs["sku"]; !ok {
		t.Error("expected space in sku to fail alpha_dash")
	}
	if _, ok := errs["stock"]; !ok {
		t.Error("expected stock 100 to fail lte=99")
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Backend string `json:"backend" validate:"required,in=local,cloud"`
	}
	if errs := validate.Struct(in{Backend: "carrier-pigeon"}); !validate.HasErrors(errs) {
		t.Error("expected unknown backend to fail")
	}
	if errs := validate.Struct(in{Backend: "cloud"}); validate.HasErrors(errs) {
		t.Errorf("expected cloud to pass: %v", errs)
	}
}
