package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be a positive whole number")
	ErrOutOfStock           = errors.New("product is out of stock")
	ErrInsufficientStock    = errors.New("not enough stock")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrForbidden            = errors.New("cart item belongs to another session")
	ErrInvalidPromoCode     = errors.New("promo code is invalid or already used")
	ErrNotificationDelivery = errors.New("order notification could not be delivered")

	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrProductInUse     = errors.New("product is referenced by carts or orders")
)

// StockError names the product that could not cover a requested quantity.
// It matches ErrInsufficientStock with errors.Is.
type StockError struct {
	ProductID uint
	Name      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("not enough stock for %q: requested %d, available %d", e.Name, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError carries one message per failing field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// NewValidationError returns nil when fields is empty.
func NewValidationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
