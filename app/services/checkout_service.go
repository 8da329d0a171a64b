package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/requests"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// CheckoutState is where a checkout attempt ended up.
type CheckoutState string

const (
	StateDraft      CheckoutState = "draft"
	StateValidating CheckoutState = "validating"
	StateCommitting CheckoutState = "committing"
	StateCommitted  CheckoutState = "committed"
	StateRejected   CheckoutState = "rejected"
)

// CheckoutInput is everything a checkout needs from the web layer.
type CheckoutInput struct {
	SessionKey     string
	AppliedPromoID *uint
	Form           requests.CheckoutForm
}

type CheckoutResult struct {
	State      CheckoutState
	Order      *models.Order
	Quote      Quote
	PromoStale bool
}

// OrderPlaced is handed to the notifier once an order has committed.
type OrderPlaced struct {
	OrderID   uint
	Email     string
	FirstName string
	LastName  string
	Lines     []Line
	Subtotal  int64
	Discount  int64
	Total     int64
	PlacedAt  time.Time
}

// OrderNotifier tells the buyer about a committed order. Its errors are
// logged by checkout and never affect the order.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, msg OrderPlaced) error
}

type CheckoutService struct {
	repo     *repositories.Repository
	promos   *PromoService
	notifier OrderNotifier
	now      func() time.Time
}

func NewCheckoutService(repo *repositories.Repository, promos *PromoService, notifier OrderNotifier) *CheckoutService {
	return &CheckoutService{repo: repo, promos: promos, notifier: notifier, now: time.Now}
}

// Checkout turns the session's cart into an order. Either everything is
// written (order, lines, stock, promo, emptied cart) or nothing is.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	res := &CheckoutResult{State: StateDraft}

	err := s.checkout(ctx, in, res)
	metrics.Checkouts.WithLabelValues(checkoutResult(err)).Inc()
	if err != nil {
		res.State = StateRejected
		logger.WithCtx(ctx).Info("checkout: rejected", "reason", err.Error())
		return res, err
	}

	res.State = StateCommitted
	metrics.OrderRevenue.Add(float64(res.Order.TotalPrice))
	if res.Order.PromoCodeID != nil {
		metrics.PromoRedemptions.Inc()
	}
	logger.WithCtx(ctx).Info("checkout: order placed",
		"order_id", res.Order.ID, "total", res.Order.TotalPrice, "discount", res.Order.DiscountAmount)

	s.notify(ctx, res)
	return res, nil
}

func (s *CheckoutService) checkout(ctx context.Context, in CheckoutInput, res *CheckoutResult) error {
	res.State = StateValidating
	if err := NewValidationError(in.Form.Validate()); err != nil {
		return err
	}

	cart, err := s.repo.Carts.FindBySession(ctx, in.SessionKey)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrEmptyCart
	}
	if err != nil {
		return err
	}

	res.State = StateCommitting
	return s.repo.WithTx(ctx, func(tx *repositories.Repository) error {
		items, err := tx.Carts.Items(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		ids := make([]uint, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		products, err := tx.Products.LockForCheckout(ctx, ids)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].Product = products[items[i].ProductID]
		}

		promo, stale, err := s.promos.resolveApplied(ctx, tx.Promos, in.AppliedPromoID)
		if err != nil {
			return err
		}
		res.PromoStale = stale

		now := s.now()
		quote := PriceCart(items, promo, now)

		order := in.Form.Order()
		order.Subtotal = quote.Subtotal
		order.DiscountAmount = quote.Discount
		order.TotalPrice = quote.Total
		if quote.Promo != nil {
			order.PromoCodeID = &quote.Promo.ID
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, it := range items {
			p := it.Product
			ok, err := tx.Products.DecrementStock(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return &StockError{ProductID: p.ID, Name: p.Name, Requested: it.Quantity, Available: p.Stock}
			}

			line := models.OrderItem{
				OrderID:         order.ID,
				ProductID:       p.ID,
				NameAtPurchase:  p.Name,
				PriceAtPurchase: p.EffectivePrice(),
				Quantity:        it.Quantity,
			}
			if err := tx.Orders.AddItem(ctx, &line); err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
			order.Items = append(order.Items, line)
		}

		if quote.Promo != nil {
			ok, err := tx.Promos.Consume(ctx, quote.Promo.ID, now)
			if err != nil {
				return fmt.Errorf("consume promo: %w", err)
			}
			if !ok {
				return ErrInvalidPromoCode
			}
		}

		if err := tx.Carts.Clear(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		res.Order = order
		res.Quote = quote
		return nil
	})
}

// notify runs after commit. A failure is logged and counted, nothing more.
func (s *CheckoutService) notify(ctx context.Context, res *CheckoutResult) {
	if s.notifier == nil {
		return
	}

	o := res.Order
	msg := OrderPlaced{
		OrderID:   o.ID,
		Email:     o.Email,
		FirstName: o.FirstName,
		LastName:  o.LastName,
		Lines:     res.Quote.Lines,
		Subtotal:  o.Subtotal,
		Discount:  o.DiscountAmount,
		Total:     o.TotalPrice,
		PlacedAt:  o.CreatedAt,
	}
	if err := s.notifier.OrderPlaced(ctx, msg); err != nil {
		metrics.NotificationFailures.Inc()
		logger.WithCtx(ctx).Warn("checkout: order notification failed",
			"order_id", o.ID, "error", fmt.Errorf("%w: %v", ErrNotificationDelivery, err))
	}
}

func checkoutResult(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return "committed"
	case errors.As(err, &verr):
		return "invalid_form"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrInvalidPromoCode):
		return "promo_conflict"
	default:
		return "error"
	}
}
