package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// CartService owns every mutation of a shopper's cart.
type CartService struct {
	repo   *repositories.Repository
	promos *PromoService
	now    func() time.Time
}

func NewCartService(repo *repositories.Repository, promos *PromoService) *CartService {
	return &CartService{repo: repo, promos: promos, now: time.Now}
}

// CartView is what the shopper sees: live lines priced at current catalogue
// prices, plus the applied promo if it is still good.
type CartView struct {
	Items      []models.CartItem `json:"items"`
	Quote      Quote             `json:"quote"`
	ItemCount  int               `json:"item_count"`
	PromoStale bool              `json:"-"`
}

// ParseQuantity reads a requested quantity. Blank means 1; anything that is
// not a positive whole number is ErrInvalidQuantity.
func ParseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}

// AddToCart adds rawQuantity units of a product to the session's cart,
// creating the cart and the line as needed. The whole increment is refused
// if the line would end up above the product's stock.
func (s *CartService) AddToCart(ctx context.Context, sessionKey string, productID uint, rawQuantity string) (*models.CartItem, error) {
	item, err := s.addToCart(ctx, sessionKey, productID, rawQuantity)
	metrics.CartAdditions.WithLabelValues(addResult(err)).Inc()
	return item, err
}

func (s *CartService) addToCart(ctx context.Context, sessionKey string, productID uint, rawQuantity string) (*models.CartItem, error) {
	var line *models.CartItem
	err := s.repo.WithTx(ctx, func(tx *repositories.Repository) error {
		product, err := tx.Products.Find(ctx, productID)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}
		qty, err := ParseQuantity(rawQuantity)
		if err != nil {
			return err
		}
		if !product.InStock() {
			return ErrOutOfStock
		}

		cart, err := tx.Carts.FirstOrCreate(ctx, sessionKey)
		if err != nil {
			return err
		}
		if err := tx.Carts.EnsureItem(ctx, cart.ID, product.ID); err != nil {
			return err
		}

		ok, err := tx.Carts.IncrementItem(ctx, cart.ID, product.ID, qty, product.Stock)
		if err != nil {
			return err
		}
		line, err = tx.Carts.FindLine(ctx, cart.ID, product.ID)
		if err != nil {
			return err
		}
		if !ok {
			return &StockError{
				ProductID: product.ID,
				Name:      product.Name,
				Requested: line.Quantity + qty,
				Available: product.Stock,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithCtx(ctx).Info("cart: item added", "product_id", productID, "quantity", line.Quantity)
	return line, nil
}

func addResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "error"
	}
}

// RemoveItem deletes one line, but only from the caller's own cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionKey string, itemID uint) error {
	_, cart, err := s.repo.Carts.FindItem(ctx, itemID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCartItemNotFound
	}
	if err != nil {
		return err
	}
	if cart.SessionKey != sessionKey {
		logger.WithCtx(ctx).Warn("cart: cross-session delete refused", "item_id", itemID)
		return ErrForbidden
	}
	return s.repo.Carts.DeleteItem(ctx, itemID)
}

// ApplyPromo validates code for use on a cart. Nothing is reserved; the
// caller keeps the returned id as session state.
func (s *CartService) ApplyPromo(ctx context.Context, code string) (*models.PromoCode, error) {
	return s.promos.FindValidCode(ctx, code)
}

// View prices the session's cart. appliedPromoID is re-checked every time;
// a promo that has gone bad is dropped and reported through PromoStale.
func (s *CartService) View(ctx context.Context, sessionKey string, appliedPromoID *uint) (*CartView, error) {
	view := &CartView{Items: []models.CartItem{}}

	cart, err := s.repo.Carts.FindBySession(ctx, sessionKey)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		if view.Items, err = s.repo.Carts.Items(ctx, cart.ID); err != nil {
			return nil, err
		}
	}

	promo, stale, err := s.promos.resolveApplied(ctx, s.repo.Promos, appliedPromoID)
	if err != nil {
		return nil, err
	}

	view.Quote = PriceCart(view.Items, promo, s.now())
	view.PromoStale = stale
	for _, it := range view.Items {
		view.ItemCount += it.Quantity
	}
	return view, nil
}

// ItemCount is the total number of units in the session's cart.
func (s *CartService) ItemCount(ctx context.Context, sessionKey string) (int, error) {
	return s.repo.Carts.CountItems(ctx, sessionKey)
}

// PruneAbandoned drops carts idle for longer than idle. Their sessions have
// expired by then, so nobody can reach them again.
func (s *CartService) PruneAbandoned(ctx context.Context, idle time.Duration) (int64, error) {
	n, err := s.repo.Carts.PruneIdle(ctx, s.now().Add(-idle))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.WithCtx(ctx).Info("cart: pruned abandoned carts", "count", n, "idle", idle.String())
	}
	return n, nil
}
