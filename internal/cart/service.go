package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"github.com/angelmondragon/iotfarm-web/pkg/notify"
)

const (
	MsgLoginRequired   = "You must be logged in to add items to the cart"
	MsgAdded           = "Added to cart"
	MsgQuantityUpdated = "Quantity updated"
	MsgRemoved         = "Removed from cart"
	MsgQuantityMin     = "Quantity must be at least 1"
	MsgItemMissing     = "Item is not in the cart"
)

type productLoader interface {
	GetProduct(ctx context.Context, productID string) (iotfarm.Product, error)
}

// Service is the only sanctioned way to mutate a cart. Every mutation reads the full
// snapshot, applies the change and writes it back.
type Service struct {
	store    Store
	products productLoader
	notifier notify.Notifier
	logg     *logger.Logger
	locks    keyedMutex
}

func NewService(store Store, products productLoader, notifier notify.Notifier, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{store: store, products: products, notifier: notifier, logg: logg}, nil
}

// View returns the cart with its derived totals. Logged-out visitors get an empty cart.
func (s *Service) View(ctx context.Context, sess session.Session) (Cart, error) {
	items, err := s.store.Load(ctx, sess.Identity())
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return NewCart(items), nil
}

// AddProduct resolves productID against the catalog and adds it.
func (s *Service) AddProduct(ctx context.Context, sess session.Session, productID string) (Cart, error) {
	if !sess.Authenticated() {
		return Cart{}, pkgerrors.New(pkgerrors.CodeUnauthorized, MsgLoginRequired)
	}
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	return s.AddItem(ctx, sess, Product{
		ProductID:     product.ProductID,
		ProductName:   product.ProductName,
		Price:         product.Price,
		StockQuantity: product.StockQuantity,
		Status:        product.Status,
	})
}

// AddItem merges by product name: an existing line gains one unit, otherwise a new
// line with quantity 1 is appended.
func (s *Service) AddItem(ctx context.Context, sess session.Session, product Product) (Cart, error) {
	if !sess.Authenticated() {
		return Cart{}, pkgerrors.New(pkgerrors.CodeUnauthorized, MsgLoginRequired)
	}
	if strings.TrimSpace(product.ProductName) == "" {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	var message string
	view, err := s.mutate(ctx, sess, func(items []Item) ([]Item, bool) {
		if idx := indexOf(items, product.ProductName); idx >= 0 {
			items[idx].Quantity++
			message = MsgQuantityUpdated
			return items, true
		}
		message = MsgAdded
		return append(items, Item{
			ProductID:     product.ProductID,
			ProductName:   product.ProductName,
			Price:         product.Price,
			Quantity:      1,
			StockQuantity: product.StockQuantity,
			Status:        product.Status,
		}), true
	})
	if err != nil {
		return Cart{}, err
	}
	s.toast(ctx, sess, notify.Success(message))
	return view, nil
}

// UpdateQuantity replaces the quantity of the line keyed by productName. Validation
// failures are reported in the Result, not as errors.
func (s *Service) UpdateQuantity(ctx context.Context, sess session.Session, productName string, quantity int) (Result, error) {
	if quantity < 1 {
		view, err := s.View(ctx, sess)
		if err != nil {
			return Result{}, err
		}
		return Result{Success: false, Message: MsgQuantityMin, Cart: view}, nil
	}

	result := Result{Success: true, Message: MsgQuantityUpdated}
	view, err := s.mutate(ctx, sess, func(items []Item) ([]Item, bool) {
		idx := indexOf(items, productName)
		if idx < 0 {
			result = Result{Success: false, Message: MsgItemMissing}
			return items, false
		}
		if stock := items[idx].StockQuantity; quantity > stock {
			result = Result{Success: false, MaxAvailable: stock, Message: fmt.Sprintf("Only %d items available", stock)}
			return items, false
		}
		items[idx].Quantity = quantity
		return items, true
	})
	if err != nil {
		return Result{}, err
	}
	result.Cart = view
	return result, nil
}

// RemoveItem drops the line keyed by productName; absent lines are a no-op.
func (s *Service) RemoveItem(ctx context.Context, sess session.Session, productName string) (Cart, error) {
	view, err := s.mutate(ctx, sess, func(items []Item) ([]Item, bool) {
		idx := indexOf(items, productName)
		if idx < 0 {
			return items, false
		}
		return append(items[:idx], items[idx+1:]...), true
	})
	if err != nil {
		return Cart{}, err
	}
	s.toast(ctx, sess, notify.Success(MsgRemoved))
	return view, nil
}

// Clear empties the cart and deletes the persisted snapshot.
func (s *Service) Clear(ctx context.Context, sess session.Session) error {
	identity := sess.Identity()
	if identity == "" {
		return nil
	}
	unlock := s.locks.lock(identity)
	defer unlock()
	if err := s.store.Clear(ctx, identity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

// mutate runs fn under the identity lock and persists the result when fn reports a change.
func (s *Service) mutate(ctx context.Context, sess session.Session, fn func([]Item) ([]Item, bool)) (Cart, error) {
	identity := sess.Identity()
	if identity == "" {
		items, _ := fn([]Item{})
		return NewCart(items), nil
	}

	unlock := s.locks.lock(identity)
	defer unlock()

	items, err := s.store.Load(ctx, identity)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	items, changed := fn(items)
	if changed {
		if err := s.store.Save(ctx, identity, items); err != nil {
			return Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
		}
	}
	return NewCart(items), nil
}

func (s *Service) toast(ctx context.Context, sess session.Session, toast notify.Toast) {
	if _, err := s.notifier.Push(ctx, sess.Identity(), toast); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart toast not queued")
	}
}
