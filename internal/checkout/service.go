package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/iotfarm-web/internal/cart"
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"github.com/angelmondragon/iotfarm-web/pkg/notify"
)

const (
	MsgOrderPlaced      = "Order placed"
	MsgPaymentCompleted = "Payment completed"
	MsgNotEligible      = "Some items in your cart are unavailable or exceed stock"
	MsgEmptyCart        = "Your cart is empty"
	MsgAddressRequired  = "Shipping address is required"
)

type cartService interface {
	View(ctx context.Context, sess session.Session) (cart.Cart, error)
	Clear(ctx context.Context, sess session.Session) error
}

type remote interface {
	CreateOrder(ctx context.Context, token string, input iotfarm.CreateOrderInput) (iotfarm.Order, error)
	CreateOrderPayment(ctx context.Context, token, orderID string) (iotfarm.Payment, error)
	CompletePayment(ctx context.Context, token, orderID string) error
}

// AutoCanceller drops the pending auto-cancel entry of an order that was paid.
type AutoCanceller interface {
	Discard(ctx context.Context, orderID string) error
}

// Service turns a cart into a remote order and drives payment.
type Service interface {
	PlaceOrder(ctx context.Context, sess session.Session, shippingAddress string) (iotfarm.Order, error)
	Pay(ctx context.Context, sess session.Session, orderID string) (iotfarm.Payment, error)
	CompletePayment(ctx context.Context, sess session.Session, orderID string) error
}

type service struct {
	carts      cartService
	api        remote
	autoCancel AutoCanceller
	notifier   notify.Notifier
	logg       *logger.Logger
}

// NewService wires checkout. autoCancel may be nil when auto-cancellation is disabled.
func NewService(carts cartService, api remote, autoCancel AutoCanceller, notifier notify.Notifier, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if api == nil {
		return nil, fmt.Errorf("iotfarm client required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if autoCancel == nil {
		autoCancel = noopAutoCanceller{}
	}
	return &service{carts: carts, api: api, autoCancel: autoCancel, notifier: notifier, logg: logg}, nil
}

// PlaceOrder submits the cart. The cart is cleared only after the remote API accepts
// the order; on failure it is left intact.
func (s *service) PlaceOrder(ctx context.Context, sess session.Session, shippingAddress string) (iotfarm.Order, error) {
	if !sess.Authenticated() {
		return iotfarm.Order{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	shippingAddress = strings.TrimSpace(shippingAddress)
	if shippingAddress == "" {
		return iotfarm.Order{}, pkgerrors.New(pkgerrors.CodeValidation, MsgAddressRequired)
	}

	view, err := s.carts.View(ctx, sess)
	if err != nil {
		return iotfarm.Order{}, err
	}
	if len(view.Items) == 0 {
		return iotfarm.Order{}, pkgerrors.New(pkgerrors.CodeValidation, MsgEmptyCart)
	}
	if !view.CheckoutEligible {
		return iotfarm.Order{}, pkgerrors.New(pkgerrors.CodeValidation, MsgNotEligible).WithDetails(ineligible(view))
	}

	input := iotfarm.CreateOrderInput{
		ShippingAddress: shippingAddress,
		OrderItems:      make([]iotfarm.OrderLine, 0, len(view.Items)),
	}
	for _, item := range view.Items {
		input.OrderItems = append(input.OrderItems, iotfarm.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := s.api.CreateOrder(ctx, sess.Bearer(), input)
	if err != nil {
		s.toast(ctx, sess, notify.Error(pkgerrors.PublicMessage(err)))
		return iotfarm.Order{}, err
	}

	if err := s.carts.Clear(ctx, sess); err != nil {
		// The order exists remotely; a stale cart is recoverable by the user.
		s.logg.Error(s.logg.WithOrderID(ctx, order.OrderID), "clear cart after checkout", err)
	}
	s.toast(ctx, sess, notify.Success(MsgOrderPlaced))
	s.logg.Info(s.logg.WithOrderID(ctx, order.OrderID), "order placed")
	return order, nil
}

func (s *service) Pay(ctx context.Context, sess session.Session, orderID string) (iotfarm.Payment, error) {
	if !sess.Authenticated() {
		return iotfarm.Payment{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	payment, err := s.api.CreateOrderPayment(ctx, sess.Bearer(), strings.TrimSpace(orderID))
	if err != nil {
		s.toast(ctx, sess, notify.Error(pkgerrors.PublicMessage(err)))
		return iotfarm.Payment{}, err
	}
	return payment, nil
}

// CompletePayment confirms payment and stops any pending auto-cancel for the order.
func (s *service) CompletePayment(ctx context.Context, sess session.Session, orderID string) error {
	if !sess.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	orderID = strings.TrimSpace(orderID)
	if err := s.api.CompletePayment(ctx, sess.Bearer(), orderID); err != nil {
		s.toast(ctx, sess, notify.Error(pkgerrors.PublicMessage(err)))
		return err
	}
	if err := s.autoCancel.Discard(ctx, orderID); err != nil {
		// The job re-checks the order status before cancelling.
		s.logg.Warn(s.logg.WithField(s.logg.WithOrderID(ctx, orderID), "error", err.Error()), "auto-cancel discard after payment failed")
	}
	s.toast(ctx, sess, notify.Success(MsgPaymentCompleted))
	return nil
}

func (s *service) toast(ctx context.Context, sess session.Session, toast notify.Toast) {
	if _, err := s.notifier.Push(ctx, sess.Identity(), toast); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout toast not queued")
	}
}

// ineligible lists the product names blocking checkout.
func ineligible(view cart.Cart) []string {
	out := []string{}
	for _, item := range view.Items {
		if item.Quantity > item.StockQuantity || !item.Status.IsAvailable() {
			out = append(out, item.ProductName)
		}
	}
	return out
}

type noopAutoCanceller struct{}

func (noopAutoCanceller) Discard(context.Context, string) error { return nil }
