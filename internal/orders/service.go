package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"github.com/angelmondragon/iotfarm-web/pkg/notify"
	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
)

const (
	MsgCancelled = "Order cancelled"
	MsgDelivered = "Order marked as delivered"
	MsgCompleted = "Order completed"
)

type remote interface {
	ListOrders(ctx context.Context, token string, page pagination.Params) (pagination.Page[iotfarm.Order], error)
	ListMyOrders(ctx context.Context, token string, page pagination.Params) (pagination.Page[iotfarm.Order], error)
	CancelOrder(ctx context.Context, token, orderID string) error
	UpdateDeliveryStatus(ctx context.Context, token, orderID string) error
	UpdateCompleteStatus(ctx context.Context, token, orderID string) error
	FeedbackByOrder(ctx context.Context, token, orderID string) ([]iotfarm.Feedback, error)
}

// AutoCanceller tracks PENDING orders for delayed cancellation.
type AutoCanceller interface {
	Observe(ctx context.Context, sess session.Session, orders []iotfarm.Order) error
	Discard(ctx context.Context, orderID string) error
}

// Service exposes the order list and the status actions.
type Service interface {
	List(ctx context.Context, sess session.Session, page pagination.Params) (pagination.Page[View], error)
	Cancel(ctx context.Context, sess session.Session, orderID string) error
	Deliver(ctx context.Context, sess session.Session, orderID string) error
	Complete(ctx context.Context, sess session.Session, orderID string) error
}

type service struct {
	api        remote
	vm         ViewModel
	autoCancel AutoCanceller
	notifier   notify.Notifier
	logg       *logger.Logger
}

// NewService wires the order service. autoCancel may be nil when the feature is off.
func NewService(api remote, table enums.StatusTable, autoCancel AutoCanceller, notifier notify.Notifier, logg *logger.Logger) (Service, error) {
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
	return &service{
		api:        api,
		vm:         NewViewModel(table),
		autoCancel: autoCancel,
		notifier:   notifier,
		logg:       logg,
	}, nil
}

func (s *service) List(ctx context.Context, sess session.Session, page pagination.Params) (pagination.Page[View], error) {
	if !sess.Authenticated() {
		return pagination.Page[View]{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	page = page.Normalize()

	var (
		list pagination.Page[iotfarm.Order]
		err  error
	)
	if sess.Role.IsBackOffice() {
		list, err = s.api.ListOrders(ctx, sess.Bearer(), page)
	} else {
		list, err = s.api.ListMyOrders(ctx, sess.Bearer(), page)
	}
	if err != nil {
		return pagination.Page[View]{}, err
	}

	if err := s.autoCancel.Observe(ctx, sess, list.Items); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "auto-cancel observe failed")
	}

	return pagination.Map(list, func(order iotfarm.Order) View {
		return s.vm.Decorate(order, sess, s.feedbackFor(ctx, sess, order))
	}), nil
}

// feedbackFor returns nil when the order is not COMPLETED or the lookup failed.
func (s *service) feedbackFor(ctx context.Context, sess session.Session, order iotfarm.Order) map[string]iotfarm.Feedback {
	label, _ := s.vm.StatusLabel(order.Status)
	if label != enums.OrderStatusCompleted {
		return nil
	}
	list, err := s.api.FeedbackByOrder(ctx, sess.Bearer(), order.OrderID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return map[string]iotfarm.Feedback{}
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_id": order.OrderID,
			"error":    err.Error(),
		}), "feedback lookup failed")
		return nil
	}
	return FeedbackIndex(list)
}

// Cancel forwards to the remote API; transition rules are enforced there.
func (s *service) Cancel(ctx context.Context, sess session.Session, orderID string) error {
	if err := requireSession(sess, orderID); err != nil {
		return err
	}
	if err := s.api.CancelOrder(ctx, sess.Bearer(), orderID); err != nil {
		s.toast(ctx, sess, notify.Error(pkgerrors.PublicMessage(err)))
		return err
	}
	if err := s.autoCancel.Discard(ctx, orderID); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_id": orderID,
			"error":    err.Error(),
		}), "auto-cancel discard failed")
	}
	s.toast(ctx, sess, notify.Success(MsgCancelled))
	return nil
}

func (s *service) Deliver(ctx context.Context, sess session.Session, orderID string) error {
	return s.staffAction(ctx, sess, orderID, s.api.UpdateDeliveryStatus, MsgDelivered)
}

func (s *service) Complete(ctx context.Context, sess session.Session, orderID string) error {
	return s.staffAction(ctx, sess, orderID, s.api.UpdateCompleteStatus, MsgCompleted)
}

func (s *service) staffAction(ctx context.Context, sess session.Session, orderID string, fn func(context.Context, string, string) error, success string) error {
	if err := requireSession(sess, orderID); err != nil {
		return err
	}
	if !sess.HasRole(enums.RoleStaff) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	if err := fn(ctx, sess.Bearer(), orderID); err != nil {
		s.toast(ctx, sess, notify.Error(pkgerrors.PublicMessage(err)))
		return err
	}
	s.toast(ctx, sess, notify.Success(success))
	return nil
}

func (s *service) toast(ctx context.Context, sess session.Session, toast notify.Toast) {
	if _, err := s.notifier.Push(ctx, sess.Identity(), toast); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "order toast not queued")
	}
}

func requireSession(sess session.Session, orderID string) error {
	if !sess.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if strings.TrimSpace(orderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return nil
}

type noopAutoCanceller struct{}

func (noopAutoCanceller) Observe(context.Context, session.Session, []iotfarm.Order) error {
	return nil
}

func (noopAutoCanceller) Discard(context.Context, string) error {
	return nil
}
