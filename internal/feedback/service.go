package feedback

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
	"github.com/angelmondragon/iotfarm-web/pkg/validate"
)

const (
	MsgCreated      = "Thanks for your feedback"
	MsgUpdated      = "Feedback updated"
	MsgNotCompleted = "Feedback is only allowed on completed orders"
	MsgDuplicate    = "Feedback already exists for this item"
)

// SubmitInput creates feedback when FeedbackID is empty and updates it otherwise.
type SubmitInput struct {
	OrderID       string `json:"orderId" validate:"required"`
	OrderDetailID string `json:"orderDetailId" validate:"required"`
	Rating        int    `json:"rating" validate:"min=1,max=5"`
	Comment       string `json:"comment" validate:"required,max=1000"`
	FeedbackID    string `json:"feedbackId,omitempty"`
}

type remote interface {
	GetOrder(ctx context.Context, token, orderID string) (iotfarm.Order, error)
	CreateFeedback(ctx context.Context, token string, input iotfarm.FeedbackInput) (iotfarm.Feedback, error)
	UpdateFeedback(ctx context.Context, token string, input iotfarm.FeedbackInput) (iotfarm.Feedback, error)
	FeedbackByOrder(ctx context.Context, token, orderID string) ([]iotfarm.Feedback, error)
	FeedbackByProduct(ctx context.Context, productID string) ([]iotfarm.Feedback, error)
}

type Service interface {
	Submit(ctx context.Context, sess session.Session, input SubmitInput) (iotfarm.Feedback, error)
	ByOrder(ctx context.Context, sess session.Session, orderID string) ([]iotfarm.Feedback, error)
	ByProduct(ctx context.Context, productID string) ([]iotfarm.Feedback, error)
}

type service struct {
	api      remote
	table    enums.StatusTable
	notifier notify.Notifier
	logg     *logger.Logger
}

func NewService(api remote, table enums.StatusTable, notifier notify.Notifier, logg *logger.Logger) (Service, error) {
	if api == nil {
		return nil, fmt.Errorf("iotfarm client required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{api: api, table: table, notifier: notifier, logg: logg}, nil
}

func (s *service) Submit(ctx context.Context, sess session.Session, input SubmitInput) (iotfarm.Feedback, error) {
	if !sess.Authenticated() {
		return iotfarm.Feedback{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	input.Comment = strings.TrimSpace(input.Comment)
	input.FeedbackID = strings.TrimSpace(input.FeedbackID)
	if err := validate.Struct(input); err != nil {
		return iotfarm.Feedback{}, err
	}

	order, err := s.api.GetOrder(ctx, sess.Bearer(), input.OrderID)
	if err != nil {
		return iotfarm.Feedback{}, err
	}
	if label, _ := s.table.Label(order.Status); label != enums.OrderStatusCompleted {
		return iotfarm.Feedback{}, pkgerrors.New(pkgerrors.CodeStateConflict, MsgNotCompleted).
			WithDetails(map[string]any{"status": label})
	}
	if !containsDetail(order, input.OrderDetailID) {
		return iotfarm.Feedback{}, pkgerrors.New(pkgerrors.CodeValidation, "order detail does not belong to this order")
	}

	payload := iotfarm.FeedbackInput{
		Comment:       input.Comment,
		Rating:        input.Rating,
		OrderDetailID: input.OrderDetailID,
		FeedbackID:    input.FeedbackID,
	}

	var (
		result  iotfarm.Feedback
		message string
	)
	if input.FeedbackID == "" {
		existing, err := s.api.FeedbackByOrder(ctx, sess.Bearer(), input.OrderID)
		if err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return iotfarm.Feedback{}, err
		}
		for _, fb := range existing {
			if fb.OrderDetailID == input.OrderDetailID {
				return iotfarm.Feedback{}, pkgerrors.New(pkgerrors.CodeConflict, MsgDuplicate).
					WithDetails(map[string]any{"feedbackId": fb.FeedbackID})
			}
		}
		result, err = s.api.CreateFeedback(ctx, sess.Bearer(), payload)
		if err != nil {
			s.toast(ctx, sess, notify.Error(pkgerrors.PublicMessage(err)))
			return iotfarm.Feedback{}, err
		}
		message = MsgCreated
	} else {
		result, err = s.api.UpdateFeedback(ctx, sess.Bearer(), payload)
		if err != nil {
			s.toast(ctx, sess, notify.Error(pkgerrors.PublicMessage(err)))
			return iotfarm.Feedback{}, err
		}
		message = MsgUpdated
	}
	s.toast(ctx, sess, notify.Success(message))
	return result, nil
}

func (s *service) ByOrder(ctx context.Context, sess session.Session, orderID string) ([]iotfarm.Feedback, error) {
	if !sess.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	list, err := s.api.FeedbackByOrder(ctx, sess.Bearer(), strings.TrimSpace(orderID))
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return []iotfarm.Feedback{}, nil
	}
	return list, err
}

func (s *service) ByProduct(ctx context.Context, productID string) ([]iotfarm.Feedback, error) {
	list, err := s.api.FeedbackByProduct(ctx, strings.TrimSpace(productID))
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return []iotfarm.Feedback{}, nil
	}
	return list, err
}

func (s *service) toast(ctx context.Context, sess session.Session, toast notify.Toast) {
	if _, err := s.notifier.Push(ctx, sess.Identity(), toast); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "feedback toast not queued")
	}
}

// containsDetail accepts orders that do not report detail ids.
func containsDetail(order iotfarm.Order, detailID string) bool {
	if len(order.OrderDetailIDs) == 0 {
		return true
	}
	for _, id := range order.OrderDetailIDs {
		if id == detailID {
			return true
		}
	}
	return false
}
