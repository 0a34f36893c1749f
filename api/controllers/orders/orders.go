package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/iotfarm-web/api/middleware"
	"github.com/angelmondragon/iotfarm-web/api/responses"
	"github.com/angelmondragon/iotfarm-web/api/validators"
	internalorders "github.com/angelmondragon/iotfarm-web/internal/orders"
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
)

// List returns the caller's order page decorated with labels and affordances. Staff
// roles see every order; customers see their own.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), middleware.SessionFromContext(r.Context()), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return action(svc == nil, logg, internalorders.MsgCancelled, func(ctx context.Context, sess session.Session, orderID string) error {
		return svc.Cancel(ctx, sess, orderID)
	})
}

func Deliver(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return action(svc == nil, logg, internalorders.MsgDelivered, func(ctx context.Context, sess session.Session, orderID string) error {
		return svc.Deliver(ctx, sess, orderID)
	})
}

func Complete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return action(svc == nil, logg, internalorders.MsgCompleted, func(ctx context.Context, sess session.Session, orderID string) error {
		return svc.Complete(ctx, sess, orderID)
	})
}

func action(missing bool, logg *logger.Logger, message string, run func(ctx context.Context, sess session.Session, orderID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if missing {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if orderID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID)
		}
		if err := run(ctx, middleware.SessionFromContext(ctx), orderID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"orderId": orderID, "message": message})
	}
}
