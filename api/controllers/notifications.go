package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/iotfarm-web/api/middleware"
	"github.com/angelmondragon/iotfarm-web/api/responses"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"github.com/angelmondragon/iotfarm-web/pkg/notify"
)

// ToastDrainer is satisfied by *notify.Service.
type ToastDrainer interface {
	Drain(ctx context.Context, identity string) ([]notify.Toast, error)
}

// NotificationsDrain returns and clears the caller's pending toasts.
func NotificationsDrain(svc ToastDrainer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification service unavailable"))
			return
		}

		sess := middleware.SessionFromContext(r.Context())
		if !sess.Authenticated() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		toasts, err := svc.Drain(r.Context(), sess.Identity())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drain notifications"))
			return
		}
		if toasts == nil {
			toasts = []notify.Toast{}
		}
		responses.WriteSuccess(w, map[string]any{"toasts": toasts})
	}
}
