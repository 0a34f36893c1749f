package cart

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/iotfarm-web/api/middleware"
	"github.com/angelmondragon/iotfarm-web/api/responses"
	"github.com/angelmondragon/iotfarm-web/api/validators"
	cartsvc "github.com/angelmondragon/iotfarm-web/internal/cart"
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
)

// Service is the cart surface the handlers need; *cart.Service satisfies it.
type Service interface {
	View(ctx context.Context, sess session.Session) (cartsvc.Cart, error)
	AddProduct(ctx context.Context, sess session.Session, productID string) (cartsvc.Cart, error)
	UpdateQuantity(ctx context.Context, sess session.Session, productName string, quantity int) (cartsvc.Result, error)
	RemoveItem(ctx context.Context, sess session.Session, productName string) (cartsvc.Cart, error)
	Clear(ctx context.Context, sess session.Session) error
}

// CartFetch returns the caller's cart. Anonymous visitors get an empty cart.
func CartFetch(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		view, err := svc.View(r.Context(), middleware.SessionFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartAddItem(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.AddProduct(r.Context(), middleware.SessionFromContext(r.Context()), strings.TrimSpace(payload.ProductID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartUpdateQuantity always answers 200 when the request is well formed; a rejected
// change is reported through the result's success flag and message.
func CartUpdateQuantity(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateQuantity(r.Context(), middleware.SessionFromContext(r.Context()), payload.ProductName, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartRemoveItem(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		name := strings.TrimSpace(r.URL.Query().Get("productName"))
		if name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "productName is required").WithDetails(map[string]any{"field": "productName"}))
			return
		}

		view, err := svc.RemoveItem(r.Context(), middleware.SessionFromContext(r.Context()), name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func CartClear(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		if err := svc.Clear(r.Context(), middleware.SessionFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartsvc.NewCart(nil))
	}
}
