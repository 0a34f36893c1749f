package backoffice

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/iotfarm-web/api/middleware"
	"github.com/angelmondragon/iotfarm-web/api/responses"
	"github.com/angelmondragon/iotfarm-web/api/validators"
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
)

type AccountsService interface {
	List(ctx context.Context, sess session.Session, page pagination.Params) (pagination.Page[iotfarm.Account], error)
	Create(ctx context.Context, sess session.Session, input iotfarm.AccountInput) (iotfarm.Account, error)
	UpdateStatus(ctx context.Context, sess session.Session, accountID string, status int) error
}

// statusRequest uses a pointer so a missing status is told apart from 0.
type statusRequest struct {
	Status *int `json:"status" validate:"required"`
}

func AccountList(svc AccountsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
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

func AccountCreate(svc AccountsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var body iotfarm.AccountInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		account, err := svc.Create(r.Context(), middleware.SessionFromContext(r.Context()), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, account)
	}
}

func AccountUpdateStatus(svc AccountsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		var body statusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accountID := chi.URLParam(r, "accountId")
		if err := svc.UpdateStatus(r.Context(), middleware.SessionFromContext(r.Context()), accountID, *body.Status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"accountId": accountID, "status": *body.Status})
	}
}
