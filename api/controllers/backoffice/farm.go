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

type FarmService interface {
	ListCrops(ctx context.Context, sess session.Session, page pagination.Params) (pagination.Page[iotfarm.Crop], error)
	CreateCrop(ctx context.Context, sess session.Session, input iotfarm.CropInput) (iotfarm.Crop, error)
	ListSchedules(ctx context.Context, sess session.Session, page pagination.Params) (pagination.Page[iotfarm.Schedule], error)
	CreateSchedule(ctx context.Context, sess session.Session, input iotfarm.ScheduleInput) (iotfarm.Schedule, error)
	ListActivities(ctx context.Context, sess session.Session, page pagination.Params) (pagination.Page[iotfarm.Activity], error)
	CreateActivity(ctx context.Context, sess session.Session, input iotfarm.ActivityInput) (iotfarm.Activity, error)
	UpdateActivityStatus(ctx context.Context, sess session.Session, activityID string, status int) error
}

func CropList(svc FarmService, logg *logger.Logger) http.HandlerFunc {
	return listHandler(logg, svc == nil, func(ctx context.Context, sess session.Session, page pagination.Params) (any, error) {
		return svc.ListCrops(ctx, sess, page)
	})
}

func CropCreate(svc FarmService, logg *logger.Logger) http.HandlerFunc {
	return createHandler(logg, svc == nil, func(ctx context.Context, sess session.Session, r *http.Request) (any, error) {
		var body iotfarm.CropInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.CreateCrop(ctx, sess, body)
	})
}

func ScheduleList(svc FarmService, logg *logger.Logger) http.HandlerFunc {
	return listHandler(logg, svc == nil, func(ctx context.Context, sess session.Session, page pagination.Params) (any, error) {
		return svc.ListSchedules(ctx, sess, page)
	})
}

func ScheduleCreate(svc FarmService, logg *logger.Logger) http.HandlerFunc {
	return createHandler(logg, svc == nil, func(ctx context.Context, sess session.Session, r *http.Request) (any, error) {
		var body iotfarm.ScheduleInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.CreateSchedule(ctx, sess, body)
	})
}

func ActivityList(svc FarmService, logg *logger.Logger) http.HandlerFunc {
	return listHandler(logg, svc == nil, func(ctx context.Context, sess session.Session, page pagination.Params) (any, error) {
		return svc.ListActivities(ctx, sess, page)
	})
}

func ActivityCreate(svc FarmService, logg *logger.Logger) http.HandlerFunc {
	return createHandler(logg, svc == nil, func(ctx context.Context, sess session.Session, r *http.Request) (any, error) {
		var body iotfarm.ActivityInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.CreateActivity(ctx, sess, body)
	})
}

func ActivityUpdateStatus(svc FarmService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errFarmUnavailable)
			return
		}

		var body statusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		activityID := chi.URLParam(r, "activityId")
		if err := svc.UpdateActivityStatus(r.Context(), middleware.SessionFromContext(r.Context()), activityID, *body.Status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"activityId": activityID, "status": *body.Status})
	}
}

var errFarmUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "farm service unavailable")

func listHandler(logg *logger.Logger, missing bool, fetch func(context.Context, session.Session, pagination.Params) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if missing {
			responses.WriteError(r.Context(), logg, w, errFarmUnavailable)
			return
		}

		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := fetch(r.Context(), middleware.SessionFromContext(r.Context()), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func createHandler(logg *logger.Logger, missing bool, create func(context.Context, session.Session, *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if missing {
			responses.WriteError(r.Context(), logg, w, errFarmUnavailable)
			return
		}

		created, err := create(r.Context(), middleware.SessionFromContext(r.Context()), r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
