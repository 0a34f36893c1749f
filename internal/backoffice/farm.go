package backoffice

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
	"github.com/angelmondragon/iotfarm-web/pkg/validate"
)

type farmAPI interface {
	ListCrops(ctx context.Context, token string, page pagination.Params) (pagination.Page[iotfarm.Crop], error)
	CreateCrop(ctx context.Context, token string, input iotfarm.CropInput) (iotfarm.Crop, error)
	ListSchedules(ctx context.Context, token string, page pagination.Params) (pagination.Page[iotfarm.Schedule], error)
	CreateSchedule(ctx context.Context, token string, input iotfarm.ScheduleInput) (iotfarm.Schedule, error)
	ListActivities(ctx context.Context, token string, page pagination.Params) (pagination.Page[iotfarm.Activity], error)
	CreateActivity(ctx context.Context, token string, input iotfarm.ActivityInput) (iotfarm.Activity, error)
	UpdateActivityStatus(ctx context.Context, token, activityID string, status int) error
}

// FarmService covers crops, schedules and activities. Managers plan; staff may read
// schedules and activities and update activity progress.
type FarmService struct {
	api farmAPI
}

func NewFarmService(api farmAPI) (*FarmService, error) {
	if api == nil {
		return nil, fmt.Errorf("iotfarm client required")
	}
	return &FarmService{api: api}, nil
}

func (s *FarmService) ListCrops(ctx context.Context, sess session.Session, page pagination.Params) (pagination.Page[iotfarm.Crop], error) {
	if err := requireRole(sess, enums.RoleManager); err != nil {
		return pagination.Page[iotfarm.Crop]{}, err
	}
	return s.api.ListCrops(ctx, sess.Bearer(), page.Normalize())
}

func (s *FarmService) CreateCrop(ctx context.Context, sess session.Session, input iotfarm.CropInput) (iotfarm.Crop, error) {
	if err := requireRole(sess, enums.RoleManager); err != nil {
		return iotfarm.Crop{}, err
	}
	input.CropName = strings.TrimSpace(input.CropName)
	if err := validate.Struct(input); err != nil {
		return iotfarm.Crop{}, err
	}
	return s.api.CreateCrop(ctx, sess.Bearer(), input)
}

func (s *FarmService) ListSchedules(ctx context.Context, sess session.Session, page pagination.Params) (pagination.Page[iotfarm.Schedule], error) {
	if err := requireRole(sess, enums.RoleManager, enums.RoleStaff); err != nil {
		return pagination.Page[iotfarm.Schedule]{}, err
	}
	return s.api.ListSchedules(ctx, sess.Bearer(), page.Normalize())
}

func (s *FarmService) CreateSchedule(ctx context.Context, sess session.Session, input iotfarm.ScheduleInput) (iotfarm.Schedule, error) {
	if err := requireRole(sess, enums.RoleManager); err != nil {
		return iotfarm.Schedule{}, err
	}
	input.StaffEmail = strings.ToLower(strings.TrimSpace(input.StaffEmail))
	if err := validate.Struct(input); err != nil {
		return iotfarm.Schedule{}, err
	}
	return s.api.CreateSchedule(ctx, sess.Bearer(), input)
}

func (s *FarmService) ListActivities(ctx context.Context, sess session.Session, page pagination.Params) (pagination.Page[iotfarm.Activity], error) {
	if err := requireRole(sess, enums.RoleManager, enums.RoleStaff); err != nil {
		return pagination.Page[iotfarm.Activity]{}, err
	}
	return s.api.ListActivities(ctx, sess.Bearer(), page.Normalize())
}

func (s *FarmService) CreateActivity(ctx context.Context, sess session.Session, input iotfarm.ActivityInput) (iotfarm.Activity, error) {
	if err := requireRole(sess, enums.RoleManager); err != nil {
		return iotfarm.Activity{}, err
	}
	input.ActivityName = strings.TrimSpace(input.ActivityName)
	if err := validate.Struct(input); err != nil {
		return iotfarm.Activity{}, err
	}
	return s.api.CreateActivity(ctx, sess.Bearer(), input)
}

// Activity statuses: 0 planned, 1 in progress, 2 done.
func (s *FarmService) UpdateActivityStatus(ctx context.Context, sess session.Session, activityID string, status int) error {
	if err := requireRole(sess, enums.RoleManager, enums.RoleStaff); err != nil {
		return err
	}
	if status < 0 || status > 2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "status must be between 0 and 2")
	}
	return s.api.UpdateActivityStatus(ctx, sess.Bearer(), strings.TrimSpace(activityID), status)
}
