package backoffice

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
)

type stubAPI struct {
	calls    int
	accounts []iotfarm.AccountInput
	crops    []iotfarm.CropInput
	statuses map[string]int
}

func (s *stubAPI) ListAccounts(context.Context, string, pagination.Params) (pagination.Page[iotfarm.Account], error) {
	s.calls++
	return pagination.Page[iotfarm.Account]{}, nil
}

func (s *stubAPI) CreateAccount(_ context.Context, _ string, input iotfarm.AccountInput) (iotfarm.Account, error) {
	s.calls++
	s.accounts = append(s.accounts, input)
	return iotfarm.Account{Email: input.Email, Role: input.Role}, nil
}

func (s *stubAPI) UpdateAccountStatus(_ context.Context, _ string, id string, status int) error {
	s.calls++
	if s.statuses == nil {
		s.statuses = map[string]int{}
	}
	s.statuses[id] = status
	return nil
}

func (s *stubAPI) ListCrops(context.Context, string, pagination.Params) (pagination.Page[iotfarm.Crop], error) {
	s.calls++
	return pagination.Page[iotfarm.Crop]{}, nil
}

func (s *stubAPI) CreateCrop(_ context.Context, _ string, input iotfarm.CropInput) (iotfarm.Crop, error) {
	s.calls++
	s.crops = append(s.crops, input)
	return iotfarm.Crop{CropName: input.CropName}, nil
}

func (s *stubAPI) ListSchedules(context.Context, string, pagination.Params) (pagination.Page[iotfarm.Schedule], error) {
	s.calls++
	return pagination.Page[iotfarm.Schedule]{}, nil
}

func (s *stubAPI) CreateSchedule(_ context.Context, _ string, input iotfarm.ScheduleInput) (iotfarm.Schedule, error) {
	s.calls++
	return iotfarm.Schedule{CropID: input.CropID}, nil
}

func (s *stubAPI) ListActivities(context.Context, string, pagination.Params) (pagination.Page[iotfarm.Activity], error) {
	s.calls++
	return pagination.Page[iotfarm.Activity]{}, nil
}

func (s *stubAPI) CreateActivity(_ context.Context, _ string, input iotfarm.ActivityInput) (iotfarm.Activity, error) {
	s.calls++
	return iotfarm.Activity{ActivityName: input.ActivityName}, nil
}

func (s *stubAPI) UpdateActivityStatus(context.Context, string, string, int) error {
	s.calls++
	return nil
}

var (
	admin   = session.Session{AccessID: "a", Email: "a@x.com", Role: enums.RoleAdmin, APIToken: "t"}
	manager = session.Session{AccessID: "m", Email: "m@x.com", Role: enums.RoleManager, APIToken: "t"}
	staff   = session.Session{AccessID: "s", Email: "s@x.com", Role: enums.RoleStaff, APIToken: "t"}
)

func TestAccountsAdminOnly(t *testing.T) {
	api := &stubAPI{}
	svc, err := NewAccountsService(api)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.List(ctx, manager, pagination.Params{}); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.List(ctx, session.Anonymous, pagination.Params{}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if api.calls != 0 {
		t.Fatalf("no remote call expected, got %d", api.calls)
	}
}

func TestCreateAccountNormalizesAndValidates(t *testing.T) {
	api := &stubAPI{}
	svc, _ := NewAccountsService(api)
	ctx := context.Background()

	input := iotfarm.AccountInput{Email: " New@Farm.io ", Password: "longenough", FullName: "New Hand", Role: "staff"}
	account, err := svc.Create(ctx, admin, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if account.Email != "new@farm.io" || account.Role != "STAFF" {
		t.Fatalf("expected normalized input, got %+v", account)
	}

	input.Password = "short"
	if _, err := svc.Create(ctx, admin, input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(api.accounts) != 1 {
		t.Fatalf("invalid input must not reach the api")
	}

	if err := svc.UpdateStatus(ctx, admin, "acc-1", 7); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.UpdateStatus(ctx, admin, "acc-1", AccountStatusInactive); err != nil {
		t.Fatalf("update status: %v", err)
	}
}

func TestFarmRoles(t *testing.T) {
	api := &stubAPI{}
	svc, err := NewFarmService(api)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.ListCrops(ctx, staff, pagination.Params{}); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("staff must not list crops, got %v", err)
	}
	if _, err := svc.ListActivities(ctx, staff, pagination.Params{}); err != nil {
		t.Fatalf("staff can list activities: %v", err)
	}
	if err := svc.UpdateActivityStatus(ctx, staff, "act-1", 2); err != nil {
		t.Fatalf("staff can update activity status: %v", err)
	}
	if err := svc.UpdateActivityStatus(ctx, staff, "act-1", 3); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFarmInputValidation(t *testing.T) {
	api := &stubAPI{}
	svc, _ := NewFarmService(api)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.CreateCrop(ctx, manager, iotfarm.CropInput{CropName: "  ", PlantedAt: start}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected crop validation error, got %v", err)
	}
	if _, err := svc.CreateCrop(ctx, manager, iotfarm.CropInput{CropName: "Kale", Quantity: 40, PlantedAt: start}); err != nil {
		t.Fatalf("create crop: %v", err)
	}

	bad := iotfarm.ScheduleInput{CropID: "c-1", StaffEmail: "s@x.com", StartDate: start, EndDate: start.Add(-time.Hour)}
	if _, err := svc.CreateSchedule(ctx, manager, bad); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected end-before-start to fail, got %v", err)
	}
	good := bad
	good.EndDate = start.Add(24 * time.Hour)
	if _, err := svc.CreateSchedule(ctx, manager, good); err != nil {
		t.Fatalf("create schedule: %v", err)
	}

	if _, err := svc.CreateActivity(ctx, manager, iotfarm.ActivityInput{ScheduleID: "s-1", ActivityName: "Water", StartDate: start, EndDate: start.Add(time.Hour)}); err != nil {
		t.Fatalf("create activity: %v", err)
	}
	if len(api.crops) != 1 {
		t.Fatalf("expected exactly one crop created, got %d", len(api.crops))
	}
}
