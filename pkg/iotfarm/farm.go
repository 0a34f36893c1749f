package iotfarm

import (
	"context"
	"net/http"

	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
)

func (c *Client) ListCrops(ctx context.Context, token string, page pagination.Params) (pagination.Page[Crop], error) {
	return call[pagination.Page[Crop]](ctx, c, request{
		action: "Load crops",
		method: http.MethodGet,
		path:   "/api/v1/crops",
		query:  page.Query(),
		token:  token,
	})
}

func (c *Client) CreateCrop(ctx context.Context, token string, input CropInput) (Crop, error) {
	return call[Crop](ctx, c, request{
		action: "Create crop",
		method: http.MethodPost,
		path:   "/api/v1/crops",
		token:  token,
		body:   input,
	})
}

func (c *Client) ListSchedules(ctx context.Context, token string, page pagination.Params) (pagination.Page[Schedule], error) {
	return call[pagination.Page[Schedule]](ctx, c, request{
		action: "Load schedules",
		method: http.MethodGet,
		path:   "/api/v1/schedules",
		query:  page.Query(),
		token:  token,
	})
}

func (c *Client) CreateSchedule(ctx context.Context, token string, input ScheduleInput) (Schedule, error) {
	return call[Schedule](ctx, c, request{
		action: "Create schedule",
		method: http.MethodPost,
		path:   "/api/v1/schedules",
		token:  token,
		body:   input,
	})
}

func (c *Client) ListActivities(ctx context.Context, token string, page pagination.Params) (pagination.Page[Activity], error) {
	return call[pagination.Page[Activity]](ctx, c, request{
		action: "Load activities",
		method: http.MethodGet,
		path:   "/api/v1/activities",
		query:  page.Query(),
		token:  token,
	})
}

func (c *Client) CreateActivity(ctx context.Context, token string, input ActivityInput) (Activity, error) {
	return call[Activity](ctx, c, request{
		action: "Create activity",
		method: http.MethodPost,
		path:   "/api/v1/activities",
		token:  token,
		body:   input,
	})
}

func (c *Client) UpdateActivityStatus(ctx context.Context, token, activityID string, status int) error {
	if err := requireID("Update activity status", "activity id", activityID); err != nil {
		return err
	}
	return exec(ctx, c, request{
		action: "Update activity status",
		method: http.MethodPut,
		path:   pathf("/api/v1/activities/%s/status", activityID),
		token:  token,
		body:   map[string]int{"status": status},
	})
}
