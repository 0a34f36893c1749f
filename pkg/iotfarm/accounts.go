package iotfarm

import (
	"context"
	"net/http"

	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
)

func (c *Client) ListAccounts(ctx context.Context, token string, page pagination.Params) (pagination.Page[Account], error) {
	return call[pagination.Page[Account]](ctx, c, request{
		action: "Load accounts",
		method: http.MethodGet,
		path:   "/api/v1/accounts",
		query:  page.Query(),
		token:  token,
	})
}

func (c *Client) CreateAccount(ctx context.Context, token string, input AccountInput) (Account, error) {
	return call[Account](ctx, c, request{
		action: "Create account",
		method: http.MethodPost,
		path:   "/api/v1/accounts",
		token:  token,
		body:   input,
	})
}

func (c *Client) UpdateAccountStatus(ctx context.Context, token, accountID string, status int) error {
	if err := requireID("Update account status", "account id", accountID); err != nil {
		return err
	}
	return exec(ctx, c, request{
		action: "Update account status",
		method: http.MethodPut,
		path:   pathf("/api/v1/accounts/%s/status", accountID),
		token:  token,
		body:   map[string]int{"status": status},
	})
}
