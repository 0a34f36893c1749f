package iotfarm

import (
	"context"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
)

// Login exchanges credentials for a remote bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return LoginResult{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	result, err := call[LoginResult](ctx, c, request{
		action: "Login",
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		body: map[string]string{
			"email":    strings.TrimSpace(email),
			"password": password,
		},
	})
	if err != nil {
		return LoginResult{}, err
	}
	if strings.TrimSpace(result.Token) == "" {
		return LoginResult{}, malformed(errMissingToken)
	}
	return result, nil
}
