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

// Account statuses understood by the remote API.
const (
	AccountStatusInactive = 0
	AccountStatusActive   = 1
)

type accountsAPI interface {
	ListAccounts(ctx context.Context, token string, page pagination.Params) (pagination.Page[iotfarm.Account], error)
	CreateAccount(ctx context.Context, token string, input iotfarm.AccountInput) (iotfarm.Account, error)
	UpdateAccountStatus(ctx context.Context, token, accountID string, status int) error
}

// AccountsService is the admin-only account management surface.
type AccountsService struct {
	api accountsAPI
}

func NewAccountsService(api accountsAPI) (*AccountsService, error) {
	if api == nil {
		return nil, fmt.Errorf("iotfarm client required")
	}
	return &AccountsService{api: api}, nil
}

func (s *AccountsService) List(ctx context.Context, sess session.Session, page pagination.Params) (pagination.Page[iotfarm.Account], error) {
	if err := requireRole(sess, enums.RoleAdmin); err != nil {
		return pagination.Page[iotfarm.Account]{}, err
	}
	return s.api.ListAccounts(ctx, sess.Bearer(), page.Normalize())
}

func (s *AccountsService) Create(ctx context.Context, sess session.Session, input iotfarm.AccountInput) (iotfarm.Account, error) {
	if err := requireRole(sess, enums.RoleAdmin); err != nil {
		return iotfarm.Account{}, err
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)
	input.Role = strings.ToUpper(strings.TrimSpace(input.Role))
	if err := validate.Struct(input); err != nil {
		return iotfarm.Account{}, err
	}
	return s.api.CreateAccount(ctx, sess.Bearer(), input)
}

func (s *AccountsService) UpdateStatus(ctx context.Context, sess session.Session, accountID string, status int) error {
	if err := requireRole(sess, enums.RoleAdmin); err != nil {
		return err
	}
	if status != AccountStatusInactive && status != AccountStatusActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "status must be 0 or 1")
	}
	return s.api.UpdateAccountStatus(ctx, sess.Bearer(), strings.TrimSpace(accountID), status)
}

func requireRole(sess session.Session, roles ...enums.Role) error {
	if !sess.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !sess.HasRole(roles...) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
	}
	return nil
}
