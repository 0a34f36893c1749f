package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/iotfarm-web/pkg/auth"
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/config"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, sess session.Session) error
	Me(sess session.Session) (Profile, error)
}

type remote interface {
	Login(ctx context.Context, email, password string) (iotfarm.LoginResult, error)
}

type sessionManager interface {
	Create(ctx context.Context, email string, role enums.Role, apiToken string) (session.Session, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	API            remote
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
}

type service struct {
	api      remote
	sessions sessionManager
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, fmt.Errorf("iotfarm client is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		api:      params.API,
		sessions: params.SessionManager,
		jwtCfg:   params.JWTConfig,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

// Login authenticates against the remote API, stores the resulting token in a
// server-side session and hands the browser a signed token naming that session.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	result, err := s.api.Login(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	role, err := enums.ParseRole(result.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unsupported account role")
	}
	if strings.TrimSpace(result.Email) != "" {
		email = strings.TrimSpace(result.Email)
	}

	sess, err := s.sessions.Create(ctx, email, role, result.Token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store session")
	}

	now := s.now()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		JTI:   sess.AccessID,
		Email: sess.Email,
		Role:  sess.Role,
	})
	if err != nil {
		if revokeErr := s.sessions.Revoke(ctx, sess.AccessID); revokeErr != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", revokeErr.Error()), "auth.login.revoke_failed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	logCtx := s.logg.WithIdentity(ctx, sess.Identity())
	logCtx = s.logg.WithActorRole(logCtx, sess.Role.String())
	s.logg.Info(logCtx, "auth.login.success")

	return &LoginResponse{
		AccessToken: accessToken,
		ExpiresAt:   now.Add(s.jwtCfg.TTL()).UTC(),
		Email:       sess.Email,
		Role:        sess.Role,
	}, nil
}

// Logout revokes the server-side session. The cart snapshot is left in place.
func (s *service) Logout(ctx context.Context, sess session.Session) error {
	if !sess.Authenticated() || sess.AccessID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, sess.AccessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(sess session.Session) (Profile, error) {
	if !sess.Authenticated() {
		return Profile{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return Profile{Email: sess.Email, Role: sess.Role, IssuedAt: sess.IssuedAt}, nil
}
