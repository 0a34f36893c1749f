package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/iotfarm-web/api/responses"
	pkgAuth "github.com/angelmondragon/iotfarm-web/pkg/auth"
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/config"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
)

var errMissingCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")

// Auth validates a bearer token, loads its session and seeds the request context.
func Auth(cfg config.JWTConfig, loader session.Loader, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(cfg, loader, logg, true)
}

// OptionalAuth behaves like Auth when a token is present and lets anonymous
// visitors through otherwise. A present but invalid token is still rejected.
func OptionalAuth(cfg config.JWTConfig, loader session.Loader, logg *logger.Logger) func(http.Handler) http.Handler {
	return authenticate(cfg, loader, logg, false)
}

func authenticate(cfg config.JWTConfig, loader session.Loader, logg *logger.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if required {
					responses.WriteError(r.Context(), logg, w, errMissingCredentials)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session.Anonymous)))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}
			if loader == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session store unavailable"))
				return
			}

			sess, err := loader.Get(r.Context(), claims.ID)
			if err != nil {
				if errors.Is(err, session.ErrSessionNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				return
			}

			ctx := WithSession(r.Context(), sess)
			if logg != nil {
				ctx = logg.WithIdentity(ctx, sess.Identity())
				ctx = logg.WithActorRole(ctx, sess.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken accepts "Bearer <token>" or a bare token in the Authorization header.
func bearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
