package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartsvc "github.com/angelmondragon/iotfarm-web/internal/cart"
	pkgAuth "github.com/angelmondragon/iotfarm-web/pkg/auth"
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/config"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "iotfarm-web", ExpirationMinutes: 30},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginEmailLimit: 5,
			LoginIPLimit:    20,
		},
		Media: config.MediaConfig{MaxUploadMB: 1},
	}
}

type stubSessions map[string]session.Session

func (s stubSessions) Get(_ context.Context, accessID string) (session.Session, error) {
	sess, ok := s[accessID]
	if !ok {
		return session.Session{}, session.ErrSessionNotFound
	}
	return sess, nil
}

type denyLimiter struct{}

func (denyLimiter) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	return false, 99, nil
}

type emptyCart struct{}

func (emptyCart) View(context.Context, session.Session) (cartsvc.Cart, error) {
	return cartsvc.NewCart(nil), nil
}

func (emptyCart) AddProduct(context.Context, session.Session, string) (cartsvc.Cart, error) {
	return cartsvc.NewCart(nil), nil
}

func (emptyCart) UpdateQuantity(context.Context, session.Session, string, int) (cartsvc.Result, error) {
	return cartsvc.Result{}, nil
}

func (emptyCart) RemoveItem(context.Context, session.Session, string) (cartsvc.Cart, error) {
	return cartsvc.NewCart(nil), nil
}

func (emptyCart) Clear(context.Context, session.Session) error {
	return nil
}

func newTestRouter(t *testing.T, sessions stubSessions, limiter RateLimiter) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewRouter(Dependencies{
		Config:      testConfig(),
		Logger:      logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard}),
		Sessions:    sessions,
		RateLimiter: limiter,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Cart:        emptyCart{},
	})
}

func bearerFor(t *testing.T, sessions stubSessions, email string, role enums.Role) string {
	t.Helper()
	accessID := session.NewAccessID()
	sessions[accessID] = session.Session{AccessID: accessID, Email: email, Role: role, APIToken: "remote"}
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{JTI: accessID, Email: email, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthLiveAndRequestID(t *testing.T) {
	router := newTestRouter(t, stubSessions{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestMetricsEndpointMounted(t *testing.T) {
	router := newTestRouter(t, stubSessions{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnonymousCartIsReadable(t *testing.T) {
	router := newTestRouter(t, stubSessions{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, stubSessions{}, nil)

	for _, target := range []string{"/api/v1/orders", "/api/v1/notifications", "/api/v1/auth/me"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestCartMutationWithSession(t *testing.T) {
	sessions := stubSessions{}
	router := newTestRouter(t, sessions, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"productId":"p-1"}`))
	req.Header.Set("Authorization", bearerFor(t, sessions, "buyer@farm.io", enums.RoleCustomer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRoleGuards(t *testing.T) {
	sessions := stubSessions{}
	router := newTestRouter(t, sessions, nil)
	customer := bearerFor(t, sessions, "buyer@farm.io", enums.RoleCustomer)
	staff := bearerFor(t, sessions, "staff@farm.io", enums.RoleStaff)

	cases := []struct {
		name   string
		method string
		target string
		token  string
		want   int
	}{
		{name: "customer cannot list accounts", method: http.MethodGet, target: "/api/v1/admin/accounts", token: customer, want: http.StatusForbidden},
		{name: "staff cannot list crops", method: http.MethodGet, target: "/api/v1/farm/crops", token: staff, want: http.StatusForbidden},
		{name: "customer cannot deliver", method: http.MethodPost, target: "/api/v1/orders/o-1/deliver", token: customer, want: http.StatusForbidden},
		{name: "customer cannot create products", method: http.MethodPost, target: "/api/v1/products", token: customer, want: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			req.Header.Set("Authorization", tc.token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestLoginRateLimited(t *testing.T) {
	router := newTestRouter(t, stubSessions{}, denyLimiter{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@farm.io","password":"pw"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, stubSessions{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
