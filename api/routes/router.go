package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/iotfarm-web/api/controllers"
	backofficecontrollers "github.com/angelmondragon/iotfarm-web/api/controllers/backoffice"
	cartcontrollers "github.com/angelmondragon/iotfarm-web/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/iotfarm-web/api/controllers/orders"
	"github.com/angelmondragon/iotfarm-web/api/middleware"
	"github.com/angelmondragon/iotfarm-web/internal/auth"
	"github.com/angelmondragon/iotfarm-web/internal/catalog"
	checkoutsvc "github.com/angelmondragon/iotfarm-web/internal/checkout"
	"github.com/angelmondragon/iotfarm-web/internal/feedback"
	"github.com/angelmondragon/iotfarm-web/internal/orders"
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/config"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
)

// RateLimiter is satisfied by *redis.Client.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies carries everything the router mounts. Nil services answer with an
// internal error instead of panicking; a nil RateLimiter disables login throttling.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Sessions    session.Loader
	RateLimiter RateLimiter
	Pingers     map[string]controllers.Pinger
	Metrics     http.Handler

	Auth          auth.Service
	Notifications controllers.ToastDrainer
	Cart          cartcontrollers.Service
	Checkout      checkoutsvc.Service
	Orders        orders.Service
	Feedback      feedback.Service
	Catalog       catalog.Service
	Accounts      backofficecontrollers.AccountsService
	Farm          backofficecontrollers.FarmService
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	maxUpload := cfg.Media.MaxUploadBytes()

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/auth/login", controllers.AuthLogin(deps.Auth, logg))
		} else {
			r.Post("/auth/login", controllers.AuthLogin(deps.Auth, logg))
		}

		// Browsing works for anonymous visitors; a valid token still attaches its session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg))
			r.Get("/products", controllers.ProductList(deps.Catalog, logg))
			r.Get("/products/{productId}", controllers.ProductDetail(deps.Catalog, logg))
			r.Get("/products/{productId}/feedback", controllers.FeedbackByProduct(deps.Feedback, logg))
			r.Get("/cart", cartcontrollers.CartFetch(deps.Cart, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

			r.Post("/auth/logout", controllers.AuthLogout(deps.Auth, logg))
			r.Get("/auth/me", controllers.AuthMe(deps.Auth, logg))
			r.Post("/me/avatar", controllers.AvatarUpload(deps.Catalog, maxUpload, logg))
			r.Get("/notifications", controllers.NotificationsDrain(deps.Notifications, logg))

			r.Delete("/cart", cartcontrollers.CartClear(deps.Cart, logg))
			r.Post("/cart/items", cartcontrollers.CartAddItem(deps.Cart, logg))
			r.Patch("/cart/items", cartcontrollers.CartUpdateQuantity(deps.Cart, logg))
			r.Delete("/cart/items", cartcontrollers.CartRemoveItem(deps.Cart, logg))
			r.Post("/checkout", controllers.CheckoutPlaceOrder(deps.Checkout, logg))
			r.Post("/feedback", controllers.FeedbackSubmit(deps.Feedback, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(deps.Orders, logg))
				r.Post("/{orderId}/cancel", ordercontrollers.Cancel(deps.Orders, logg))
				r.Post("/{orderId}/payment", controllers.CheckoutPay(deps.Checkout, logg))
				r.Post("/{orderId}/payment/complete", controllers.CheckoutCompletePayment(deps.Checkout, logg))
				r.Get("/{orderId}/feedback", controllers.FeedbackByOrder(deps.Feedback, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.RoleStaff))
					r.Post("/{orderId}/deliver", ordercontrollers.Deliver(deps.Orders, logg))
					r.Post("/{orderId}/complete", ordercontrollers.Complete(deps.Orders, logg))
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.RoleStaff, enums.RoleManager, enums.RoleAdmin))
				r.Post("/products", controllers.ProductCreate(deps.Catalog, maxUpload, logg))
				r.Put("/products/{productId}", controllers.ProductUpdate(deps.Catalog, maxUpload, logg))
			})

			r.Route("/admin/accounts", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
				r.Get("/", backofficecontrollers.AccountList(deps.Accounts, logg))
				r.Post("/", backofficecontrollers.AccountCreate(deps.Accounts, logg))
				r.Patch("/{accountId}/status", backofficecontrollers.AccountUpdateStatus(deps.Accounts, logg))
			})

			r.Route("/farm", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.RoleManager))
					r.Get("/crops", backofficecontrollers.CropList(deps.Farm, logg))
					r.Post("/crops", backofficecontrollers.CropCreate(deps.Farm, logg))
					r.Post("/schedules", backofficecontrollers.ScheduleCreate(deps.Farm, logg))
					r.Post("/activities", backofficecontrollers.ActivityCreate(deps.Farm, logg))
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, enums.RoleManager, enums.RoleStaff))
					r.Get("/schedules", backofficecontrollers.ScheduleList(deps.Farm, logg))
					r.Get("/activities", backofficecontrollers.ActivityList(deps.Farm, logg))
					r.Patch("/activities/{activityId}/status", backofficecontrollers.ActivityUpdateStatus(deps.Farm, logg))
				})
			})
		})
	})

	return r
}
