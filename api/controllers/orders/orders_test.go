package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/iotfarm-web/api/middleware"
	internalorders "github.com/angelmondragon/iotfarm-web/internal/orders"
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
)

type stubOrders struct {
	page      pagination.Params
	cancelled string
	delivered string
	err       error
}

func (s *stubOrders) List(_ context.Context, _ session.Session, page pagination.Params) (pagination.Page[internalorders.View], error) {
	s.page = page
	return pagination.Page[internalorders.View]{
		Items: []internalorders.View{{
			Order:       iotfarm.Order{OrderID: "o-1", Status: 2},
			StatusLabel: enums.OrderStatusPending,
			Affordances: []enums.Affordance{enums.AffordanceCancel, enums.AffordancePay},
		}},
		TotalPagesCount: 1,
		TotalItemCount:  1,
	}, nil
}

func (s *stubOrders) Cancel(_ context.Context, _ session.Session, orderID string) error {
	s.cancelled = orderID
	return s.err
}

func (s *stubOrders) Deliver(_ context.Context, sess session.Session, orderID string) error {
	if !sess.HasRole(enums.RoleStaff) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	s.delivered = orderID
	return nil
}

func (s *stubOrders) Complete(context.Context, session.Session, string) error {
	return nil
}

func newRouter(svc internalorders.Service, sess session.Session) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithSession(req.Context(), sess)))
		})
	})
	r.Get("/orders", List(svc, nil))
	r.Post("/orders/{orderId}/cancel", Cancel(svc, nil))
	r.Post("/orders/{orderId}/deliver", Deliver(svc, nil))
	r.Post("/orders/{orderId}/complete", Complete(svc, nil))
	return r
}

func TestListDefaultsPaging(t *testing.T) {
	svc := &stubOrders{}
	rec := httptest.NewRecorder()
	newRouter(svc, session.Session{Email: "c@farm.io", Role: enums.RoleCustomer}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.page.Page != 1 || svc.page.Size != pagination.DefaultSize {
		t.Fatalf("unexpected paging %+v", svc.page)
	}

	var envelope struct {
		Data struct {
			Items []struct {
				OrderID     string   `json:"orderId"`
				StatusLabel string   `json:"statusLabel"`
				Affordances []string `json:"affordances"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Items[0].OrderID != "o-1" {
		t.Fatalf("unexpected items %+v", envelope.Data.Items)
	}
}

func TestCancelForwardsOrderID(t *testing.T) {
	svc := &stubOrders{}
	rec := httptest.NewRecorder()
	newRouter(svc, session.Session{Email: "c@farm.io", Role: enums.RoleCustomer}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/o-7/cancel", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.cancelled != "o-7" {
		t.Fatalf("unexpected order %q", svc.cancelled)
	}
}

func TestCancelSurfacesRemoteMessage(t *testing.T) {
	svc := &stubOrders{err: pkgerrors.New(pkgerrors.CodeDependency, "Cancel order failed, please try again.")}
	rec := httptest.NewRecorder()
	newRouter(svc, session.Session{Email: "c@farm.io", Role: enums.RoleCustomer}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/o-7/cancel", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message != "Cancel order failed, please try again." {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestDeliverRequiresStaff(t *testing.T) {
	svc := &stubOrders{}
	rec := httptest.NewRecorder()
	newRouter(svc, session.Session{Email: "c@farm.io", Role: enums.RoleCustomer}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/o-1/deliver", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	newRouter(svc, session.Session{Email: "s@farm.io", Role: enums.RoleStaff}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/o-1/deliver", nil))
	if rec.Code != http.StatusOK || svc.delivered != "o-1" {
		t.Fatalf("expected staff deliver to succeed, got %d", rec.Code)
	}
}
