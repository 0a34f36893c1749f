package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/iotfarm-web/api/middleware"
	cartsvc "github.com/angelmondragon/iotfarm-web/internal/cart"
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
)

var customer = session.Session{AccessID: "acc-1", Email: "buyer@farm.io", Role: enums.RoleCustomer, APIToken: "remote"}

type stubCartService struct {
	items       []cartsvc.Item
	addErr      error
	lastProduct string
	lastName    string
	lastQty     int
	cleared     bool
}

func (s *stubCartService) View(_ context.Context, sess session.Session) (cartsvc.Cart, error) {
	if !sess.Authenticated() {
		return cartsvc.NewCart(nil), nil
	}
	return cartsvc.NewCart(s.items), nil
}

func (s *stubCartService) AddProduct(_ context.Context, sess session.Session, productID string) (cartsvc.Cart, error) {
	if !sess.Authenticated() {
		return cartsvc.Cart{}, pkgerrors.New(pkgerrors.CodeUnauthorized, cartsvc.MsgLoginRequired)
	}
	s.lastProduct = productID
	if s.addErr != nil {
		return cartsvc.Cart{}, s.addErr
	}
	return cartsvc.NewCart(s.items), nil
}

func (s *stubCartService) UpdateQuantity(_ context.Context, _ session.Session, productName string, quantity int) (cartsvc.Result, error) {
	s.lastName, s.lastQty = productName, quantity
	return cartsvc.Result{Success: false, MaxAvailable: 5, Message: "Only 5 items available", Cart: cartsvc.NewCart(s.items)}, nil
}

func (s *stubCartService) RemoveItem(_ context.Context, _ session.Session, productName string) (cartsvc.Cart, error) {
	s.lastName = productName
	return cartsvc.NewCart(nil), nil
}

func (s *stubCartService) Clear(context.Context, session.Session) error {
	s.cleared = true
	return nil
}

func withSession(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithSession(req.Context(), customer))
}

func TestCartFetchSuccess(t *testing.T) {
	svc := &stubCartService{items: []cartsvc.Item{{
		ProductName: "Basil", Price: decimal.NewFromInt(2), Quantity: 3, StockQuantity: 10, Status: enums.ProductStatusAvailable,
	}}}
	handler := CartFetch(svc, nil)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartsvc.Cart `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TotalItems != 3 || !envelope.Data.TotalPrice.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("unexpected totals: %+v", envelope.Data)
	}
	if !envelope.Data.CheckoutEligible {
		t.Fatal("expected cart to be checkout eligible")
	}
}

func TestCartFetchAnonymousIsEmpty(t *testing.T) {
	svc := &stubCartService{items: []cartsvc.Item{{ProductName: "Basil", Quantity: 1}}}
	handler := CartFetch(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"items":[]`) {
		t.Fatalf("expected empty items, got %s", resp.Body.String())
	}
}

func TestCartAddItemAnonymousRejected(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"productId":"p-1"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartAddItemRequiresProductID(t *testing.T) {
	svc := &stubCartService{}
	handler := CartAddItem(svc, nil)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.lastProduct != "" {
		t.Fatal("service should not be called on invalid input")
	}
}

func TestCartUpdateQuantityReportsClamp(t *testing.T) {
	svc := &stubCartService{}
	handler := CartUpdateQuantity(svc, nil)

	req := withSession(httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items", strings.NewReader(`{"productName":"Basil","quantity":6}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Success || envelope.Data.Message != "Only 5 items available" {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
	if svc.lastName != "Basil" || svc.lastQty != 6 {
		t.Fatalf("unexpected call %q/%d", svc.lastName, svc.lastQty)
	}
}

func TestCartRemoveItemByQuery(t *testing.T) {
	svc := &stubCartService{}
	handler := CartRemoveItem(svc, nil)

	target := "/api/v1/cart/items?productName=" + url.QueryEscape("Sweet Basil")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodDelete, target, nil)))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastName != "Sweet Basil" {
		t.Fatalf("unexpected product name %q", svc.lastName)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items", nil)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without productName, got %d", resp.Code)
	}
}

func TestCartClear(t *testing.T) {
	svc := &stubCartService{}
	resp := httptest.NewRecorder()
	CartClear(svc, nil).ServeHTTP(resp, withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)))

	if resp.Code != http.StatusOK || !svc.cleared {
		t.Fatalf("expected clear to succeed, code %d cleared %v", resp.Code, svc.cleared)
	}
}
