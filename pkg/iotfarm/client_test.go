package iotfarm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL("http://api.test"), WithHTTPClient(&http.Client{Transport: rt})}, opts...)
	client, err := NewClient("", opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatalf("expected base url error")
	}
}

func TestListMyOrdersDecodesPageAndSendsBearer(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{"data":{"items":[{"orderId":"o-1","createdAt":"2026-01-02T03:04:05Z","totalPrice":250.5,"shippingAddress":"1 Farm Rd","status":2,"orderItems":[{"productName":"Tomato","price":100,"quantity":2,"stockQuantity":9}],"orderDetailIds":["d-1"]}],"totalPagesCount":1,"totalItemCount":1}}`), nil
	})

	page, err := client.ListMyOrders(context.Background(), "remote-token", pagination.Params{Page: 2, Size: 5})
	if err != nil {
		t.Fatalf("list my orders: %v", err)
	}
	if captured.URL.Path != "/api/v1/orders/me" {
		t.Fatalf("unexpected path %s", captured.URL.Path)
	}
	if captured.URL.Query().Get("pageNumber") != "2" || captured.URL.Query().Get("pageSize") != "5" {
		t.Fatalf("unexpected query %s", captured.URL.RawQuery)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer remote-token" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	if len(page.Items) != 1 || page.TotalItemCount != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	order := page.Items[0]
	if order.OrderID != "o-1" || order.Status != 2 || order.TotalPrice.String() != "250.5" {
		t.Fatalf("unexpected order %+v", order)
	}
	if len(order.OrderDetailIDs) != 1 || order.OrderItems[0].Quantity != 2 {
		t.Fatalf("order items not decoded: %+v", order)
	}
}

func TestAnonymousCallOmitsAuthorization(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if _, ok := req.Header["Authorization"]; ok {
			t.Fatalf("authorization header must be absent without a token")
		}
		return jsonResponse(http.StatusOK, `{"data":{"productId":"p-1","productName":"Tomato","price":"100","stockQuantity":5,"status":1}}`), nil
	})

	product, err := client.GetProduct(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.ProductName != "Tomato" || !product.Status.IsAvailable() {
		t.Fatalf("unexpected product %+v", product)
	}
}

func TestMalformedEnvelopes(t *testing.T) {
	bodies := []string{
		`{"items":[]}`,
		`{"data":null}`,
		`{"data":{"items":"nope"}}`,
		`<html>oops</html>`,
	}
	for _, body := range bodies {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, body), nil
		})
		_, err := client.ListOrders(context.Background(), "tok", pagination.Params{})
		if !IsMalformed(err) {
			t.Fatalf("body %s: expected malformed error, got %v", body, err)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeDependency || typed.Message() != "malformed response" {
			t.Fatalf("body %s: unexpected typed error %v", body, err)
		}
	}
}

func TestNonSuccessStatusMapping(t *testing.T) {
	cases := []struct {
		status  int
		body    string
		code    pkgerrors.Code
		message string
	}{
		{http.StatusBadRequest, `{"message":"Order is not pending"}`, pkgerrors.CodeValidation, "Order is not pending"},
		{http.StatusUnauthorized, `{}`, pkgerrors.CodeUnauthorized, "Cancel order failed, please try again."},
		{http.StatusForbidden, `not json`, pkgerrors.CodeForbidden, "Cancel order failed, please try again."},
		{http.StatusNotFound, `{"message":"Order not found"}`, pkgerrors.CodeNotFound, "Order not found"},
		{http.StatusConflict, `{"message":" already cancelled "}`, pkgerrors.CodeConflict, "already cancelled"},
		{http.StatusInternalServerError, ``, pkgerrors.CodeDependency, "Cancel order failed, please try again."},
	}

	for _, tc := range cases {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodPut || req.URL.Path != "/api/v1/orders/o-9/cancel" {
				t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
			}
			return jsonResponse(tc.status, tc.body), nil
		})
		err := client.CancelOrder(context.Background(), "tok", "o-9")
		typed := pkgerrors.As(err)
		if typed == nil {
			t.Fatalf("status %d: expected typed error, got %v", tc.status, err)
		}
		if typed.Code() != tc.code || typed.Message() != tc.message {
			t.Fatalf("status %d: got %s %q", tc.status, typed.Code(), typed.Message())
		}
		if StatusOf(err) != tc.status {
			t.Fatalf("status %d: StatusOf returned %d", tc.status, StatusOf(err))
		}
	}
}

func TestTransportErrorUsesFallbackMessage(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	err := client.CompletePayment(context.Background(), "tok", "o-1")
	if got := pkgerrors.PublicMessage(err); got != "Complete payment failed, please try again." {
		t.Fatalf("unexpected message %q", got)
	}
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency code, got %v", err)
	}
}

func TestOrderActionRequiresID(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})
	if err := client.CancelOrder(context.Background(), "tok", " "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderSendsBody(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		var payload CreateOrderInput
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if payload.ShippingAddress != "1 Farm Rd" || len(payload.OrderItems) != 2 || payload.OrderItems[1].Quantity != 3 {
			t.Fatalf("unexpected payload %+v", payload)
		}
		if req.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("missing content type")
		}
		return jsonResponse(http.StatusCreated, `{"data":{"orderId":"o-77","status":2}}`), nil
	})

	order, err := client.CreateOrder(context.Background(), "tok", CreateOrderInput{
		ShippingAddress: "1 Farm Rd",
		OrderItems:      []OrderLine{{ProductID: "p-1", Quantity: 1}, {ProductID: "p-2", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.OrderID != "o-77" {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestLoginRejectsMissingToken(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":{"role":"STAFF","email":"s@x.com"}}`), nil
	})
	if _, err := client.Login(context.Background(), "s@x.com", "pw"); !IsMalformed(err) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

type observerStub struct {
	actions  []string
	statuses []int
}

func (o *observerStub) ObserveCall(action string, status int, _ time.Duration) {
	o.actions = append(o.actions, action)
	o.statuses = append(o.statuses, status)
}

func TestObserverReceivesCalls(t *testing.T) {
	obs := &observerStub{}
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":[]}`), nil
	}, WithObserver(obs))

	if _, err := client.FeedbackByProduct(context.Background(), "p-1"); err != nil {
		t.Fatalf("feedback by product: %v", err)
	}
	if len(obs.actions) != 1 || obs.actions[0] != "Load feedback" || obs.statuses[0] != http.StatusOK {
		t.Fatalf("unexpected observations %+v", obs)
	}
}
