package iotfarm

import (
	"context"
	"net/http"

	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
)

func (c *Client) CreateOrder(ctx context.Context, token string, input CreateOrderInput) (Order, error) {
	return call[Order](ctx, c, request{
		action: "Create order",
		method: http.MethodPost,
		path:   "/api/v1/orders",
		token:  token,
		body:   input,
	})
}

// ListOrders returns every order; the remote API restricts it to back-office roles.
func (c *Client) ListOrders(ctx context.Context, token string, page pagination.Params) (pagination.Page[Order], error) {
	return call[pagination.Page[Order]](ctx, c, request{
		action: "Load orders",
		method: http.MethodGet,
		path:   "/api/v1/orders",
		query:  page.Query(),
		token:  token,
	})
}

// ListMyOrders returns the orders of the token's owner.
func (c *Client) ListMyOrders(ctx context.Context, token string, page pagination.Params) (pagination.Page[Order], error) {
	return call[pagination.Page[Order]](ctx, c, request{
		action: "Load orders",
		method: http.MethodGet,
		path:   "/api/v1/orders/me",
		query:  page.Query(),
		token:  token,
	})
}

// GetOrder loads a single order visible to the token's owner.
func (c *Client) GetOrder(ctx context.Context, token, orderID string) (Order, error) {
	if err := requireID("Load order", "order id", orderID); err != nil {
		return Order{}, err
	}
	return call[Order](ctx, c, request{
		action: "Load order",
		method: http.MethodGet,
		path:   pathf("/api/v1/orders/%s", orderID),
		token:  token,
	})
}

func (c *Client) CancelOrder(ctx context.Context, token, orderID string) error {
	return c.orderAction(ctx, "Cancel order", http.MethodPut, "/api/v1/orders/%s/cancel", token, orderID)
}

func (c *Client) UpdateDeliveryStatus(ctx context.Context, token, orderID string) error {
	return c.orderAction(ctx, "Update delivery status", http.MethodPut, "/api/v1/orders/%s/delivery", token, orderID)
}

func (c *Client) UpdateCompleteStatus(ctx context.Context, token, orderID string) error {
	return c.orderAction(ctx, "Complete order", http.MethodPut, "/api/v1/orders/%s/complete", token, orderID)
}

// CreateOrderPayment starts a payment and returns where to send the browser.
func (c *Client) CreateOrderPayment(ctx context.Context, token, orderID string) (Payment, error) {
	if err := requireID("Create payment", "order id", orderID); err != nil {
		return Payment{}, err
	}
	return call[Payment](ctx, c, request{
		action: "Create payment",
		method: http.MethodPost,
		path:   pathf("/api/v1/orders/%s/payment", orderID),
		token:  token,
	})
}

func (c *Client) CompletePayment(ctx context.Context, token, orderID string) error {
	return c.orderAction(ctx, "Complete payment", http.MethodPut, "/api/v1/orders/%s/payment/complete", token, orderID)
}

func (c *Client) orderAction(ctx context.Context, action, method, format, token, orderID string) error {
	if err := requireID(action, "order id", orderID); err != nil {
		return err
	}
	return exec(ctx, c, request{
		action: action,
		method: method,
		path:   pathf(format, orderID),
		token:  token,
	})
}
