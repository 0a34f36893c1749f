package iotfarm

import (
	"context"
	"net/http"

	"github.com/angelmondragon/iotfarm-web/pkg/pagination"
)

func (c *Client) ListProducts(ctx context.Context, page pagination.Params) (pagination.Page[Product], error) {
	return call[pagination.Page[Product]](ctx, c, request{
		action: "Load products",
		method: http.MethodGet,
		path:   "/api/v1/products",
		query:  page.Query(),
	})
}

func (c *Client) GetProduct(ctx context.Context, productID string) (Product, error) {
	if err := requireID("Load product", "product id", productID); err != nil {
		return Product{}, err
	}
	return call[Product](ctx, c, request{
		action: "Load product",
		method: http.MethodGet,
		path:   pathf("/api/v1/products/%s", productID),
	})
}

func (c *Client) CreateProduct(ctx context.Context, token string, input ProductInput) (Product, error) {
	return call[Product](ctx, c, request{
		action: "Create product",
		method: http.MethodPost,
		path:   "/api/v1/products",
		token:  token,
		body:   input,
	})
}

func (c *Client) UpdateProduct(ctx context.Context, token, productID string, input ProductInput) (Product, error) {
	if err := requireID("Update product", "product id", productID); err != nil {
		return Product{}, err
	}
	return call[Product](ctx, c, request{
		action: "Update product",
		method: http.MethodPut,
		path:   pathf("/api/v1/products/%s", productID),
		token:  token,
		body:   input,
	})
}
