package iotfarm

import (
	"context"
	"net/http"
)

func (c *Client) CreateFeedback(ctx context.Context, token string, input FeedbackInput) (Feedback, error) {
	input.FeedbackID = ""
	return call[Feedback](ctx, c, request{
		action: "Create feedback",
		method: http.MethodPost,
		path:   "/api/v1/feedbacks",
		token:  token,
		body:   input,
	})
}

func (c *Client) UpdateFeedback(ctx context.Context, token string, input FeedbackInput) (Feedback, error) {
	if err := requireID("Update feedback", "feedback id", input.FeedbackID); err != nil {
		return Feedback{}, err
	}
	return call[Feedback](ctx, c, request{
		action: "Update feedback",
		method: http.MethodPut,
		path:   pathf("/api/v1/feedbacks/%s", input.FeedbackID),
		token:  token,
		body:   input,
	})
}

func (c *Client) FeedbackByOrder(ctx context.Context, token, orderID string) ([]Feedback, error) {
	if err := requireID("Load feedback", "order id", orderID); err != nil {
		return nil, err
	}
	return call[[]Feedback](ctx, c, request{
		action: "Load feedback",
		method: http.MethodGet,
		path:   pathf("/api/v1/feedbacks/order/%s", orderID),
		token:  token,
	})
}

func (c *Client) FeedbackByProduct(ctx context.Context, productID string) ([]Feedback, error) {
	if err := requireID("Load feedback", "product id", productID); err != nil {
		return nil, err
	}
	return call[[]Feedback](ctx, c, request{
		action: "Load feedback",
		method: http.MethodGet,
		path:   pathf("/api/v1/feedbacks/product/%s", productID),
	})
}
