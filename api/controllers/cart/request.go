package cart

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type updateQuantityRequest struct {
	ProductName string `json:"productName" validate:"required"`
	Quantity    int    `json:"quantity"`
}
