package cart

import (
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	"github.com/shopspring/decimal"
)

// Item is one cart line. ProductName is the de facto unique key within a cart.
type Item struct {
	ProductID     string              `json:"productId"`
	ProductName   string              `json:"productName"`
	Price         decimal.Decimal     `json:"price"`
	Quantity      int                 `json:"quantity"`
	StockQuantity int                 `json:"stockQuantity"`
	Status        enums.ProductStatus `json:"status"`
}

// Product is what gets added to a cart; stock and status are snapshotted at add time.
type Product struct {
	ProductID     string
	ProductName   string
	Price         decimal.Decimal
	StockQuantity int
	Status        enums.ProductStatus
}

// Cart is the read view consumed by the browser and checkout.
type Cart struct {
	Items            []Item          `json:"items"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	TotalItems       int             `json:"totalItems"`
	CheckoutEligible bool            `json:"checkoutEligible"`
}

// Result reports the outcome of a quantity change. Message is meant for the caller
// to show; it is not pushed as a toast.
type Result struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	MaxAvailable int    `json:"maxAvailable,omitempty"`
	Cart         Cart   `json:"cart"`
}

// NewCart derives totals and checkout eligibility from items.
func NewCart(items []Item) Cart {
	view := Cart{
		Items:            make([]Item, 0, len(items)),
		TotalPrice:       decimal.Zero,
		CheckoutEligible: len(items) > 0,
	}
	for _, item := range items {
		view.Items = append(view.Items, item)
		view.TotalPrice = view.TotalPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		view.TotalItems += item.Quantity
		if item.Quantity > item.StockQuantity || !item.Status.IsAvailable() {
			view.CheckoutEligible = false
		}
	}
	return view
}

func indexOf(items []Item, productName string) int {
	for i, item := range items {
		if item.ProductName == productName {
			return i
		}
	}
	return -1
}
