package iotfarm

import (
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	"github.com/shopspring/decimal"
)

// LoginResult is the remote answer to a successful login.
type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

type Product struct {
	ProductID     string              `json:"productId"`
	ProductName   string              `json:"productName"`
	Description   string              `json:"description,omitempty"`
	Price         decimal.Decimal     `json:"price"`
	StockQuantity int                 `json:"stockQuantity"`
	Status        enums.ProductStatus `json:"status"`
	Image         string              `json:"image,omitempty"`
	CategoryName  string              `json:"categoryName,omitempty"`
}

// ProductInput is the body of create/update product.
type ProductInput struct {
	ProductName   string              `json:"productName" validate:"required,max=200"`
	Description   string              `json:"description,omitempty" validate:"max=2000"`
	Price         decimal.Decimal     `json:"price"`
	StockQuantity int                 `json:"stockQuantity" validate:"gte=0"`
	Status        enums.ProductStatus `json:"status" validate:"oneof=0 1"`
	Image         string              `json:"image,omitempty"`
}

type OrderItem struct {
	ProductID     string          `json:"productId,omitempty"`
	ProductName   string          `json:"productName"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	StockQuantity int             `json:"stockQuantity"`
}

// Order mirrors the remote OrderSummary. OrderDetailIDs is positionally parallel to
// OrderItems.
type Order struct {
	OrderID         string          `json:"orderId"`
	CreatedAt       time.Time       `json:"createdAt"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	ShippingAddress string          `json:"shippingAddress"`
	Status          int             `json:"status"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
	OrderItems      []OrderItem     `json:"orderItems"`
	OrderDetailIDs  []string        `json:"orderDetailIds"`
}

type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderInput struct {
	ShippingAddress string      `json:"shippingAddress"`
	OrderItems      []OrderLine `json:"orderItems"`
}

type Payment struct {
	OrderID    string `json:"orderId"`
	PaymentURL string `json:"paymentUrl"`
}

type Feedback struct {
	FeedbackID    string    `json:"feedbackId"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"createdAt"`
	OrderDetailID string    `json:"orderDetailId"`
	ProductID     string    `json:"productId,omitempty"`
	ProductName   string    `json:"productName,omitempty"`
	CustomerName  string    `json:"customerName,omitempty"`
}

// FeedbackInput is the body of create/update feedback.
type FeedbackInput struct {
	Comment       string `json:"comment"`
	Rating        int    `json:"rating"`
	OrderDetailID string `json:"orderDetailId"`
	FeedbackID    string `json:"feedbackId,omitempty"`
}

type Account struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
	Status    int    `json:"status"`
}

type AccountInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required,max=120"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
	Role     string `json:"role" validate:"required,oneof=ADMIN MANAGER STAFF CUSTOMER"`
}

type Crop struct {
	CropID      string    `json:"cropId"`
	CropName    string    `json:"cropName"`
	Description string    `json:"description,omitempty"`
	Quantity    int       `json:"quantity"`
	PlantedAt   time.Time `json:"plantingDate"`
	Status      int       `json:"status"`
}

type CropInput struct {
	CropName    string    `json:"cropName" validate:"required,max=120"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	Quantity    int       `json:"quantity" validate:"gte=0"`
	PlantedAt   time.Time `json:"plantingDate" validate:"required"`
}

type Schedule struct {
	ScheduleID string    `json:"scheduleId"`
	CropID     string    `json:"cropId"`
	StaffEmail string    `json:"staffEmail,omitempty"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Status     int       `json:"status"`
}

type ScheduleInput struct {
	CropID     string    `json:"cropId" validate:"required"`
	StaffEmail string    `json:"staffEmail" validate:"required,email"`
	StartDate  time.Time `json:"startDate" validate:"required"`
	EndDate    time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
}

type Activity struct {
	ActivityID   string    `json:"activityId"`
	ScheduleID   string    `json:"scheduleId"`
	ActivityName string    `json:"activityName"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Status       int       `json:"status"`
}

type ActivityInput struct {
	ScheduleID   string    `json:"scheduleId" validate:"required"`
	ActivityName string    `json:"activityName" validate:"required,max=200"`
	StartDate    time.Time `json:"startDate" validate:"required"`
	EndDate      time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
}
