package market

import (
	"time"

	"github.com/shopspring/decimal"
)

type Admin struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Seller struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	Password         string    `json:"-"`
	BusinessName     string    `json:"businessName"`
	WarehouseAddress string    `json:"warehouseAddress"`
	BusinessAddress  string    `json:"businessAddress"`
	ZipCode          string    `json:"zipCode"`
	Phone            string    `json:"phone"`
	GST              string    `json:"gst"`
	AdminID          int64     `json:"adminId,omitempty"`
	Approved         bool      `json:"approved"`
	Rejected         bool      `json:"rejected"`
	CreatedAt        time.Time `json:"createdAt"`
}

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

type Product struct {
	ID          int64           `json:"id"`
	SellerID    int64           `json:"sellerId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Status      ProductStatus   `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Order struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"productId"`
	SellerID        int64           `json:"sellerId"`
	UserID          int64           `json:"userId"`
	CustomerName    string          `json:"customerName"`
	Address         string          `json:"address"`
	Quantity        int             `json:"quantity"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	CustomerMessage string          `json:"customerMessage,omitempty"`
	Status          OrderStatus     `json:"status"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// CartItem is one line of a customer's cart. The cart lives as a JSON document
// on the customer row and is cleared inside the checkout transaction.
type CartItem struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Message   string `json:"message,omitempty"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

// OrderDetail joins the snapshots the dashboards display alongside an order.
type OrderDetail struct {
	Order
	ProductName   string `json:"productName"`
	ProductImage  string `json:"productImage,omitempty"`
	Category      string `json:"category,omitempty"`
	BusinessName  string `json:"sellerBusinessName"`
	CustomerEmail string `json:"customerEmail,omitempty"`
}
