package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ValidOrderStatus reports whether status is a known order status
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ShippingAddress is embedded in an order at checkout time
type ShippingAddress struct {
	Name       string `bson:"name" json:"name"`
	Address    string `bson:"address" json:"address"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postal_code" json:"postal_code"`
	Country    string `bson:"country" json:"country"`
}

// IsZero reports whether no address field is set
func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

// Order represents a user's order
type Order struct {
	ID              string          `bson:"_id" json:"id"`
	UserID          string          `bson:"user_id" json:"user_id"`
	Status          string          `bson:"status" json:"status"`
	Total           decimal.Decimal `bson:"total" json:"total"`
	ShippingAddress ShippingAddress `bson:"shipping_address" json:"shipping_address"`
	PaymentMethod   string          `bson:"payment_method" json:"payment_method"`
	CreatedAt       time.Time       `bson:"created_at" json:"created_at"`
	Items           []OrderItem     `bson:"-" json:"items,omitempty"`
}

// OrderItem snapshots a product's price at purchase time
type OrderItem struct {
	ID        string          `bson:"_id" json:"id"`
	OrderID   string          `bson:"order_id" json:"order_id"`
	ProductID string          `bson:"product_id" json:"product_id"`
	Quantity  int             `bson:"quantity" json:"quantity"`
	Price     decimal.Decimal `bson:"price" json:"price"`
	Product   *Product        `bson:"-" json:"product,omitempty"`
}

// CheckoutRequest records a processed idempotency key
type CheckoutRequest struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	OrderID   string    `bson:"order_id" json:"order_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
