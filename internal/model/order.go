package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is the only currency the storefront sells in.
const Currency = "BRL"

// UnknownRef replaces product or variant ids absent from a checkout line.
const UnknownRef = "unknown"

// OrderStatus is the lifecycle status of an order.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusFailed         OrderStatus = "failed"
	OrderStatusRefunded       OrderStatus = "refunded"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPendingPayment, OrderStatusPaid, OrderStatusCancelled, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

// Customer is the buyer snapshot stored with an order.
type Customer struct {
	FullName     string `json:"fullName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	CPF          string `json:"cpf" validate:"required"`
	Phone        string `json:"phone"`
	CEP          string `json:"cep"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// Order represents a customer order.
type Order struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	Status         OrderStatus     `json:"status" db:"status"`
	Currency       string          `json:"currency" db:"currency"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	Customer       Customer        `json:"customer" db:"customer"`
	MPPaymentID    *string         `json:"mp_payment_id,omitempty" db:"mp_payment_id"`
	MPPreferenceID *string         `json:"mp_preference_id,omitempty" db:"mp_preference_id"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem is an immutable line snapshot of an order.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID string          `json:"product_id" db:"product_id"`
	VariantID string          `json:"variant_id" db:"variant_id"`
	SKU       string          `json:"sku" db:"sku"`
	Title     string          `json:"title" db:"title"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// LineTotal returns unit price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderDetail is an order together with its items.
type OrderDetail struct {
	Order
	Items []OrderItem `json:"items"`
}
