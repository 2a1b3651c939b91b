package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutItem is one cart line submitted at checkout.
type CheckoutItem struct {
	ProductID string          `json:"product_id,omitempty"`
	VariantID string          `json:"variant_id,omitempty"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal returns unit price times quantity.
func (i CheckoutItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CheckoutRequest is the body of both checkout endpoints.
type CheckoutRequest struct {
	UserID   string         `json:"user_id,omitempty" validate:"omitempty,uuid"`
	Currency string         `json:"currency" validate:"eq=BRL"`
	Customer Customer       `json:"customer" validate:"required"`
	Items    []CheckoutItem `json:"items" validate:"min=1,dive"`
}

// ParsedUserID returns the optional owner of the order.
func (r *CheckoutRequest) ParsedUserID() *uuid.UUID {
	if r.UserID == "" {
		return nil
	}
	id, err := uuid.Parse(r.UserID)
	if err != nil {
		return nil
	}
	return &id
}

// Subtotal sums unit price times quantity over all items.
func (r *CheckoutRequest) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range r.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// PixCheckoutResponse is returned after a Pix charge was created.
type PixCheckoutResponse struct {
	OrderID      uuid.UUID `json:"order_id"`
	PaymentID    string    `json:"payment_id"`
	QRCode       string    `json:"qr_code"`
	QRCodeBase64 string    `json:"qr_code_base64"`
}

// Checkout modes of the hosted checkout.
const (
	CheckoutModeMock        = "mock"
	CheckoutModeMercadoPago = "mercadopago"
)

// PreferenceCheckoutResponse is returned after a hosted checkout was prepared.
type PreferenceCheckoutResponse struct {
	InitPoint string `json:"init_point"`
	Mode      string `json:"mode"`
}

// PaymentNotification is the decoded webhook delivery.
type PaymentNotification struct {
	Type      string
	PaymentID string
}

// ReconcileResult is the webhook acknowledgement body.
type ReconcileResult struct {
	OK      bool        `json:"ok"`
	OrderID *uuid.UUID  `json:"order_id,omitempty"`
	Status  OrderStatus `json:"status,omitempty"`
}
