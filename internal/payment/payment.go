// Package payment talks to the Mercado Pago API.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Provider creates and reads payments at the payment provider.
type Provider interface {
	// CreatePixPayment creates a Pix charge. Repeating a call with the same
	// idempotency key returns the original charge.
	CreatePixPayment(ctx context.Context, req PixPaymentRequest, idempotencyKey string) (*Payment, error)

	// CreatePreference prepares a hosted checkout.
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)

	// GetPayment fetches the current state of a payment.
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

// Payer identifies the buyer at the provider.
type Payer struct {
	Email     string
	FirstName string
	LastName  string
	FullName  string
	CPF       string
}

// PixPaymentRequest describes a Pix charge.
type PixPaymentRequest struct {
	Amount            decimal.Decimal
	Description       string
	ExternalReference string
	NotificationURL   string
	Payer             Payer
}

// PreferenceItem is one line of a hosted checkout.
type PreferenceItem struct {
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// BackURLs are the pages the hosted checkout returns to.
type BackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

// PreferenceRequest describes a hosted checkout.
type PreferenceRequest struct {
	Items             []PreferenceItem
	ExternalReference string
	NotificationURL   string
	Payer             Payer
	BackURLs          BackURLs
	AutoReturn        string
}

// Payment is the provider view of a payment.
type Payment struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
	QRCode            string
	QRCodeBase64      string
}

// Preference is a prepared hosted checkout.
type Preference struct {
	ID        string
	InitPoint string
}

// Payment statuses reported by Mercado Pago.
const (
	StatusApproved  = "approved"
	StatusPending   = "pending"
	StatusInProcess = "in_process"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
)

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercadopago: status %d: %s", e.StatusCode, e.Body)
}

// ID is a provider identifier that may arrive as a JSON string or number.
type ID string

// UnmarshalJSON accepts "123", 123 and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// SplitName splits a full name into a given name (first token) and a
// family name (the remaining tokens).
func SplitName(full string) (first, last string) {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// DigitsOnly strips everything but ASCII digits, e.g. from a CPF.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
