package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lensstore/internal/config"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const maxErrorBody = 4 << 10

// MercadoPagoClient implements Provider over the Mercado Pago REST API.
type MercadoPagoClient struct {
	token   string
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewMercadoPagoClient creates a client from cfg. Callers check cfg.Configured first.
func NewMercadoPagoClient(cfg config.MercadoPagoConfig, logger zerolog.Logger) *MercadoPagoClient {
	return &MercadoPagoClient{
		token:   cfg.AccessToken,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		logger:  logger.With().Str("component", "mercadopago").Logger(),
	}
}

type identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type pixPayer struct {
	Email          string         `json:"email"`
	FirstName      string         `json:"first_name,omitempty"`
	LastName       string         `json:"last_name,omitempty"`
	Identification identification `json:"identification"`
}

type pixPaymentBody struct {
	TransactionAmount json.Number `json:"transaction_amount"`
	Description       string      `json:"description"`
	PaymentMethodID   string      `json:"payment_method_id"`
	ExternalReference string      `json:"external_reference"`
	Payer             pixPayer    `json:"payer"`
	NotificationURL   string      `json:"notification_url,omitempty"`
}

type preferenceItemBody struct {
	Title      string      `json:"title"`
	Quantity   int         `json:"quantity"`
	CurrencyID string      `json:"currency_id"`
	UnitPrice  json.Number `json:"unit_price"`
}

type preferencePayer struct {
	Name           string         `json:"name,omitempty"`
	Email          string         `json:"email"`
	Identification identification `json:"identification"`
}

type preferenceBody struct {
	Items             []preferenceItemBody `json:"items"`
	ExternalReference string               `json:"external_reference"`
	Payer             preferencePayer      `json:"payer"`
	NotificationURL   string               `json:"notification_url,omitempty"`
	BackURLs          BackURLs             `json:"back_urls"`
	AutoReturn        string               `json:"auto_return,omitempty"`
}

type paymentResponse struct {
	ID                 ID     `json:"id"`
	Status             string `json:"status"`
	StatusDetail       string `json:"status_detail"`
	ExternalReference  string `json:"external_reference"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (r paymentResponse) toPayment() *Payment {
	return &Payment{
		ID:                string(r.ID),
		Status:            r.Status,
		StatusDetail:      r.StatusDetail,
		ExternalReference: r.ExternalReference,
		QRCode:            r.PointOfInteraction.TransactionData.QRCode,
		QRCodeBase64:      r.PointOfInteraction.TransactionData.QRCodeBase64,
	}
}

type preferenceResponse struct {
	ID        ID     `json:"id"`
	InitPoint string `json:"init_point"`
}

func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// CreatePixPayment creates a Pix charge and returns its QR code.
func (c *MercadoPagoClient) CreatePixPayment(ctx context.Context, req PixPaymentRequest, idempotencyKey string) (*Payment, error) {
	body := pixPaymentBody{
		TransactionAmount: amount(req.Amount),
		Description:       req.Description,
		PaymentMethodID:   "pix",
		ExternalReference: req.ExternalReference,
		Payer: pixPayer{
			Email:          req.Payer.Email,
			FirstName:      req.Payer.FirstName,
			LastName:       req.Payer.LastName,
			Identification: identification{Type: "CPF", Number: DigitsOnly(req.Payer.CPF)},
		},
		NotificationURL: req.NotificationURL,
	}

	var resp paymentResponse
	headers := http.Header{"X-Idempotency-Key": []string{idempotencyKey}}
	if err := c.do(ctx, http.MethodPost, "/v1/payments", headers, body, &resp); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("payment_id", string(resp.ID)).
		Str("status", resp.Status).
		Str("external_reference", req.ExternalReference).
		Msg("pix payment created")

	return resp.toPayment(), nil
}

// CreatePreference prepares a hosted checkout.
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	items := make([]preferenceItemBody, len(req.Items))
	for i, it := range req.Items {
		items[i] = preferenceItemBody{
			Title:      it.Title,
			Quantity:   it.Quantity,
			CurrencyID: "BRL",
			UnitPrice:  amount(it.UnitPrice),
		}
	}

	body := preferenceBody{
		Items:             items,
		ExternalReference: req.ExternalReference,
		Payer: preferencePayer{
			Name:           req.Payer.FullName,
			Email:          req.Payer.Email,
			Identification: identification{Type: "CPF", Number: DigitsOnly(req.Payer.CPF)},
		},
		NotificationURL: req.NotificationURL,
		BackURLs:        req.BackURLs,
		AutoReturn:      req.AutoReturn,
	}

	var resp preferenceResponse
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", nil, body, &resp); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("preference_id", string(resp.ID)).
		Str("external_reference", req.ExternalReference).
		Msg("preference created")

	return &Preference{ID: string(resp.ID), InitPoint: resp.InitPoint}, nil
}

// GetPayment fetches a payment by id.
func (c *MercadoPagoClient) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var resp paymentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toPayment(), nil
}

func (c *MercadoPagoClient) do(ctx context.Context, method, path string, headers http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("mercadopago %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("mercadopago call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode mercadopago response: %w", err)
	}
	return nil
}
