// Package client talks to the storefront HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lensstore/internal/model"

	"github.com/google/uuid"
)

const maxErrorBody = 4 << 10

// Error is a non-2xx answer from the API. Code is empty for plain-text
// answers, as the checkout endpoints send.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
}

// Client is a storefront API client.
type Client struct {
	baseURL string
	apiKey  string
	userID  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithUser sends the given user id on account requests.
func WithUser(id string) Option {
	return func(c *Client) { c.userID = id }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the API at baseURL.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products lists active products.
func (c *Client) Products(ctx context.Context, limit, offset int) ([]model.Product, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var products []model.Product
	if err := c.do(ctx, http.MethodGet, "/api/products?"+q.Encode(), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches one product with its variants.
func (c *Client) Product(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CheckoutPix starts a Pix checkout.
func (c *Client) CheckoutPix(ctx context.Context, req *model.CheckoutRequest) (*model.PixCheckoutResponse, error) {
	var resp model.PixCheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/checkout/pix", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckoutPreference starts a hosted checkout.
func (c *Client) CheckoutPreference(ctx context.Context, req *model.CheckoutRequest) (*model.PreferenceCheckoutResponse, error) {
	var resp model.PreferenceCheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/api/checkout/preference", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Orders lists the orders of the configured user.
func (c *Client) Orders(ctx context.Context) ([]model.OrderDetail, error) {
	var orders []model.OrderDetail
	if err := c.do(ctx, http.MethodGet, "/api/account/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Reorder merges a past order of the configured user into lines.
func (c *Client) Reorder(ctx context.Context, orderID uuid.UUID, lines []model.CartLine) (*model.ReorderResult, error) {
	var result model.ReorderResult
	path := "/api/account/orders/" + orderID.String() + "/reorder"
	if err := c.do(ctx, http.MethodPost, path, model.ReorderRequest{Lines: lines}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
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
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var body model.ErrorResponse
		if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
			apiErr.Code = body.Error
			apiErr.Message = body.Message
		}
	}
	return apiErr
}

// IsStatus reports whether err is an API error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
