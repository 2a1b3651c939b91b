package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const checkoutBody = `{
	"customer": {"fullName": "Maria da Silva", "email": "maria@example.com", "cpf": "12345678909"},
	"currency": "BRL",
	"items": [{"title": "Biofinity (6) (SPH -1.25)", "sku": "BIO6--1.25", "product_id": "biofinity-6", "variant_id": "bio-006--1.25", "quantity": 2, "unit_price": 119.90}]
}`

func TestCheckoutHandler_Pix(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.PixCheckoutResponse
		mockError      error
		expectService  bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			body:           checkoutBody,
			mockReturn:     &model.PixCheckoutResponse{OrderID: orderID, PaymentID: "123", QRCode: "qr", QRCodeBase64: "b64"},
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid JSON",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid JSON body",
		},
		{
			name:           "Empty body",
			body:           "",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "request body is empty",
		},
		{
			name:           "Validation error",
			body:           checkoutBody,
			mockError:      model.NewValidationError("items[0].quantity must be greater than 0"),
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "items[0].quantity must be greater than 0",
		},
		{
			name:           "Not configured",
			body:           checkoutBody,
			mockError:      model.NewNotConfiguredError("Missing MERCADOPAGO_ACCESS_TOKEN"),
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Missing MERCADOPAGO_ACCESS_TOKEN",
		},
		{
			name:           "Stock reservation conflict",
			body:           checkoutBody,
			mockError:      model.NewStockReservationError("Stock reservation failed", model.ErrInsufficientStock),
			expectService:  true,
			expectedStatus: http.StatusConflict,
			expectedBody:   "Stock reservation failed",
		},
		{
			name:           "Persistence failure",
			body:           checkoutBody,
			mockError:      model.NewUpstreamPersistenceError("order insert failed", errors.New("conn refused")),
			expectService:  true,
			expectedStatus: http.StatusBadGateway,
			expectedBody:   "order insert failed",
		},
		{
			name:           "Provider failure",
			body:           checkoutBody,
			mockError:      model.NewPaymentProviderError("Mercado Pago create pix failed", errors.New("401")),
			expectService:  true,
			expectedStatus: http.StatusBadGateway,
			expectedBody:   "Mercado Pago create pix failed",
		},
		{
			name:           "Unexpected error",
			body:           checkoutBody,
			mockError:      errors.New("boom"),
			expectService:  true,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCheckoutService)
			handler := NewCheckoutHandler(mockService, "https://shop.example", zerolog.Nop())

			if tt.expectService {
				mockService.On("CreatePix", mock.Anything, mock.MatchedBy(func(r *model.CheckoutRequest) bool {
					return len(r.Items) == 1 && r.Items[0].UnitPrice.String() == "119.9" && r.Items[0].VariantID == "bio-006--1.25"
				}), "https://shop.example").Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/checkout/pix", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.Pix(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, orderID.String(), resp["order_id"])
				assert.Equal(t, "qr", resp["qr_code"])
				assert.Equal(t, "b64", resp["qr_code_base64"])
			} else {
				assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "CreatePix", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCheckoutHandler_Preference(t *testing.T) {
	mockService := new(MockCheckoutService)
	handler := NewCheckoutHandler(mockService, "", zerolog.Nop())

	mockService.On("CreatePreference", mock.Anything, mock.Anything, "https://store.example").
		Return(&model.PreferenceCheckoutResponse{InitPoint: "https://store.example/checkout/result?mode=mock", Mode: model.CheckoutModeMock}, nil)

	req := httptest.NewRequest(http.MethodPost, "http://internal:8080/api/checkout/preference", strings.NewReader(checkoutBody))
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "store.example")
	w := httptest.NewRecorder()

	handler.Preference(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"init_point":"https://store.example/checkout/result?mode=mock","mode":"mock"}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestCheckoutHandler_Preference_Error(t *testing.T) {
	mockService := new(MockCheckoutService)
	handler := NewCheckoutHandler(mockService, "https://shop.example", zerolog.Nop())
	mockService.On("CreatePreference", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, model.NewPaymentProviderError("Mercado Pago create preference failed", errors.New("timeout")))

	w := httptest.NewRecorder()
	handler.Preference(w, httptest.NewRequest(http.MethodPost, "/api/checkout/preference", strings.NewReader(checkoutBody)))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "create preference failed")
}
