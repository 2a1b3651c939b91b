package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "Reuses caller id", incoming: "mp-delivery-42", wantSame: true},
		{name: "Generates id when missing", incoming: ""},
		{name: "Replaces oversized id", incoming: string(bytes.Repeat([]byte("x"), 200))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = RequestIDFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
			if tt.wantSame {
				assert.Equal(t, tt.incoming, seen)
				return
			}
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
		})
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		expectedStatus int
		expectHandler  bool
	}{
		{
			name:           "Preflight request",
			method:         http.MethodOptions,
			expectedStatus: http.StatusNoContent,
			expectHandler:  false,
		},
		{
			name:           "GET request",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:           "PUT request",
			method:         http.MethodPut,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/account/profile", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, PUT, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type, X-API-Key, X-User-ID, X-Request-ID", w.Header().Get("Access-Control-Allow-Headers"))
			assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
		})
	}
}

func TestAPIKeyAuth(t *testing.T) {
	logger := zerolog.Nop()
	validAPIKey := "test-api-key-123"

	tests := []struct {
		name           string
		path           string
		apiKey         string
		expectedStatus int
		expectMessage  string
	}{
		{
			name:           "Valid API key",
			path:           "/api/products",
			apiKey:         validAPIKey,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid API key",
			path:           "/api/products",
			apiKey:         "invalid-key",
			expectedStatus: http.StatusUnauthorized,
			expectMessage:  "invalid API key",
		},
		{
			name:           "Key prefix is not enough",
			path:           "/api/products",
			apiKey:         "test-api-key",
			expectedStatus: http.StatusUnauthorized,
			expectMessage:  "invalid API key",
		},
		{
			name:           "Missing API key",
			path:           "/api/checkout/pix",
			expectedStatus: http.StatusUnauthorized,
			expectMessage:  "missing API key",
		},
		{
			name:           "Health check bypasses auth",
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Webhook bypasses auth",
			path:           "/api/mercadopago/webhook",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Metrics bypasses auth",
			path:           "/metrics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Public path does not open sub paths",
			path:           "/health/details",
			expectedStatus: http.StatusUnauthorized,
			expectMessage:  "missing API key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := RequestID(APIKeyAuth(validAPIKey, logger, "/health", "/metrics", "/api/mercadopago/webhook")(next))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectMessage == "", handlerCalled)
			if tt.expectMessage == "" {
				return
			}

			var resp model.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, model.ErrCodeUnauthorised, resp.Error)
			assert.Equal(t, tt.expectMessage, resp.Message)
			assert.Equal(t, w.Header().Get(RequestIDHeader), resp.CorrelationID)
		})
	}
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name          string
		handlerStatus int
		expectedLevel string
	}{
		{name: "Successful request", handlerStatus: http.StatusOK, expectedLevel: "info"},
		{name: "Client error", handlerStatus: http.StatusConflict, expectedLevel: "warn"},
		{name: "Server error", handlerStatus: http.StatusBadGateway, expectedLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/checkout/{method}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})
			handler := RequestID(Logging(logger)(mux))

			req := httptest.NewRequest(http.MethodPost, "/api/checkout/pix", nil)
			req.Header.Set(RequestIDHeader, "req-1")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.handlerStatus, w.Code)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.expectedLevel, entry["level"])
			assert.Equal(t, "/api/checkout/pix", entry["path"])
			assert.Equal(t, "POST /api/checkout/{method}", entry["route"])
			assert.Equal(t, float64(tt.handlerStatus), entry["status"])
			assert.Equal(t, "req-1", entry["request_id"])
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		shouldPanic    bool
		panicValue     any
		expectedStatus int
	}{
		{
			name:           "No panic",
			shouldPanic:    false,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Panic with string",
			shouldPanic:    true,
			panicValue:     "something went wrong",
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "Panic with error",
			shouldPanic:    true,
			panicValue:     assert.AnError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequestID(Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.shouldPanic {
					panic(tt.panicValue)
				}
				w.WriteHeader(http.StatusOK)
			})))

			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if !tt.shouldPanic {
				return
			}

			var resp model.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, model.ErrCodeInternalError, resp.Error)
			assert.Equal(t, "internal server error", resp.Message)
			assert.NotEmpty(t, resp.CorrelationID)
		})
	}
}

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rw.statusCode)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Same(t, w, rw.Unwrap())
}
