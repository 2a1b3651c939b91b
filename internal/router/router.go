package router

import (
	"net/http"

	"lensstore/internal/handler"
	"lensstore/internal/metrics"
	"lensstore/internal/middleware"

	"github.com/rs/zerolog"
)

// Paths reachable without an API key.
const (
	HealthPath  = "/health"
	MetricsPath = "/metrics"
	WebhookPath = "/api/mercadopago/webhook"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Product  *handler.ProductHandler
	Checkout *handler.CheckoutHandler
	Webhook  *handler.WebhookHandler
	Account  *handler.AccountHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, m *metrics.Metrics, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET "+HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	if m != nil {
		mux.Handle("GET "+MetricsPath, m.Handler())
	}

	mux.HandleFunc("GET /api/products", h.Product.GetAll)
	mux.HandleFunc("GET /api/products/{id}", h.Product.GetByID)
	mux.HandleFunc("GET /api/debug/catalog", h.Product.CatalogStatus)

	mux.HandleFunc("POST /api/checkout/pix", h.Checkout.Pix)
	mux.HandleFunc("POST /api/checkout/preference", h.Checkout.Preference)
	mux.HandleFunc("POST "+WebhookPath, h.Webhook.Handle)

	mux.HandleFunc("GET /api/account/orders", h.Account.ListOrders)
	mux.HandleFunc("GET /api/account/orders/{id}", h.Account.GetOrder)
	mux.HandleFunc("POST /api/account/orders/{id}/reorder", h.Account.Reorder)
	mux.HandleFunc("GET /api/account/profile", h.Account.GetProfile)
	mux.HandleFunc("PUT /api/account/profile", h.Account.UpdateProfile)
	mux.HandleFunc("PUT /api/account/password", h.Account.ChangePassword)

	// Apply middleware in order: RequestID -> Recovery -> Logging -> CORS -> APIKeyAuth -> Metrics
	var handler http.Handler = mux
	handler = m.Middleware(handler)
	handler = middleware.APIKeyAuth(apiKey, logger, HealthPath, MetricsPath, WebhookPath)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
