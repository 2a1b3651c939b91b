package handler

import (
	"net/http"

	"lensstore/internal/model"
	"lensstore/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles the checkout endpoints. Errors are answered as
// plain text.
type CheckoutHandler struct {
	service service.CheckoutService
	siteURL string
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a checkout handler. An empty siteURL makes
// callback URLs point at the request origin.
func NewCheckoutHandler(service service.CheckoutService, siteURL string, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		siteURL: siteURL,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Pix handles POST /api/checkout/pix requests.
func (h *CheckoutHandler) Pix(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writePlainError(w, err, h.logger)
		return
	}

	resp, err := h.service.CreatePix(r.Context(), &req, baseURL(h.siteURL, r))
	if err != nil {
		writePlainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Preference handles POST /api/checkout/preference requests.
func (h *CheckoutHandler) Preference(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writePlainError(w, err, h.logger)
		return
	}

	resp, err := h.service.CreatePreference(r.Context(), &req, baseURL(h.siteURL, r))
	if err != nil {
		writePlainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
