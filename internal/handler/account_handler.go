package handler

import (
	"errors"
	"net/http"

	"lensstore/internal/model"
	"lensstore/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AccountHandler handles the signed-in customer endpoints. Every route
// requires the UserIDHeader.
type AccountHandler struct {
	service service.AccountService
	logger  zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(service service.AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger.With().Str("handler", "account").Logger(),
	}
}

// ListOrders handles GET /api/account/orders requests.
func (h *AccountHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.user(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListOrders(r.Context(), uid)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /api/account/orders/{id} requests.
func (h *AccountHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.user(w, r)
	if !ok {
		return
	}
	orderID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), uid, orderID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Reorder handles POST /api/account/orders/{id}/reorder requests. The body
// carries the caller's current cart; an empty body means an empty cart.
func (h *AccountHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.user(w, r)
	if !ok {
		return
	}
	orderID, err := pathUUID(r, "id")
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var req model.ReorderRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeDomainError(w, err, h.logger)
		return
	}

	result, err := h.service.Reorder(r.Context(), uid, orderID, req.Lines)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetProfile handles GET /api/account/profile requests.
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.user(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), uid)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/account/profile requests.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.user(w, r)
	if !ok {
		return
	}

	var profile model.Profile
	if err := decodeJSON(w, r, &profile); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	saved, err := h.service.UpdateProfile(r.Context(), uid, &profile)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// ChangePassword handles PUT /api/account/password requests.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.user(w, r)
	if !ok {
		return
	}

	var req model.PasswordChangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if err := h.service.ChangePassword(r.Context(), uid, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) user(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	uid, err := userID(r)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return uuid.Nil, false
	}
	return uid, true
}
