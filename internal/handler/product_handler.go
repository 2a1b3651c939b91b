package handler

import (
	"errors"
	"net/http"
	"strconv"

	"lensstore/internal/model"
	"lensstore/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /api/products requests with pagination.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.queryInt(w, r, "limit", 10)
	if !ok {
		return
	}
	offset, ok := h.queryInt(w, r, "offset", 0)
	if !ok {
		return
	}

	products, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, model.ErrCodeProductNotFound, "product not found", h.logger)
			return
		}
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// CatalogStatus handles GET /api/debug/catalog requests.
func (h *ProductHandler) CatalogStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.CatalogStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to read catalog", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *ProductHandler) queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid "+name+" parameter", h.logger)
		return 0, false
	}
	return v, true
}
