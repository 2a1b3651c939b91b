package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lensstore/internal/middleware"
	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserIDHeader carries the signed-in user set by the upstream auth layer.
const UserIDHeader = "X-User-ID"

const maxBodyBytes = 1 << 20

var errEmptyBody = model.NewDomainError(model.ErrCodeInvalidJSON, "request body is empty")

// statusByCode maps domain error codes onto HTTP status codes.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:         http.StatusBadRequest,
	model.ErrCodeValidation:          http.StatusBadRequest,
	model.ErrCodeNotConfigured:       http.StatusBadRequest,
	model.ErrCodeUpstreamPersistence: http.StatusBadGateway,
	model.ErrCodePaymentProvider:     http.StatusBadGateway,
	model.ErrCodeStockReservation:    http.StatusConflict,
	model.ErrCodeInsufficientStock:   http.StatusConflict,
	model.ErrCodeNotFound:            http.StatusNotFound,
	model.ErrCodeProductNotFound:     http.StatusNotFound,
	model.ErrCodeInvalidSignature:    http.StatusUnauthorized,
	model.ErrCodeUnauthorised:        http.StatusUnauthorized,
	model.ErrCodeForbidden:           http.StatusForbidden,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes a JSON error body with the given status code. The
// correlation id is the request id already set on the response.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Str("code", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: w.Header().Get(middleware.RequestIDHeader),
	})
}

// writeDomainError answers err as JSON using its domain code.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	status, code, message := describeError(err)
	writeError(w, status, code, message, logger)
}

// writePlainError answers err as text/plain using its domain code.
func writePlainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	status, code, message := describeError(err)
	logger.Error().Str("error", message).Str("code", code).Int("status", status).Msg("handler error")
	http.Error(w, message, status)
}

func describeError(err error) (status int, code, message string) {
	code = model.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		return http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error"
	}
	return status, code, err.Error()
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return &model.DomainError{Code: model.ErrCodeInvalidJSON, Message: "invalid JSON body", Err: err}
	}
	return nil
}

// userID reads the caller identity from UserIDHeader.
func userID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if raw == "" {
		return uuid.Nil, model.ErrMissingUser
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.ErrMissingUser
	}
	return id, nil
}

// pathUUID parses the named path wildcard as a uuid.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, model.NewValidationError(fmt.Sprintf("invalid %s format", name))
	}
	return id, nil
}

// baseURL returns the configured site URL, or the origin of r when none is set.
func baseURL(configured string, r *http.Request) string {
	if configured != "" {
		return configured
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme, _, _ = strings.Cut(proto, ",")
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host, _, _ = strings.Cut(fwd, ",")
	}
	return scheme + "://" + strings.TrimSpace(host)
}
