package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeUpstreamPersistence = "UPSTREAM_PERSISTENCE_ERROR"
	ErrCodeStockReservation    = "STOCK_RESERVATION_ERROR"
	ErrCodePaymentProvider     = "PAYMENT_PROVIDER_ERROR"
	ErrCodeNotConfigured       = "NOT_CONFIGURED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInvalidSignature    = "INVALID_SIGNATURE"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a business error carrying an API error code.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports a malformed or incomplete request.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: ErrCodeValidation, Message: message}
}

// NewUpstreamPersistenceError reports a failed store write.
func NewUpstreamPersistenceError(message string, err error) *DomainError {
	return &DomainError{Code: ErrCodeUpstreamPersistence, Message: message, Err: err}
}

// NewStockReservationError reports insufficient stock or a reservation conflict.
func NewStockReservationError(message string, err error) *DomainError {
	return &DomainError{Code: ErrCodeStockReservation, Message: message, Err: err}
}

// NewPaymentProviderError reports a failed call to the payment provider.
func NewPaymentProviderError(message string, err error) *DomainError {
	return &DomainError{Code: ErrCodePaymentProvider, Message: message, Err: err}
}

// NewNotConfiguredError reports missing credentials or backend configuration.
func NewNotConfiguredError(message string) *DomainError {
	return &DomainError{Code: ErrCodeNotConfigured, Message: message}
}

// CodeOf returns the code of the first DomainError in err's chain,
// or ErrCodeInternalError when there is none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternalError
}

// Common domain errors
var (
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound     = NewDomainError(ErrCodeNotFound, "Order not found")
	ErrUserNotFound      = NewDomainError(ErrCodeNotFound, "User not found")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock for one or more items")
	ErrReservationClosed = NewDomainError(ErrCodeStockReservation, "Stock reservation already released")
	ErrInvalidSignature  = NewDomainError(ErrCodeInvalidSignature, "Webhook signature mismatch")
	ErrMissingUser       = NewDomainError(ErrCodeUnauthorised, "Missing or invalid user identity")
)
