package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"lensstore/internal/model"
	"lensstore/internal/payment"
	"lensstore/internal/service"

	"github.com/rs/zerolog"
)

// notification is the provider-shaped webhook body. Mercado Pago sends
// either {type, data.id} or the legacy {topic, id}.
type notification struct {
	Type  string     `json:"type"`
	Topic string     `json:"topic"`
	ID    payment.ID `json:"id"`
	Data  struct {
		ID payment.ID `json:"id"`
	} `json:"data"`
}

// WebhookHandler receives payment notifications.
type WebhookHandler struct {
	service service.WebhookService
	secret  string
	logger  zerolog.Logger
}

// NewWebhookHandler creates a webhook handler. A non-empty secret enables
// x-signature verification.
func NewWebhookHandler(service service.WebhookService, secret string, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		secret:  secret,
		logger:  logger.With().Str("handler", "webhook").Logger(),
	}
}

// Handle handles POST /api/mercadopago/webhook requests.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	n := parseNotification(r, h.logger)

	if h.secret != "" {
		sig := r.Header.Get("x-signature")
		if !payment.VerifySignature(h.secret, sig, r.Header.Get("x-request-id"), n.PaymentID) {
			writeDomainError(w, model.ErrInvalidSignature, h.logger)
			return
		}
	}

	result, err := h.service.Reconcile(r.Context(), n)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parseNotification reads the body first and falls back to the query
// string for anything the body did not carry. A malformed body is treated
// as empty.
func parseNotification(r *http.Request, logger zerolog.Logger) model.PaymentNotification {
	var body notification
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			logger.Debug().Err(err).Msg("webhook body is not JSON")
			body = notification{}
		}
	}

	q := r.URL.Query()
	n := model.PaymentNotification{
		Type:      firstNonEmpty(body.Type, body.Topic, q.Get("type"), q.Get("topic")),
		PaymentID: firstNonEmpty(string(body.Data.ID), string(body.ID), q.Get("data.id"), q.Get("id")),
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
