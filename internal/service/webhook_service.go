package service

import (
	"context"

	"lensstore/internal/metrics"
	"lensstore/internal/model"
	"lensstore/internal/payment"
	"lensstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// webhookService implements WebhookService.
type webhookService struct {
	provider payment.Provider
	stock    repository.StockRepository
	status   statusWriter
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewWebhookService creates a webhook service. A nil provider answers every
// notification with a not-configured error.
func NewWebhookService(
	provider payment.Provider,
	orderRepo repository.OrderRepository,
	stock repository.StockRepository,
	eventsTopic string,
	m *metrics.Metrics,
	logger zerolog.Logger,
) WebhookService {
	logger = logger.With().Str("service", "webhook").Logger()
	return &webhookService{
		provider: provider,
		stock:    stock,
		status:   statusWriter{orderRepo: orderRepo, eventsTopic: eventsTopic, logger: logger},
		metrics:  m,
		logger:   logger,
	}
}

// MapPaymentStatus maps a provider payment status onto an order status.
func MapPaymentStatus(status string) model.OrderStatus {
	switch status {
	case payment.StatusApproved:
		return model.OrderStatusPaid
	case payment.StatusCancelled:
		return model.OrderStatusCancelled
	case payment.StatusRejected:
		return model.OrderStatusFailed
	default:
		return model.OrderStatusPendingPayment
	}
}

// Reconcile applies the current state of the notified payment to its order.
// Notifications that do not point at a known order are acknowledged without
// changes. The latest delivery wins.
func (s *webhookService) Reconcile(ctx context.Context, n model.PaymentNotification) (*model.ReconcileResult, error) {
	if s.provider == nil {
		s.metrics.WebhookProcessed(metrics.OutcomeRejected)
		return nil, model.NewNotConfiguredError("Missing MERCADOPAGO_ACCESS_TOKEN")
	}

	ack := &model.ReconcileResult{OK: true}

	if n.PaymentID == "" || (n.Type != "" && n.Type != "payment") {
		s.logger.Debug().Str("type", n.Type).Msg("ignoring notification")
		s.metrics.WebhookProcessed(metrics.OutcomeIgnored)
		return ack, nil
	}

	p, err := s.provider.GetPayment(ctx, n.PaymentID)
	if err != nil {
		s.logger.Error().Err(err).Str("payment_id", n.PaymentID).Msg("failed to fetch payment")
		s.metrics.WebhookProcessed(metrics.OutcomeProviderFail)
		return nil, model.NewPaymentProviderError("Mercado Pago fetch failed", err)
	}

	orderID, err := uuid.Parse(p.ExternalReference)
	if err != nil {
		s.logger.Warn().
			Str("payment_id", n.PaymentID).
			Str("external_reference", p.ExternalReference).
			Msg("payment does not reference an order")
		s.metrics.WebhookProcessed(metrics.OutcomeIgnored)
		return ack, nil
	}

	status := MapPaymentStatus(p.Status)
	found, err := s.status.apply(ctx, orderID, status, n.PaymentID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to apply payment status")
		s.metrics.WebhookProcessed(metrics.OutcomeError)
		return nil, model.NewUpstreamPersistenceError("order update failed", err)
	}
	if !found {
		s.logger.Warn().Str("order_id", orderID.String()).Msg("payment references unknown order")
		s.metrics.WebhookProcessed(metrics.OutcomeIgnored)
		return ack, nil
	}

	if status == model.OrderStatusFailed || status == model.OrderStatusCancelled {
		if err := s.stock.Release(ctx, orderID); err != nil {
			s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to release stock")
			s.metrics.WebhookProcessed(metrics.OutcomeError)
			return nil, model.NewUpstreamPersistenceError("stock release failed", err)
		}
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("payment_id", n.PaymentID).
		Str("payment_status", p.Status).
		Str("status", string(status)).
		Msg("order reconciled")
	s.metrics.WebhookProcessed(metrics.OutcomeSuccess)

	ack.OrderID = &orderID
	ack.Status = status
	return ack, nil
}
