package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"lensstore/internal/metrics"
	"lensstore/internal/model"
	"lensstore/internal/payment"
	"lensstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Payment methods, used as metric labels.
const (
	MethodPix        = "pix"
	MethodPreference = "preference"
)

// MockPaymentID is the payment id recorded for hosted checkouts run without provider credentials.
const MockPaymentID = "mock_123"

const webhookPath = "/api/mercadopago/webhook"

// checkoutService implements CheckoutService.
type checkoutService struct {
	orders    OrderService
	orderRepo repository.OrderRepository
	stock     repository.StockRepository
	provider  payment.Provider
	status    statusWriter
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewCheckoutService creates a checkout service. A nil provider means the
// payment provider is not configured: Pix is refused and the hosted
// checkout runs in mock mode.
func NewCheckoutService(
	orders OrderService,
	orderRepo repository.OrderRepository,
	stock repository.StockRepository,
	provider payment.Provider,
	eventsTopic string,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CheckoutService {
	logger = logger.With().Str("service", "checkout").Logger()
	return &checkoutService{
		orders:    orders,
		orderRepo: orderRepo,
		stock:     stock,
		provider:  provider,
		status:    statusWriter{orderRepo: orderRepo, eventsTopic: eventsTopic, logger: logger},
		metrics:   m,
		logger:    logger,
	}
}

// CreatePix creates the order, reserves its stock and opens a Pix charge.
func (s *checkoutService) CreatePix(ctx context.Context, req *model.CheckoutRequest, baseURL string) (*model.PixCheckoutResponse, error) {
	if s.provider == nil {
		s.metrics.CheckoutCompleted(MethodPix, metrics.OutcomeRejected)
		return nil, model.NewNotConfiguredError("Missing MERCADOPAGO_ACCESS_TOKEN")
	}

	order, _, err := s.intake(ctx, MethodPix, req)
	if err != nil {
		return nil, err
	}
	orderID := order.ID.String()

	first, last := payment.SplitName(order.Customer.FullName)
	p, err := s.provider.CreatePixPayment(ctx, payment.PixPaymentRequest{
		Amount:            order.Subtotal,
		Description:       "Pedido " + orderID,
		ExternalReference: orderID,
		NotificationURL:   joinURL(baseURL, webhookPath),
		Payer: payment.Payer{
			Email:     order.Customer.Email,
			FirstName: first,
			LastName:  last,
			FullName:  order.Customer.FullName,
			CPF:       order.Customer.CPF,
		},
	}, orderID)
	if err == nil && p.QRCode == "" {
		err = errors.New("payment has no QR code")
	}
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("pix payment creation failed")
		s.compensate(ctx, order.ID)
		s.metrics.CheckoutCompleted(MethodPix, metrics.OutcomeProviderFail)
		return nil, model.NewPaymentProviderError("Mercado Pago create pix failed", err)
	}

	if err := s.orderRepo.SetPaymentID(ctx, order.ID, p.ID); err != nil {
		s.logger.Error().Err(err).
			Str("order_id", orderID).
			Str("payment_id", p.ID).
			Msg("failed to record payment id")
	}

	s.logger.Info().
		Str("order_id", orderID).
		Str("payment_id", p.ID).
		Msg("pix checkout created")
	s.metrics.CheckoutCompleted(MethodPix, metrics.OutcomeSuccess)

	return &model.PixCheckoutResponse{
		OrderID:      order.ID,
		PaymentID:    p.ID,
		QRCode:       p.QRCode,
		QRCodeBase64: p.QRCodeBase64,
	}, nil
}

// CreatePreference creates the order, reserves its stock and prepares a
// hosted checkout, or settles the order at once in mock mode.
func (s *checkoutService) CreatePreference(ctx context.Context, req *model.CheckoutRequest, baseURL string) (*model.PreferenceCheckoutResponse, error) {
	order, items, err := s.intake(ctx, MethodPreference, req)
	if err != nil {
		return nil, err
	}
	orderID := order.ID.String()

	if s.provider == nil {
		return s.mockPreference(ctx, order.ID, baseURL)
	}

	backURL := func(status string) string {
		return resultURL(baseURL, "mode", model.CheckoutModeMercadoPago, "status", status, "order_id", orderID)
	}

	lines := make([]payment.PreferenceItem, len(items))
	for i, it := range items {
		lines[i] = payment.PreferenceItem{Title: it.Title, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}

	pref, err := s.provider.CreatePreference(ctx, payment.PreferenceRequest{
		Items:             lines,
		ExternalReference: orderID,
		NotificationURL:   joinURL(baseURL, webhookPath),
		Payer: payment.Payer{
			Email:    order.Customer.Email,
			FullName: order.Customer.FullName,
			CPF:      order.Customer.CPF,
		},
		BackURLs: payment.BackURLs{
			Success: backURL("success"),
			Pending: backURL("pending"),
			Failure: backURL("failure"),
		},
		AutoReturn: payment.StatusApproved,
	})
	if err == nil && pref.InitPoint == "" {
		err = errors.New("preference has no init_point")
	}
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("preference creation failed")
		s.compensate(ctx, order.ID)
		s.metrics.CheckoutCompleted(MethodPreference, metrics.OutcomeProviderFail)
		return nil, model.NewPaymentProviderError("Mercado Pago create preference failed", err)
	}

	if pref.ID != "" {
		if err := s.orderRepo.SetPreferenceID(ctx, order.ID, pref.ID); err != nil {
			s.logger.Error().Err(err).
				Str("order_id", orderID).
				Str("preference_id", pref.ID).
				Msg("failed to record preference id")
		}
	}

	s.logger.Info().
		Str("order_id", orderID).
		Str("preference_id", pref.ID).
		Msg("hosted checkout created")
	s.metrics.CheckoutCompleted(MethodPreference, metrics.OutcomeSuccess)

	return &model.PreferenceCheckoutResponse{InitPoint: pref.InitPoint, Mode: model.CheckoutModeMercadoPago}, nil
}

func (s *checkoutService) mockPreference(ctx context.Context, orderID uuid.UUID, baseURL string) (*model.PreferenceCheckoutResponse, error) {
	if _, err := s.status.apply(ctx, orderID, model.OrderStatusPaid, MockPaymentID); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to settle mock order")
		s.compensate(ctx, orderID)
		s.metrics.CheckoutCompleted(MethodPreference, metrics.OutcomeError)
		return nil, model.NewUpstreamPersistenceError("order update failed", err)
	}

	s.logger.Info().Str("order_id", orderID.String()).Msg("mock checkout settled")
	s.metrics.CheckoutCompleted(MethodPreference, metrics.OutcomeMock)

	return &model.PreferenceCheckoutResponse{
		InitPoint: resultURL(baseURL,
			"mode", model.CheckoutModeMock,
			"status", payment.StatusApproved,
			"payment_id", MockPaymentID,
			"order_id", orderID.String()),
		Mode: model.CheckoutModeMock,
	}, nil
}

// intake stores the order and reserves its stock. A failed reservation
// marks the order failed.
func (s *checkoutService) intake(ctx context.Context, method string, req *model.CheckoutRequest) (*model.Order, []model.OrderItem, error) {
	order, items, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		s.metrics.CheckoutCompleted(method, metrics.OutcomeRejected)
		return nil, nil, err
	}

	if err := s.stock.Reserve(ctx, order.ID); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("stock reservation failed")
		s.markFailed(context.WithoutCancel(ctx), order.ID)
		s.metrics.CheckoutCompleted(method, metrics.OutcomeOutOfStock)
		return nil, nil, model.NewStockReservationError("Stock reservation failed", err)
	}

	return order, items, nil
}

// compensate returns reserved stock and marks the order failed. Failures
// are logged so the caller still sees the original error.
func (s *checkoutService) compensate(ctx context.Context, orderID uuid.UUID) {
	ctx = context.WithoutCancel(ctx)

	if err := s.stock.Release(ctx, orderID); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to release stock")
	}
	s.markFailed(ctx, orderID)
}

// markFailed moves the order to failed and records the order.failed event.
func (s *checkoutService) markFailed(ctx context.Context, orderID uuid.UUID) {
	found, err := s.status.apply(ctx, orderID, model.OrderStatusFailed, "")
	switch {
	case err != nil:
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to mark order failed")
	case !found:
		s.logger.Error().Str("order_id", orderID.String()).Msg("order vanished before it could be marked failed")
	}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// resultURL builds <base>/checkout/result with the query pairs in order.
func resultURL(base string, pairs ...string) string {
	var q strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if q.Len() > 0 {
			q.WriteByte('&')
		}
		q.WriteString(url.QueryEscape(pairs[i]))
		q.WriteByte('=')
		q.WriteString(url.QueryEscape(pairs[i+1]))
	}
	return joinURL(base, "/checkout/result") + "?" + q.String()
}
