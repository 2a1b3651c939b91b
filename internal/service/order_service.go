package service

import (
	"context"
	"fmt"
	"time"

	"lensstore/internal/model"
	"lensstore/internal/outbox"
	"lensstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	eventsTopic string
	logger      zerolog.Logger
}

// NewOrderService creates a new order service. Order events are written to
// the outbox under eventsTopic.
func NewOrderService(orderRepo repository.OrderRepository, eventsTopic string, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		eventsTopic: eventsTopic,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder validates the request and persists a pending_payment order.
func (s *orderService) CreateOrder(ctx context.Context, req *model.CheckoutRequest) (*model.Order, []model.OrderItem, error) {
	if err := s.validateCheckoutRequest(req); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:        uuid.New(),
		UserID:    req.ParsedUserID(),
		Status:    model.OrderStatusPendingPayment,
		Currency:  model.Currency,
		Subtotal:  req.Subtotal(),
		Customer:  req.Customer,
		CreatedAt: now,
		UpdatedAt: now,
	}

	items := make([]model.OrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: orUnknown(it.ProductID),
			VariantID: orUnknown(it.VariantID),
			SKU:       it.SKU,
			Title:     it.Title,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}

	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, nil, model.NewUpstreamPersistenceError("order insert failed", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, nil, model.NewUpstreamPersistenceError("order insert failed", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, nil, model.NewUpstreamPersistenceError("order_items insert failed", err)
	}

	if err = outbox.Insert(ctx, tx, outbox.NewOrderCreated(s.eventsTopic, order, items)); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to write order event")
		return nil, nil, model.NewUpstreamPersistenceError("order event insert failed", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, nil, model.NewUpstreamPersistenceError("order insert failed", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(items)).
		Str("subtotal", order.Subtotal.String()).
		Msg("order created successfully")

	return order, items, nil
}

// validateCheckoutRequest checks the struct tags plus the rules tags cannot express.
func (s *orderService) validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewValidationError("checkout request is required")
	}

	if err := validateStruct(req); err != nil {
		s.logger.Warn().Err(err).Msg("invalid checkout request")
		return err
	}

	if req.UserID != "" && req.ParsedUserID() == nil {
		return model.NewValidationError("user_id must be a UUID")
	}

	for i, it := range req.Items {
		if !it.UnitPrice.IsPositive() {
			s.logger.Warn().
				Int("item_index", i).
				Str("unit_price", it.UnitPrice.String()).
				Msg("invalid unit price")
			return model.NewValidationError(fmt.Sprintf("items[%d].unit_price must be greater than 0", i))
		}
		// prices are stored as NUMERIC(10,2); anything finer would be rounded away
		if !it.UnitPrice.Equal(it.UnitPrice.Truncate(2)) {
			s.logger.Warn().
				Int("item_index", i).
				Str("unit_price", it.UnitPrice.String()).
				Msg("unit price has more than two decimals")
			return model.NewValidationError(fmt.Sprintf("items[%d].unit_price must have at most 2 decimal places", i))
		}
	}

	return nil
}

func orUnknown(id string) string {
	if id == "" {
		return model.UnknownRef
	}
	return id
}
