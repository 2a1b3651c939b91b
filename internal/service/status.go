package service

import (
	"context"

	"lensstore/internal/model"
	"lensstore/internal/outbox"
	"lensstore/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// statusWriter applies a status change and its outbox event in one
// transaction. Webhooks and failed checkouts both go through it.
type statusWriter struct {
	orderRepo   repository.OrderRepository
	eventsTopic string
	logger      zerolog.Logger
}

// apply reports false when the order does not exist.
func (w statusWriter) apply(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, paymentID string) (found bool, err error) {
	tx, err := w.orderRepo.BeginTx(ctx)
	if err != nil {
		return false, err
	}

	defer func() {
		if err != nil || !found {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				w.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	found, err = w.orderRepo.ApplyPayment(ctx, tx, orderID, status, paymentID)
	if err != nil || !found {
		return found, err
	}

	if err = outbox.Insert(ctx, tx, outbox.NewOrderStatusChanged(w.eventsTopic, orderID, status, paymentID)); err != nil {
		return found, err
	}

	if err = tx.Commit(ctx); err != nil {
		return found, err
	}
	return true, nil
}
