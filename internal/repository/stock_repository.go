package repository

import (
	"context"
	"fmt"

	"lensstore/internal/database"
	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	reservationReserved = "reserved"
	reservationReleased = "released"
)

// variantQuantity is the total quantity of one variant within an order.
type variantQuantity struct {
	variantID string
	quantity  int
}

// stockRepository implements StockRepository with one transaction per call.
// The stock_reservations row of the order serialises Reserve and Release.
type stockRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStockRepository creates a new PostgreSQL-backed stock repository.
func NewStockRepository(pool *pgxpool.Pool, logger zerolog.Logger) StockRepository {
	return &stockRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stock").Logger(),
	}
}

// Reserve decrements stock for every line of the order. Either every
// variant is decremented or none is.
func (r *stockRepository) Reserve(ctx context.Context, orderID uuid.UUID) error {
	log := r.logger.With().Str("order_id", orderID.String()).Logger()

	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO stock_reservations (order_id, status)
			VALUES ($1, $2)
			ON CONFLICT (order_id) DO NOTHING
		`, orderID, reservationReserved)
		if err != nil {
			return fmt.Errorf("failed to open reservation: %w", err)
		}

		if tag.RowsAffected() == 0 {
			status, err := lockReservation(ctx, tx, orderID)
			if err != nil {
				return err
			}
			if status == reservationReleased {
				return model.ErrReservationClosed
			}
			log.Debug().Msg("stock already reserved")
			return nil
		}

		quantities, err := orderQuantities(ctx, tx, orderID)
		if err != nil {
			return err
		}

		for _, q := range quantities {
			tag, err := tx.Exec(ctx, `
				UPDATE product_variants
				SET stock = stock - $2
				WHERE id = $1 AND is_active AND stock >= $2
			`, q.variantID, q.quantity)
			if err != nil {
				if database.IsCheckViolation(err) {
					return fmt.Errorf("variant %s: %w", q.variantID, model.ErrInsufficientStock)
				}
				return fmt.Errorf("failed to decrement variant %s: %w", q.variantID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("variant %s: %w", q.variantID, model.ErrInsufficientStock)
			}
		}

		log.Debug().Int("variants", len(quantities)).Msg("stock reserved")
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("stock reservation failed")
		return err
	}

	return nil
}

// Release restores the stock taken by Reserve and closes the reservation.
// An order that was never reserved gets a closed reservation so a later
// Reserve cannot take stock for it.
func (r *stockRepository) Release(ctx context.Context, orderID uuid.UUID) error {
	log := r.logger.With().Str("order_id", orderID.String()).Logger()

	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO stock_reservations (order_id, status)
			VALUES ($1, $2)
			ON CONFLICT (order_id) DO NOTHING
		`, orderID, reservationReleased)
		if err != nil {
			return fmt.Errorf("failed to close reservation: %w", err)
		}
		if tag.RowsAffected() > 0 {
			log.Debug().Msg("nothing reserved, reservation closed")
			return nil
		}

		status, err := lockReservation(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if status == reservationReleased {
			log.Debug().Msg("stock already released")
			return nil
		}

		quantities, err := orderQuantities(ctx, tx, orderID)
		if err != nil {
			return err
		}

		for _, q := range quantities {
			if _, err := tx.Exec(ctx,
				`UPDATE product_variants SET stock = stock + $2 WHERE id = $1`,
				q.variantID, q.quantity); err != nil {
				return fmt.Errorf("failed to restore variant %s: %w", q.variantID, err)
			}
		}

		if _, err := tx.Exec(ctx,
			`UPDATE stock_reservations SET status = $2, updated_at = NOW() WHERE order_id = $1`,
			orderID, reservationReleased); err != nil {
			return fmt.Errorf("failed to close reservation: %w", err)
		}

		log.Debug().Int("variants", len(quantities)).Msg("stock released")
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("stock release failed")
		return err
	}

	return nil
}

func lockReservation(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (string, error) {
	var status string
	err := tx.QueryRow(ctx,
		`SELECT status FROM stock_reservations WHERE order_id = $1 FOR UPDATE`, orderID).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("failed to lock reservation: %w", err)
	}
	return status, nil
}

// orderQuantities sums item quantities per variant in variant id order so
// concurrent reservations lock rows in the same sequence.
func orderQuantities(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]variantQuantity, error) {
	rows, err := tx.Query(ctx, `
		SELECT variant_id, SUM(quantity)::int
		FROM order_items
		WHERE order_id = $1 AND variant_id <> $2
		GROUP BY variant_id
		ORDER BY variant_id
	`, orderID, model.UnknownRef)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate order items: %w", err)
	}
	defer rows.Close()

	var out []variantQuantity
	for rows.Next() {
		var q variantQuantity
		if err := rows.Scan(&q.variantID, &q.quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order quantity: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order quantities: %w", err)
	}
	return out, nil
}
