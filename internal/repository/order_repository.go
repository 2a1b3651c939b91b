package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `id, user_id, status, currency, subtotal, customer, mp_payment_id, mp_preference_id, created_at, updated_at`

const itemColumns = `id, order_id, product_id, variant_id, sku, title, quantity, unit_price`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	customer, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("failed to encode customer: %w", err)
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.Exec(ctx, query,
		order.ID, order.UserID, order.Status, order.Currency, order.Subtotal, customer,
		order.MPPaymentID, order.MPPreferenceID, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.VariantID,
			item.SKU, item.Title, item.Quantity, item.UnitPrice)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("variant_id", items[i].VariantID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetOrder retrieves an order header.
func (r *orderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// GetItems retrieves the items of an order.
func (r *orderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY title, id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items, err := collectItems(rows)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to read order items")
		return nil, err
	}

	return items, nil
}

// ListByUser retrieves the orders of a user, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// GetItemsByOrderIDs retrieves the items of several orders in one query.
func (r *orderRepository) GetItemsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	out := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, title, id`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("orders", len(orderIDs)).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items, err := collectItems(rows)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		out[item.OrderID] = append(out[item.OrderID], item)
	}

	return out, nil
}

// ApplyPayment sets status and provider payment id within the provided
// transaction. An empty payment id keeps the stored one.
func (r *orderRepository) ApplyPayment(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, paymentID string) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, mp_payment_id = COALESCE(NULLIF($3::text, ''), mp_payment_id), updated_at = NOW() WHERE id = $1`,
		id, status, paymentID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("payment_id", paymentID).
			Msg("failed to apply payment")
		return false, fmt.Errorf("failed to apply payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetPaymentID records the provider payment id of an order.
func (r *orderRepository) SetPaymentID(ctx context.Context, id uuid.UUID, paymentID string) error {
	return r.setColumn(ctx, id, "mp_payment_id", paymentID)
}

// SetPreferenceID records the hosted checkout preference id of an order.
func (r *orderRepository) SetPreferenceID(ctx context.Context, id uuid.UUID, preferenceID string) error {
	return r.setColumn(ctx, id, "mp_preference_id", preferenceID)
}

// setColumn updates one of the fixed provider reference columns.
func (r *orderRepository) setColumn(ctx context.Context, id uuid.UUID, column, value string) error {
	query := `UPDATE orders SET ` + pgx.Identifier{column}.Sanitize() + ` = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, value)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Str("column", column).Msg("failed to update order")
		return fmt.Errorf("failed to update order %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		order    model.Order
		customer []byte
	)
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.Currency,
		&order.Subtotal,
		&customer,
		&order.MPPaymentID,
		&order.MPPreferenceID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(customer, &order.Customer); err != nil {
		return nil, fmt.Errorf("failed to decode customer: %w", err)
	}
	return &order, nil
}

func collectItems(rows pgx.Rows) ([]model.OrderItem, error) {
	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID,
			&item.SKU, &item.Title, &item.Quantity, &item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
