// Package outbox stores order events next to the order writes and relays
// them to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Event types.
const (
	TypeOrderCreated = "order.created"
)

// StatusEventType names the event emitted when an order reaches status.
func StatusEventType(status model.OrderStatus) string {
	return "order." + string(status)
}

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Event is a message to publish on Topic, partitioned by Key.
type Event struct {
	ID      uuid.UUID
	Topic   string
	Key     string
	Payload any
}

// Record is a stored event.
type Record struct {
	ID        int64           `json:"id"`
	EventID   uuid.UUID       `json:"event_id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at"`
}

// OrderEvent is the payload of every order event.
type OrderEvent struct {
	EventID    uuid.UUID         `json:"event_id"`
	Type       string            `json:"type"`
	OrderID    uuid.UUID         `json:"order_id"`
	UserID     *uuid.UUID        `json:"user_id,omitempty"`
	Status     model.OrderStatus `json:"status"`
	Subtotal   *decimal.Decimal  `json:"subtotal,omitempty"`
	PaymentID  string            `json:"payment_id,omitempty"`
	Items      []EventItem       `json:"items,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// EventItem is an order line inside an OrderEvent.
type EventItem struct {
	VariantID string          `json:"variant_id"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// NewOrderCreated builds the event for a freshly accepted order.
func NewOrderCreated(topic string, order *model.Order, items []model.OrderItem) Event {
	id := uuid.New()
	subtotal := order.Subtotal
	lines := make([]EventItem, len(items))
	for i, it := range items {
		lines[i] = EventItem{VariantID: it.VariantID, SKU: it.SKU, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return Event{
		ID:    id,
		Topic: topic,
		Key:   order.ID.String(),
		Payload: OrderEvent{
			EventID:    id,
			Type:       TypeOrderCreated,
			OrderID:    order.ID,
			UserID:     order.UserID,
			Status:     order.Status,
			Subtotal:   &subtotal,
			Items:      lines,
			OccurredAt: time.Now().UTC(),
		},
	}
}

// NewOrderStatusChanged builds the event for a status change. paymentID may be empty.
func NewOrderStatusChanged(topic string, orderID uuid.UUID, status model.OrderStatus, paymentID string) Event {
	id := uuid.New()
	return Event{
		ID:    id,
		Topic: topic,
		Key:   orderID.String(),
		Payload: OrderEvent{
			EventID:    id,
			Type:       StatusEventType(status),
			OrderID:    orderID,
			Status:     status,
			PaymentID:  paymentID,
			OccurredAt: time.Now().UTC(),
		},
	}
}

// Insert writes evt through db, usually the transaction that changed the order.
func Insert(ctx context.Context, db Execer, evt Event) error {
	data, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	_, err = db.Exec(ctx,
		`INSERT INTO outbox (event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`,
		evt.ID, evt.Topic, evt.Key, data)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

// Store reads and acknowledges pending events.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// FetchPending returns up to limit unsent events, oldest first.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, topic, key, payload, created_at, sent_at
		FROM outbox
		WHERE sent_at IS NULL
		ORDER BY id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkSent flags the events as published.
func (s *Store) MarkSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `UPDATE outbox SET sent_at = NOW() WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to mark outbox events sent: %w", err)
	}
	return nil
}
