package repository

import (
	"context"

	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalog data access operations.
// Only active products and active variants are returned.
type ProductRepository interface {
	// GetAll retrieves active products with pagination support, ordered by name.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// ListActive retrieves every active product with its active variants.
	ListActive(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single active product. Returns nil when missing or inactive.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Counts returns the number of active products and active variants.
	Counts(ctx context.Context) (products int, variants int, err error)

	// Upsert inserts or updates products and their variants. Stock is only
	// set for new variants so reservations are never overwritten.
	Upsert(ctx context.Context, products []model.Product) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetOrder retrieves an order header. Returns nil when not found.
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetItems retrieves the items of an order.
	GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)

	// ListByUser retrieves the orders of a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// GetItemsByOrderIDs retrieves the items of several orders in one query.
	GetItemsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error)

	// ApplyPayment sets status and provider payment id within the provided transaction.
	// An empty payment id keeps the stored one. Returns false when the order does not exist.
	ApplyPayment(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, paymentID string) (bool, error)

	// SetPaymentID records the provider payment id of an order.
	SetPaymentID(ctx context.Context, id uuid.UUID, paymentID string) error

	// SetPreferenceID records the hosted checkout preference id of an order.
	SetPreferenceID(ctx context.Context, id uuid.UUID, preferenceID string) error
}

// StockRepository reserves and releases variant stock for whole orders.
type StockRepository interface {
	// Reserve decrements stock for every line of the order atomically.
	// Reserving an already reserved order is a no-op.
	Reserve(ctx context.Context, orderID uuid.UUID) error

	// Release restores the stock taken by Reserve. Releasing twice is a no-op.
	Release(ctx context.Context, orderID uuid.UUID) error
}

// ProfileRepository defines access to saved customer profiles.
type ProfileRepository interface {
	// Get retrieves the profile of a user. Returns nil when none is saved.
	Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error)

	// Upsert creates or replaces the profile of profile.UserID.
	Upsert(ctx context.Context, profile *model.Profile) error
}

// UserRepository defines access to account credentials.
type UserRepository interface {
	// Create inserts a new account.
	Create(ctx context.Context, user *model.User) error

	// UpdatePasswordHash replaces the password hash of a user.
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}
