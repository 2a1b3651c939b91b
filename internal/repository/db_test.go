package repository

import (
	"context"
	"testing"
	"time"

	"lensstore/internal/database"
	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the storefront schema applied.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// testCatalog returns two products: a daily lens with three variants and an
// inactive monthly lens.
func testCatalog() []model.Product {
	return []model.Product{
		{
			ID: "daily-30", Name: "Daily 30", Brand: "Acme", Category: model.CategoryDaily,
			PackSize: 30, WearPeriod: "Diário", Active: true,
			Variants: []model.ProductVariant{
				{ID: "d30--1.00", SKU: "D30--1.00", Sph: "-1.00", Price: decimal.RequireFromString("99.90"), Stock: 5, Active: true},
				{ID: "d30--2.00", SKU: "D30--2.00", Sph: "-2.00", Price: decimal.RequireFromString("99.90"), Stock: 1, Active: true},
				{ID: "d30--3.00", SKU: "D30--3.00", Sph: "-3.00", Price: decimal.RequireFromString("109.90"), Stock: 9, Active: false},
			},
		},
		{
			ID: "monthly-6", Name: "Monthly 6", Brand: "Acme", Category: model.CategoryMonthly,
			PackSize: 6, WearPeriod: "Mensal", Active: false,
			Variants: []model.ProductVariant{
				{ID: "m6--1.00", SKU: "M6--1.00", Sph: "-1.00", Price: decimal.RequireFromString("129.90"), Stock: 3, Active: true},
			},
		},
	}
}

func seedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	repo := NewProductRepository(pool, zerolog.Nop())
	require.NoError(t, repo.Upsert(context.Background(), testCatalog()))
}

// insertOrder writes an order with the given variant quantities.
func insertOrder(t *testing.T, pool *pgxpool.Pool, userID *uuid.UUID, lines map[string]int) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	repo := NewOrderRepository(pool, zerolog.Nop())

	now := time.Now()
	order := &model.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    model.OrderStatusPendingPayment,
		Currency:  model.Currency,
		Subtotal:  decimal.NewFromInt(100),
		Customer:  model.Customer{FullName: "Ana Souza", Email: "ana@example.com", CPF: "12345678901"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	items := make([]model.OrderItem, 0, len(lines))
	for variantID, qty := range lines {
		items = append(items, model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: "daily-30",
			VariantID: variantID,
			Title:     "Daily 30 " + variantID,
			Quantity:  qty,
			UnitPrice: decimal.RequireFromString("99.90"),
		})
	}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))

	return order.ID
}

func variantStock(t *testing.T, pool *pgxpool.Pool, variantID string) int {
	t.Helper()
	var stock int
	err := pool.QueryRow(context.Background(),
		`SELECT stock FROM product_variants WHERE id = $1`, variantID).Scan(&stock)
	require.NoError(t, err)
	return stock
}
