package integration

import (
	"context"
	"testing"
	"time"

	"lensstore/internal/catalog"
	"lensstore/internal/database"
	"lensstore/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container and applies the store schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("lensstore"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedCatalog upserts the built-in catalogue.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	repo := repository.NewProductRepository(pool, zerolog.Nop())
	if err := repo.Upsert(context.Background(), catalog.DefaultProducts()); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
}

// ResetDB empties every table and reseeds the catalogue with fresh stock.
func ResetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE outbox, stock_reservations, order_items, orders, product_variants, products, profiles, users")
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	SeedCatalog(t, pool)
}

// variantStock reads the current stock of a variant.
func variantStock(t *testing.T, pool *pgxpool.Pool, variantID string) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		"SELECT stock FROM product_variants WHERE id = $1", variantID).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock of %s: %v", variantID, err)
	}
	return stock
}
