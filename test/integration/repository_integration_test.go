package integration

import (
	"context"
	"testing"

	"lensstore/internal/database"
	"lensstore/internal/model"
	"lensstore/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	repo := repository.NewProductRepository(testDB.Pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("GetAll orders by name and paginates", func(t *testing.T) {
		ResetDB(t, testDB.Pool)

		products, err := repo.GetAll(ctx, 2, 0)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "acuvue-oasys-1day-90", products[0].ID)
		assert.Equal(t, "air-optix-plus-hydraglyde-6", products[1].ID)

		products, err = repo.GetAll(ctx, 2, 2)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "biofinity-6", products[0].ID)
		assert.Equal(t, "dailies-total1-90", products[1].ID)
	})

	t.Run("GetByID returns variants highest SPH first", func(t *testing.T) {
		ResetDB(t, testDB.Pool)

		product, err := repo.GetByID(ctx, "biofinity-6")
		require.NoError(t, err)
		require.NotNil(t, product)
		require.Len(t, product.Variants, 5)
		assert.Equal(t, "-0.25", product.Variants[0].Sph)
		assert.Equal(t, "-5.50", product.Variants[4].Sph)
		assert.True(t, decimal.RequireFromString("129.90").Equal(product.Variants[4].Price))
		assert.Equal(t, 1, product.Variants[4].Stock)
	})

	t.Run("inactive products and variants are hidden", func(t *testing.T) {
		ResetDB(t, testDB.Pool)

		_, err := testDB.Pool.Exec(ctx, "UPDATE products SET is_active = FALSE WHERE id = 'dailies-total1-90'")
		require.NoError(t, err)
		_, err = testDB.Pool.Exec(ctx, "UPDATE product_variants SET is_active = FALSE WHERE id = 'bio-006--5.50'")
		require.NoError(t, err)

		product, err := repo.GetByID(ctx, "dailies-total1-90")
		require.NoError(t, err)
		assert.Nil(t, product)

		product, err = repo.GetByID(ctx, "biofinity-6")
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Len(t, product.Variants, 4)

		products, variants, err := repo.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, products)
		assert.Equal(t, 14, variants)
	})

	t.Run("Upsert keeps stock of existing variants", func(t *testing.T) {
		ResetDB(t, testDB.Pool)

		_, err := testDB.Pool.Exec(ctx, "UPDATE product_variants SET stock = 3 WHERE id = 'ao-090--0.50'")
		require.NoError(t, err)

		SeedCatalog(t, testDB.Pool)

		assert.Equal(t, 3, variantStock(t, testDB.Pool, "ao-090--0.50"))
	})
}

func TestStockRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	orders := repository.NewOrderRepository(testDB.Pool, logger)
	stock := repository.NewStockRepository(testDB.Pool, logger)
	ctx := context.Background()

	createOrder := func(t *testing.T, lines map[string]int) uuid.UUID {
		t.Helper()

		order := &model.Order{
			ID:       uuid.New(),
			Status:   model.OrderStatusPendingPayment,
			Currency: model.Currency,
			Subtotal: decimal.NewFromInt(100),
			Customer: model.Customer{FullName: "Maria da Silva", Email: "maria@example.com", CPF: "12345678909"},
		}
		var items []model.OrderItem
		for variantID, qty := range lines {
			items = append(items, model.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: "biofinity-6",
				VariantID: variantID,
				Title:     "Biofinity (6)",
				Quantity:  qty,
				UnitPrice: decimal.RequireFromString("119.90"),
			})
		}

		err := database.WithTransaction(ctx, testDB.Pool, func(tx pgx.Tx) error {
			if err := orders.CreateOrder(ctx, tx, order); err != nil {
				return err
			}
			return orders.CreateOrderItems(ctx, tx, items)
		})
		require.NoError(t, err)
		return order.ID
	}

	t.Run("Reserve and Release are idempotent", func(t *testing.T) {
		ResetDB(t, testDB.Pool)
		orderID := createOrder(t, map[string]int{"bio-006--0.25": 4})

		require.NoError(t, stock.Reserve(ctx, orderID))
		require.NoError(t, stock.Reserve(ctx, orderID))
		assert.Equal(t, 11, variantStock(t, testDB.Pool, "bio-006--0.25"))

		require.NoError(t, stock.Release(ctx, orderID))
		require.NoError(t, stock.Release(ctx, orderID))
		assert.Equal(t, 15, variantStock(t, testDB.Pool, "bio-006--0.25"))
	})

	t.Run("Reserve is all or nothing", func(t *testing.T) {
		ResetDB(t, testDB.Pool)
		orderID := createOrder(t, map[string]int{"bio-006--0.25": 2, "bio-006--5.50": 2})

		err := stock.Reserve(ctx, orderID)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInsufficientStock)

		assert.Equal(t, 15, variantStock(t, testDB.Pool, "bio-006--0.25"))
		assert.Equal(t, 1, variantStock(t, testDB.Pool, "bio-006--5.50"))
	})

	t.Run("Release before Reserve closes the reservation", func(t *testing.T) {
		ResetDB(t, testDB.Pool)
		orderID := createOrder(t, map[string]int{"bio-006--0.75": 1})

		require.NoError(t, stock.Release(ctx, orderID))

		err := stock.Reserve(ctx, orderID)
		assert.ErrorIs(t, err, model.ErrReservationClosed)
		assert.Equal(t, 11, variantStock(t, testDB.Pool, "bio-006--0.75"))
	})
}

func TestOrderRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	repo := repository.NewOrderRepository(testDB.Pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("ApplyPayment reports unknown orders", func(t *testing.T) {
		ResetDB(t, testDB.Pool)

		var found bool
		err := database.WithTransaction(ctx, testDB.Pool, func(tx pgx.Tx) error {
			var err error
			found, err = repo.ApplyPayment(ctx, tx, uuid.New(), model.OrderStatusPaid, "1")
			return err
		})
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("ListByUser returns only the user's orders", func(t *testing.T) {
		ResetDB(t, testDB.Pool)

		userID := uuid.New()
		mine := &model.Order{
			ID: uuid.New(), UserID: &userID, Status: model.OrderStatusPendingPayment,
			Currency: model.Currency, Subtotal: decimal.NewFromInt(50),
			Customer: model.Customer{FullName: "Maria", Email: "maria@example.com", CPF: "1"},
		}
		guest := &model.Order{
			ID: uuid.New(), Status: model.OrderStatusPendingPayment,
			Currency: model.Currency, Subtotal: decimal.NewFromInt(70),
			Customer: model.Customer{FullName: "João", Email: "joao@example.com", CPF: "2"},
		}

		err := database.WithTransaction(ctx, testDB.Pool, func(tx pgx.Tx) error {
			if err := repo.CreateOrder(ctx, tx, mine); err != nil {
				return err
			}
			return repo.CreateOrder(ctx, tx, guest)
		})
		require.NoError(t, err)

		orders, err := repo.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, mine.ID, orders[0].ID)
		assert.Equal(t, "maria@example.com", orders[0].Customer.Email)
		assert.True(t, decimal.NewFromInt(50).Equal(orders[0].Subtotal))
	})
}
