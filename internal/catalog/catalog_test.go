package catalog

import (
	"context"
	"errors"
	"testing"

	"lensstore/internal/config"
	"lensstore/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) ListActive(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) Counts(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) Upsert(ctx context.Context, products []model.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func TestDefaultProducts(t *testing.T) {
	products := DefaultProducts()
	require.Len(t, products, 4)

	ao := products[0]
	assert.Equal(t, "acuvue-oasys-1day-90", ao.ID)
	require.Len(t, ao.Variants, 5)
	assert.Equal(t, "ao-090--0.50", ao.Variants[0].ID)
	assert.Equal(t, "AO1D90--0.50", ao.Variants[0].SKU)
	assert.Equal(t, 0, ao.Variants[4].Stock)

	dt := products[1]
	v, ok := dt.VariantBySph("-4.00")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("249.90").Equal(v.Price))
	assert.True(t, decimal.RequireFromString("239.90").Equal(dt.MinPrice()))

	ids := map[string]bool{}
	for _, p := range products {
		assert.True(t, p.Active)
		for _, v := range p.Variants {
			assert.False(t, ids[v.ID], "duplicate variant %s", v.ID)
			ids[v.ID] = true
			assert.Equal(t, p.ID, v.ProductID)
		}
	}
}

func TestStaticReader(t *testing.T) {
	ctx := context.Background()
	products := DefaultProducts()
	products[3].Active = false
	products[0].Variants[1].Active = false

	reader := NewStaticReader(products)
	assert.Equal(t, "static", reader.Source())

	list, err := reader.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Len(t, list[0].Variants, 4)

	p, err := reader.GetProduct(ctx, "biofinity-6")
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = reader.GetProduct(ctx, "dailies-total1-90")
	require.NoError(t, err)
	require.NotNil(t, p)

	// Callers get copies
	p.Variants[0].Stock = 999
	again, _ := reader.GetProduct(ctx, "dailies-total1-90")
	assert.Equal(t, 14, again.Variants[0].Stock)
}

func TestStoreReader(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	reader := NewStoreReader(repo)

	product := &DefaultProducts()[0]
	repo.On("ListActive", ctx).Return([]model.Product{*product}, nil)
	repo.On("GetByID", ctx, product.ID).Return(product, nil)
	repo.On("GetByID", ctx, "broken").Return(nil, errors.New("connection refused"))

	list, err := reader.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := reader.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product, got)

	_, err = reader.GetProduct(ctx, "broken")
	require.Error(t, err)
	assert.Equal(t, "database", reader.Source())

	repo.AssertExpectations(t)
}

func TestNewReader(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()
	repo := new(MockProductRepository)

	t.Run("database", func(t *testing.T) {
		r, err := NewReader(ctx, config.CatalogConfig{Source: "database"}, repo, nil, logger)
		require.NoError(t, err)
		assert.Equal(t, "database", r.Source())
	})

	t.Run("static without seed uses built-in products", func(t *testing.T) {
		r, err := NewReader(ctx, config.CatalogConfig{Source: "static"}, repo, nil, logger)
		require.NoError(t, err)
		list, err := r.ListProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 4)
	})

	t.Run("static with seed", func(t *testing.T) {
		loader := &mockLoader{loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
			assert.Equal(t, "catalog.yaml", path)
			return DefaultProducts()[:1], nil
		}}
		r, err := NewReader(ctx, config.CatalogConfig{Source: "static", SeedFile: "catalog.yaml"}, repo, loader, logger)
		require.NoError(t, err)
		list, err := r.ListProducts(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("seed failure", func(t *testing.T) {
		loader := &mockLoader{}
		_, err := NewReader(ctx, config.CatalogConfig{Source: "static", SeedFile: "x.yaml"}, repo, loader, logger)
		require.Error(t, err)
	})
}
