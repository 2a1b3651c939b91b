package service

import (
	"context"
	"fmt"

	"lensstore/internal/catalog"
	"lensstore/internal/config"
	"lensstore/internal/model"
	"lensstore/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	reader      catalog.Reader
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service. Database catalogues are
// paged in SQL, static ones in memory.
func NewProductService(reader catalog.Reader, productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		reader:      reader,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves active products with pagination.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var (
		products []model.Product
		err      error
	)
	if s.reader.Source() == config.CatalogSourceDatabase {
		products, err = s.productRepo.GetAll(ctx, limit, offset)
	} else {
		products, err = s.reader.ListProducts(ctx)
		products = page(products, limit, offset)
	}
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, err := s.reader.GetProduct(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// CatalogStatus reports the catalogue source and its active product and variant counts.
func (s *productService) CatalogStatus(ctx context.Context) (*model.CatalogStatus, error) {
	status := &model.CatalogStatus{Source: s.reader.Source()}

	if status.Source == config.CatalogSourceDatabase {
		products, variants, err := s.productRepo.Counts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count catalog: %w", err)
		}
		status.ProductsCount, status.VariantsCount = products, variants
		return status, nil
	}

	products, err := s.reader.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	status.ProductsCount = len(products)
	for _, p := range products {
		status.VariantsCount += len(p.Variants)
	}
	return status, nil
}

func page(products []model.Product, limit, offset int) []model.Product {
	if offset >= len(products) {
		return []model.Product{}
	}
	end := min(offset+limit, len(products))
	return products[offset:end]
}
