// Package catalog reads the lens catalogue from the database or from a
// static seed and loads seeds from local files or S3.
package catalog

import (
	"context"
	"fmt"

	"lensstore/internal/config"
	"lensstore/internal/model"
	"lensstore/internal/repository"

	"github.com/rs/zerolog"
)

// Reader exposes the active catalogue.
type Reader interface {
	// ListProducts returns every active product with its active variants.
	ListProducts(ctx context.Context) ([]model.Product, error)

	// GetProduct returns an active product, or nil when it is missing or inactive.
	GetProduct(ctx context.Context, id string) (*model.Product, error)

	// Source names where the catalogue comes from.
	Source() string
}

// Loader defines the interface for loading catalogue seed files.
type Loader interface {
	// Load reads a seed file and returns its products.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// NewReader selects the reader for the configured source. The static
// source uses the seed file when one is configured and the built-in
// catalogue otherwise.
func NewReader(ctx context.Context, cfg config.CatalogConfig, repo repository.ProductRepository, loader Loader, logger zerolog.Logger) (Reader, error) {
	logger = logger.With().Str("component", "catalog").Logger()

	switch cfg.Source {
	case config.CatalogSourceDatabase:
		logger.Info().Msg("catalog reads from database")
		return NewStoreReader(repo), nil
	case config.CatalogSourceStatic:
		if cfg.SeedFile == "" {
			logger.Info().Msg("catalog uses built-in products")
			return NewStaticReader(DefaultProducts()), nil
		}
		products, err := loader.Load(ctx, cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog seed: %w", err)
		}
		logger.Info().Str("file", cfg.SeedFile).Int("products", len(products)).Msg("catalog uses seed file")
		return NewStaticReader(products), nil
	default:
		return nil, fmt.Errorf("unknown catalog source: %s", cfg.Source)
	}
}

// storeReader reads the catalogue through the product repository.
type storeReader struct {
	repo repository.ProductRepository
}

// NewStoreReader creates a Reader backed by the product tables.
func NewStoreReader(repo repository.ProductRepository) Reader {
	return &storeReader{repo: repo}
}

func (r *storeReader) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := r.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog products: %w", err)
	}
	return products, nil
}

func (r *storeReader) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	product, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("catalog product %s: %w", id, err)
	}
	return product, nil
}

func (r *storeReader) Source() string {
	return config.CatalogSourceDatabase
}

// staticReader serves an in-memory catalogue. Its products are read-only
// after construction and callers receive copies.
type staticReader struct {
	products []model.Product
	byID     map[string]int
}

// NewStaticReader creates a Reader over a fixed product list.
// Inactive products and variants are dropped.
func NewStaticReader(products []model.Product) Reader {
	r := &staticReader{byID: make(map[string]int, len(products))}
	for _, p := range products {
		if !p.Active {
			continue
		}
		p = cloneProduct(p)
		active := p.Variants[:0]
		for _, v := range p.Variants {
			if v.Active {
				active = append(active, v)
			}
		}
		p.Variants = active
		r.byID[p.ID] = len(r.products)
		r.products = append(r.products, p)
	}
	return r
}

func (r *staticReader) ListProducts(ctx context.Context) ([]model.Product, error) {
	out := make([]model.Product, len(r.products))
	for i, p := range r.products {
		out[i] = cloneProduct(p)
	}
	return out, nil
}

func (r *staticReader) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	p := cloneProduct(r.products[i])
	return &p, nil
}

func (r *staticReader) Source() string {
	return config.CatalogSourceStatic
}

func cloneProduct(p model.Product) model.Product {
	p.Variants = append([]model.ProductVariant(nil), p.Variants...)
	return p
}
