package repository

import (
	"context"
	"fmt"

	"lensstore/internal/database"
	"lensstore/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `
	id, name, brand, category, short_description, description, image_url,
	pack_size, wear_period, base_curve, diameter, water_content_percent,
	uv_blocking, is_active, created_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetAll retrieves active products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE is_active
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	products, err := r.queryProducts(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, err
	}

	return products, nil
}

// ListActive retrieves every active product with its active variants.
func (r *productRepository) ListActive(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE is_active
		ORDER BY created_at DESC, name
	`

	products, err := r.queryProducts(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list products")
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single active product.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND is_active
	`

	products, err := r.queryProducts(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, err
	}

	if len(products) == 0 {
		r.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, nil
	}

	return &products[0], nil
}

// Counts returns the number of active products and active variants.
func (r *productRepository) Counts(ctx context.Context) (int, int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE is_active),
			(SELECT COUNT(*) FROM product_variants v JOIN products p ON p.id = v.product_id
			 WHERE v.is_active AND p.is_active)
	`

	var products, variants int
	if err := r.pool.QueryRow(ctx, query).Scan(&products, &variants); err != nil {
		r.logger.Error().Err(err).Msg("failed to count catalog")
		return 0, 0, fmt.Errorf("failed to count catalog: %w", err)
	}

	return products, variants, nil
}

// Upsert inserts or updates products and their variants in one transaction.
func (r *productRepository) Upsert(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	productQuery := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			category = EXCLUDED.category,
			short_description = EXCLUDED.short_description,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url,
			pack_size = EXCLUDED.pack_size,
			wear_period = EXCLUDED.wear_period,
			base_curve = EXCLUDED.base_curve,
			diameter = EXCLUDED.diameter,
			water_content_percent = EXCLUDED.water_content_percent,
			uv_blocking = EXCLUDED.uv_blocking,
			is_active = EXCLUDED.is_active
	`
	variantQuery := `
		INSERT INTO product_variants (id, product_id, sku, sph, price, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			sku = EXCLUDED.sku,
			sph = EXCLUDED.sph,
			price = EXCLUDED.price,
			is_active = EXCLUDED.is_active
	`

	variantCount := 0
	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range products {
			batch.Queue(productQuery,
				p.ID, p.Name, p.Brand, p.Category, p.ShortDescription, p.Description, p.Image,
				p.PackSize, p.WearPeriod, p.BaseCurve, p.Diameter, p.WaterContentPercent,
				p.UVBlocking, p.Active)
			for _, v := range p.Variants {
				batch.Queue(variantQuery, v.ID, p.ID, v.SKU, v.Sph, v.Price, v.Stock, v.Active)
				variantCount++
			}
		}

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to upsert catalog row %d: %w", i, err)
			}
		}
		return results.Close()
	})
	if err != nil {
		r.logger.Error().Err(err).Int("products", len(products)).Msg("failed to upsert catalog")
		return err
	}

	r.logger.Info().
		Int("products", len(products)).
		Int("variants", variantCount).
		Msg("catalog upserted")

	return nil
}

// queryProducts runs a product query and attaches active variants to each row.
func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Brand, &p.Category, &p.ShortDescription, &p.Description, &p.Image,
			&p.PackSize, &p.WearPeriod, &p.BaseCurve, &p.Diameter, &p.WaterContentPercent,
			&p.UVBlocking, &p.Active, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if len(products) == 0 {
		return products, nil
	}

	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	variants, err := r.variantsByProduct(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range products {
		products[i].Variants = variants[products[i].ID]
		if products[i].Variants == nil {
			products[i].Variants = []model.ProductVariant{}
		}
	}

	return products, nil
}

// variantsByProduct loads active variants grouped by product, highest SPH first.
func (r *productRepository) variantsByProduct(ctx context.Context, productIDs []string) (map[string][]model.ProductVariant, error) {
	query := `
		SELECT id, product_id, sku, sph, price, stock, is_active
		FROM product_variants
		WHERE product_id = ANY($1) AND is_active
		ORDER BY product_id, sph::numeric DESC, id
	`

	rows, err := r.pool.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.ProductVariant, len(productIDs))
	for rows.Next() {
		var v model.ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Sph, &v.Price, &v.Stock, &v.Active); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		out[v.ProductID] = append(out[v.ProductID], v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return out, nil
}
