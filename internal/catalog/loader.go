package catalog

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"lensstore/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML layout of a catalogue seed.
type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ID                  string        `yaml:"id"`
	Name                string        `yaml:"name"`
	Brand               string        `yaml:"brand"`
	Category            string        `yaml:"category"`
	ShortDescription    string        `yaml:"short_description"`
	Description         string        `yaml:"description"`
	Image               string        `yaml:"image"`
	PackSize            int           `yaml:"pack_size"`
	WearPeriod          string        `yaml:"wear_period"`
	BaseCurve           *string       `yaml:"base_curve"`
	Diameter            *string       `yaml:"diameter"`
	WaterContentPercent *int          `yaml:"water_content_percent"`
	UVBlocking          *bool         `yaml:"uv_blocking"`
	Active              *bool         `yaml:"active"`
	Variants            []seedVariant `yaml:"variants"`
}

// Price is a string so amounts keep their exact decimal form.
type seedVariant struct {
	ID     string `yaml:"id"`
	SKU    string `yaml:"sku"`
	Sph    string `yaml:"sph"`
	Price  string `yaml:"price"`
	Stock  int    `yaml:"stock"`
	Active *bool  `yaml:"active"`
}

// fileLoader implements Loader for YAML seed files on disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalogue loader. Paths ending in
// .gz are decompressed.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a seed file and returns its products.
func (l *fileLoader) Load(ctx context.Context, path string) ([]model.Product, error) {
	l.logger.Info().Str("file", path).Msg("loading catalog seed")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open catalog seed")
		return nil, fmt.Errorf("failed to open catalog seed %s: %w", path, err)
	}
	defer file.Close()

	products, err := decodeSeed(ctx, file, path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to read catalog seed")
		return nil, err
	}

	l.logger.Info().
		Str("file", path).
		Int("products_loaded", len(products)).
		Msg("catalog seed loaded successfully")

	return products, nil
}

// decodeSeed parses a YAML seed, gunzipping it first when name ends in .gz.
func decodeSeed(ctx context.Context, r io.Reader, name string) ([]model.Product, error) {
	if strings.HasSuffix(name, ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to decode catalog seed %s: %w", name, err)
	}

	return seed.toProducts()
}

func (s seedFile) toProducts() ([]model.Product, error) {
	products := make([]model.Product, 0, len(s.Products))
	seen := make(map[string]bool)

	for _, sp := range s.Products {
		if sp.ID == "" || sp.Name == "" {
			return nil, fmt.Errorf("product without id or name")
		}
		if seen[sp.ID] {
			return nil, fmt.Errorf("duplicate product id %s", sp.ID)
		}
		seen[sp.ID] = true

		p := model.Product{
			ID:                  sp.ID,
			Name:                sp.Name,
			Brand:               sp.Brand,
			Category:            model.LensCategory(sp.Category),
			ShortDescription:    sp.ShortDescription,
			Description:         sp.Description,
			Image:               sp.Image,
			PackSize:            sp.PackSize,
			WearPeriod:          sp.WearPeriod,
			BaseCurve:           sp.BaseCurve,
			Diameter:            sp.Diameter,
			WaterContentPercent: sp.WaterContentPercent,
			UVBlocking:          sp.UVBlocking,
			Active:              sp.Active == nil || *sp.Active,
			Variants:            make([]model.ProductVariant, 0, len(sp.Variants)),
		}

		for _, sv := range sp.Variants {
			price, err := decimal.NewFromString(sv.Price)
			if err != nil {
				return nil, fmt.Errorf("variant %s: invalid price %q: %w", sv.ID, sv.Price, err)
			}
			if price.IsNegative() || sv.Stock < 0 {
				return nil, fmt.Errorf("variant %s: price and stock must not be negative", sv.ID)
			}
			if seen[sv.ID] {
				return nil, fmt.Errorf("duplicate variant id %s", sv.ID)
			}
			seen[sv.ID] = true

			p.Variants = append(p.Variants, model.ProductVariant{
				ID:        sv.ID,
				ProductID: sp.ID,
				SKU:       sv.SKU,
				Sph:       sv.Sph,
				Price:     price,
				Stock:     sv.Stock,
				Active:    sv.Active == nil || *sv.Active,
			})
		}

		products = append(products, p)
	}

	return products, nil
}

// WriteSeed encodes products in the seed layout read by the loaders,
// gzipped when compress is set.
func WriteSeed(w io.Writer, products []model.Product, compress bool) error {
	seed := seedFile{Products: make([]seedProduct, 0, len(products))}
	for _, p := range products {
		sp := seedProduct{
			ID:                  p.ID,
			Name:                p.Name,
			Brand:               p.Brand,
			Category:            string(p.Category),
			ShortDescription:    p.ShortDescription,
			Description:         p.Description,
			Image:               p.Image,
			PackSize:            p.PackSize,
			WearPeriod:          p.WearPeriod,
			BaseCurve:           p.BaseCurve,
			Diameter:            p.Diameter,
			WaterContentPercent: p.WaterContentPercent,
			UVBlocking:          p.UVBlocking,
		}
		if !p.Active {
			sp.Active = &p.Active
		}
		for _, v := range p.Variants {
			sv := seedVariant{ID: v.ID, SKU: v.SKU, Sph: v.Sph, Price: v.Price.StringFixed(2), Stock: v.Stock}
			if !v.Active {
				inactive := false
				sv.Active = &inactive
			}
			sp.Variants = append(sp.Variants, sv)
		}
		seed.Products = append(seed.Products, sp)
	}

	if compress {
		gz := gzip.NewWriter(w)
		if err := yaml.NewEncoder(gz).Encode(seed); err != nil {
			return fmt.Errorf("failed to encode catalog seed: %w", err)
		}
		return gz.Close()
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seed); err != nil {
		return fmt.Errorf("failed to encode catalog seed: %w", err)
	}
	return enc.Close()
}
