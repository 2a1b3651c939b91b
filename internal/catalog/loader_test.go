package catalog

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"lensstore/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
products:
  - id: daily-30
    name: Daily 30
    brand: Acme
    category: daily
    pack_size: 30
    wear_period: daily
    base_curve: "8.6"
    uv_blocking: true
    variants:
      - id: d30--1.00
        sku: D30--1.00
        sph: -1.00
        price: "99.90"
        stock: 4
      - id: d30--2.00
        sku: D30--2.00
        sph: "-2.00"
        price: "104.90"
        stock: 0
        active: false
  - id: retired
    name: Retired Lens
    active: false
`

// mockLoader is a mock implementation of the Loader interface for testing.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) ([]model.Product, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) ([]model.Product, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, path)
	}
	return nil, errors.New("not implemented")
}

type fakeS3 struct {
	body []byte
	err  error
	keys []string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.keys = append(f.keys, *in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func gzipped(t *testing.T, data string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestFileLoader_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	products, err := NewFileLoader(zerolog.Nop()).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, products, 2)

	p := products[0]
	assert.True(t, p.Active)
	assert.Equal(t, model.CategoryDaily, p.Category)
	require.NotNil(t, p.BaseCurve)
	assert.Equal(t, "8.6", *p.BaseCurve)
	require.Len(t, p.Variants, 2)
	assert.Equal(t, "-1.00", p.Variants[0].Sph)
	assert.True(t, decimal.RequireFromString("99.90").Equal(p.Variants[0].Price))
	assert.False(t, p.Variants[1].Active)
	assert.False(t, products[1].Active)
}

func TestFileLoader_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml.gz")
	require.NoError(t, os.WriteFile(path, gzipped(t, seedYAML), 0o600))

	products, err := NewFileLoader(zerolog.Nop()).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestFileLoader_Errors(t *testing.T) {
	dir := t.TempDir()
	loader := NewFileLoader(zerolog.Nop())

	tests := []struct {
		name    string
		content string
	}{
		{name: "bad price", content: "products:\n  - id: a\n    name: A\n    variants:\n      - id: v\n        price: abc\n"},
		{name: "negative stock", content: "products:\n  - id: a\n    name: A\n    variants:\n      - id: v\n        price: \"1\"\n        stock: -1\n"},
		{name: "duplicate product", content: "products:\n  - id: a\n    name: A\n  - id: a\n    name: B\n"},
		{name: "missing name", content: "products:\n  - id: a\n"},
		{name: "not yaml", content: "products: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			_, err := loader.Load(context.Background(), path)
			assert.Error(t, err)
		})
	}

	_, err := loader.Load(context.Background(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestS3Loader(t *testing.T) {
	client := &fakeS3{body: gzipped(t, seedYAML)}
	loader := NewS3LoaderWithClient(client, "bucket", zerolog.Nop())

	products, err := loader.Load(context.Background(), "catalog/lenses.yaml.gz")
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, []string{"catalog/lenses.yaml.gz"}, client.keys)

	client.err = errors.New("access denied")
	_, err = loader.Load(context.Background(), "catalog/lenses.yaml.gz")
	assert.Error(t, err)
}

func TestFallbackLoader_S3Success(t *testing.T) {
	s3 := &mockLoader{loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
		assert.Equal(t, "catalog/lenses.yaml", path, "S3 key should have prefix")
		return DefaultProducts()[:2], nil
	}}
	file := &mockLoader{loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
		t.Error("file loader should not be called when S3 succeeds")
		return nil, errors.New("should not be called")
	}}

	products, err := NewFallbackLoader(s3, file, "catalog/", true, zerolog.Nop()).Load(context.Background(), "lenses.yaml")
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestFallbackLoader_S3FailsFallsBackToLocal(t *testing.T) {
	s3 := &mockLoader{loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
		return nil, errors.New("S3 connection failed")
	}}
	file := &mockLoader{loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
		assert.Equal(t, "lenses.yaml", path, "local file path should not have prefix")
		return DefaultProducts()[:1], nil
	}}

	products, err := NewFallbackLoader(s3, file, "catalog/", true, zerolog.Nop()).Load(context.Background(), "lenses.yaml")
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestFallbackLoader_S3Disabled(t *testing.T) {
	s3 := &mockLoader{loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
		t.Error("S3 loader should not be called when disabled")
		return nil, nil
	}}
	file := &mockLoader{loadFunc: func(ctx context.Context, path string) ([]model.Product, error) {
		return DefaultProducts(), nil
	}}

	products, err := NewFallbackLoader(s3, file, "catalog/", false, zerolog.Nop()).Load(context.Background(), "lenses.yaml")
	require.NoError(t, err)
	assert.Len(t, products, 4)
}

func TestWriteSeed_LoadsBack(t *testing.T) {
	defaults := DefaultProducts()
	defaults[3].Variants[4].Active = false

	path := filepath.Join(t.TempDir(), "catalog.yaml.gz")
	var buf bytes.Buffer
	require.NoError(t, WriteSeed(&buf, defaults, true))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	products, err := NewFileLoader(zerolog.Nop()).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, products, len(defaults))

	for i, p := range products {
		assert.Equal(t, defaults[i].ID, p.ID)
		assert.Equal(t, defaults[i].BaseCurve, p.BaseCurve)
		assert.Equal(t, defaults[i].UVBlocking, p.UVBlocking)
		require.Len(t, p.Variants, len(defaults[i].Variants))
		for j, v := range p.Variants {
			assert.Equal(t, defaults[i].Variants[j].SKU, v.SKU)
			assert.True(t, defaults[i].Variants[j].Price.Equal(v.Price), v.ID)
			assert.Equal(t, defaults[i].Variants[j].Active, v.Active, v.ID)
		}
	}
}
