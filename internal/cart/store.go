package cart

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"lensstore/internal/model"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// Store persists a single cart between runs.
type Store interface {
	Load(ctx context.Context) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Close() error
}

// SQLiteStore keeps the cart in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates when needed) the cart database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cart directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart database: %w", err)
	}
	// a single connection keeps :memory: databases alive across calls
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS cart_lines (
			position INTEGER NOT NULL,
			product_id TEXT NOT NULL,
			variant_id TEXT NOT NULL,
			sku TEXT NOT NULL,
			title TEXT NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			sph TEXT NOT NULL DEFAULT '',
			unit_price TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			PRIMARY KEY (product_id, variant_id)
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate cart database: %w", err)
	}
	return nil
}

// Load reads the stored cart. A fresh store yields an empty cart.
func (s *SQLiteStore) Load(ctx context.Context) (*Cart, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, variant_id, sku, title, image, sph, unit_price, quantity
		FROM cart_lines
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	c := &Cart{}
	for rows.Next() {
		var (
			l     model.CartLine
			price string
		)
		if err := rows.Scan(&l.ProductID, &l.VariantID, &l.SKU, &l.Title, &l.Image, &l.Sph, &price, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		l.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("cart line %s: invalid price %q: %w", l.VariantID, price, err)
		}
		c.lines = append(c.lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart: %w", err)
	}

	return c, nil
}

// Save replaces the stored cart with c.
func (s *SQLiteStore) Save(ctx context.Context, c *Cart) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cart transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines`); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	for i, l := range c.lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_lines (position, product_id, variant_id, sku, title, image, sph, unit_price, quantity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, i, l.ProductID, l.VariantID, l.SKU, l.Title, l.Image, l.Sph, l.UnitPrice.String(), l.Quantity)
		if err != nil {
			return fmt.Errorf("failed to save cart line %s: %w", l.VariantID, err)
		}
	}

	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
