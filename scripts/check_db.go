//go:build ignore

// Checks that both database roles can connect and see the store tables.
//
//	go run scripts/check_db.go
package main

import (
	"context"
	"fmt"
	"os"

	"lensstore/internal/config"
	"lensstore/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func main() {
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	logger := zerolog.Nop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect with the write role: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	readPool, err := database.NewReadPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect with the read role: %v\n", err)
		os.Exit(1)
	}
	defer readPool.Close()

	for name, p := range map[string]*pgxpool.Pool{"write": pool, "read": readPool} {
		var dbName, user string
		if err := p.QueryRow(ctx, "SELECT current_database(), current_user").Scan(&dbName, &user); err != nil {
			fmt.Fprintf(os.Stderr, "QueryRow failed for %s role: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("%s role: connected to %s as %s\n", name, dbName, user)
	}

	rows, err := pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' ORDER BY table_name`)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	fmt.Println("\nTables:")
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  - %s\n", table)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Rows failed: %v\n", err)
		os.Exit(1)
	}
}
