//go:build ignore

// Writes the built-in catalogue as a seed file for CATALOG_SEED_FILE or S3.
//
//	go run scripts/generate_catalog_seed.go [-out data/catalog/catalog.yaml.gz]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"lensstore/internal/catalog"
)

func main() {
	out := flag.String("out", "data/catalog/catalog.yaml.gz", "seed file to write; .gz is gzipped")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	file, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer file.Close()

	products := catalog.DefaultProducts()
	if err := catalog.WriteSeed(file, products, strings.HasSuffix(*out, ".gz")); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}

	variants := 0
	for _, p := range products {
		variants += len(p.Variants)
	}
	fmt.Printf("Created %s with %d products and %d variants\n", *out, len(products), variants)
}
