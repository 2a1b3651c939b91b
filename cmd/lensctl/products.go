package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"lensstore/internal/model"

	"github.com/spf13/cobra"
)

func productsCmd(a *app) *cobra.Command {
	var (
		limit  int
		offset int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List active products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := a.client().Products(cmd.Context(), limit, offset)
			if err != nil {
				return fmt.Errorf("failed to list products: %w", err)
			}
			if asJSON {
				return writeJSON(a.out, products)
			}
			return printProducts(a.out, products)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum products")
	cmd.Flags().IntVar(&offset, "offset", 0, "products to skip")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")

	return cmd
}

func productCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "product [id]",
		Short: "Show a product and its degrees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := a.client().Product(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get product: %w", err)
			}
			if asJSON {
				return writeJSON(a.out, product)
			}
			return printProduct(a.out, product)
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")

	return cmd
}

func printProducts(w io.Writer, products []model.Product) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, "No products.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tFROM\tDEGREES")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\tR$ %s\t%d\n", p.ID, p.Name, p.Brand, p.MinPrice().StringFixed(2), len(p.Variants))
	}
	return tw.Flush()
}

func printProduct(w io.Writer, p *model.Product) error {
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.ID)
	if p.ShortDescription != "" {
		fmt.Fprintln(w, p.ShortDescription)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SPH\tVARIANT\tPRICE\tSTOCK")
	for _, v := range p.Variants {
		fmt.Fprintf(tw, "%s\t%s\tR$ %s\t%d\n", v.Sph, v.ID, v.Price.StringFixed(2), v.Stock)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
