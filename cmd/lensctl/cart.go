package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"lensstore/internal/cart"
	"lensstore/internal/model"

	"github.com/spf13/cobra"
)

func cartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCart(cmd, a)
		},
	}

	cmd.AddCommand(cartAddCmd(a))
	cmd.AddCommand(cartSetCmd(a))
	cmd.AddCommand(cartRemoveCmd(a))
	cmd.AddCommand(cartClearCmd(a))
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCart(cmd, a)
		},
	})

	return cmd
}

func showCart(cmd *cobra.Command, a *app) error {
	return a.withCart(cmd.Context(), func(c *cart.Cart) (bool, error) {
		return false, printCart(a.out, c)
	})
}

func cartAddCmd(a *app) *cobra.Command {
	var (
		sph string
		qty int
	)

	cmd := &cobra.Command{
		Use:   "add [product-id] --sph [degree]",
		Short: "Add a product degree to the cart",
		Long: `Add a product degree to the cart. Adding a degree already in the cart
increases its quantity. The degree is a flag so that negative values such
as -1.25 are not read as options.

Examples:
  lensctl cart add acuvue-oasys-1day-90 --sph -1.25
  lensctl cart add biofinity-6 --sph=+2.00 --qty 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, err := a.client().Product(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get product: %w", err)
			}

			line, err := lineFor(product, sph, qty)
			if err != nil {
				return err
			}

			return a.withCart(cmd.Context(), func(c *cart.Cart) (bool, error) {
				c.Add(line)
				fmt.Fprintf(a.out, "Added %d x %s (SPH %s).\n", line.Quantity, line.Title, line.Sph)
				return true, nil
			})
		},
	}

	cmd.Flags().StringVar(&sph, "sph", "", "spherical degree, e.g. -1.25")
	cmd.Flags().IntVarP(&qty, "qty", "q", 1, "boxes to add")
	_ = cmd.MarkFlagRequired("sph")

	return cmd
}

func cartSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set [line] [qty]",
		Short: "Set the quantity of a cart line; zero removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}

			return a.withCart(cmd.Context(), func(c *cart.Cart) (bool, error) {
				key, err := lineKeyAt(c, args[0])
				if err != nil {
					return false, err
				}
				c.SetQuantity(key, qty)
				return true, printCart(a.out, c)
			})
		},
	}
}

func cartRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [line]",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCart(cmd.Context(), func(c *cart.Cart) (bool, error) {
				key, err := lineKeyAt(c, args[0])
				if err != nil {
					return false, err
				}
				c.Remove(key)
				return true, printCart(a.out, c)
			})
		},
	}
}

func cartClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCart(cmd.Context(), func(c *cart.Cart) (bool, error) {
				c.Clear()
				fmt.Fprintln(a.out, "Cart cleared.")
				return true, nil
			})
		},
	}
}

// lineFor builds a cart line for the variant of p with the given SPH.
func lineFor(p *model.Product, sph string, qty int) (model.CartLine, error) {
	v, ok := p.VariantBySph(sph)
	if !ok {
		return model.CartLine{}, fmt.Errorf("%s has no degree %s", p.ID, sph)
	}
	if qty < 1 {
		return model.CartLine{}, fmt.Errorf("quantity must be at least 1")
	}
	if v.Stock < qty {
		return model.CartLine{}, fmt.Errorf("only %d in stock for %s SPH %s", v.Stock, p.ID, sph)
	}

	return model.CartLine{
		ProductID: p.ID,
		VariantID: v.ID,
		SKU:       v.SKU,
		Title:     p.Name,
		Image:     p.Image,
		Sph:       v.Sph,
		UnitPrice: v.Price,
		Quantity:  qty,
	}, nil
}

// lineKeyAt resolves a 1-based line number as printed by printCart.
func lineKeyAt(c *cart.Cart, arg string) (model.LineKey, error) {
	n, err := strconv.Atoi(arg)
	lines := c.Lines()
	if err != nil || n < 1 || n > len(lines) {
		return model.LineKey{}, fmt.Errorf("no cart line %q", arg)
	}
	return lines[n-1].Key(), nil
}

func printCart(w io.Writer, c *cart.Cart) error {
	lines := c.Lines()
	if len(lines) == 0 {
		_, err := fmt.Fprintln(w, "Cart is empty.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPRODUCT\tSPH\tQTY\tPRICE\tTOTAL")
	for i, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\tR$ %s\tR$ %s\n",
			i+1, l.Title, l.Sph, l.Quantity, l.UnitPrice.StringFixed(2), l.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t\t%d\t\tR$ %s\n", c.Len(), c.Subtotal().StringFixed(2))
	return tw.Flush()
}
