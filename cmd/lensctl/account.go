package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"lensstore/internal/cart"
	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errNoUser = errors.New("no user set, pass --user or LENSSTORE_USER_ID")

func ordersCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List the orders of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.userID == "" {
				return errNoUser
			}
			orders, err := a.client().Orders(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list orders: %w", err)
			}
			if asJSON {
				return writeJSON(a.out, orders)
			}
			return printOrders(a.out, orders)
		},
	}

	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")

	return cmd
}

func reorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder [order-id]",
		Short: "Add the items of a past order to the local cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.userID == "" {
				return errNoUser
			}
			orderID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}

			return a.withCart(cmd.Context(), func(c *cart.Cart) (bool, error) {
				result, err := a.client().Reorder(cmd.Context(), orderID, c.Lines())
				if err != nil {
					return false, fmt.Errorf("reorder failed: %w", err)
				}

				c.Clear()
				for _, l := range result.Lines {
					c.Add(l)
				}
				if result.Notice != "" {
					fmt.Fprintln(a.out, result.Notice)
				}
				return result.Added > 0, printCart(a.out, c)
			})
		},
	}
}

func printOrders(w io.Writer, orders []model.OrderDetail) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tDATE\tSTATUS\tITEMS\tTOTAL")
	for _, o := range orders {
		units := 0
		for _, it := range o.Items {
			units += it.Quantity
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\tR$ %s\n",
			o.ID, o.CreatedAt.Format("2006-01-02"), o.Status, units, o.Subtotal.StringFixed(2))
	}
	return tw.Flush()
}
