package main

import (
	"errors"
	"fmt"

	"lensstore/internal/cart"
	"lensstore/internal/model"

	"github.com/spf13/cobra"
)

const (
	methodPix  = "pix"
	methodCard = "card"
)

func checkoutCmd(a *app) *cobra.Command {
	var (
		method   string
		customer model.Customer
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Check out the local cart",
		Long: `Check out the local cart with Pix or the hosted card checkout.

A Pix checkout prints the copy-and-paste code and keeps the cart until the
payment is confirmed. A card checkout prints the payment page URL and empties
the cart.

Examples:
  lensctl checkout --name "Maria da Silva" --email maria@example.com --cpf 12345678909
  lensctl checkout --method card --name "Maria da Silva" --email maria@example.com --cpf 12345678909`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if method != methodPix && method != methodCard {
				return fmt.Errorf("unknown payment method %q, want %s or %s", method, methodPix, methodCard)
			}

			return a.withCart(cmd.Context(), func(c *cart.Cart) (bool, error) {
				if c.Len() == 0 {
					return false, errors.New("cart is empty")
				}

				req := &model.CheckoutRequest{
					UserID:   a.userID,
					Currency: model.Currency,
					Customer: customer,
					Items:    c.CheckoutItems(),
				}

				if method == methodPix {
					resp, err := a.client().CheckoutPix(cmd.Context(), req)
					if err != nil {
						return false, fmt.Errorf("checkout failed: %w", err)
					}
					fmt.Fprintf(a.out, "Order %s created, total R$ %s.\n", resp.OrderID, c.Subtotal().StringFixed(2))
					fmt.Fprintf(a.out, "Payment %s\n\nPix copy-and-paste code:\n%s\n", resp.PaymentID, resp.QRCode)
					return false, nil
				}

				resp, err := a.client().CheckoutPreference(cmd.Context(), req)
				if err != nil {
					return false, fmt.Errorf("checkout failed: %w", err)
				}
				fmt.Fprintf(a.out, "Open to pay (%s):\n%s\n", resp.Mode, resp.InitPoint)
				c.Clear()
				return true, nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&method, "method", "m", methodPix, "payment method (pix, card)")
	flags.StringVar(&customer.FullName, "name", "", "customer full name")
	flags.StringVar(&customer.Email, "email", "", "customer e-mail")
	flags.StringVar(&customer.CPF, "cpf", "", "customer CPF")
	flags.StringVar(&customer.Phone, "phone", "", "customer phone")
	flags.StringVar(&customer.CEP, "cep", "", "delivery CEP")
	flags.StringVar(&customer.AddressLine1, "address", "", "delivery address")
	flags.StringVar(&customer.City, "city", "", "delivery city")
	flags.StringVar(&customer.State, "state", "", "delivery state")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("cpf")

	return cmd
}
