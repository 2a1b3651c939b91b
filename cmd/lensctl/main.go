// Command lensctl browses the storefront, keeps a local cart and checks out.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lensstore/internal/cart"
	"lensstore/internal/client"

	"github.com/spf13/cobra"
)

var Version = "dev"

// app holds the persistent flags shared by every command.
type app struct {
	apiURL   string
	apiKey   string
	userID   string
	cartPath string
	out      io.Writer
}

func main() {
	a := &app{out: os.Stdout}

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lensctl",
		Short:         "lensctl - contact lens storefront from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.apiURL, "api", envOr("LENSSTORE_API_URL", "http://localhost:8080"), "storefront API base URL")
	flags.StringVar(&a.apiKey, "api-key", os.Getenv("LENSSTORE_API_KEY"), "API key sent as X-API-Key")
	flags.StringVar(&a.userID, "user", os.Getenv("LENSSTORE_USER_ID"), "account user id")
	flags.StringVar(&a.cartPath, "cart", envOr("LENSSTORE_CART", defaultCartPath()), "local cart database")

	rootCmd.AddCommand(productsCmd(a))
	rootCmd.AddCommand(productCmd(a))
	rootCmd.AddCommand(cartCmd(a))
	rootCmd.AddCommand(checkoutCmd(a))
	rootCmd.AddCommand(ordersCmd(a))
	rootCmd.AddCommand(reorderCmd(a))

	return rootCmd
}

func (a *app) client() *client.Client {
	var opts []client.Option
	if a.userID != "" {
		opts = append(opts, client.WithUser(a.userID))
	}
	return client.New(a.apiURL, a.apiKey, opts...)
}

// withCart loads the local cart, runs fn and saves the cart when fn reports a change.
func (a *app) withCart(ctx context.Context, fn func(c *cart.Cart) (bool, error)) error {
	store, err := cart.NewSQLiteStore(a.cartPath)
	if err != nil {
		return err
	}
	defer store.Close()

	c, err := store.Load(ctx)
	if err != nil {
		return err
	}

	changed, err := fn(c)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return store.Save(ctx, c)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultCartPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "lensctl-cart.db"
	}
	return filepath.Join(dir, "lensstore", "cart.db")
}
