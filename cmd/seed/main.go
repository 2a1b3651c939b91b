// Command seed prepares a database: schema, catalogue and an optional demo account.
package main

import (
	"context"
	"fmt"
	"os"

	"lensstore/internal/catalog"
	"lensstore/internal/config"
	"lensstore/internal/database"
	"lensstore/internal/model"
	"lensstore/internal/repository"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

type options struct {
	seedFile     string
	skipMigrate  bool
	demoEmail    string
	demoPassword string
}

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:          "seed",
		Short:        "Migrate the database and load the catalogue",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	rootCmd.Flags().StringVarP(&opts.seedFile, "file", "f", "", "YAML seed file (.gz allowed); built-in catalogue when empty")
	rootCmd.Flags().BoolVar(&opts.skipMigrate, "skip-migrate", false, "do not apply the schema")
	rootCmd.Flags().StringVar(&opts.demoEmail, "demo-email", "", "create a demo account with this e-mail")
	rootCmd.Flags().StringVar(&opts.demoPassword, "demo-password", "", "password of the demo account")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if err := config.LoadEnvFile(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if !opts.skipMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	products := catalog.DefaultProducts()
	if opts.seedFile != "" {
		products, err = catalog.NewFileLoader(logger).Load(ctx, opts.seedFile)
		if err != nil {
			return err
		}
	}
	if err := repository.NewProductRepository(pool, logger).Upsert(ctx, products); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	if opts.demoEmail == "" {
		return nil
	}

	user, err := demoUser(opts.demoEmail, opts.demoPassword)
	if err != nil {
		return err
	}
	if err := repository.NewUserRepository(pool, logger).Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			logger.Info().Str("email", user.Email).Msg("demo account already exists")
			return nil
		}
		return err
	}

	logger.Info().
		Str("user_id", user.ID.String()).
		Str("email", user.Email).
		Msg("demo account created, use the id as LENSSTORE_USER_ID")
	return nil
}

// demoUser builds an account with a bcrypt hash. An empty password leaves
// the account without one.
func demoUser(email, password string) (*model.User, error) {
	user := &model.User{ID: uuid.New(), Email: email}
	if password == "" {
		return user, nil
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("demo password must have at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return user, nil
}
