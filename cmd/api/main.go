package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lensstore/internal/catalog"
	"lensstore/internal/config"
	"lensstore/internal/database"
	"lensstore/internal/handler"
	"lensstore/internal/metrics"
	"lensstore/internal/outbox"
	"lensstore/internal/payment"
	"lensstore/internal/repository"
	"lensstore/internal/router"
	"lensstore/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnvFile(".env"); err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting lensstore API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Elevated pool for writes, read pool for the catalogue
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	readPool, err := database.NewReadPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize read database: %w", err)
	}
	defer readPool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(readPool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	stockRepo := repository.NewStockRepository(pool, logger)
	profileRepo := repository.NewProfileRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	reader, err := newCatalogReader(ctx, cfg, productRepo, logger)
	if err != nil {
		return err
	}

	// Static catalogues are mirrored so reservations find their variants
	if reader.Source() == config.CatalogSourceStatic {
		products, err := reader.ListProducts(ctx)
		if err != nil {
			return fmt.Errorf("failed to read static catalog: %w", err)
		}
		if err := repository.NewProductRepository(pool, logger).Upsert(ctx, products); err != nil {
			return fmt.Errorf("failed to mirror static catalog: %w", err)
		}
	}

	var provider payment.Provider
	if cfg.MercadoPago.Configured() {
		provider = payment.NewMercadoPagoClient(cfg.MercadoPago, logger)
	} else {
		logger.Warn().Msg("MERCADOPAGO_ACCESS_TOKEN not set: pix disabled, hosted checkout runs in mock mode")
	}

	m := metrics.New("lensstore")
	topic := cfg.Kafka.Topic

	// Initialize services
	productService := service.NewProductService(reader, productRepo, logger)
	orderService := service.NewOrderService(orderRepo, topic, logger)
	checkoutService := service.NewCheckoutService(orderService, orderRepo, stockRepo, provider, topic, m, logger)
	webhookService := service.NewWebhookService(provider, orderRepo, stockRepo, topic, m, logger)
	accountService := service.NewAccountService(orderRepo, profileRepo, userRepo, reader, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, cfg.Site.BaseURL, logger),
		Webhook:  handler.NewWebhookHandler(webhookService, cfg.MercadoPago.WebhookSecret, logger),
		Account:  handler.NewAccountHandler(accountService, logger),
	}, m, cfg.Auth.APIKey, logger)

	if cfg.Kafka.Enabled() {
		publisher := outbox.NewKafkaPublisher(cfg.Kafka.Brokers)
		relay := outbox.NewRelay(outbox.NewStore(pool), publisher,
			time.Duration(cfg.Kafka.RelayIntervalSeconds)*time.Second, logger)

		relayDone := make(chan struct{})
		go func() {
			defer close(relayDone)
			relay.Run(ctx)
		}()
		defer func() {
			cancel()
			<-relayDone
			if err := publisher.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close kafka writer")
			}
		}()
	} else {
		logger.Info().Msg("KAFKA_BROKERS not set: order events stay in the outbox")
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCatalogReader wires the seed loaders: S3 first when enabled, the
// local file system otherwise or as fallback.
func newCatalogReader(ctx context.Context, cfg *config.Config, repo repository.ProductRepository, logger zerolog.Logger) (catalog.Reader, error) {
	fileLoader := catalog.NewFileLoader(logger)
	loader := fileLoader

	if cfg.S3.Enabled {
		s3Loader, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
		}
	}

	reader, err := catalog.NewReader(ctx, cfg.Catalog, repo, loader, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}
	return reader, nil
}
