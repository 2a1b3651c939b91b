package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Catalog sources.
const (
	CatalogSourceDatabase = "database"
	CatalogSourceStatic   = "static"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Logger      LoggerConfig
	Auth        AuthConfig
	Site        SiteConfig
	MercadoPago MercadoPagoConfig
	Catalog     CatalogConfig
	S3          S3Config
	Kafka       KafkaConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
// User/Password is the elevated role used for writes. ReadUser/ReadPassword
// is the anonymous role used by the catalog reader and falls back to the
// elevated credentials when empty.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	ReadUser        string
	ReadPassword    string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// SiteConfig holds the public storefront location.
type SiteConfig struct {
	BaseURL string
}

// MercadoPagoConfig holds payment provider credentials.
// An empty AccessToken means the provider is not configured.
type MercadoPagoConfig struct {
	AccessToken    string
	BaseURL        string
	WebhookSecret  string
	TimeoutSeconds int
}

// Configured reports whether payment calls can be made.
func (c *MercadoPagoConfig) Configured() bool {
	return c.AccessToken != ""
}

// CatalogConfig selects where products are read from.
type CatalogConfig struct {
	Source   string
	SeedFile string // YAML seed used by the static source, optionally gzipped
}

// S3Config holds AWS S3 configuration for the catalog seed file.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "catalog/")
}

// KafkaConfig holds the order event relay configuration.
type KafkaConfig struct {
	Brokers              []string
	Topic                string
	RelayIntervalSeconds int
}

// Enabled reports whether the outbox relay should run.
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// LoadEnvFile preloads variables from a dotenv file. A missing file is not an error
// and variables already set in the environment win.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			ReadUser:        getEnv("DB_READ_USER", ""),
			ReadPassword:    getEnv("DB_READ_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "lensstore"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Site: SiteConfig{
			BaseURL: strings.TrimRight(getEnv("SITE_URL", ""), "/"),
		},
		MercadoPago: MercadoPagoConfig{
			AccessToken:    getEnv("MERCADOPAGO_ACCESS_TOKEN", ""),
			BaseURL:        getEnv("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com"),
			WebhookSecret:  getEnv("MERCADOPAGO_WEBHOOK_SECRET", ""),
			TimeoutSeconds: getEnvAsInt("MERCADOPAGO_TIMEOUT_SECONDS", 15),
		},
		Catalog: CatalogConfig{
			Source:   getEnv("CATALOG_SOURCE", CatalogSourceDatabase),
			SeedFile: getEnv("CATALOG_SEED_FILE", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "sa-east-1"),
			Prefix:  getEnv("S3_PREFIX", "catalog/"),
		},
		Kafka: KafkaConfig{
			Brokers:              getEnvAsList("KAFKA_BROKERS"),
			Topic:                getEnv("KAFKA_TOPIC", "lensstore.orders"),
			RelayIntervalSeconds: getEnvAsInt("OUTBOX_RELAY_INTERVAL_SECONDS", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Site.BaseURL != "" {
		u, err := url.Parse(c.Site.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid site URL: %s", c.Site.BaseURL)
		}
	}

	if c.MercadoPago.TimeoutSeconds < 1 {
		return fmt.Errorf("mercado pago timeout must be at least 1 second")
	}

	if c.Catalog.Source != CatalogSourceDatabase && c.Catalog.Source != CatalogSourceStatic {
		return fmt.Errorf("invalid catalog source: %s (must be database or static)", c.Catalog.Source)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Kafka.Enabled() {
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic is required when brokers are set")
		}
		if c.Kafka.RelayIntervalSeconds < 1 {
			return fmt.Errorf("outbox relay interval must be at least 1 second")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string for the elevated role.
func (c *DatabaseConfig) ConnectionString() string {
	return c.connectionString(c.User, c.Password)
}

// ReadConnectionString returns the connection string for the read-only role.
func (c *DatabaseConfig) ReadConnectionString() string {
	if c.ReadUser == "" {
		return c.ConnectionString()
	}
	return c.connectionString(c.ReadUser, c.ReadPassword)
}

func (c *DatabaseConfig) connectionString(user, password string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		user,
		password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
