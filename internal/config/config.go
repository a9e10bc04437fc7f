package config

import (
	"fmt"
	"net/url"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/spendboard/internal/transaction/store"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Spendboard"`
		Port int    `envconfig:"PORT" default:"8080"`
		// Location is the IANA zone transaction dates are read in.
		Location string `envconfig:"APP_LOCATION" default:"Local"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"spendboard"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Cache struct {
		Path     string        `envconfig:"CACHE_PATH" default:"spendboard-cache.db"`
		Duration time.Duration `envconfig:"CACHE_DURATION" default:"1h"`
	}

	Rates struct {
		Target       string        `envconfig:"TARGET_CURRENCY" default:"GBP"`
		PollInterval time.Duration `envconfig:"RATES_POLL_INTERVAL" default:"10m"`
		PrimaryURL   string        `envconfig:"RATES_PRIMARY_URL" default:"https://api.frankfurter.dev"`
		SecondaryURL string        `envconfig:"RATES_SECONDARY_URL" default:"https://api.exchangerate-api.com/v4/latest"`
		Timeout      time.Duration `envconfig:"RATES_TIMEOUT" default:"10s"`
		// Preload is fetched at start-up so the first render already converts.
		Preload []string `envconfig:"RATES_PRELOAD" default:"USD,TWD"`
	}

	Import struct {
		BatchSize int `envconfig:"IMPORT_BATCH_SIZE" default:"500"`
	}

	Categories struct {
		Order  []string `envconfig:"CATEGORY_ORDER"`
		Income []string `envconfig:"INCOME_CATEGORIES"`
	}
}

func (c *Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     c.DB.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.DB.SSLMode),
	}

	return u.String()
}

// Location resolves App.Location. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Location)
	if err != nil {
		return time.Local
	}

	return loc
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if _, err := time.LoadLocation(cfg.App.Location); err != nil {
		return nil, fmt.Errorf("invalid APP_LOCATION: %w", err)
	}

	if err := ValidateBatchSize(cfg.Import.BatchSize); err != nil {
		return nil, fmt.Errorf("invalid IMPORT_BATCH_SIZE: %w", err)
	}

	return &cfg, nil
}

// ValidateBatchSize accepts sizes whose multi-row insert stays within the
// Postgres bind parameter limit.
func ValidateBatchSize(n int) error {
	if n <= 0 || n > store.MaxBatchSize {
		return fmt.Errorf("batch size must be between 1 and %d, got %d", store.MaxBatchSize, n)
	}

	return nil
}
