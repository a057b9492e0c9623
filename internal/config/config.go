package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendXLSX     = "xlsx"
	BackendSheets   = "sheets"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"FundFlow"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Timezone string `envconfig:"TIMEZONE" default:"Asia/Baghdad"`
		// PaymentMethods are offered as suggestions when issuing a payment.
		PaymentMethods []string `envconfig:"PAYMENT_METHODS" default:"Cash,Bank transfer,Cheque"`
	}

	Store struct {
		Backend           string        `envconfig:"STORE_BACKEND" default:"memory"`
		Timeout           time.Duration `envconfig:"STORE_TIMEOUT" default:"10s"`
		RateLimit         float64       `envconfig:"STORE_RATE_LIMIT" default:"0"`
		RateBurst         int           `envconfig:"STORE_RATE_BURST" default:"1"`
		RetryAttempts     int           `envconfig:"STORE_RETRY_ATTEMPTS" default:"3"`
		SequencerAttempts int           `envconfig:"SEQUENCER_ATTEMPTS" default:"5"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"fundflow"`
		MaxConns int    `envconfig:"DB_MAX_CONNS" default:"10"`
	}

	XLSX struct {
		Path  string `envconfig:"XLSX_PATH" default:"transactions.xlsx"`
		Sheet string `envconfig:"XLSX_SHEET" default:"Sheet1"`
	}

	Sheets struct {
		SpreadsheetID   string `envconfig:"SHEETS_SPREADSHEET_ID"`
		Sheet           string `envconfig:"SHEETS_SHEET" default:"Sheet1"`
		CredentialsFile string `envconfig:"SHEETS_CREDENTIALS_FILE"`
	}

	Cache struct {
		ListTTL      time.Duration `envconfig:"CACHE_LIST_TTL" default:"60s"`
		AggregateTTL time.Duration `envconfig:"CACHE_AGGREGATE_TTL" default:"300s"`
		RedisAddr    string        `envconfig:"REDIS_ADDR"`
		RedisPrefix  string        `envconfig:"REDIS_PREFIX" default:"fundflow"`
	}

	Claim struct {
		Settle time.Duration `envconfig:"CLAIM_SETTLE" default:"250ms"`
		TTL    time.Duration `envconfig:"CLAIM_TTL" default:"30s"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location resolves TIMEZONE for date stamps.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.App.Timezone, err)
	}

	return loc, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendPostgres:
	case BackendXLSX:
		if c.XLSX.Path == "" {
			return fmt.Errorf("XLSX_PATH is required for the %s backend", BackendXLSX)
		}
	case BackendSheets:
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("SHEETS_SPREADSHEET_ID is required for the %s backend", BackendSheets)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Store.RetryAttempts < 1 {
		return fmt.Errorf("STORE_RETRY_ATTEMPTS must be at least 1")
	}

	return nil
}
