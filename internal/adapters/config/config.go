package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"vega/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Provider      ProviderConfig
	Engine        EngineConfig
	ErrorTracking ErrorTrackingConfig
	HTTP          HTTPConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"vega"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ProviderConfig configures the market data provider client.
type ProviderConfig struct {
	BaseURL      string        `envconfig:"PROVIDER_BASE_URL" default:"https://api.schwabapi.com"`
	AccessToken  string        `envconfig:"PROVIDER_ACCESS_TOKEN"`
	Timeout      time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`
	RatePerMin   int           `envconfig:"PROVIDER_RATE_PER_MIN" default:"120"`
	CacheTTL     time.Duration `envconfig:"PROVIDER_CACHE_TTL" default:"30s"`
	MaxAuthTries int           `envconfig:"PROVIDER_MAX_AUTH_TRIES" default:"2"`
}

// EngineConfig holds the tunable constants of the decision engine. The margins
// and thresholds here are observed heuristics, not principled derivations, so
// they are surfaced as configuration rather than hard-coded.
type EngineConfig struct {
	MoneynessBandPct  float64 `envconfig:"ENGINE_MONEYNESS_BAND_PCT" default:"0.20"`
	MinDTE            int     `envconfig:"ENGINE_MIN_DTE" default:"7"`
	MaxDTE            int     `envconfig:"ENGINE_MAX_DTE" default:"90"`
	MaxSpreadPct      float64 `envconfig:"ENGINE_MAX_SPREAD_PCT" default:"10"`
	MinOpenInterest   int64   `envconfig:"ENGINE_MIN_OPEN_INTEREST" default:"100"`
	MinVolume         int64   `envconfig:"ENGINE_MIN_VOLUME" default:"50"`
	MinMidPrice       float64 `envconfig:"ENGINE_MIN_MID_PRICE" default:"0.05"`
	DirectionalMargin int     `envconfig:"ENGINE_DIRECTIONAL_MARGIN" default:"3"`
	HedgeMargin       int     `envconfig:"ENGINE_HEDGE_MARGIN" default:"2"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type HTTPConfig struct {
	Addr string `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads configuration from environment variables.
// It first tries to load .env file (useful for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
