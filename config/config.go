package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"5001"`

	// StoreDriver is "postgres" or "memory".
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DB          DBConfig

	TokenSecret   string        `env:"TOKEN_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	InvitationTTL time.Duration `env:"INVITATION_TTL" envDefault:"0s"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	AI      AIConfig
	Storage StorageConfig

	RateLimitAuthPerMin int `env:"RATE_LIMIT_AUTH_PER_MIN" envDefault:"20"`
	RateLimitAIPerMin   int `env:"RATE_LIMIT_AI_PER_MIN" envDefault:"10"`

	OTel OTelConfig
}

type DBConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"slidewise"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN prefers DATABASE_URL and otherwise assembles a key/value DSN.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type AIConfig struct {
	APIKey     string        `env:"OPENROUTER_KEY"`
	BaseURL    string        `env:"AI_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	Model      string        `env:"AI_MODEL" envDefault:"google/gemma-3-27b-it:free"`
	ImageModel string        `env:"AI_IMAGE_MODEL"`
	Timeout    time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`
	Structured bool          `env:"AI_STRUCTURED_OUTPUT" envDefault:"false"`
	Referer    string        `env:"AI_REFERER" envDefault:"https://slidewise-ai.com"`
	Title      string        `env:"AI_TITLE" envDefault:"SlideWise AI"`
}

type StorageConfig struct {
	SupabaseURL    string `env:"SUPABASE_URL"`
	SupabaseKey    string `env:"SUPABASE_KEY"`
	SupabaseBucket string `env:"SUPABASE_BUCKET" envDefault:"logos"`
	UploadDir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:5001"`
}

// UseSupabase reports whether logo uploads go to Supabase instead of local disk.
func (c StorageConfig) UseSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

type OTelConfig struct {
	Endpoint       string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers        string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"slidewise-server"`
	ServiceVersion string `env:"OTEL_SERVICE_VERSION" envDefault:"dev"`
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET is required")
	}
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.TokenTTL < 0 || c.InvitationTTL < 0 {
		return errors.New("TOKEN_TTL and INVITATION_TTL must not be negative")
	}
	return nil
}
