package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string `env:"SERVER_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// StorageBackend selects the repository implementation: memory or postgres.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	DatabaseURL    string `env:"DATABASE_URL"`
	MigrationsDir  string `env:"MIGRATIONS_DIR" envDefault:"migrations"`

	// RedisAddr enables the Redis-backed places cache when set; otherwise an
	// in-process bounded cache is used.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"1h"`

	WeatherAPIKey     string `env:"WEATHER_API_KEY"`
	WeatherBaseURL    string `env:"WEATHER_BASE_URL" envDefault:"https://api.openweathermap.org"`
	PlacesAPIKey      string `env:"GOOGLE_PLACES_API_KEY"`
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	RazorpayKeyID     string `env:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `env:"RAZORPAY_KEY_SECRET"`

	RabbitMQURL  string `env:"RABBITMQ_URL"`
	MailExchange string `env:"MAIL_EXCHANGE" envDefault:"trips.mail"`
	MailQueue    string `env:"MAIL_QUEUE" envDefault:"trips.mail.outbound"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	MailFrom string `env:"MAIL_FROM" envDefault:"Ghumakkad Trips <noreply@ghumakkad.example>"`

	// ExternalTimeout bounds every outbound call (forecast, places, payment,
	// notification). External calls are never made while a trip lock is held.
	ExternalTimeout time.Duration `env:"EXTERNAL_TIMEOUT" envDefault:"10s"`

	PlacesCacheTTL        time.Duration `env:"PLACES_CACHE_TTL" envDefault:"6h"`
	PlacesCacheMaxEntries int           `env:"PLACES_CACHE_MAX_ENTRIES" envDefault:"512"`
}

// Load reads configuration from the environment, optionally seeded from a
// .env file when present.
func Load() (Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if cfg.StorageBackend == "postgres" && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required when STORAGE_BACKEND=postgres")
	}
	return cfg, nil
}
