package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/snapstats/analyzer/internal/models"
)

type Config struct {
	// Server
	Port           int
	Env            string
	RequestTimeout time.Duration
	MaxBodySize    int64

	// CORS
	AllowedOrigins []string

	// Analysis defaults
	Padding    string
	Delimiter  string
	CardSort   models.CardSort
	LimitCards int

	// Display names
	NamesFiles []string
	RedisURL   string

	// Match log database (optional)
	DatabaseDriver string
	DatabaseURL    string
}

// Load loads configuration from environment variables.
// It returns an error if an analysis default is unusable.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnvInt("PORT", 8080),
		Env:            getEnv("ENV", "development"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxBodySize:    int64(getEnvInt("MAX_BODY_SIZE", 16<<20)),

		Padding:    getEnv("PADDING", models.DefaultPadding),
		Delimiter:  os.Getenv("DELIMITER"),
		CardSort:   models.CardSort(getEnv("CARD_SORT", string(models.SortByAppearances))),
		LimitCards: getEnvInt("LIMIT_CARDS", 0),

		RedisURL:       os.Getenv("REDIS_URL"),
		DatabaseDriver: os.Getenv("DATABASE_DRIVER"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
	}

	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"))
	cfg.NamesFiles = splitList(os.Getenv("NAMES_FILES"))

	// Unset means comma; explicitly empty is rejected below.
	if _, set := os.LookupEnv("DELIMITER"); !set {
		cfg.Delimiter = ","
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that CLI flags may have overridden.
func (c *Config) Validate() error {
	if c.Delimiter == "" {
		return fmt.Errorf("delimiter must not be empty")
	}
	if c.Padding == "" {
		return fmt.Errorf("padding sentinel must not be empty")
	}
	switch c.CardSort {
	case models.SortByName, models.SortByAppearances:
	default:
		return fmt.Errorf("invalid card sort %q: want %q or %q", c.CardSort, models.SortByName, models.SortByAppearances)
	}
	if c.LimitCards < 0 {
		return fmt.Errorf("limit cards must be >= 0, got %d", c.LimitCards)
	}
	if (c.DatabaseDriver == "") != (c.DatabaseURL == "") {
		return fmt.Errorf("DATABASE_DRIVER and DATABASE_URL must be set together")
	}
	return nil
}

// IsDevelopment reports whether development logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
