package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the process settings read from the environment.
type Config struct {
	Port             string
	DatabaseURL      string
	DBPath           string
	RedisAddr        string
	RoleCacheTTL     time.Duration
	ServiceAreasPath string
	UserSeedPath     string
	PaymentGateway   string
	PaymentKey       string
	PaymentURL       string
	PaymentCurrency  string
	LogLevel         string

	// Warnings lists settings that were rejected in favour of a default.
	// Callers log them once logging is configured.
	Warnings []string
}

// Load reads a .env file when present, then the environment.
func Load() Config {
	_ = godotenv.Load()

	var warnings []string
	ttl, err := Duration("ROLE_CACHE_TTL", 5*time.Minute)
	if err != nil {
		warnings = append(warnings, err.Error())
	}

	return Config{
		Port:             Get("PORT", "8080"),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBPath:           Get("DB_PATH", "data/app.db"),
		RedisAddr:        strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RoleCacheTTL:     ttl,
		ServiceAreasPath: Get("SERVICE_AREAS_PATH", "data/seeds/service_areas.yaml"),
		UserSeedPath:     Get("USER_SEED_PATH", "data/seeds/users.json"),
		PaymentGateway:   Get("PAYMENT_GATEWAY", "card"),
		PaymentKey:       strings.TrimSpace(os.Getenv("PAYMENT_GATEWAY_KEY")),
		PaymentURL:       strings.TrimSpace(os.Getenv("PAYMENT_GATEWAY_URL")),
		PaymentCurrency:  strings.ToLower(Get("PAYMENT_CURRENCY", "bdt")),
		LogLevel:         Get("LOG_LEVEL", "info"),
		Warnings:         warnings,
	}
}

// LogWarnings reports each entry of Warnings on logger.
func (c Config) LogWarnings(logger *zap.Logger) {
	for _, w := range c.Warnings {
		logger.Warn("config: " + w)
	}
}

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Duration parses key as a positive duration. Unset keys yield fallback; an
// invalid value yields fallback and an error describing it.
func Duration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("invalid duration %s=%q, using default %s", key, v, fallback)
	}
	return d, nil
}
