package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	HTTPAddr          string
	Environment       string
	JWTSecret         string
	CommissionPercent int
	RateLimitPerMin   int
	MetricsUser       string
	MetricsPassword   string
	CORSOrigins       []string
	RunMigrations     bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		Environment:       getEnv("ENV", "development"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		CommissionPercent: 70,
		RateLimitPerMin:   100,
		MetricsUser:       os.Getenv("METRICS_USER"),
		MetricsPassword:   os.Getenv("METRICS_PASSWORD"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		RunMigrations:     true,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	var err error
	if cfg.CommissionPercent, err = getInt("COMMISSION_PERCENT", cfg.CommissionPercent); err != nil {
		return nil, err
	}
	if cfg.CommissionPercent < 0 || cfg.CommissionPercent > 100 {
		return nil, fmt.Errorf("COMMISSION_PERCENT must be within 0..100, got %d", cfg.CommissionPercent)
	}
	if cfg.RateLimitPerMin, err = getInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMin); err != nil {
		return nil, err
	}
	if raw := os.Getenv("RUN_MIGRATIONS"); raw != "" {
		cfg.RunMigrations, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("RUN_MIGRATIONS: %w", err)
		}
	}

	return cfg, nil
}

// MetricsAuthEnabled reports whether /metrics is behind basic auth.
func (c *Config) MetricsAuthEnabled() bool {
	return c.MetricsUser != "" && c.MetricsPassword != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
