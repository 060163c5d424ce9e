package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port             string
	LogLevel         string
	JWTSecret        string
	SessionTTL       time.Duration
	AccessCodeHash   string
	CBRURL           string
	LendingMarginPct float64
	RateRefreshSpec  string
	SessionSweepSpec string
	MaxHorizonMonths int
	SMTPHost         string
	SMTPPort         string
	SMTPUsername     string
	SMTPPassword     string
	SenderEmail      string
}

// NewConfig loads configuration from environment variables, reading a .env
// file first when one is present
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "2h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	margin, err := strconv.ParseFloat(getEnv("LENDING_MARGIN_PCT", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LENDING_MARGIN_PCT: %w", err)
	}
	horizon, err := strconv.Atoi(getEnv("MAX_HORIZON_MONTHS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_HORIZON_MONTHS: %w", err)
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		SessionTTL:       ttl,
		AccessCodeHash:   getEnv("ACCESS_CODE_HASH", ""),
		CBRURL:           getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),
		LendingMarginPct: margin,
		RateRefreshSpec:  getEnv("RATE_REFRESH_SPEC", "@every 1h"),
		SessionSweepSpec: getEnv("SESSION_SWEEP_SPEC", "@every 10m"),
		MaxHorizonMonths: horizon,
		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         getEnv("SMTP_PORT", "25"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SenderEmail:      getEnv("SENDER_EMAIL", "planner@localhost"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.MaxHorizonMonths <= 0 {
		return nil, fmt.Errorf("MAX_HORIZON_MONTHS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
