package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds process-wide settings read from the environment (.env is loaded by main).
type Config struct {
	Port   string
	AppEnv string

	DBDriver    string // postgres | mysql | sqlite
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string

	JWTSecret string
	JWTTTL    time.Duration

	// seeded on first boot only
	AdminEmail    string
	AdminPassword string

	RedisAddress string

	GSTRate           decimal.Decimal
	PhoneRegion       string
	LowStockThreshold int
	LogLevel          string
}

func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "3000")
	cfg.AppEnv = getEnv("APP_ENV", "development")

	cfg.DBDriver = getEnv("DB_DRIVER", "postgres")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnv("DB_NAME", "inventory")
	cfg.DBPort = getEnv("DB_PORT", "5432")

	cfg.JWTSecret = getEnv("JWT_SECRET", "your-super-secret-key-change-in-production")
	cfg.JWTTTL = time.Duration(getInt("JWT_TTL_HOURS", 24)) * time.Hour
	cfg.AdminEmail = getEnv("ADMIN_EMAIL", "admin@example.com")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "admin123")

	cfg.RedisAddress = os.Getenv("REDIS_ADDRESS")

	cfg.GSTRate = getDecimal("GST_RATE", decimal.NewFromInt(18))
	cfg.PhoneRegion = getEnv("PHONE_REGION", "IN")
	cfg.LowStockThreshold = getInt("LOW_STOCK_THRESHOLD", 10)
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getDecimal(key string, def decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err == nil {
			return d
		}
	}
	return def
}
