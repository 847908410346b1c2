package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	Port          string
	AllowedOrigin string

	StorageDriver  string
	SQLitePath     string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	AuthSecret            string
	AccessTokenTTLMinutes int
	OperatorUsername      string
	OperatorPassword      string
	ManagerPIN            string

	TaxRate           decimal.Decimal
	LowStockThreshold int
	SeedCatalog       bool

	LogLevel    string
	LogEncoding string
}

// Load reads a .env file when present, then the environment. Secrets get
// no defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", DriverSQLite)),
		SQLitePath:     getEnv("SQLITE_PATH", "vintagepos.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "vintagepos:"),

		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 480),
		OperatorUsername:      getEnv("OPERATOR_USERNAME", "cashier"),
		OperatorPassword:      os.Getenv("OPERATOR_PASSWORD"),
		ManagerPIN:            strings.TrimSpace(os.Getenv("MANAGER_PIN")),

		TaxRate:           getEnvDecimal("TAX_RATE", decimal.RequireFromString("0.10")),
		LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 10),
		SeedCatalog:       getEnvBool("SEED_CATALOG", true),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogEncoding: getEnv("LOG_ENCODING", "json"),
	}
	if cfg.AccessTokenTTLMinutes < 1 {
		cfg.AccessTokenTTLMinutes = 480
	}
	if cfg.LowStockThreshold < 0 {
		cfg.LowStockThreshold = 10
	}
	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return fallback
}

// getEnvDecimal accepts rates in [0, 1).
func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(getEnv(key, ""))
	if err != nil || d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fallback
	}
	return d
}
