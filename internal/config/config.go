// Package config builds the runtime configuration: a baseline profile
// picked by the warehouse driver, overridden from KESTREL_* environment
// variables, with .env support for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/opensight-finance/kestrel/internal/domain"
)

// envPrefix namespaces every configuration variable.
const envPrefix = "KESTREL_"

// Load assembles the configuration. A .env file in the working
// directory is read first when present; real environment variables win
// over it. KESTREL_WAREHOUSE_DRIVER picks the baseline: postgres starts
// from CloudConfig, everything else from DefaultConfig.
func Load() (*domain.Config, error) {
	_ = godotenv.Load()

	cfg := domain.DefaultConfig()
	if getEnv("WAREHOUSE_DRIVER", "") == "postgres" {
		cfg = domain.CloudConfig()
	}

	applyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *domain.Config) {
	cfg.Server.Host = getEnv("HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)

	cfg.Warehouse.Driver = getEnv("WAREHOUSE_DRIVER", cfg.Warehouse.Driver)
	cfg.Warehouse.SQLitePath = getEnv("WAREHOUSE_PATH", cfg.Warehouse.SQLitePath)
	cfg.Warehouse.PostgresHost = getEnv("PG_HOST", cfg.Warehouse.PostgresHost)
	cfg.Warehouse.PostgresPort = getEnvInt("PG_PORT", cfg.Warehouse.PostgresPort)
	cfg.Warehouse.PostgresDB = getEnv("PG_DB", cfg.Warehouse.PostgresDB)
	cfg.Warehouse.PostgresSSLMode = getEnv("PG_SSLMODE", cfg.Warehouse.PostgresSSLMode)
	cfg.Warehouse.PostgresUser = getEnv("PG_USER", cfg.Warehouse.PostgresUser)
	cfg.Warehouse.PostgresPassword = getEnv("PG_PASSWORD", cfg.Warehouse.PostgresPassword)
	cfg.Warehouse.Project = getEnv("WAREHOUSE_PROJECT", cfg.Warehouse.Project)
	cfg.Warehouse.Dataset = getEnv("WAREHOUSE_DATASET", cfg.Warehouse.Dataset)

	cfg.Credentials.File = getEnv("CREDENTIALS_FILE", cfg.Credentials.File)
	cfg.Credentials.JSON = getEnv("CREDENTIALS_JSON", cfg.Credentials.JSON)

	cfg.Artifacts.Dir = getEnv("MODELS_DIR", cfg.Artifacts.Dir)
	cfg.Datasets.TTL = getEnvDuration("DATASET_TTL", cfg.Datasets.TTL)

	cfg.Cache.Type = getEnv("CACHE_TYPE", cfg.Cache.Type)
	cfg.Cache.LocalMaxSize = getEnvInt("CACHE_SIZE", cfg.Cache.LocalMaxSize)
	cfg.Cache.RedisAddr = getEnv("REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = getEnv("REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = getEnvInt("REDIS_DB", cfg.Cache.RedisDB)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.ServiceName = getEnv("TRACING_SERVICE", cfg.Tracing.ServiceName)
}

// Validate rejects configurations the components cannot start from.
func Validate(cfg *domain.Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", cfg.Server.Port)
	}

	switch cfg.Warehouse.Driver {
	case "sqlite":
		if cfg.Warehouse.SQLitePath == "" {
			return fmt.Errorf("sqlite driver requires KESTREL_WAREHOUSE_PATH")
		}
	case "postgres":
		if cfg.Warehouse.PostgresHost == "" || cfg.Warehouse.PostgresDB == "" {
			return fmt.Errorf("postgres driver requires KESTREL_PG_HOST and KESTREL_PG_DB")
		}
	default:
		return fmt.Errorf("unsupported warehouse driver: %s", cfg.Warehouse.Driver)
	}

	switch cfg.Cache.Type {
	case "memory":
	case "redis":
		if cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("redis cache requires KESTREL_REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported cache type: %s", cfg.Cache.Type)
	}

	if cfg.Datasets.TTL <= 0 {
		return fmt.Errorf("dataset TTL must be positive, got %s", cfg.Datasets.TTL)
	}
	if cfg.Artifacts.Dir == "" {
		return fmt.Errorf("models directory is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(envPrefix + key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
