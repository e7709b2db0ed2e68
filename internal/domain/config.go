package domain

import "time"

// Config holds the complete Kestrel configuration.
type Config struct {
	// Server settings
	Server ServerConfig `json:"server"`

	// Component configurations
	Warehouse WarehouseConfig `json:"warehouse"`
	Cache     CacheConfig     `json:"cache"`
	Datasets  DatasetConfig   `json:"datasets"`
	Artifacts ArtifactsConfig `json:"artifacts"`

	// Credential resolution for the cloud warehouse path
	Credentials CredentialsConfig `json:"credentials"`

	// Observability
	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds
}

// DatasetConfig controls how the two warehouse datasets are cached.
type DatasetConfig struct {
	// TTL is how long a loaded dataset stays fresh before the next
	// request triggers a re-query.
	TTL time.Duration `json:"ttl"`
}

// ArtifactsConfig locates the pretrained model bundle.
type ArtifactsConfig struct {
	// Dir is the directory holding the six model artifact files.
	Dir string `json:"dir"`
}

// CredentialsConfig locates the warehouse service-account key.
// File takes precedence over the inline JSON blob; when both are empty
// the postgres driver falls back to ambient user/password settings.
type CredentialsConfig struct {
	File string `json:"file"`
	JSON string `json:"-"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"serviceName"`
}

// DefaultConfig returns the sandbox configuration: sqlite warehouse,
// in-memory cache, local model directory. Suitable for development and
// for serving the dashboard over data produced by cmd/seed.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Warehouse: WarehouseConfig{
			Driver:     "sqlite",
			SQLitePath: "./kestrel.db",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 64,
			LocalTTL:     time.Hour,
		},
		Datasets: DatasetConfig{
			TTL: time.Hour,
		},
		Artifacts: ArtifactsConfig{
			Dir: "./models",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "kestrel",
		},
	}
}

// CloudConfig returns the cloud warehouse configuration: postgres
// driver, shared Redis dataset cache, tracing enabled. A service-account
// key (or ambient credentials) is mandatory on this path.
func CloudConfig() *Config {
	cfg := DefaultConfig()
	cfg.Warehouse = WarehouseConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "analytics",
	}
	cfg.Cache = CacheConfig{
		Type:      "redis",
		RedisAddr: "localhost:6379",
		LocalTTL:  time.Hour,
	}
	cfg.Tracing.Enabled = true
	return cfg
}
