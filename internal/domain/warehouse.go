// Package domain defines the core interfaces and types for Kestrel.
package domain

import (
	"context"
	"time"
)

// Warehouse provides read-only access to the two analytics tables. The
// service never writes to the warehouse.
type Warehouse interface {
	// Customers runs the fixed customers_segmented query and returns
	// every row, IDs normalized to strings.
	Customers(ctx context.Context) ([]Customer, error)

	// Transactions runs the fixed transactions_with_fraud_score query.
	// Rows with unparseable timestamps are dropped and counted.
	Transactions(ctx context.Context) ([]Transaction, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// DatasetSource hands out the loaded datasets. The cached reader in
// internal/datahub implements it; services consume this rather than
// the warehouse so reads stay memoized.
type DatasetSource interface {
	Customers(ctx context.Context) ([]Customer, error)
	Transactions(ctx context.Context) ([]Transaction, error)
}

// WarehouseConfig holds configuration for warehouse initialization.
type WarehouseConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific (local sandbox)
	SQLitePath string

	// PostgreSQL specific (cloud warehouse). User and secret come from
	// the service-account key, or from the ambient settings below when
	// no key is configured.
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string
	PostgresSSLMode  string
	PostgresUser     string
	PostgresPassword string

	// Project and Dataset qualify table references, rendering
	// project.dataset.table the way the upstream warehouse names them.
	// The sqlite sandbox ignores both.
	Project string
	Dataset string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
