// Package warehouse provides read-only access to the analytics tables
// in the data warehouse. Works with both SQLite and PostgreSQL drivers.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/opensight-finance/kestrel/internal/credentials"
	"github.com/opensight-finance/kestrel/internal/domain"
	"github.com/opensight-finance/kestrel/internal/metrics"
)

// The two tables the dashboard reads. Both are produced upstream; this
// service never writes to them.
const (
	CustomersTable    = "customers_segmented"
	TransactionsTable = "transactions_with_fraud_score"
)

// SQLWarehouse implements domain.Warehouse using database/sql.
type SQLWarehouse struct {
	db     *sql.DB
	driver string

	customersQuery    string
	transactionsQuery string
}

// New creates a warehouse client based on configuration. The postgres
// driver authenticates with the service-account key; sa may be nil for
// the sqlite sandbox or when ambient user/password settings are used.
func New(cfg domain.WarehouseConfig, sa *credentials.ServiceAccount) (*SQLWarehouse, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg, sa)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &SQLWarehouse{
		db:                db,
		driver:            cfg.Driver,
		customersQuery:    fmt.Sprintf("SELECT * FROM %s", QualifiedTable(cfg, CustomersTable)),
		transactionsQuery: fmt.Sprintf("SELECT * FROM %s", QualifiedTable(cfg, TransactionsTable)),
	}, nil
}

// QualifiedTable renders a table reference the way the warehouse names
// it: project.dataset.table on the cloud path. The sqlite sandbox has
// no schemas, so it always uses bare names.
func QualifiedTable(cfg domain.WarehouseConfig, table string) string {
	if cfg.Driver == "sqlite" {
		return table
	}
	switch {
	case cfg.Project != "" && cfg.Dataset != "":
		return cfg.Project + "." + cfg.Dataset + "." + table
	case cfg.Dataset != "":
		return cfg.Dataset + "." + table
	default:
		return table
	}
}

// Customers runs the fixed customers_segmented query and returns every
// row with IDs normalized to strings.
func (w *SQLWarehouse) Customers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := w.db.QueryContext(ctx, w.customersQuery)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", CustomersTable, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", CustomersTable, err)
	}

	customers := make([]domain.Customer, 0, len(records))
	for _, rec := range records {
		customers = append(customers, buildCustomer(rec))
	}

	metrics.DatasetRowsLoaded.WithLabelValues("customers").Set(float64(len(customers)))
	slog.Debug("customers dataset loaded", "rows", len(customers))
	return customers, nil
}

// Transactions runs the fixed transactions_with_fraud_score query. Rows
// whose transaction_date cannot be parsed are dropped; the drop count
// is logged and counted, never fatal.
func (w *SQLWarehouse) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := w.db.QueryContext(ctx, w.transactionsQuery)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", TransactionsTable, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", TransactionsTable, err)
	}

	transactions := make([]domain.Transaction, 0, len(records))
	dropped := 0
	for _, rec := range records {
		tx, ok := buildTransaction(rec)
		if !ok {
			dropped++
			continue
		}
		transactions = append(transactions, tx)
	}

	if dropped > 0 {
		metrics.DatasetRowsDropped.WithLabelValues("transactions").Add(float64(dropped))
		slog.Warn("dropped transactions with unparseable dates",
			"dropped", dropped,
			"kept", len(transactions),
		)
	}

	metrics.DatasetRowsLoaded.WithLabelValues("transactions").Set(float64(len(transactions)))
	slog.Debug("transactions dataset loaded", "rows", len(transactions))
	return transactions, nil
}

// Ping checks warehouse connectivity.
func (w *SQLWarehouse) Ping(ctx context.Context) error {
	return w.db.PingContext(ctx)
}

// Close closes the warehouse connection.
func (w *SQLWarehouse) Close() error {
	return w.db.Close()
}
