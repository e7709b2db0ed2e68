package warehouse

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opensight-finance/kestrel/internal/domain"
	_ "modernc.org/sqlite"
)

// openSQLite opens the local sandbox database.
// Uses modernc.org/sqlite for pure Go implementation (no CGO required).
func openSQLite(cfg domain.WarehouseConfig) (*sql.DB, error) {
	path := cfg.SQLitePath
	if path == "" {
		path = "./kestrel.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string with pragmas for performance
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return db, nil
}

// OpenSandbox opens (creating if needed) a sqlite sandbox with the two
// analytics tables. Used by cmd/seed and by tests; the server itself
// never creates warehouse tables.
func OpenSandbox(path string) (*sql.DB, error) {
	db, err := openSQLite(domain.WarehouseConfig{Driver: "sqlite", SQLitePath: path})
	if err != nil {
		return nil, err
	}

	for _, schema := range SandboxSchemas() {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create sandbox schema: %w", err)
		}
	}
	return db, nil
}
