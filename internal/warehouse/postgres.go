package warehouse

import (
	"database/sql"
	"fmt"
	"net/url"

	"github.com/opensight-finance/kestrel/internal/credentials"
	"github.com/opensight-finance/kestrel/internal/domain"
	_ "github.com/lib/pq"
)

// openPostgres opens the cloud warehouse connection. Identity comes
// from the service-account key (client_email as user, private_key as
// secret); ambient user/password settings are the fallback when no key
// is configured.
func openPostgres(cfg domain.WarehouseConfig, sa *credentials.ServiceAccount) (*sql.DB, error) {
	user := cfg.PostgresUser
	password := cfg.PostgresPassword
	if sa != nil {
		user = sa.ClientEmail
		password = sa.PrivateKey
	}
	if user == "" {
		return nil, fmt.Errorf("postgres warehouse requires credentials: no service-account key and no ambient user configured")
	}

	host := cfg.PostgresHost
	if host == "" {
		host = "localhost"
	}

	port := cfg.PostgresPort
	if port == 0 {
		port = 5432
	}

	dbname := cfg.PostgresDB
	if dbname == "" {
		dbname = "analytics"
	}

	// URL form so the key material survives URL-escaping intact
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(user),
		url.QueryEscape(password),
		host,
		port,
		dbname,
		getSSLMode(cfg.PostgresSSLMode),
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres warehouse: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres warehouse: %w", err)
	}

	return db, nil
}

func getSSLMode(mode string) string {
	if mode == "" {
		return "require"
	}
	return mode
}
