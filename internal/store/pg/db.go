// Package pg implements the Governance Store contracts (internal/governance)
// against Postgres, opened through the pgx/v5 stdlib driver.
package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrMissingOrg fails closed when a caller reaches the store without a
// tenant: no query in this package runs org-unscoped.
var ErrMissingOrg = errors.New("pg: missing org id")

// requireOrg is the single audit point every store method passes through
// before touching a tenant-scoped table.
func requireOrg(orgID string) error {
	if orgID == "" {
		return ErrMissingOrg
	}
	return nil
}

// OpenDB opens a pooled *sql.DB against dsn using the pgx/v5 stdlib driver.
func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: open: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return db, nil
}
