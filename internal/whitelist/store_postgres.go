package whitelist

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresSchema documents the roster table.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS whitelist (
	reg_no TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	cohort TEXT NOT NULL DEFAULT ''
);
`

// Postgres looks eligibility up from the whitelist table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (r *Postgres) Contains(ctx context.Context, regNo string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM whitelist WHERE LOWER(reg_no) = LOWER($1))`,
		regNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("whitelist lookup: %w", err)
	}
	return exists, nil
}
