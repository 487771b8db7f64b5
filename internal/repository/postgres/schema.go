package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"weighbridge-server/internal/logger"
)

var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS pending_weights (
		id BIGSERIAL PRIMARY KEY,
		vehicle_number TEXT NOT NULL,
		party_name TEXT NOT NULL,
		item TEXT,
		transaction_type TEXT NOT NULL DEFAULT 'LOADING',
		status TEXT NOT NULL DEFAULT 'AT_GATE',
		gross_wt DOUBLE PRECISION NOT NULL DEFAULT 0,
		tare_wt DOUBLE PRECISION NOT NULL DEFAULT 0,
		image1 TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		authorized_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS completed_weights (
		row_id BIGSERIAL PRIMARY KEY,
		id BIGINT NOT NULL,
		vehicle_number TEXT NOT NULL,
		party_name TEXT NOT NULL,
		item TEXT,
		transaction_type TEXT,
		gross_wt DOUBLE PRECISION NOT NULL,
		tare_wt DOUBLE PRECISION NOT NULL,
		net_wt DOUBLE PRECISION NOT NULL,
		image1 TEXT,
		image2 TEXT,
		date TEXT NOT NULL,
		created_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pending_weights_created_at ON pending_weights (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_completed_weights_date ON completed_weights (date, completed_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_completed_weights_id ON completed_weights (id)`,
}

// Additive columns introduced after the first release. Existing rows get NULL or the default.
var migrationStatements = []string{
	`ALTER TABLE completed_weights ADD COLUMN IF NOT EXISTS transporter_name TEXT`,
	`ALTER TABLE completed_weights ADD COLUMN IF NOT EXISTS lr_number TEXT`,
	`ALTER TABLE pending_weights ADD COLUMN IF NOT EXISTS exit_authorized BOOLEAN NOT NULL DEFAULT FALSE`,
	`ALTER TABLE pending_weights ADD COLUMN IF NOT EXISTS exit_authorized_at TIMESTAMPTZ`,
}

// Migrate creates the ledger tables when missing and applies additive column migrations.
// It is safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.EnterMethod("postgres.Migrate")

	for _, stmt := range append(createStatements, migrationStatements...) {
		logger.DatabaseCall("DDL", stmt)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.DatabaseResult("DDL", 0, err)
			logger.ExitMethodWithError("postgres.Migrate", err)
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	logger.Info("Database schema ready")
	logger.ExitMethod("postgres.Migrate")
	return nil
}
