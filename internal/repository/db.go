package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// OpenDB opens (or creates) the SQLite report store and runs migrations.
func OpenDB(path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent reads while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("store.opened", "path", path)
	return db, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_reports (
			id               TEXT PRIMARY KEY,
			content_hash     TEXT NOT NULL,
			source_name      TEXT,
			created_at       INTEGER NOT NULL,
			fund_name        TEXT,
			doc_date         TEXT,
			total_assets     REAL,
			total_liabilities REAL,
			net_assets       REAL,
			units_outstanding REAL,
			nav_per_unit     REAL,
			official_nav     REAL,
			is_valid         INTEGER,
			confidence       INTEGER,
			severity         TEXT,
			discrepancy_pct  REAL,
			report_json      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_hash ON analysis_reports(content_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created ON analysis_reports(created_at)`,
	}

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}
