package database

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/polaMikhail/directory-sync/src/mirror"
)

// SqliteStore is a SQLite implementation of the history.Store interface.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the run history database.
func NewSqliteStore(path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SqliteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			triggered_by TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL,
			copied INTEGER NOT NULL DEFAULT 0,
			deleted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`)
	return err
}

// SaveRun inserts one finished run record.
func (s *SqliteStore) SaveRun(ctx context.Context, run *mirror.Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, triggered_by, status, started_at, finished_at, copied, deleted, skipped, failed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Trigger, string(run.Status), run.StartedAt, run.FinishedAt,
		run.Copied, run.Deleted, run.Skipped, run.Failed, run.Error,
	)
	return err
}

// ListRuns returns the most recent runs, newest first.
func (s *SqliteStore) ListRuns(ctx context.Context, limit int) ([]mirror.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, triggered_by, status, started_at, finished_at, copied, deleted, skipped, failed, error
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []mirror.Run
	for rows.Next() {
		var run mirror.Run
		var status string
		if err := rows.Scan(&run.ID, &run.Trigger, &status, &run.StartedAt, &run.FinishedAt,
			&run.Copied, &run.Deleted, &run.Skipped, &run.Failed, &run.Error); err != nil {
			return nil, err
		}
		run.Status = mirror.RunStatus(status)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// PruneRuns deletes all but the newest keep records and reports how many
// were removed.
func (s *SqliteStore) PruneRuns(ctx context.Context, keep int) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, err
	}
	pruned, err := result.RowsAffected()
	return int(pruned), err
}

// Close closes the database.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}
