// =============================================================================
// Order Consolidation - Run History
// =============================================================================
//
// A small SQLite ledger of consolidation runs, one row per run, so operators
// can see when the store grew and which runs only produced warnings.
//
// The database is opened with the pure-Go modernc.org/sqlite driver; no cgo
// toolchain is needed.
//
// =============================================================================

package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/order-consolidation/internal/pipeline"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	started_at     TEXT NOT NULL,
	duration_ms    INTEGER NOT NULL,
	primary_rows   INTEGER NOT NULL,
	secondary_rows INTEGER NOT NULL,
	dropped_rows   INTEGER NOT NULL,
	baseline       INTEGER NOT NULL,
	appended       INTEGER NOT NULL,
	total          INTEGER NOT NULL,
	persisted      INTEGER NOT NULL,
	store_state    TEXT NOT NULL,
	warnings       INTEGER NOT NULL,
	error          TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Run is one recorded consolidation.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration

	PrimaryRows   int
	SecondaryRows int
	DroppedRows   int

	Baseline int
	Appended int
	Total    int

	Persisted  bool
	StoreState string
	Warnings   int

	// Error is the message of a failed run, empty on success.
	Error string
}

// FromResult converts a pipeline result and its error into a Run.
func FromResult(res *pipeline.Result, runErr error) Run {
	run := Run{
		ID:            res.RunID,
		StartedAt:     res.StartedAt,
		Duration:      res.Duration,
		PrimaryRows:   res.Stats.PrimaryRows,
		SecondaryRows: res.Stats.SecondaryRows,
		DroppedRows:   res.Stats.DroppedRows,
		Baseline:      res.Stats.Baseline,
		Appended:      res.Stats.Appended,
		Total:         res.Stats.Total,
		Persisted:     res.Stats.Persisted,
		StoreState:    string(res.Stats.StoreState),
		Warnings:      res.Warnings(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	return run
}

// Ledger is an open run history database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger at path.
func Open(ctx context.Context, path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize run history: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Record stores a run. Recording the same run id twice fails.
func (l *Ledger) Record(ctx context.Context, run Run) error {
	persisted := 0
	if run.Persisted {
		persisted = 1
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, duration_ms, primary_rows, secondary_rows, dropped_rows,
			baseline, appended, total, persisted, store_state, warnings, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		run.PrimaryRows,
		run.SecondaryRows,
		run.DroppedRows,
		run.Baseline,
		run.Appended,
		run.Total,
		persisted,
		run.StoreState,
		run.Warnings,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// List returns the most recent runs first. limit <= 0 returns every run.
func (l *Ledger) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, primary_rows, secondary_rows, dropped_rows,
			baseline, appended, total, persisted, store_state, warnings, error
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			durationMS int64
			persisted  int
		)
		if err := rows.Scan(&run.ID, &startedAt, &durationMS, &run.PrimaryRows, &run.SecondaryRows,
			&run.DroppedRows, &run.Baseline, &run.Appended, &run.Total, &persisted,
			&run.StoreState, &run.Warnings, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse start time of run %s: %w", run.ID, err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.Persisted = persisted != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
