package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const (
	StatusDone     = "done"
	StatusDegraded = "degraded"
)

type Store struct {
	db *sql.DB
}

type RunRecord struct {
	ID          string
	UserID      string
	HealthScore float64
	Status      string
	Fingerprint string
	ReportJSON  string
}

type RunWithMeta struct {
	RunRecord
	RowID     int64
	CreatedAt string
}

type StageEventRecord struct {
	RunID   string
	Stage   string
	Status  string
	Message string
	Seq     int
}

func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// foreign_keys is per connection, so it goes in the DSN as well.
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    health_score REAL NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    fingerprint TEXT NOT NULL DEFAULT '',
    report_json TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS stage_events (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    stage TEXT NOT NULL,
    status TEXT NOT NULL,
    message TEXT NOT NULL DEFAULT '',
    seq INTEGER NOT NULL,
    UNIQUE(run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_user_created ON runs(user_id, created_at);
`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SaveRun inserts a run and its stage events in one transaction.
func (s *Store) SaveRun(ctx context.Context, run RunRecord, events []StageEventRecord) error {
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id is required")
	}
	if run.Status == "" {
		run.Status = StatusDone
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, user_id, health_score, status, fingerprint, report_json)
VALUES (?, ?, ?, ?, ?, ?)
`, run.ID, run.UserID, run.HealthScore, run.Status, run.Fingerprint, run.ReportJSON)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, ev := range events {
		if ev.Seq <= 0 {
			return fmt.Errorf("stage event seq must be positive")
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO stage_events (run_id, stage, status, message, seq)
VALUES (?, ?, ?, ?, ?)
`, run.ID, ev.Stage, ev.Status, ev.Message, ev.Seq)
		if err != nil {
			return fmt.Errorf("insert stage event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns lists runs newest first, optionally for one user.
func (s *Store) ListRuns(ctx context.Context, userID string, limit int) ([]RunWithMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT rowid, id, user_id, health_score, status, fingerprint, created_at
FROM runs
WHERE (? = '' OR user_id = ?)
ORDER BY rowid DESC
LIMIT ?
`, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunWithMeta
	for rows.Next() {
		var rec RunWithMeta
		if err := rows.Scan(&rec.RowID, &rec.ID, &rec.UserID, &rec.HealthScore, &rec.Status, &rec.Fingerprint, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs rows: %w", err)
	}
	return runs, nil
}

// GetRun returns nil without error when the run does not exist.
func (s *Store) GetRun(ctx context.Context, runID string) (*RunWithMeta, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("run id is required")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT rowid, id, user_id, health_score, status, fingerprint, report_json, created_at
FROM runs
WHERE id = ?
LIMIT 1
`, runID)

	var rec RunWithMeta
	if err := row.Scan(&rec.RowID, &rec.ID, &rec.UserID, &rec.HealthScore, &rec.Status, &rec.Fingerprint, &rec.ReportJSON, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &rec, nil
}

func (s *Store) ListStageEvents(ctx context.Context, runID string) ([]StageEventRecord, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("run id is required")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, stage, status, message, seq
FROM stage_events
WHERE run_id = ?
ORDER BY seq ASC
`, runID)
	if err != nil {
		return nil, fmt.Errorf("list stage events: %w", err)
	}
	defer rows.Close()

	var events []StageEventRecord
	for rows.Next() {
		var rec StageEventRecord
		if err := rows.Scan(&rec.RunID, &rec.Stage, &rec.Status, &rec.Message, &rec.Seq); err != nil {
			return nil, fmt.Errorf("scan stage event: %w", err)
		}
		events = append(events, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stage events rows: %w", err)
	}
	return events, nil
}

// DeleteRun removes a run and, through the foreign key, its stage events.
func (s *Store) DeleteRun(ctx context.Context, runID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
