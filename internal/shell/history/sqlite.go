package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Row Types
// =============================================================================

type runRow struct {
	ID         string `db:"id"`
	StartedAt  string `db:"started_at"`
	FinishedAt string `db:"finished_at"`
	Success    bool   `db:"success"`
}

type projectRow struct {
	RunID   string `db:"run_id"`
	Project string `db:"project"`
	Status  string `db:"status"`
	Reason  string `db:"reason"`
}

// =============================================================================
// Run Operations
// =============================================================================

// RecordRun stores a run and its per-project outcomes in one transaction.
func (s *SQLiteStore) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", NewStoreError("RecordRun", run.ID, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	row := runRow{
		ID:         run.ID,
		StartedAt:  run.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt: run.FinishedAt.UTC().Format(time.RFC3339),
		Success:    run.Success,
	}
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, success)
		VALUES (:id, :started_at, :finished_at, :success)`, row); err != nil {
		return "", NewStoreError("RecordRun", run.ID, "failed to insert run", err)
	}

	for _, outcome := range run.Projects {
		prow := projectRow{
			RunID:   run.ID,
			Project: outcome.Project,
			Status:  outcome.Status,
			Reason:  outcome.Reason,
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO run_projects (run_id, project, status, reason)
			VALUES (:run_id, :project, :status, :reason)`, prow); err != nil {
			return "", NewStoreError("RecordRun", run.ID, "failed to insert project outcome", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", NewStoreError("RecordRun", run.ID, "failed to commit", err)
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first, with their project
// outcomes attached.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []runRow
	if err := s.db.SelectContext(ctx, &rows, `
		SELECT id, started_at, finished_at, success
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit); err != nil {
		return nil, NewStoreError("ListRuns", "", "failed to query runs", err)
	}

	runs := make([]Run, 0, len(rows))
	for _, row := range rows {
		run, err := fromRunRow(row)
		if err != nil {
			return nil, NewStoreError("ListRuns", row.ID, err.Error(), err)
		}

		var prows []projectRow
		if err := s.db.SelectContext(ctx, &prows, `
			SELECT run_id, project, status, reason
			FROM run_projects WHERE run_id = ? ORDER BY project`, row.ID); err != nil {
			return nil, NewStoreError("ListRuns", row.ID, "failed to query project outcomes", err)
		}
		for _, p := range prows {
			run.Projects = append(run.Projects, ProjectOutcome{
				Project: p.Project,
				Status:  p.Status,
				Reason:  p.Reason,
			})
		}

		runs = append(runs, run)
	}

	return runs, nil
}

func fromRunRow(row runRow) (Run, error) {
	started, err := time.Parse(time.RFC3339, row.StartedAt)
	if err != nil {
		return Run{}, fmt.Errorf("invalid started_at: %w", err)
	}
	finished, err := time.Parse(time.RFC3339, row.FinishedAt)
	if err != nil {
		return Run{}, fmt.Errorf("invalid finished_at: %w", err)
	}
	return Run{
		ID:         row.ID,
		StartedAt:  started,
		FinishedAt: finished,
		Success:    row.Success,
	}, nil
}
