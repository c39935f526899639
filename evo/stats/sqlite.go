package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/baldhumanity/evo-go/evo"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists runs in a SQLite database file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates the tables. Calling it again is a
// no-op.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("stats: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("stats: open %s: %w", s.path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("stats: ping %s: %w", s.path, err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			started_unix_nano INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL REFERENCES runs(id),
			generation INTEGER NOT NULL,
			mean REAL NOT NULL,
			mean_stdev REAL NOT NULL,
			mean_best REAL NOT NULL,
			best REAL NOT NULL,
			species INTEGER NOT NULL,
			reported INTEGER NOT NULL,
			organisms INTEGER NOT NULL,
			new_species INTEGER NOT NULL,
			extinct_species INTEGER NOT NULL,
			gens_without_improvement INTEGER NOT NULL,
			elapsed_nanos INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("stats: create tables: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, label, started_unix_nano)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			started_unix_nano = excluded.started_unix_nano
	`, run.ID, run.Label, run.Started.UnixNano())
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}
	var (
		run     = Run{ID: id}
		started int64
	)
	err = db.QueryRowContext(ctx, `SELECT label, started_unix_nano FROM runs WHERE id = ?`, id).Scan(&run.Label, &started)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}
	run.Started = time.Unix(0, started)
	return run, true, nil
}

// Runs returns all runs, oldest first.
func (s *SQLiteStore) Runs(ctx context.Context) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, label, started_unix_nano FROM runs ORDER BY started_unix_nano, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			started int64
		)
		if err := rows.Scan(&run.ID, &run.Label, &started); err != nil {
			return nil, err
		}
		run.Started = time.Unix(0, started)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// AppendGenerations writes all summaries in one transaction.
func (s *SQLiteStore) AppendGenerations(ctx context.Context, runID string, gens []evo.GenerationSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("stats: unknown run %s", runID)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO generations (
			run_id, generation, mean, mean_stdev, mean_best, best, species, reported,
			organisms, new_species, extinct_species, gens_without_improvement, elapsed_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range gens {
		if _, err := stmt.ExecContext(ctx,
			runID, g.Generation, g.Mean, g.MeanStdev, g.MeanBest, g.Best, g.Species, g.Reported,
			g.Organisms, g.NewSpecies, g.ExtinctSpecies, g.GensWithoutImprovement, int64(g.Elapsed),
		); err != nil {
			return fmt.Errorf("stats: insert generation %d: %w", g.Generation, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Generations(ctx context.Context, runID string) ([]evo.GenerationSummary, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT generation, mean, mean_stdev, mean_best, best, species, reported,
			organisms, new_species, extinct_species, gens_without_improvement, elapsed_nanos
		FROM generations WHERE run_id = ? ORDER BY generation
	`, runID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var gens []evo.GenerationSummary
	for rows.Next() {
		var (
			g       evo.GenerationSummary
			elapsed int64
		)
		if err := rows.Scan(
			&g.Generation, &g.Mean, &g.MeanStdev, &g.MeanBest, &g.Best, &g.Species, &g.Reported,
			&g.Organisms, &g.NewSpecies, &g.ExtinctSpecies, &g.GensWithoutImprovement, &elapsed,
		); err != nil {
			return nil, false, err
		}
		g.Elapsed = time.Duration(elapsed)
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(gens) == 0 {
		return nil, false, nil
	}
	return gens, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
