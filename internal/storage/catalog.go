package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/san-kum/nlink/internal/export"
	_ "modernc.org/sqlite" // SQLite driver
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	created_at   TEXT NOT NULL,
	links        INTEGER NOT NULL,
	formulation  TEXT NOT NULL,
	integrator   TEXT NOT NULL,
	dt           REAL NOT NULL,
	duration     REAL NOT NULL,
	steps        INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	energy_drift REAL
);
CREATE INDEX IF NOT EXISTS idx_runs_links ON runs(links);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// Catalog indexes saved runs in SQLite so they can be filtered without
// reading every run directory.
type Catalog struct {
	db *sql.DB
}

func OpenCatalog(ctx context.Context, path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// Record inserts or replaces the entry for meta.ID.
func (c *Catalog) Record(ctx context.Context, meta RunMetadata) error {
	var drift sql.NullFloat64
	if d := float64(meta.EnergyDrift); !math.IsNaN(d) {
		drift = sql.NullFloat64{Float64: d, Valid: true}
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, created_at, links, formulation, integrator, dt, duration, steps, failed, energy_drift)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Timestamp.UTC().Format(time.RFC3339Nano), meta.Links, meta.Formulation, meta.Integrator,
		meta.Dt, meta.Duration, meta.Steps, meta.Failed, drift)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", meta.ID, err)
	}
	return nil
}

// Filter narrows a catalog query. Zero values match everything.
type Filter struct {
	Links       int
	Formulation string
	Integrator  string
	FailedOnly  bool
	MaxDrift    float64
	Limit       int
}

// Query returns matching runs, newest first. Only the indexed fields of
// RunMetadata are populated.
func (c *Catalog) Query(ctx context.Context, f Filter) ([]RunMetadata, error) {
	var (
		where []string
		args  []any
	)
	if f.Links > 0 {
		where = append(where, "links = ?")
		args = append(args, f.Links)
	}
	if f.Formulation != "" {
		where = append(where, "formulation = ?")
		args = append(args, f.Formulation)
	}
	if f.Integrator != "" {
		where = append(where, "integrator = ?")
		args = append(args, f.Integrator)
	}
	if f.FailedOnly {
		where = append(where, "failed = 1")
	}
	if f.MaxDrift > 0 {
		where = append(where, "energy_drift <= ?")
		args = append(args, f.MaxDrift)
	}

	query := `SELECT id, created_at, links, formulation, integrator, dt, duration, steps, failed, energy_drift FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var (
			meta    RunMetadata
			created string
			drift   sql.NullFloat64
		)
		if err := rows.Scan(&meta.ID, &created, &meta.Links, &meta.Formulation, &meta.Integrator,
			&meta.Dt, &meta.Duration, &meta.Steps, &meta.Failed, &drift); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.Timestamp, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp: %w", meta.ID, err)
		}
		meta.EnergyDrift = export.Float(math.NaN())
		if drift.Valid {
			meta.EnergyDrift = export.Float(drift.Float64)
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}
