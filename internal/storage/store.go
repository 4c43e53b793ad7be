package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/nlink/internal/config"
	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/export"
	"github.com/san-kum/nlink/internal/physics"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	configFile   = "config.yaml"
)

// Store keeps one directory per run under baseDir holding metadata.json,
// states.csv and the config.yaml the run was made with.
type Store struct {
	baseDir string
	catalog *Catalog
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// SetCatalog makes Save index every run it writes.
func (s *Store) SetCatalog(c *Catalog) { s.catalog = c }

type RunMetadata struct {
	ID          string                  `json:"id"`
	Timestamp   time.Time               `json:"timestamp"`
	Links       int                     `json:"links"`
	Formulation string                  `json:"formulation"`
	Integrator  string                  `json:"integrator"`
	Dt          float64                 `json:"dt"`
	Duration    float64                 `json:"duration"`
	Cadence     int                     `json:"cadence"`
	Steps       int                     `json:"steps"`
	Snapshots   int                     `json:"snapshots"`
	Failed      bool                    `json:"failed"`
	Errors      []string                `json:"errors,omitempty"`
	Warnings    int                     `json:"warnings"`
	EnergyDrift export.Float            `json:"energy_drift"`
	Metrics     map[string]export.Float `json:"metrics"`
}

func (s *Store) Save(ctx context.Context, cfg *config.Config, result *dynamo.Result) (string, error) {
	now := s.now()
	runID := fmt.Sprintf("n%d_%s_%d", cfg.Links, cfg.Formulation, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}
	if err := os.Mkdir(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   now,
		Links:       cfg.Links,
		Formulation: cfg.Formulation,
		Integrator:  cfg.Integrator,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		Cadence:     cfg.Cadence,
		Steps:       result.StepsTaken,
		Snapshots:   len(result.Snapshots),
		Failed:      result.Failed(),
		Warnings:    len(result.Warnings),
		EnergyDrift: export.Float(result.EnergyDrift),
		Metrics:     make(map[string]export.Float, len(result.Metrics)),
	}
	for k, v := range result.Metrics {
		meta.Metrics[k] = export.Float(v)
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeRun(runDir, cfg, meta, result.Snapshots); err != nil {
		// a partial run directory would still show up in List
		os.RemoveAll(runDir)
		return "", err
	}

	if s.catalog != nil {
		if err := s.catalog.Record(ctx, meta); err != nil {
			return runID, fmt.Errorf("index run %s: %w", runID, err)
		}
	}
	return runID, nil
}

func writeRun(runDir string, cfg *config.Config, meta RunMetadata, snaps []dynamo.Snapshot) error {
	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return err
	}
	return writeStates(filepath.Join(runDir, statesFile), snaps)
}

func writeMetadata(path string, meta RunMetadata) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStates(path string, snaps []dynamo.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	rec := export.NewCSVRecorder(f)
	for _, snap := range snaps {
		if err := rec.OnSnapshot(snap); err != nil {
			return err
		}
	}
	return rec.Flush()
}

// List returns the metadata of every run directory, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

// LoadSnapshots reads a run's states.csv. When withPositions is set the
// Cartesian positions are recomputed from the stored config.
func (s *Store) LoadSnapshots(runID string, withPositions bool) ([]dynamo.Snapshot, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	snaps, err := export.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if !withPositions {
		return snaps, nil
	}

	cfg, err := s.LoadConfig(runID)
	if err != nil {
		return nil, err
	}
	cfg.Resolve()
	p, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	for i := range snaps {
		if snaps[i].State.Len() != p.N() {
			return nil, fmt.Errorf("%w: run %s stores %d links, config has %d",
				dynamo.ErrDimensionMismatch, runID, snaps[i].State.Len(), p.N())
		}
		snaps[i].Positions = physics.Positions(p, snaps[i].State)
	}
	return snaps, nil
}

// Reindex records every run directory in the attached catalog.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	if s.catalog == nil {
		return 0, fmt.Errorf("no catalog attached")
	}
	runs, err := s.List()
	if err != nil {
		return 0, err
	}
	for _, meta := range runs {
		if err := s.catalog.Record(ctx, meta); err != nil {
			return 0, err
		}
	}
	return len(runs), nil
}

// Delete removes a run directory and its catalog entry.
func (s *Store) Delete(ctx context.Context, runID string) error {
	dir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(filepath.Join(dir, metadataFile)); err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	if s.catalog != nil {
		if err := s.catalog.Delete(ctx, runID); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
	}
	return nil
}
