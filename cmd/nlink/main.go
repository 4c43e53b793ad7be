package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/san-kum/nlink/internal/config"
	"github.com/san-kum/nlink/internal/logging"
	"github.com/san-kum/nlink/internal/storage"
	"github.com/spf13/cobra"
)

const catalogFile = "catalog.db"

var (
	dataDir  string
	logLevel string

	// chain and run settings shared by run, live, compare and sweep
	configFile        string
	preset            string
	links             int
	masses            []float64
	lengths           []float64
	gravity           float64
	dt                float64
	duration          float64
	cadence           int
	formulation       string
	integrator        string
	theta             []float64
	dtheta            []float64
	validateState     bool
	checkConditioning bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "nlink",
		Short:         "planar n-link pendulum simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".nlink", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newCompareCmd(),
		newSweepCmd(),
		newPresetsCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newRenderCmd(),
		newDeleteCmd(),
		newReindexCmd(),
		newAnalyzeCmd(),
		newBatchCmd(),
		newMonteCarloCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "preset as group/name, see 'nlink presets'")
	f.IntVarP(&links, "links", "n", def.Links, "number of links")
	f.Float64SliceVar(&masses, "masses", nil, "mass of every link")
	f.Float64SliceVar(&lengths, "lengths", nil, "length of every link")
	f.Float64Var(&gravity, "gravity", def.Gravity, "gravitational acceleration")
	f.Float64Var(&dt, "dt", def.Dt, "timestep")
	f.Float64Var(&duration, "time", def.Duration, "duration")
	f.IntVar(&cadence, "cadence", def.Cadence, "steps between recorded snapshots")
	f.StringVar(&formulation, "formulation", def.Formulation, "coupling formulation (legacy, lagrangian)")
	f.StringVar(&integrator, "integrator", def.Integrator, "integrator (euler, rk4, verlet)")
	f.Float64SliceVar(&theta, "theta", nil, "initial angles")
	f.Float64SliceVar(&dtheta, "dtheta", nil, "initial angular velocities")
	f.BoolVar(&validateState, "validate", def.ValidateState, "stop on NaN or Inf")
	f.BoolVar(&checkConditioning, "check-conditioning", def.CheckConditioning, "warn about degenerate coupling matrices")
}

// buildConfig layers preset, config file and explicitly set flags, in that
// order, over the defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		group, name, ok := strings.Cut(preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be group/name, got %q", preset)
		}
		cfg = config.GetPreset(group, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(group))
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("links") && links != cfg.Links {
		cfg.Links = links
		cfg.Masses, cfg.Lengths = nil, nil
		cfg.InitState = config.InitStateConfig{}
	}
	if f.Changed("masses") {
		cfg.Masses = masses
	}
	if f.Changed("lengths") {
		cfg.Lengths = lengths
	}
	if f.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("cadence") {
		cfg.Cadence = cadence
	}
	if f.Changed("formulation") {
		cfg.Formulation = formulation
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("theta") {
		cfg.InitState.Theta = theta
	}
	if f.Changed("dtheta") {
		cfg.InitState.DTheta = dtheta
	}
	if !f.Changed("links") {
		inferLinks(cmd, cfg)
	}
	if f.Changed("validate") {
		cfg.ValidateState = validateState
	}
	if f.Changed("check-conditioning") {
		cfg.CheckConditioning = checkConditioning
	}
	if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// inferLinks sizes the chain from the first explicitly set list. Inherited
// lists of another length are dropped so that their defaults are rebuilt.
func inferLinks(cmd *cobra.Command, cfg *config.Config) {
	lists := []struct {
		flag string
		v    *[]float64
	}{
		{"masses", &cfg.Masses},
		{"lengths", &cfg.Lengths},
		{"theta", &cfg.InitState.Theta},
		{"dtheta", &cfg.InitState.DTheta},
	}

	n := 0
	for _, l := range lists {
		if cmd.Flags().Changed(l.flag) {
			n = len(*l.v)
			break
		}
	}
	if n == 0 || n == cfg.Links {
		return
	}

	cfg.Links = 0
	for _, l := range lists {
		if !cmd.Flags().Changed(l.flag) && len(*l.v) != n {
			*l.v = nil
		}
	}
}

func newLogger(level string) *slog.Logger {
	return logging.NewLogger(level, os.Stderr)
}

// openStore returns the run store with its catalog attached. The caller must
// close the catalog.
func openStore(ctx context.Context) (*storage.Store, *storage.Catalog, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, nil, err
	}
	cat, err := storage.OpenCatalog(ctx, filepath.Join(dataDir, catalogFile))
	if err != nil {
		return nil, nil, err
	}
	st.SetCatalog(cat)
	return st, cat, nil
}
