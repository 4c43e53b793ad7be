package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/san-kum/nlink/internal/config"
	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/experiment"
	"github.com/san-kum/nlink/internal/physics"
	"github.com/san-kum/nlink/internal/tui"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var noSave bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			exp, err := experiment.New(cfg, newLogger(cfg.LogLevel))
			if err != nil {
				return err
			}

			fmt.Printf("running %d-link chain (%s, %s)...\n", cfg.Links, cfg.Formulation, cfg.Integrator)
			start := time.Now()
			result, runErr := exp.Run(cmd.Context())
			elapsed := time.Since(start)
			if result == nil {
				return runErr
			}

			fmt.Printf("completed in %v\n", elapsed)
			if !noSave {
				st, cat, err := openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer cat.Close()
				runID, err := st.Save(cmd.Context(), exp.Config(), result)
				if err != nil {
					return err
				}
				fmt.Printf("run id: %s\n", runID)
			}
			printResult(result)
			return runErr
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func printResult(result *dynamo.Result) {
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("snapshots: %d\n", len(result.Snapshots))
	fmt.Printf("energy drift: %.6e\n", result.EnergyDrift)

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\n%d conditioning warnings, first: %v\n", len(result.Warnings), result.Warnings[0])
	}
	for _, err := range result.Errors {
		fmt.Printf("\nstopped: %v\n", err)
	}
}

func newLiveCmd() *cobra.Command {
	opts := tui.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			// the terminal is taken over by the view; keep logs quiet
			exp, err := experiment.New(cfg, nil)
			if err != nil {
				return err
			}
			return tui.Run(exp, opts)
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().IntVar(&opts.FPS, "fps", opts.FPS, "frame rate")
	cmd.Flags().IntVar(&opts.StepsPerFrame, "speed", opts.StepsPerFrame, "integration steps per frame")
	cmd.Flags().StringVar(&opts.Theme, "theme", opts.Theme, "colour theme")
	cmd.Flags().StringVar(&opts.GIFPath, "gif", opts.GIFPath, "output path of GIF recordings")
	return cmd
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "run every formulation and integrator from the same configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(base.LogLevel)

			fmt.Printf("comparing on %d links (dt=%.4f, duration=%.1fs)\n\n", base.Links, base.Dt, base.Duration)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FORMULATION\tINTEG\tSTEPS\tDRIFT\tFINAL θ0\tSTATUS\tTIME")

			formulations := []physics.Formulation{physics.FormulationLegacy, physics.FormulationLagrangian}
			for _, f := range formulations {
				for _, integ := range experiment.NewRegistry().ListIntegrators() {
					cfg := base.Clone()
					cfg.Formulation = f.String()
					cfg.Integrator = integ
					exp, err := experiment.New(cfg, logger)
					if err != nil {
						return err
					}

					start := time.Now()
					result, err := exp.Run(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%.3e\t%.6f\t%s\t%.1fms\n",
						cfg.Formulation, integ, result.StepsTaken, result.EnergyDrift,
						result.Final.Theta[0], status(result), float64(time.Since(start).Microseconds())/1000)
				}
			}
			return w.Flush()
		},
	}
	addConfigFlags(cmd)
	return cmd
}

func status(result *dynamo.Result) string {
	switch {
	case result.Failed():
		return "failed"
	case len(result.Warnings) > 0:
		return fmt.Sprintf("%d warnings", len(result.Warnings))
	default:
		return "ok"
	}
}

func newSweepCmd() *cobra.Command {
	var (
		link    int
		delta   float64
		count   int
		workers int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a family of initial angles in parallel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			exp, err := experiment.New(cfg, newLogger(cfg.LogLevel))
			if err != nil {
				return err
			}

			start := time.Now()
			points, err := exp.Sweep(cmd.Context(), link, delta, count, workers)
			if err != nil {
				return err
			}
			fmt.Printf("%d runs in %v\n\n", len(points), time.Since(start))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "θ%d\tDRIFT\tMAX |dθ|\tSTABLE\tSTATUS\n", link)
			for _, p := range points {
				fmt.Fprintf(w, "%.4f\t%.3e\t%.3f\t%.0f\t%s\n",
					p.Theta, p.Result.EnergyDrift,
					p.Result.Metrics["max_angular_speed"], p.Result.Metrics["stability"],
					status(p.Result))
			}
			return w.Flush()
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().IntVar(&link, "link", 0, "link whose initial angle is varied")
	cmd.Flags().Float64Var(&delta, "delta", 0.05, "angle increment between runs")
	cmd.Flags().IntVar(&count, "count", 8, "number of runs")
	cmd.Flags().IntVar(&workers, "workers", 0, "maximum concurrent runs (0 = unlimited)")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [group]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := config.Groups()
			if len(args) == 1 {
				groups = args[:1]
			}
			for _, g := range groups {
				names := config.ListPresets(g)
				if len(names) == 0 {
					return fmt.Errorf("no presets in group: %s (available: %v)", g, config.Groups())
				}
				fmt.Printf("%s:\n", g)
				for _, name := range names {
					p := config.GetPreset(g, name)
					p.Resolve()
					fmt.Printf("  %s/%-10s %d links, %s, dt=%g, %gs\n", g, name, p.Links, p.Formulation, p.Dt, p.Duration)
				}
			}
			return nil
		},
	}
}
