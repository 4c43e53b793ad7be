package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/nlink/internal/analysis"
	"github.com/san-kum/nlink/internal/experiment"
	"github.com/san-kum/nlink/internal/storage"
	"github.com/san-kum/nlink/internal/viz"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		link         int
		cross        int
		lyapunov     bool
		lyapDuration float64
		perturbation float64
	)
	cmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency, phase space and chaos analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			snaps, err := st.LoadSnapshots(args[0], false)
			if err != nil {
				return err
			}
			if len(snaps) < 2 {
				return fmt.Errorf("run %s has too few snapshots to analyze", args[0])
			}
			sampleDt := meta.Dt * float64(meta.Cadence)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LINK\tDOMINANT FREQ\tPERIOD")
			for i := 0; i < meta.Links; i++ {
				f, err := analysis.DominantFrequency(viz.AngleSeries(snaps, i), sampleDt)
				if err != nil {
					return err
				}
				period := "-"
				if f > 0 {
					period = fmt.Sprintf("%.3fs", 1/f)
				}
				fmt.Fprintf(w, "%d\t%.4f Hz\t%s\n", i, f, period)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			phase, err := analysis.PhasePortrait(snaps, link)
			if err != nil {
				return err
			}
			fmt.Printf("\nphase portrait of link %d (θ → , dθ ↑)\n", link)
			fmt.Print(viz.Scatter(phase, 60, 16))

			section, err := analysis.PoincareSection(snaps, cross, link)
			if err != nil {
				return err
			}
			fmt.Printf("\npoincaré section: link %d at θ%d = 0 upward, %d crossings\n", link, cross, len(section))
			if len(section) > 0 {
				fmt.Print(viz.Scatter(section, 60, 16))
			}

			if !lyapunov {
				return nil
			}
			cfg, err := st.LoadConfig(args[0])
			if err != nil {
				return err
			}
			exp, err := experiment.New(cfg, nil)
			if err != nil {
				return err
			}
			sys, integ := exp.Factory()()
			lambda, err := analysis.LyapunovExponent(sys, integ, cfg.InitialState(), cfg.Dt, lyapDuration, perturbation)
			if err != nil {
				return err
			}
			fmt.Printf("\nlargest lyapunov exponent: %.4f 1/s\n", lambda)
			return nil
		},
	}
	cmd.Flags().IntVar(&link, "link", 0, "link shown in the phase portrait and section")
	cmd.Flags().IntVar(&cross, "cross", 0, "link whose zero crossing triggers the section")
	cmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "estimate the largest lyapunov exponent")
	cmd.Flags().Float64Var(&lyapDuration, "lyapunov-time", 30, "integration time of the lyapunov estimate")
	cmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial separation of the lyapunov companion")
	return cmd
}
