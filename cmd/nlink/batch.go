package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/nlink/internal/automation"
	"github.com/san-kum/nlink/internal/experiment"
	"github.com/spf13/cobra"
)

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario of simulations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			st, cat, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cat.Close()

			fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
			results, runErr := automation.RunScenario(cmd.Context(), sc, newLogger(logLevel), st.Save)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tLINKS\tFORMULATION\tSTEPS\tDRIFT\tSTATUS\tRUN ID")
			for _, r := range results {
				id := r.RunID
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%.3e\t%s\t%s\n",
					r.Name, r.Config.Links, r.Config.Formulation, r.Result.StepsTaken,
					r.Result.EnergyDrift, status(r.Result), id)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return runErr
		},
	}
}

func newMonteCarloCmd() *cobra.Command {
	var mc automation.MonteCarloConfig
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run randomly perturbed initial states in parallel",
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

			trials, err := automation.RunMonteCarlo(cmd.Context(), exp, mc)
			if err != nil {
				return err
			}
			s := automation.Summarize(trials)
			fmt.Printf("trials:     %d\n", s.Trials)
			fmt.Printf("failed:     %d\n", s.Failed)
			fmt.Printf("mean drift: %.3e\n", s.MeanDrift)
			fmt.Printf("std drift:  %.3e\n", s.StdDrift)
			fmt.Printf("max drift:  %.3e\n", s.MaxDrift)
			return nil
		},
	}
	addConfigFlags(cmd)
	cmd.Flags().Float64Var(&mc.Perturbation, "perturbation", 0.01, "maximum offset of every initial angle")
	cmd.Flags().IntVar(&mc.Trials, "trials", 16, "number of trials")
	cmd.Flags().Uint64Var(&mc.Seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&mc.Workers, "workers", 0, "maximum concurrent runs (0 = unlimited)")
	return cmd
}
