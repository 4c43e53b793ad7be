package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/export"
	"github.com/san-kum/nlink/internal/storage"
	"github.com/san-kum/nlink/internal/viz"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var filter storage.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cat, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cat.Close()

			runs, err := cat.Query(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tLINKS\tFORMULATION\tINTEG\tDT\tDURATION\tDRIFT\tSTATUS")
			for _, run := range runs {
				state := "ok"
				if run.Failed {
					state = "failed"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%.4fs\t%.2fs\t%.3e\t%s\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Links,
					run.Formulation,
					run.Integrator,
					run.Dt,
					run.Duration,
					float64(run.EnergyDrift),
					state,
				)
			}
			return w.Flush()
		},
	}
	f := cmd.Flags()
	f.IntVar(&filter.Links, "links", 0, "only runs with this many links")
	f.StringVar(&filter.Formulation, "formulation", "", "only runs with this formulation")
	f.StringVar(&filter.Integrator, "integrator", "", "only runs with this integrator")
	f.BoolVar(&filter.FailedOnly, "failed", false, "only runs that stopped on a numerical failure")
	f.Float64Var(&filter.MaxDrift, "max-drift", 0, "only runs with energy drift at most this")
	f.IntVar(&filter.Limit, "limit", 0, "maximum number of runs")
	return cmd
}

func newPlotCmd() *cobra.Command {
	var pngPath string
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and angles of a run",
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
			if len(snaps) == 0 {
				return fmt.Errorf("no data to plot")
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("chain: %d links, %s, %s\n", meta.Links, meta.Formulation, meta.Integrator)
			fmt.Printf("samples: %d\n\n", len(snaps))
			fmt.Println(viz.SeriesPlot(viz.EnergySeries(snaps), 10, 80, "energy [J]"))
			fmt.Println()
			fmt.Println(viz.AnglesPlot(snaps, 12, 80))

			if pngPath == "" {
				return nil
			}
			return writeAnglesPNG(pngPath, meta, snaps)
		},
	}
	cmd.Flags().StringVar(&pngPath, "png", "", "also write the angle plot to this PNG file")
	return cmd
}

func writeAnglesPNG(path string, meta *storage.RunMetadata, snaps []dynamo.Snapshot) error {
	times := make([]float64, len(snaps))
	for i, s := range snaps {
		times[i] = s.Time
	}
	series := make([]export.Series, meta.Links)
	for i := range series {
		series[i] = export.Series{Name: fmt.Sprintf("θ%d", i), X: times, Y: viz.AngleSeries(snaps, i)}
	}
	p, err := export.SeriesPlot(meta.ID, "t [s]", "θ [rad]", series...)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error { return export.WritePNG(w, p, 8, 4, 96) })
}

func newExportCSVCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run snapshots to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := storage.New(dataDir).LoadSnapshots(args[0], false)
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".csv"
			}
			err = writeFile(out, func(w io.Writer) error {
				rec := export.NewCSVRecorder(w)
				for _, s := range snaps {
					if err := rec.OnSnapshot(s); err != nil {
						return err
					}
				}
				return rec.Flush()
			})
			if err != nil {
				return err
			}
			fmt.Printf("exported %d rows to %s\n", len(snaps), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <run_id>.csv)")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run config, snapshots and metrics to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			cfg, err := st.LoadConfig(args[0])
			if err != nil {
				return err
			}
			snaps, err := st.LoadSnapshots(args[0], true)
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".json"
			}

			data := export.NewExportData(cfg, resultFromRun(meta, snaps))
			if err := writeFile(out, func(w io.Writer) error { return export.WriteJSON(w, data) }); err != nil {
				return err
			}
			fmt.Printf("exported %s to %s\n", meta.ID, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <run_id>.json)")
	return cmd
}

// resultFromRun rebuilds the parts of a result that a stored run keeps.
func resultFromRun(meta *storage.RunMetadata, snaps []dynamo.Snapshot) *dynamo.Result {
	res := &dynamo.Result{
		Snapshots:   snaps,
		StepsTaken:  meta.Steps,
		EnergyDrift: float64(meta.EnergyDrift),
		Metrics:     make(map[string]float64, len(meta.Metrics)),
	}
	for k, v := range meta.Metrics {
		res.Metrics[k] = float64(v)
	}
	for _, msg := range meta.Errors {
		res.Errors = append(res.Errors, errors.New(msg))
	}
	if n := len(snaps); n > 0 {
		res.Final = snaps[n-1].State.Clone()
	}
	return res
}

func newRenderCmd() *cobra.Command {
	var (
		out    string
		format string
		size   int
		stride int
	)
	cmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a run as SVG, PNG or animated GIF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			cfg, err := st.LoadConfig(args[0])
			if err != nil {
				return err
			}
			cfg.Resolve()
			snaps, err := st.LoadSnapshots(args[0], true)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				return fmt.Errorf("no data to render")
			}
			p, err := cfg.Params()
			if err != nil {
				return err
			}
			extent := p.TotalLength() * 1.05

			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			if format == "" {
				format = "svg"
			}
			if out == "" {
				out = args[0] + "." + format
			}

			last := snaps[len(snaps)-1]
			var render func(w io.Writer) error
			switch format {
			case "svg":
				render = func(w io.Writer) error {
					_, err := io.WriteString(w, export.ChainSVG(last.Frame(), extent, size))
					return err
				}
			case "png":
				render = func(w io.Writer) error {
					pl, err := export.FramePlot(last.Frame(), extent, fmt.Sprintf("t = %.2f s", last.Time))
					if err != nil {
						return err
					}
					in := float64(size) / 96
					return export.WritePNG(w, pl, in, in, 96)
				}
			case "trace":
				render = func(w io.Writer) error {
					_, err := io.WriteString(w, export.TrajectoryToSVG(export.TipTrace(snaps), size, size, "#0088ff"))
					return err
				}
			case "gif":
				rec := export.NewGIFRecorder(extent, 4)
				rec.SetStride(stride)
				for _, s := range snaps {
					if err := rec.OnSnapshot(s); err != nil {
						return err
					}
				}
				render = rec.Encode
			default:
				return fmt.Errorf("unknown format: %s (svg, png, trace, gif)", format)
			}

			if err := writeFile(out, render); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default <run_id>.<format>)")
	cmd.Flags().StringVar(&format, "format", "", "svg, png, trace or gif (default from output extension)")
	cmd.Flags().IntVar(&size, "size", 480, "image size in pixels")
	cmd.Flags().IntVar(&stride, "stride", 1, "use every n-th snapshot for GIF frames")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [run_id]...",
		Short: "delete stored runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cat, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cat.Close()
			for _, id := range args {
				if err := st.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Printf("deleted %s\n", id)
			}
			return nil
		},
	}
}

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "rebuild the run catalog from the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cat, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cat.Close()
			n, err := st.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("indexed %d runs\n", n)
			return nil
		},
	}
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
