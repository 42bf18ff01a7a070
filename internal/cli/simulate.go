package cli

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/toothdex/internal/engine"
	"github.com/roach88/toothdex/internal/metrics"
	"github.com/roach88/toothdex/internal/pattern"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Count   int
	Workers int
	Seed    uint64
	Metrics bool // print Prometheus metrics after the run
}

// SimulateResult summarises a simulation run.
type SimulateResult struct {
	Submitted   int64 `json:"submitted"`
	NewPatterns int64 `json:"new_patterns"`
	Ranked      int64 `json:"ranked"`
	NotDurable  int64 `json:"not_durable"`

	TotalSubmissions int `json:"total_submissions"`
	UniquePatterns   int `json:"unique_patterns"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Submit random patterns concurrently",
		Long: `Submit --count random patterns (each with 0 to 10 missing teeth) from
--workers concurrent submitters. Every submission goes through the same
path as "submit", including the save.

Examples:
  toothdex simulate --count 500 --workers 8
  toothdex simulate --count 100 --seed 42 --metrics`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				opts.Seed = rand.Uint64()
			}
			return runSimulate(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 100, "number of submissions")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "concurrent submitters")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (default: random)")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print Prometheus metrics after the run")

	return cmd
}

func runSimulate(opts *SimulateOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	if opts.Count < 1 || opts.Workers < 1 {
		return NewExitError(ExitCommandError, "--count and --workers must be at least 1")
	}

	m := metrics.New()
	svc, err := opts.openService(cmd.Context(), cmd, m)
	if err != nil {
		reportJSONError(f, err)
		return err
	}
	defer svc.Close()

	var res SimulateResult
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(opts.Workers)

	for i := 0; i < opts.Count; i++ {
		g.Go(func() error {
			r := rand.New(rand.NewPCG(opts.Seed, uint64(i)))
			p, err := pattern.Random(r, pattern.RandomMissing(r))
			if err != nil {
				return err
			}

			out, err := svc.Submit(ctx, engine.Submission{
				Pattern: p,
				Name:    fmt.Sprintf("sim-%d", i+1),
			})
			if err != nil {
				return err
			}

			atomic.AddInt64(&res.Submitted, 1)
			if out.IsNewPattern {
				atomic.AddInt64(&res.NewPatterns, 1)
			}
			if out.Ranked {
				atomic.AddInt64(&res.Ranked, 1)
			}
			if !out.Durable {
				atomic.AddInt64(&res.NotDurable, 1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		reportJSONError(f, err)
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	snap := svc.Snapshot()
	res.TotalSubmissions = snap.TotalSubmissions
	res.UniquePatterns = snap.UniquePatterns()

	if opts.Format == "json" {
		if err := f.Success(res); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Submitted %s patterns (%s new, %s ranked)\n",
			formatCount(res.Submitted), formatCount(res.NewPatterns), formatCount(res.Ranked))
		fmt.Fprintf(w, "Store now holds %s submissions of %s unique patterns\n",
			formatCount(res.TotalSubmissions), formatCount(res.UniquePatterns))
		if res.NotDurable > 0 {
			fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d submissions were not saved", res.NotDurable)))
		}
	}

	if opts.Metrics {
		// keep stdout parseable in JSON mode
		w := f.Writer
		if opts.Format == "json" {
			w = f.GetErrWriter()
		}
		if err := m.WriteText(w); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if !svc.Durable() {
		return NewExitError(ExitFailure, "store is not durable: last save failed")
	}
	return nil
}
