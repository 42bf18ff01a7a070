package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/toothdex/internal/stats"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	All bool // include missing counts nobody has submitted
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show discovery statistics",
		Long: `Show how many submissions and distinct patterns exist for each number
of missing teeth, against how many patterns are possible.

Examples:
  toothdex stats
  toothdex stats --all
  toothdex stats --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "show every missing count, including empty ones")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	svc, err := opts.openService(cmd.Context(), cmd, nil)
	if err != nil {
		reportJSONError(f, err)
		return err
	}
	defer svc.Close()

	sum, err := svc.Stats()
	if err != nil {
		reportJSONError(f, err)
		return WrapExitError(ExitCommandError, "failed to aggregate", err)
	}

	if opts.Format == "json" {
		return f.Success(sum)
	}
	writeStatsText(cmd, sum, opts.All)
	return nil
}

func writeStatsText(cmd *cobra.Command, sum stats.Summary, all bool) {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, titleStyle.Render("Overview"))
	fmt.Fprintf(w, "Total submissions: %s\n", formatCount(sum.TotalSubmissions))
	fmt.Fprintf(w, "Unique patterns:   %s\n", formatCount(sum.UniquePatterns))
	fmt.Fprintf(w, "Possible patterns: %s\n", formatCount(sum.TheoreticalSpace.Int64()))
	fmt.Fprintf(w, "Discovered:        %.8f%%\n", sum.OverallDiscoveryRate)
	fmt.Fprintln(w)

	rows := make([][]string, 0, stats.Buckets)
	for m := 0; m < stats.Buckets; m++ {
		if !all && sum.SubmissionsByMissingCount[m] == 0 {
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(m),
			formatCount(sum.SubmissionsByMissingCount[m]),
			formatCount(sum.DiscoveredPatternsByMissingCount[m]),
			formatCount(sum.TheoreticalByMissingCount[m]),
			fmt.Sprintf("%.6f%%", sum.DiscoveryRate[m]),
		})
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "No submissions yet.")
		return
	}

	fmt.Fprintln(w, titleStyle.Render("By missing teeth"))
	fmt.Fprintln(w, renderTable([]string{"Missing", "Submissions", "Discovered", "Possible", "Discovery"}, rows))
}
