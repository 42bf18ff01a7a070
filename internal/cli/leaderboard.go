package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/toothdex/internal/leaderboard"
)

// NewLeaderboardCommand creates the leaderboard command.
func NewLeaderboardCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the rarest discoveries",
		Long: `Show the rare pattern leaderboard: the first submitter of each pattern
whose score on discovery exceeded the rare threshold.

Examples:
  toothdex leaderboard
  toothdex leaderboard --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(rootOpts, cmd)
		},
	}

	return cmd
}

func runLeaderboard(opts *RootOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	svc, err := opts.openService(cmd.Context(), cmd, nil)
	if err != nil {
		reportJSONError(f, err)
		return err
	}
	defer svc.Close()

	rows := svc.Leaderboard()
	if opts.Format == "json" {
		return f.Success(rows)
	}
	writeLeaderboardText(cmd, rows)
	return nil
}

func writeLeaderboardText(cmd *cobra.Command, rows []leaderboard.Row) {
	w := cmd.OutOrStdout()

	if len(rows) == 0 {
		fmt.Fprintln(w, "No rare patterns discovered yet.")
		return
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		missing := "?"
		if r.MissingCount >= 0 {
			missing = strconv.Itoa(r.MissingCount)
		}
		cells[i] = []string{
			strconv.Itoa(r.Rank),
			r.DiscoveredBy,
			strconv.Itoa(r.RarityScore),
			missing,
			r.Timestamp,
		}
	}

	fmt.Fprintln(w, titleStyle.Render("Rare patterns"))
	fmt.Fprintln(w, renderTable([]string{"#", "Discovered by", "Score", "Missing", "When"}, cells))
}
