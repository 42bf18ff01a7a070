package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/toothdex/internal/combin"
	"github.com/roach88/toothdex/internal/pattern"
)

// SpaceRow is one line of the pattern space breakdown.
type SpaceRow struct {
	Missing  int   `json:"missing"`
	Patterns int64 `json:"patterns"`
}

// SpaceResult is the pattern space breakdown.
type SpaceResult struct {
	Slots int        `json:"slots"`
	Total int64      `json:"total"`
	Rows  []SpaceRow `json:"rows"`
}

// NewSpaceCommand creates the space command.
func NewSpaceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "space",
		Short: "Show how many patterns are possible",
		Long: `Show the number of possible patterns for each number of missing teeth,
and in total (2^28).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpace(rootOpts, cmd)
		},
	}

	return cmd
}

// PatternSpace computes the breakdown for pattern.Size slots.
func PatternSpace() (SpaceResult, error) {
	res := SpaceResult{
		Slots: pattern.Size,
		Total: combin.SpaceSize(pattern.Size).Int64(),
		Rows:  make([]SpaceRow, 0, pattern.Size+1),
	}
	for k := 0; k <= pattern.Size; k++ {
		c, err := combin.Binomial(pattern.Size, k)
		if err != nil {
			return SpaceResult{}, err
		}
		res.Rows = append(res.Rows, SpaceRow{Missing: k, Patterns: c.Int64()})
	}
	return res, nil
}

func runSpace(opts *RootOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	res, err := PatternSpace()
	if err != nil {
		reportJSONError(f, err)
		return WrapExitError(ExitFailure, "failed to compute pattern space", err)
	}

	if opts.Format == "json" {
		return f.Success(res)
	}

	w := cmd.OutOrStdout()
	rows := make([][]string, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = []string{strconv.Itoa(r.Missing), formatCount(r.Patterns)}
	}
	fmt.Fprintln(w, renderTable([]string{"Missing", "Patterns"}, rows))
	fmt.Fprintf(w, "Total: %s possible patterns over %d slots\n", formatCount(res.Total), res.Slots)
	return nil
}
