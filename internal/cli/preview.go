package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/toothdex/internal/engine"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	patternInput
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Describe a pattern without recording it",
		Long: `Show a pattern's key, its missing slots, and how many distinct patterns
share its number of missing teeth. Nothing is read from or written to the
store.

Examples:
  toothdex preview --missing 1,16
  toothdex preview --pattern 0111111111111111111111111110
  toothdex preview --random`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(opts, cmd)
		},
	}

	opts.patternInput.register(cmd)

	return cmd
}

func runPreview(opts *PreviewOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	p, err := opts.resolve()
	if err != nil {
		reportJSONError(f, err)
		return WrapExitError(ExitFailure, "invalid pattern", err)
	}

	pv, err := engine.PreviewPattern(p)
	if err != nil {
		reportJSONError(f, err)
		return WrapExitError(ExitFailure, "invalid pattern", err)
	}

	if opts.Format == "json" {
		return f.Success(pv)
	}

	w := cmd.OutOrStdout()
	slots := make([]string, len(pv.MissingSlots))
	for i, s := range pv.MissingSlots {
		slots[i] = strconv.Itoa(s)
	}
	missing := "none"
	if len(slots) > 0 {
		missing = strings.Join(slots, ", ")
	}

	fmt.Fprintf(w, "Pattern:       %s\n", pv.PatternKey)
	fmt.Fprintf(w, "Missing teeth: %d (%s)\n", pv.MissingCount, missing)
	fmt.Fprintf(w, "Patterns with %d missing: %s\n", pv.MissingCount, formatCount(pv.SameMissingCombinations.Int64()))
	return nil
}
