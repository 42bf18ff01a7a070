package cli

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/roach88/toothdex/internal/engine"
	"github.com/roach88/toothdex/internal/pattern"
	"github.com/roach88/toothdex/internal/rarity"
	"github.com/roach88/toothdex/internal/store"
)

// patternInput holds the flags that describe a pattern.
type patternInput struct {
	Missing []int  // 1-based missing slots
	Key     string // 28-character pattern key
	Random  bool   // draw a random pattern with 0..10 missing
}

func (in *patternInput) register(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&in.Missing, "missing", nil, "comma-separated missing slots (1-28)")
	cmd.Flags().StringVar(&in.Key, "pattern", "", "pattern key, 28 characters of 1 (present) or 0 (missing)")
	cmd.Flags().BoolVar(&in.Random, "random", false, "use a random pattern with up to 10 missing")
	cmd.MarkFlagsMutuallyExclusive("missing", "pattern", "random")
}

// resolve returns the pattern the flags describe; no flags means a full
// set of teeth.
func (in *patternInput) resolve() (pattern.Pattern, error) {
	switch {
	case in.Key != "":
		return pattern.Decode(pattern.Key(in.Key))
	case in.Random:
		r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		return pattern.Random(r, pattern.RandomMissing(r))
	default:
		return pattern.FromMissingSlots(in.Missing)
	}
}

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	patternInput
	Name string
	Age  float64
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Record a dental pattern",
		Long: `Record one dental pattern and report how rare it is.

Slots are numbered 1 to 28. Pass the missing ones with --missing, or the
whole pattern as a key with --pattern. With neither, all 28 teeth are
present.

Exit codes:
  0 - Submission recorded and saved
  1 - Submission rejected, or recorded but the save failed
  2 - Command error (bad config, unreadable store)

Examples:
  toothdex submit --name Alice
  toothdex submit --name Bob --missing 1,16,17,28 --age 54
  toothdex submit --name Carol --pattern 0111111111111111111111111110
  toothdex submit --name Dan --random --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(opts, cmd)
		},
	}

	opts.patternInput.register(cmd)
	cmd.Flags().StringVar(&opts.Name, "name", "", "submitter name shown on the leaderboard (required)")
	cmd.Flags().Float64Var(&opts.Age, "age", 0, "submitter age (optional, 0-120)")

	return cmd
}

func runSubmit(opts *SubmitOptions, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	p, err := opts.resolve()
	if err != nil {
		reportJSONError(f, err)
		return WrapExitError(ExitFailure, "invalid pattern", err)
	}

	sub := engine.Submission{Pattern: p, Name: opts.Name}
	if cmd.Flags().Changed("age") {
		age := opts.Age
		sub.Age = &age
	}

	ctx := cmd.Context()
	svc, err := opts.openService(ctx, cmd, nil)
	if err != nil {
		reportJSONError(f, err)
		return err
	}
	defer svc.Close()

	res, err := svc.Submit(ctx, sub)
	if err != nil {
		reportJSONError(f, err)
		return WrapExitError(ExitFailure, "submission rejected", err)
	}

	if opts.Format == "json" {
		if err := f.Success(res); err != nil {
			return err
		}
	} else {
		writeSubmitText(cmd, res)
	}

	if !res.Durable {
		return NewExitError(ExitFailure, "submission recorded in memory only: save failed")
	}
	return nil
}

func writeSubmitText(cmd *cobra.Command, res engine.Result) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Pattern %s (%d missing)\n", res.PatternKey, res.MissingCount)
	if res.IsNewPattern {
		fmt.Fprintln(w, "First time this pattern has been seen!")
	} else {
		fmt.Fprintf(w, "Seen %s times\n", formatCount(res.OccurrenceCount))
	}
	fmt.Fprintf(w, "Rarity score: %d/%d (%s)\n", res.RarityScore, rarity.MaxScore, res.Tier)
	if res.Ranked {
		fmt.Fprintln(w, "Added to the rare pattern leaderboard")
	}
	fmt.Fprintf(w, "Total submissions: %s, unique patterns: %s\n",
		formatCount(res.TotalSubmissions), formatCount(res.UniquePatternCount))
}

// errorCode maps a domain error to a JSON error code.
func errorCode(err error) string {
	switch {
	case engine.IsValidationError(err):
		return ErrCodeValidation
	case pattern.IsInvalidKey(err), pattern.IsInvalidSlot(err):
		return ErrCodeInvalidKey
	case store.IsPersistenceError(err):
		return ErrCodePersistence
	}
	return ErrCodeGeneric
}

// reportJSONError writes err as a JSON error response. Text mode leaves
// error reporting to main, which prints the returned error once.
func reportJSONError(f *OutputFormatter, err error) {
	if f.Format == "json" {
		_ = f.Error(errorCode(err), err.Error(), nil)
	}
}
