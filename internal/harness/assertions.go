package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/toothdex/internal/engine"
	"github.com/roach88/toothdex/internal/pattern"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against svc and returns the
// failure messages.
func EvaluateAssertions(svc *engine.Service, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluateAssertion(svc, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluateAssertion(svc *engine.Service, a Assertion) error {
	switch a.Type {
	case AssertLeaderboardOrder:
		return assertLeaderboardOrder(svc, a)
	case AssertLeaderboardSize:
		return assertLeaderboardSize(svc, a)
	case AssertPatternCount:
		return assertPatternCount(svc, a)
	case AssertBucket:
		return assertBucket(svc, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertLeaderboardOrder checks the discovered_by names in rank order.
func assertLeaderboardOrder(svc *engine.Service, a Assertion) error {
	rows := svc.Leaderboard()
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.DiscoveredBy
	}

	match := len(names) == len(a.Names)
	for i := 0; match && i < len(names); i++ {
		match = names[i] == a.Names[i]
	}
	if match {
		return nil
	}
	return &AssertionError{
		Type:     AssertLeaderboardOrder,
		Expected: fmt.Sprintf("%q", a.Names),
		Actual:   fmt.Sprintf("%q", names),
	}
}

func assertLeaderboardSize(svc *engine.Service, a Assertion) error {
	if n := len(svc.Leaderboard()); n != a.Count {
		return &AssertionError{
			Type:     AssertLeaderboardSize,
			Expected: fmt.Sprintf("%d entries", a.Count),
			Actual:   fmt.Sprintf("%d entries", n),
		}
	}
	return nil
}

func assertPatternCount(svc *engine.Service, a Assertion) error {
	p, err := resolvePattern(a.Pattern, a.Missing)
	if err != nil {
		return err
	}
	key := pattern.Encode(p)

	count := 0
	if rec := svc.Snapshot().Record(key); rec != nil {
		count = rec.Count
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertPatternCount,
			Expected: fmt.Sprintf("%s seen %d times", key, a.Count),
			Actual:   fmt.Sprintf("%s seen %d times", key, count),
		}
	}
	return nil
}

func assertBucket(svc *engine.Service, a Assertion) error {
	sum, err := svc.Stats()
	if err != nil {
		return err
	}
	m := *a.MissingCount

	if a.Submissions != nil && sum.SubmissionsByMissingCount[m] != *a.Submissions {
		return &AssertionError{
			Type:     AssertBucket,
			Expected: fmt.Sprintf("%d submissions with %d missing", *a.Submissions, m),
			Actual:   fmt.Sprintf("%d submissions with %d missing", sum.SubmissionsByMissingCount[m], m),
		}
	}
	if a.Discovered != nil && sum.DiscoveredPatternsByMissingCount[m] != *a.Discovered {
		return &AssertionError{
			Type:     AssertBucket,
			Expected: fmt.Sprintf("%d patterns discovered with %d missing", *a.Discovered, m),
			Actual:   fmt.Sprintf("%d patterns discovered with %d missing", sum.DiscoveredPatternsByMissingCount[m], m),
		}
	}
	return nil
}

// checkExpect compares one step outcome against its expect clause.
func checkExpect(index int, step Step, outcome StepOutcome, err error) []string {
	prefix := fmt.Sprintf("step %d (%s)", index, step.Name)
	exp := step.Expect

	if exp != nil && exp.Error != "" {
		if err == nil {
			return []string{fmt.Sprintf("%s: expected error %s, submission succeeded", prefix, exp.Error)}
		}
		if outcome.ErrorCode != exp.Error {
			return []string{fmt.Sprintf("%s: expected error %s, got %s: %v", prefix, exp.Error, outcome.ErrorCode, err)}
		}
		return nil
	}
	if err != nil {
		return []string{fmt.Sprintf("%s: unexpected error: %v", prefix, err)}
	}
	if exp == nil {
		return nil
	}

	res := outcome.Result
	var errs []string
	checkBool := func(field string, want *bool, got bool) {
		if want != nil && *want != got {
			errs = append(errs, fmt.Sprintf("%s: %s: expected %t, got %t", prefix, field, *want, got))
		}
	}
	checkInt := func(field string, want *int, got int) {
		if want != nil && *want != got {
			errs = append(errs, fmt.Sprintf("%s: %s: expected %d, got %d", prefix, field, *want, got))
		}
	}

	checkBool("new", exp.New, res.IsNewPattern)
	checkInt("occurrence", exp.Occurrence, res.OccurrenceCount)
	checkInt("score", exp.Score, res.RarityScore)
	checkInt("total", exp.Total, res.TotalSubmissions)
	checkInt("unique", exp.Unique, res.UniquePatternCount)
	checkBool("ranked", exp.Ranked, res.Ranked)
	checkBool("durable", exp.Durable, res.Durable)
	return errs
}
