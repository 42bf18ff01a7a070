package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/toothdex/internal/leaderboard"
	"github.com/roach88/toothdex/internal/pattern"
)

// Scenario is a scripted sequence of submissions with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Policy overrides the leaderboard policy. If nil, the default applies.
	Policy *PolicySpec `yaml:"policy,omitempty"`

	// Steps are submitted in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	// Supported types: leaderboard_order, leaderboard_size, pattern_count, bucket
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// PolicySpec is the YAML form of leaderboard.Policy. Zero fields take the
// default.
type PolicySpec struct {
	Size      int `yaml:"size"`
	Threshold int `yaml:"threshold"`
}

// Step is one submission.
type Step struct {
	// Name is the submitter name. May be empty to exercise validation.
	Name string `yaml:"name"`

	// Pattern is a pattern key. Mutually exclusive with Missing.
	Pattern string `yaml:"pattern,omitempty"`

	// Missing lists 1-based missing slots. If both Pattern and Missing are
	// empty, the full pattern is submitted.
	Missing []int `yaml:"missing,omitempty"`

	// Age is the optional submitter age.
	Age *float64 `yaml:"age,omitempty"`

	// FailSave makes the backend reject the save after this submission.
	FailSave bool `yaml:"fail_save,omitempty"`

	// Expect is checked against the submission result. If nil, the step
	// only has to succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is a subset match over engine.Result. Nil fields are not checked.
type Expect struct {
	New        *bool `yaml:"new,omitempty"`
	Occurrence *int  `yaml:"occurrence,omitempty"`
	Score      *int  `yaml:"score,omitempty"`
	Total      *int  `yaml:"total,omitempty"`
	Unique     *int  `yaml:"unique,omitempty"`
	Ranked     *bool `yaml:"ranked,omitempty"`
	Durable    *bool `yaml:"durable,omitempty"`

	// Error is the expected error code (VALIDATION, INVALID_KEY,
	// INVALID_SLOT). When set, the step must fail.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "leaderboard_order": discovered_by names, in rank order
	// - "leaderboard_size": number of ranked entries
	// - "pattern_count": occurrence count of one pattern
	// - "bucket": per-missing-count statistics
	Type string `yaml:"type"`

	// Names is the expected leaderboard order (leaderboard_order).
	Names []string `yaml:"names,omitempty"`

	// Count is the expected size or occurrence count (leaderboard_size,
	// pattern_count).
	Count int `yaml:"count,omitempty"`

	// Pattern and Missing identify the pattern (pattern_count), the same
	// way Step does.
	Pattern string `yaml:"pattern,omitempty"`
	Missing []int  `yaml:"missing,omitempty"`

	// MissingCount selects the bucket; Submissions and Discovered are the
	// expected totals in it (bucket).
	MissingCount *int `yaml:"missing_count,omitempty"`
	Submissions  *int `yaml:"submissions,omitempty"`
	Discovered   *int `yaml:"discovered,omitempty"`
}

// Assertion type constants.
const (
	AssertLeaderboardOrder = "leaderboard_order"
	AssertLeaderboardSize  = "leaderboard_size"
	AssertPatternCount     = "pattern_count"
	AssertBucket           = "bucket"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LeaderboardPolicy returns the policy the scenario runs with.
func (s *Scenario) LeaderboardPolicy() leaderboard.Policy {
	if s.Policy == nil {
		return leaderboard.DefaultPolicy()
	}
	p := leaderboard.DefaultPolicy()
	if s.Policy.Size != 0 {
		p.Size = s.Policy.Size
	}
	if s.Policy.Threshold != 0 {
		p.Threshold = s.Policy.Threshold
	}
	return p
}

// resolvePattern turns a key or a missing-slot list into a pattern.
func resolvePattern(key string, missing []int) (pattern.Pattern, error) {
	if key != "" {
		return pattern.Decode(pattern.Key(key))
	}
	return pattern.FromMissingSlots(missing)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if err := s.LeaderboardPolicy().Validate(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	for i, step := range s.Steps {
		if step.Pattern != "" && len(step.Missing) > 0 {
			return fmt.Errorf("steps[%d]: pattern and missing are mutually exclusive", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLeaderboardOrder:
		// an empty list asserts an empty leaderboard
	case AssertLeaderboardSize:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for leaderboard_size", index)
		}
	case AssertPatternCount:
		if a.Pattern != "" && len(a.Missing) > 0 {
			return fmt.Errorf("assertions[%d]: pattern and missing are mutually exclusive", index)
		}
		if _, err := resolvePattern(a.Pattern, a.Missing); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertBucket:
		if a.MissingCount == nil {
			return fmt.Errorf("assertions[%d]: missing_count is required for bucket", index)
		}
		if *a.MissingCount < 0 || *a.MissingCount > pattern.Size {
			return fmt.Errorf("assertions[%d]: missing_count must be in [0,%d]", index, pattern.Size)
		}
		if a.Submissions == nil && a.Discovered == nil {
			return fmt.Errorf("assertions[%d]: submissions or discovered is required for bucket", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
