package harness

import (
	"github.com/roach88/toothdex/internal/engine"
	"github.com/roach88/toothdex/internal/store"
)

// StepOutcome records what one step did.
type StepOutcome struct {
	Index int    `json:"index"`
	Name  string `json:"name"`

	// Result is set when the submission was accepted.
	Result *engine.Result `json:"result,omitempty"`

	// ErrorCode is set when it was rejected.
	ErrorCode string `json:"error_code,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Steps holds one outcome per scenario step, in order.
	Steps []StepOutcome `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final in-memory state, used for golden comparison.
	State *store.State `json:"-"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepOutcome{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step outcome.
func (r *Result) AddStep(o StepOutcome) {
	r.Steps = append(r.Steps, o)
}
