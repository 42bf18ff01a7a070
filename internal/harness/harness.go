package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/toothdex/internal/engine"
	"github.com/roach88/toothdex/internal/pattern"
	"github.com/roach88/toothdex/internal/store"
	"github.com/roach88/toothdex/internal/testutil"
)

// errInjectedSave is what the backend returns for a fail_save step.
var errInjectedSave = errors.New("injected save failure")

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and submission IDs.
type Harness struct {
	backend *store.MemoryBackend
	service *engine.Service
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory backend for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory backend and open a Service on it
// 2. Submit each step, checking its expect clause
// 3. Evaluate assertions against the final state
// 4. Return result with pass/fail, step outcomes, errors and final state
//
// A returned error means the scenario could not run at all; expectation
// mismatches are reported through Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with the given logger attached to the service.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()

	svc, err := engine.Open(ctx, backend,
		engine.WithPolicy(scenario.LeaderboardPolicy()),
		engine.WithClock(testutil.NewDefaultClock()),
		engine.WithIDGenerator(testutil.NewSequenceIDs("")),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open service: %w", err)
	}
	defer svc.Close()

	h := &Harness{
		backend: backend,
		service: svc,
		logger:  logger,
	}

	result := NewResult()
	h.executeSteps(ctx, scenario.Steps, result)

	result.State = svc.Snapshot()
	for _, errMsg := range EvaluateAssertions(svc, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSteps submits every step in order and checks its expect clause.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) {
	for i, step := range steps {
		outcome := StepOutcome{Index: i, Name: step.Name}

		if step.FailSave {
			h.backend.FailSaves(errInjectedSave)
		} else {
			h.backend.FailSaves(nil)
		}

		res, err := h.submit(ctx, step)
		if err != nil {
			outcome.ErrorCode = errorCode(err)
		} else {
			outcome.Result = &res
		}
		result.AddStep(outcome)

		for _, msg := range checkExpect(i, step, outcome, err) {
			result.AddError(msg)
		}

		h.logger.Info("step completed",
			"step", i,
			"name", step.Name,
			"error_code", outcome.ErrorCode,
		)
	}
	h.backend.FailSaves(nil)
}

func (h *Harness) submit(ctx context.Context, step Step) (engine.Result, error) {
	p, err := resolvePattern(step.Pattern, step.Missing)
	if err != nil {
		return engine.Result{}, err
	}
	return h.service.Submit(ctx, engine.Submission{
		Pattern: p,
		Name:    step.Name,
		Age:     step.Age,
	})
}

// errorCode maps a submission error to the code a scenario expects.
func errorCode(err error) string {
	var ve *engine.ValidationError
	if errors.As(err, &ve) {
		return engine.ErrCodeValidation
	}
	var ke *pattern.KeyError
	if errors.As(err, &ke) {
		return string(ke.Code)
	}
	if store.IsPersistenceError(err) {
		return store.ErrCodePersistence
	}
	return "ERROR"
}
