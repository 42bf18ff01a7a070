package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/roach88/toothdex/internal/combin"
	"github.com/roach88/toothdex/internal/leaderboard"
	"github.com/roach88/toothdex/internal/metrics"
	"github.com/roach88/toothdex/internal/pattern"
	"github.com/roach88/toothdex/internal/rarity"
	"github.com/roach88/toothdex/internal/stats"
	"github.com/roach88/toothdex/internal/store"
)

// Result describes the outcome of one submission.
type Result struct {
	SubmissionID       string      `json:"submission_id"`
	PatternKey         pattern.Key `json:"pattern_key"`
	MissingCount       int         `json:"missing_count"`
	IsNewPattern       bool        `json:"is_new_pattern"`
	OccurrenceCount    int         `json:"occurrence_count"`
	RarityScore        int         `json:"rarity_score"`
	Tier               rarity.Tier `json:"tier"`
	Ranked             bool        `json:"ranked"`
	TotalSubmissions   int         `json:"total_submissions"`
	UniquePatternCount int         `json:"unique_pattern_count"`
	Timestamp          string      `json:"timestamp"`

	// Durable is false when the save after this submission failed; the
	// submission is then held in memory only.
	Durable bool `json:"durable"`
}

// Service serializes submissions against one State and persists it.
//
// Thread-safety model:
//   - Submit(), Retry(): exclusive lock, includes the backend save
//   - Snapshot(), Stats(), Leaderboard(), Durable(): shared lock
//   - Preview(): no lock, pure
type Service struct {
	mu      sync.RWMutex
	state   *store.State
	backend store.Backend
	durable bool

	policy  leaderboard.Policy
	clock   Clock
	ids     IDGenerator
	logger  *slog.Logger
	metrics *metrics.Collector
}

// Option configures a Service.
type Option func(*Service)

// WithPolicy sets the leaderboard policy. Open rejects a policy that fails
// leaderboard.Policy.Validate.
// Default: leaderboard.DefaultPolicy() (top 10, score > 90).
func WithPolicy(p leaderboard.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithClock sets the timestamp source. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithIDGenerator sets the submission ID source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Service) {
		s.ids = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithMetrics attaches a metrics collector. Default: none.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Open loads the state from backend and returns a Service that owns it.
//
// A load failure is returned as is (a *store.PersistenceError for corrupt
// data) and no Service is created: corrupt state is never replaced by an
// empty one. Derivable invariants (the submission total, leaderboard
// membership and order) are repaired on load and each fix is logged.
func Open(ctx context.Context, backend store.Backend, opts ...Option) (*Service, error) {
	s := &Service{
		backend: backend,
		durable: true,
		policy:  leaderboard.DefaultPolicy(),
		clock:   SystemClock{},
		ids:     UUIDv7Generator{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.policy.Validate(); err != nil {
		return nil, &ValidationError{Field: "Policy", Message: err.Error()}
	}

	state, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}

	for _, note := range store.Repair(state) {
		s.logger.Warn("state repaired on load", "fix", note)
	}
	if trimmed := s.policy.Trim(state.RarePatterns); len(trimmed) != len(state.RarePatterns) {
		s.logger.Warn("leaderboard truncated on load", "from", len(state.RarePatterns), "to", len(trimmed))
		state.RarePatterns = trimmed
	}

	s.state = state
	s.metrics.SetStoreSize(state.TotalSubmissions, state.UniquePatterns(), len(state.RarePatterns))
	s.logger.Info("store loaded",
		"total_submissions", state.TotalSubmissions,
		"unique_patterns", state.UniquePatterns(),
		"rare_patterns", len(state.RarePatterns),
	)
	return s, nil
}

// Submit records one submission and returns its result.
//
// Invalid requests return a *ValidationError and change nothing. A failed
// save is not an error: the result carries Durable=false.
func (s *Service) Submit(ctx context.Context, sub Submission) (Result, error) {
	sub = sub.normalize()
	if err := sub.validate(); err != nil {
		return Result{}, err
	}

	key := pattern.Encode(sub.Pattern)
	missing := sub.Pattern.Missing()
	id := s.ids.Generate()

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.clock.Now().Format(store.TimestampLayout)
	isNew := s.state.Upsert(key, store.Submission{
		ID:        id,
		Name:      sub.Name,
		Age:       sub.Age,
		Timestamp: ts,
	}, missing, sub.Pattern)

	rec := s.state.Record(key)
	score := rarity.Score(rec, s.state.TotalSubmissions)

	ranked := false
	if s.policy.Qualifies(score) {
		s.state.RarePatterns, ranked = s.policy.MaybeInsert(s.state.RarePatterns, store.RareEntry{
			PatternKey:   key,
			RarityScore:  score,
			DiscoveredBy: sub.Name,
			Timestamp:    ts,
		})
	}

	s.durable = s.save(ctx)

	result := Result{
		SubmissionID:       id,
		PatternKey:         key,
		MissingCount:       missing,
		IsNewPattern:       isNew,
		OccurrenceCount:    rec.Count,
		RarityScore:        score,
		Tier:               rarity.Classify(score),
		Ranked:             ranked,
		TotalSubmissions:   s.state.TotalSubmissions,
		UniquePatternCount: s.state.UniquePatterns(),
		Timestamp:          ts,
		Durable:            s.durable,
	}

	s.metrics.ObserveSubmission(isNew, score)
	s.metrics.SetStoreSize(result.TotalSubmissions, result.UniquePatternCount, len(s.state.RarePatterns))
	s.logger.Info("submission recorded",
		"submission_id", id,
		"pattern_key", string(key),
		"missing_count", missing,
		"new", isNew,
		"occurrence", rec.Count,
		"rarity_score", score,
		"ranked", ranked,
		"durable", s.durable,
	)

	return result, nil
}

// save persists the state. Caller must hold s.mu exclusively.
func (s *Service) save(ctx context.Context) bool {
	if err := s.backend.Save(ctx, s.state); err != nil {
		s.metrics.PersistFailed()
		s.logger.Error("save failed; state is held in memory only", "error", err)
		return false
	}
	return true
}

// Retry saves the current state again. Use after a submission came back
// with Durable=false. Returns the backend error if the save fails again.
func (s *Service) Retry(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Save(ctx, s.state); err != nil {
		s.durable = false
		s.metrics.PersistFailed()
		return err
	}
	s.durable = true
	s.logger.Info("state saved on retry", "total_submissions", s.state.TotalSubmissions)
	return nil
}

// Durable reports whether the last save succeeded.
func (s *Service) Durable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.durable
}

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() *store.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Stats aggregates the current state.
func (s *Service) Stats() (stats.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stats.Aggregate(s.state)
}

// Leaderboard returns the current ranking as display rows.
func (s *Service) Leaderboard() []leaderboard.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return leaderboard.Rows(s.state)
}

// Close releases the backend.
func (s *Service) Close() error {
	return s.backend.Close()
}

// Preview describes a pattern without recording it.
type Preview struct {
	PatternKey   pattern.Key `json:"pattern_key"`
	MissingCount int         `json:"missing_count"`
	MissingSlots []int       `json:"missing_slots"`

	// SameMissingCombinations is the number of distinct patterns with the
	// same missing count.
	SameMissingCombinations *big.Int `json:"same_missing_combinations"`
}

// PreviewPattern computes the Preview of p.
func PreviewPattern(p pattern.Pattern) (Preview, error) {
	if !p.Valid() {
		return Preview{}, &ValidationError{
			Field:   "Pattern",
			Message: fmt.Sprintf("pattern has %d slots, want %d", len(p), pattern.Size),
		}
	}
	c, err := combin.Binomial(pattern.Size, p.Missing())
	if err != nil {
		return Preview{}, err
	}
	return Preview{
		PatternKey:              pattern.Encode(p),
		MissingCount:            p.Missing(),
		MissingSlots:            p.MissingSlots(),
		SameMissingCombinations: c,
	}, nil
}
