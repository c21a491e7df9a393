// Package selector runs the per-gesture matching cycle: it arms a gesture,
// records its samples, evaluates the finished path against every lane
// exactly once, and gates the best candidate by an accuracy threshold.
package selector

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/lanematch/internal/config"
	"github.com/banshee-data/lanematch/internal/lane"
	"github.com/banshee-data/lanematch/internal/monitoring"
	"github.com/banshee-data/lanematch/internal/scoring"
	"github.com/banshee-data/lanematch/internal/timeutil"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

// State is the selector's position in the gesture cycle.
type State int

const (
	// StateIdle waits for Arm.
	StateIdle State = iota
	// StateArmed records samples.
	StateArmed
	// StateEvaluating scores the finished gesture.
	StateEvaluating
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateEvaluating:
		return "evaluating"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status classifies an evaluation.
type Status string

const (
	StatusSelected        Status = "selected"
	StatusRejected        Status = "rejected"
	StatusNoCandidate     Status = "no_candidate"
	StatusDegenerateInput Status = "degenerate_input"
)

// Outcome is the result of evaluating one gesture.
type Outcome struct {
	GestureID    string                `json:"gesture_id"`
	Status       Status                `json:"status"`
	Strategy     string                `json:"strategy"`
	BestLaneID   string                `json:"best_lane_id,omitempty"`
	BestLaneName string                `json:"best_lane_name,omitempty"`
	BestLaneKey  string                `json:"best_lane_key,omitempty"`
	BestScore    float64               `json:"best_score"`
	Accuracy     float64               `json:"accuracy"`
	Results      []scoring.MatchResult `json:"results"`
	Reason       string                `json:"reason,omitempty"`
	InputPoints  int                   `json:"input_points"`
	InputSpeed   float64               `json:"input_speed"`
	EvaluatedAt  time.Time             `json:"evaluated_at"`
}

// Selected reports whether a lane passed the accuracy gate.
func (o Outcome) Selected() bool { return o.Status == StatusSelected }

// Config controls gating and evaluation.
type Config struct {
	// MatchThreshold is the score at which accuracy reaches 0%.
	MatchThreshold float64
	// MinMatchAccuracy is the accuracy percentage a lane needs to be selected.
	MinMatchAccuracy float64
	// Parallel scores lanes concurrently. Results are identical to
	// sequential scoring.
	Parallel bool
	// ParallelLimit bounds concurrent lane scoring; <= 0 means DefaultParallelLimit.
	ParallelLimit int
	// Recorder configures gesture capture.
	Recorder trajectory.RecorderConfig
}

// DefaultParallelLimit bounds concurrent lane scoring.
const DefaultParallelLimit = 8

// DefaultConfig returns the default gating configuration.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning reads selector settings from cfg.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		MatchThreshold:   cfg.GetMatchThreshold(),
		MinMatchAccuracy: cfg.GetMinMatchAccuracy(),
		Parallel:         cfg.GetParallelLanes(),
		ParallelLimit:    DefaultParallelLimit,
		Recorder: trajectory.RecorderConfig{
			MinSampleDistance: cfg.GetMinSampleDistance(),
			MaxPoints:         cfg.GetMaxGesturePoints(),
		},
	}
}

// Selector drives the gesture cycle. All methods are safe for concurrent
// use; listeners run outside the lock.
type Selector struct {
	cfg    Config
	scorer *scoring.Scorer
	clock  timeutil.Clock

	mu         sync.Mutex
	state      State
	gestureID  string
	hasChecked bool
	recorder   *trajectory.Recorder
	last       *Outcome
	listeners  []func(Outcome)
}

// New creates a selector. A nil clock uses the wall clock.
func New(cfg Config, scorer *scoring.Scorer, clock timeutil.Clock) *Selector {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if cfg.MatchThreshold <= 0 {
		cfg.MatchThreshold = config.EmptyTuningConfig().GetMatchThreshold()
	}
	if cfg.ParallelLimit <= 0 {
		cfg.ParallelLimit = DefaultParallelLimit
	}
	return &Selector{
		cfg:      cfg,
		scorer:   scorer,
		clock:    clock,
		recorder: trajectory.NewRecorder(cfg.Recorder, clock),
	}
}

// NewFromTuning creates a selector and its scorer from tuning configuration.
func NewFromTuning(cfg *config.TuningConfig, clock timeutil.Clock) (*Selector, error) {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	scorer, err := scoring.NewScorer(cfg)
	if err != nil {
		return nil, err
	}
	return New(ConfigFromTuning(cfg), scorer, clock), nil
}

// Subscribe registers fn to receive every outcome produced by Finish.
func (s *Selector) Subscribe(fn func(Outcome)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// State returns the current state.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GestureID returns the ID of the current or most recent gesture.
func (s *Selector) GestureID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gestureID
}

// LastOutcome returns the outcome of the most recent evaluation since the
// last Arm.
func (s *Selector) LastOutcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Outcome{}, false
	}
	return *s.last, true
}

// Arm starts a new gesture and returns its ID. Arming an armed selector
// discards the gesture in progress.
func (s *Selector) Arm() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateArmed {
		monitoring.Logf("[Selector] Re-armed; discarding gesture %s with %d samples", s.gestureID, s.recorder.Len())
	}
	s.gestureID = uuid.NewString()
	s.hasChecked = false
	s.last = nil
	s.recorder.Start()
	s.state = StateArmed
	return s.gestureID
}

// Record appends a sample stamped by the selector's clock. Samples are
// ignored unless the selector is armed.
func (s *Selector) Record(p trajectory.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateArmed {
		return false
	}
	return s.recorder.Add(p)
}

// RecordAt appends a sample with an explicit timestamp in seconds since the
// gesture began.
func (s *Selector) RecordAt(p trajectory.Point, t float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateArmed {
		return false
	}
	return s.recorder.AddAt(p, t)
}

// Abort drops the gesture in progress and returns to idle.
func (s *Selector) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateArmed {
		return
	}
	monitoring.Logf("[Selector] Aborted gesture %s", s.gestureID)
	s.recorder.Start()
	s.state = StateIdle
}

// Finish ends the armed gesture and evaluates it against lanes. A gesture
// is evaluated at most once: further calls before the next Arm return
// false without scoring.
func (s *Selector) Finish(lanes []lane.Lane) (Outcome, bool) {
	s.mu.Lock()
	if s.state != StateArmed || s.hasChecked {
		s.mu.Unlock()
		return Outcome{}, false
	}
	s.hasChecked = true
	s.state = StateEvaluating
	id := s.gestureID
	path := s.recorder.Path()
	s.mu.Unlock()

	out := s.Evaluate(path, lanes)
	out.GestureID = id

	s.mu.Lock()
	if s.gestureID == id {
		s.last = &out
		if s.state == StateEvaluating {
			s.state = StateIdle
		}
	}
	listeners := append(([]func(Outcome))(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(out)
	}
	return out, true
}

// Evaluate scores path against lanes and applies the accuracy gate. It does
// not touch the gesture cycle and may be called at any time.
func (s *Selector) Evaluate(path trajectory.TimedPath, lanes []lane.Lane) Outcome {
	out := Outcome{
		Strategy:    s.scorer.Strategy.Name(),
		InputPoints: path.Len(),
		EvaluatedAt: s.clock.Now(),
	}

	if path.Degenerate() {
		out.Status = StatusDegenerateInput
		out.Reason = fmt.Sprintf("gesture has %d points; at least 2 are required", path.Len())
		monitoring.Logf("[Selector] %s", out.Reason)
		return out
	}
	if err := path.Validate(); err != nil {
		out.Status = StatusDegenerateInput
		out.Reason = fmt.Sprintf("invalid gesture: %v", err)
		monitoring.Logf("[Selector] %s", out.Reason)
		return out
	}

	in := s.scorer.NewInput(path)
	out.InputSpeed = in.Speed
	out.Results = s.scoreLanes(in, lanes)

	best := -1
	for i, r := range out.Results {
		monitoring.Logf("[Selector] lane=%s score=%.4f frechet=%.4f speed_sim=%.3f skipped=%v",
			r.LaneID, r.Score, r.RawFrechet, r.SpeedSimilarity, r.Skipped)
		if !r.Finite() {
			continue
		}
		if best < 0 || r.Score < out.Results[best].Score {
			best = i
		}
	}

	if best < 0 {
		out.Status = StatusNoCandidate
		if len(lanes) == 0 {
			out.Reason = "no lanes to compare"
		} else {
			out.Reason = fmt.Sprintf("none of %d lanes produced a finite score", len(lanes))
		}
		monitoring.Logf("[Selector] %s", out.Reason)
		return out
	}

	b := out.Results[best]
	out.BestLaneID = b.LaneID
	out.BestLaneName = b.LaneName
	out.BestLaneKey = b.LaneKey
	out.BestScore = b.Score
	out.Accuracy = Accuracy(b.Score, s.cfg.MatchThreshold)

	if out.Accuracy >= s.cfg.MinMatchAccuracy {
		out.Status = StatusSelected
		monitoring.Logf("[Selector] Selected lane %s score=%.4f accuracy=%.1f%%", b.LaneID, b.Score, out.Accuracy)
	} else {
		out.Status = StatusRejected
		out.Reason = fmt.Sprintf("best lane %s accuracy %.1f%% below minimum %.1f%%", b.LaneID, out.Accuracy, s.cfg.MinMatchAccuracy)
		monitoring.Logf("[Selector] Rejected: %s", out.Reason)
	}
	return out
}

// Accuracy converts an error score into a percentage:
// clamp(1 - score/threshold, 0, 1) * 100.
func Accuracy(score, threshold float64) float64 {
	if threshold <= 0 || math.IsNaN(score) {
		return 0
	}
	a := 1 - score/threshold
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return a * 100
}

// scoreLanes scores every lane, writing results by index so the order
// matches lanes regardless of scheduling.
func (s *Selector) scoreLanes(in scoring.Input, lanes []lane.Lane) []scoring.MatchResult {
	results := make([]scoring.MatchResult, len(lanes))
	if !s.cfg.Parallel || len(lanes) < 2 {
		for i, l := range lanes {
			results[i] = s.scorer.ScoreLane(in, l)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.ParallelLimit)
	for i, l := range lanes {
		i, l := i, l
		g.Go(func() error {
			results[i] = s.scorer.ScoreLane(in, l)
			return nil
		})
	}
	_ = g.Wait() // scoring never fails
	return results
}
