package scoring

import (
	"math"

	"github.com/banshee-data/lanematch/internal/config"
	"github.com/banshee-data/lanematch/internal/kinematics"
	"github.com/banshee-data/lanematch/internal/lane"
	"github.com/banshee-data/lanematch/internal/monitoring"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

// Scorer applies a Strategy after preparing the gesture and every lane the
// same way: optional simplification, optional unit-square scaling and
// resampling to a fixed point count.
type Scorer struct {
	Strategy          Strategy
	ResampleCount     int
	ScaleToUnit       bool
	SimplifyTolerance float64
}

// NewScorer builds a Scorer from tuning configuration.
func NewScorer(cfg *config.TuningConfig) (*Scorer, error) {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	strategy, err := NewStrategy(cfg.GetScoringStrategy(), ParamsFromTuning(cfg))
	if err != nil {
		return nil, err
	}
	return &Scorer{
		Strategy:          strategy,
		ResampleCount:     cfg.GetResampleCount(),
		ScaleToUnit:       cfg.GetScaleToUnit(),
		SimplifyTolerance: cfg.GetSimplifyTolerance(),
	}, nil
}

// Prepare normalizes a path for comparison.
func (s *Scorer) Prepare(p trajectory.TimedPath) trajectory.NormalizedPath {
	n := s.ResampleCount
	if n < 2 {
		n = trajectory.DefaultResampleCount
	}
	if s.SimplifyTolerance > 0 {
		p = trajectory.Simplify(p, s.SimplifyTolerance)
	}
	return trajectory.ResampleNormalized(p, n, s.ScaleToUnit)
}

// NewInput prepares a recorded gesture. Speed is measured on the raw path.
func (s *Scorer) NewInput(raw trajectory.TimedPath) Input {
	return Input{Path: s.Prepare(raw), Raw: raw, Speed: kinematics.AverageSpeed(raw)}
}

// NewCandidate prepares a lane.
func (s *Scorer) NewCandidate(l lane.Lane) Candidate {
	return Candidate{Lane: l, Path: s.Prepare(l.Path), Speed: kinematics.LaneSpeed(l)}
}

// ScoreLane scores in against l. Degenerate lanes are reported as skipped
// with an infinite score rather than compared.
func (s *Scorer) ScoreLane(in Input, l lane.Lane) MatchResult {
	if l.Degenerate() {
		return MatchResult{
			LaneID:     l.ID,
			LaneName:   l.Name,
			LaneKey:    l.Key,
			Strategy:   s.Strategy.Name(),
			InputSpeed: in.Speed,
			Score:      math.Inf(1),
			Skipped:    true,
			SkipReason: "lane has fewer than 2 points",
		}
	}

	r := s.Strategy.Score(in, s.NewCandidate(l))
	if math.IsNaN(r.Score) {
		r.Score = math.Inf(1)
	}
	monitoring.Tracef("[Scorer] lane=%s strategy=%s frechet=%.4f speed_in=%.3f speed_lane=%.3f score=%.4f",
		l.Label(), r.Strategy, r.RawFrechet, r.InputSpeed, r.LaneSpeed, r.Score)
	return r
}
