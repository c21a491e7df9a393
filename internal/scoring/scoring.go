// Package scoring turns the distance kernels into a single per-lane error
// score. Lower scores are better. The default exponential scheme blends a
// bounded Fréchet distance with an exponential speed similarity; the other
// strategies reproduce alternative weightings behind the same interface.
package scoring

import (
	"encoding/json"
	"math"

	"github.com/banshee-data/lanematch/internal/kinematics"
	"github.com/banshee-data/lanematch/internal/lane"
	"github.com/banshee-data/lanematch/internal/similarity"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

// MatchResult is the outcome of comparing one gesture with one lane.
type MatchResult struct {
	LaneID            string  `json:"lane_id"`
	LaneName          string  `json:"lane_name"`
	LaneKey           string  `json:"lane_key,omitempty"`
	Strategy          string  `json:"strategy"`
	RawFrechet        float64 `json:"raw_frechet"`
	NormalizedFrechet float64 `json:"normalized_frechet"`
	DTW               float64 `json:"dtw,omitempty"`
	CrossCorrelation  float64 `json:"cross_correlation,omitempty"`
	SpeedSimilarity   float64 `json:"speed_similarity"`
	InputSpeed        float64 `json:"input_speed"`
	LaneSpeed         float64 `json:"lane_speed"`
	Score             float64 `json:"score"`
	Skipped           bool    `json:"skipped,omitempty"`
	SkipReason        string  `json:"skip_reason,omitempty"`
}

// Finite reports whether the result is a usable candidate.
func (r MatchResult) Finite() bool {
	return !r.Skipped && !math.IsInf(r.Score, 0) && !math.IsNaN(r.Score)
}

// Input is a gesture prepared for scoring.
type Input struct {
	// Path is the gesture after the same preparation applied to lanes.
	Path trajectory.NormalizedPath
	// Raw is the gesture as recorded, in source units.
	Raw trajectory.TimedPath
	// Speed is the average speed of Raw.
	Speed float64
}

// Candidate is a lane prepared for scoring.
type Candidate struct {
	Lane  lane.Lane
	Path  trajectory.NormalizedPath
	Speed float64
}

// Score is the default exponential scheme. The lane path is used as given,
// so callers must prepare it the same way as input. Both paths must be
// non-degenerate. alpha weighs shape against speed and is clamped to [0,1].
func Score(input trajectory.NormalizedPath, inputSpeed float64, l lane.Lane, alpha float64) MatchResult {
	e := Exponential{Alpha: alpha, PerceptualSpeedRatio: 1}
	return e.Score(
		Input{Path: input, Raw: input.TimedPath, Speed: inputSpeed},
		Candidate{Lane: l, Path: trajectory.NormalizedPath{TimedPath: l.Path}, Speed: kinematics.LaneSpeed(l)},
	)
}

// NormalizeFrechet maps a raw Fréchet distance into [0,1) via 1 - e^-raw.
func NormalizeFrechet(raw float64) float64 {
	return 1 - math.Exp(-raw)
}

// SpeedSimilarity returns e^-|in - ratio*lane|, in (0,1].
func SpeedSimilarity(inputSpeed, laneSpeed, ratio float64) float64 {
	return math.Exp(-math.Abs(inputSpeed - ratio*laneSpeed))
}

func newResult(name string, in Input, c Candidate) MatchResult {
	return MatchResult{
		LaneID:     c.Lane.ID,
		LaneName:   c.Lane.Name,
		LaneKey:    c.Lane.Key,
		Strategy:   name,
		InputSpeed: in.Speed,
		LaneSpeed:  c.Speed,
	}
}

func frechetOf(in Input, c Candidate) float64 {
	return similarity.FrechetRolling(in.Path.Points, c.Path.Points)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// MarshalJSON encodes non-finite distances and scores as null, which
// encoding/json cannot represent otherwise.
func (r MatchResult) MarshalJSON() ([]byte, error) {
	type alias MatchResult
	return json.Marshal(struct {
		alias
		RawFrechet *float64 `json:"raw_frechet"`
		DTW        *float64 `json:"dtw,omitempty"`
		Score      *float64 `json:"score"`
	}{
		alias:      alias(r),
		RawFrechet: finiteOrNil(r.RawFrechet),
		DTW:        nonZeroFiniteOrNil(r.DTW),
		Score:      finiteOrNil(r.Score),
	})
}

func nonZeroFiniteOrNil(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return finiteOrNil(v)
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
