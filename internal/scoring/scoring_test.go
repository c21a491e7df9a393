package scoring

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lanematch/internal/config"
	"github.com/banshee-data/lanematch/internal/lane"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

func line(x0, y0, x1, y1 float64, ts ...float64) trajectory.TimedPath {
	p := trajectory.TimedPath{Points: []trajectory.Point{{X: x0, Y: y0}, {X: x1, Y: y1}}}
	if len(ts) > 0 {
		p.Timestamps = ts
	}
	return p
}

func speedPtr(v float64) *float64 { return &v }

func TestScore_ExponentialFormula(t *testing.T) {
	t.Parallel()
	in := trajectory.NormalizedPath{TimedPath: line(0, 0, 10, 0)}
	l := lane.Lane{ID: "a", Path: line(0, 1, 10, 1), ReferenceSpeed: speedPtr(3)}

	r := Score(in, 2, l, 0.8)

	assert.InDelta(t, 1.0, r.RawFrechet, 1e-12)
	assert.InDelta(t, 1-math.Exp(-1), r.NormalizedFrechet, 1e-12)
	assert.InDelta(t, math.Exp(-1), r.SpeedSimilarity, 1e-12)
	want := 0.8*(1-math.Exp(-1)) + 0.2*(1-math.Exp(-1))
	assert.InDelta(t, want, r.Score, 1e-12)
	assert.Equal(t, "a", r.LaneID)
	assert.Equal(t, 3.0, r.LaneSpeed)
}

func TestScore_Bounds(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(42))
	for k := 0; k < 200; k++ {
		in := trajectory.NormalizedPath{TimedPath: line(r.Float64()*10, r.Float64()*10, r.Float64()*10, r.Float64()*10)}
		l := lane.Lane{ID: "x", Path: line(r.Float64()*10, r.Float64()*10, r.Float64()*10, r.Float64()*10), ReferenceSpeed: speedPtr(r.Float64() * 5)}
		alpha := r.Float64()*1.4 - 0.2 // includes out-of-range values, which are clamped

		res := Score(in, r.Float64()*5, l, alpha)
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 1.0)
		assert.GreaterOrEqual(t, res.NormalizedFrechet, 0.0)
		assert.Less(t, res.NormalizedFrechet, 1.0)
		assert.Greater(t, res.SpeedSimilarity, 0.0)
		assert.LessOrEqual(t, res.SpeedSimilarity, 1.0)
	}
}

func TestScore_AlphaExtremes(t *testing.T) {
	t.Parallel()
	in := trajectory.NormalizedPath{TimedPath: line(0, 0, 10, 0)}
	l := lane.Lane{ID: "a", Path: line(0, 0, 10, 0), ReferenceSpeed: speedPtr(5)}

	shapeOnly := Score(in, 1, l, 1)
	assert.InDelta(t, 0.0, shapeOnly.Score, 1e-12, "identical shape with alpha=1 ignores speed")

	speedOnly := Score(in, 1, l, 0)
	assert.InDelta(t, 1-math.Exp(-4), speedOnly.Score, 1e-12)
}

func TestNewStrategy(t *testing.T) {
	t.Parallel()
	p := ParamsFromTuning(config.EmptyTuningConfig())
	for _, name := range config.ValidStrategies {
		s, err := NewStrategy(name, p)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
	}
	s, err := NewStrategy("", p)
	require.NoError(t, err)
	assert.Equal(t, config.StrategyExponential, s.Name())

	_, err = NewStrategy("cosine", p)
	assert.Error(t, err)
}

func TestStrategies_PreferMatchingLane(t *testing.T) {
	t.Parallel()
	gesture := trajectory.TimedPath{
		Points:     []trajectory.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}},
		Timestamps: []float64{0, 2.5, 5},
	}
	right := lane.Lane{ID: "right", Path: line(0, 0, 10, 0), TraversalDuration: 5}
	up := lane.Lane{ID: "up", Path: line(0, 0, 0, 10), TraversalDuration: 5}

	for _, name := range config.ValidStrategies {
		t.Run(name, func(t *testing.T) {
			cfg := config.EmptyTuningConfig()
			cfg.ScoringStrategy = &name
			s, err := NewScorer(cfg)
			require.NoError(t, err)

			in := s.NewInput(gesture)
			good := s.ScoreLane(in, right)
			bad := s.ScoreLane(in, up)
			assert.True(t, good.Finite())
			assert.Less(t, good.Score, bad.Score)
		})
	}
}

func TestBlend_MissingTimingIsInfinite(t *testing.T) {
	t.Parallel()
	b := Blend{FrechetWeight: 0.7}
	in := Input{Path: trajectory.NormalizedPath{TimedPath: line(0, 0, 1, 0, 0, 1)}, Speed: 1}
	c := Candidate{Lane: lane.Lane{ID: "n", Path: line(0, 0, 1, 0)}, Path: trajectory.NormalizedPath{TimedPath: line(0, 0, 1, 0)}}

	r := b.Score(in, c)
	assert.True(t, math.IsInf(r.DTW, 1))
	assert.False(t, r.Finite())
}

func TestZScore_Bounded(t *testing.T) {
	t.Parallel()
	z := ZScore{Alpha: 0.5, PerceptualSpeedRatio: 1, FrechetMean: 1.5, FrechetStd: 0.8, SpeedMean: 1, SpeedStd: 0.6}
	in := Input{Path: trajectory.NormalizedPath{TimedPath: line(0, 0, 100, 0)}, Speed: 50}
	c := Candidate{Lane: lane.Lane{ID: "z"}, Path: trajectory.NormalizedPath{TimedPath: line(0, 0, 0, 100)}, Speed: 0}

	r := z.Score(in, c)
	assert.Greater(t, r.Score, 0.0)
	assert.LessOrEqual(t, r.Score, 1.0)
}

func TestRatio_LengthWeight(t *testing.T) {
	t.Parallel()
	q := Ratio{LengthDecay: 3}
	short := line(0, 0, 1, 0)
	long := line(0, 0, 7, 0)
	in := Input{Path: trajectory.NormalizedPath{TimedPath: short}, Raw: short, Speed: 1}

	same := q.Score(in, Candidate{Lane: lane.Lane{ID: "s", Path: short}, Path: trajectory.NormalizedPath{TimedPath: short}, Speed: 1})
	assert.InDelta(t, 1.0, same.SpeedSimilarity, 1e-12)
	assert.InDelta(t, 0.0, same.Score, 1e-12)

	other := q.Score(in, Candidate{Lane: lane.Lane{ID: "l", Path: long}, Path: trajectory.NormalizedPath{TimedPath: short}, Speed: 1})
	assert.InDelta(t, math.Exp(-2), other.SpeedSimilarity, 1e-12)
}

func TestScorer_DegenerateLaneSkipped(t *testing.T) {
	t.Parallel()
	s, err := NewScorer(nil)
	require.NoError(t, err)

	in := s.NewInput(line(0, 0, 1, 0, 0, 1))
	r := s.ScoreLane(in, lane.Lane{ID: "dot", Path: trajectory.TimedPath{Points: []trajectory.Point{{X: 1, Y: 1}}}})
	assert.True(t, r.Skipped)
	assert.False(t, r.Finite())
	assert.NotEmpty(t, r.SkipReason)
}

func TestScorer_PreparesLaneLikeInput(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultTuningConfig()
	scale := true
	cfg.ScaleToUnit = &scale
	s, err := NewScorer(cfg)
	require.NoError(t, err)

	// The same shape at a different scale matches exactly once both are scaled.
	in := s.NewInput(line(0, 0, 2, 1, 0, 1))
	c := s.NewCandidate(lane.Lane{ID: "big", Path: line(0, 0, 200, 100)})
	assert.Len(t, in.Path.Points, 101)
	assert.Len(t, c.Path.Points, 101)
	assert.True(t, in.Path.Scaled && c.Path.Scaled)

	r := s.Strategy.Score(in, c)
	assert.InDelta(t, 0.0, r.RawFrechet, 1e-9)
}
