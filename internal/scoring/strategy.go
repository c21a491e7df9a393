package scoring

import (
	"fmt"
	"math"

	"github.com/banshee-data/lanematch/internal/config"
	"github.com/banshee-data/lanematch/internal/similarity"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

// Strategy scores one prepared gesture against one prepared lane.
// Implementations must be pure and safe for concurrent use.
type Strategy interface {
	Name() string
	Score(in Input, c Candidate) MatchResult
}

// Params carries the tunables shared by the strategies.
type Params struct {
	Alpha                float64
	PerceptualSpeedRatio float64
	BlendFrechetWeight   float64
	DTW                  similarity.DTWOptions
	ZScoreFrechetMean    float64
	ZScoreFrechetStd     float64
	ZScoreSpeedMean      float64
	ZScoreSpeedStd       float64
	LengthDecay          float64
}

// ParamsFromTuning reads strategy parameters from cfg.
func ParamsFromTuning(cfg *config.TuningConfig) Params {
	return Params{
		Alpha:                cfg.GetAlpha(),
		PerceptualSpeedRatio: cfg.GetPerceptualSpeedRatio(),
		BlendFrechetWeight:   cfg.GetBlendFrechetWeight(),
		DTW:                  similarity.DTWOptions{Window: cfg.GetDTWWindow(), MemoryMode: similarity.RollingArray},
		ZScoreFrechetMean:    cfg.GetZScoreFrechetMean(),
		ZScoreFrechetStd:     cfg.GetZScoreFrechetStd(),
		ZScoreSpeedMean:      cfg.GetZScoreSpeedMean(),
		ZScoreSpeedStd:       cfg.GetZScoreSpeedStd(),
		LengthDecay:          cfg.GetLengthDecay(),
	}
}

// NewStrategy returns the strategy registered under name.
func NewStrategy(name string, p Params) (Strategy, error) {
	switch name {
	case config.StrategyExponential, "":
		return Exponential{Alpha: p.Alpha, PerceptualSpeedRatio: p.PerceptualSpeedRatio}, nil
	case config.StrategyBlend:
		return Blend{FrechetWeight: p.BlendFrechetWeight, DTW: p.DTW}, nil
	case config.StrategyZScore:
		return ZScore{
			Alpha:                p.Alpha,
			PerceptualSpeedRatio: p.PerceptualSpeedRatio,
			FrechetMean:          p.ZScoreFrechetMean,
			FrechetStd:           p.ZScoreFrechetStd,
			SpeedMean:            p.ZScoreSpeedMean,
			SpeedStd:             p.ZScoreSpeedStd,
		}, nil
	case config.StrategyRatio:
		return Ratio{LengthDecay: p.LengthDecay}, nil
	case config.StrategyXCorr:
		return XCorr{}, nil
	default:
		return nil, fmt.Errorf("unknown scoring strategy %q", name)
	}
}

// Exponential blends the bounded Fréchet distance with speed dissimilarity:
// alpha*(1-e^-frechet) + (1-alpha)*(1-e^-|in-ratio*lane|). Scores lie in [0,1].
type Exponential struct {
	Alpha                float64
	PerceptualSpeedRatio float64
}

// Name implements Strategy.
func (Exponential) Name() string { return config.StrategyExponential }

// Score implements Strategy.
func (e Exponential) Score(in Input, c Candidate) MatchResult {
	r := newResult(e.Name(), in, c)
	alpha := clamp01(e.Alpha)
	ratio := e.PerceptualSpeedRatio
	if ratio <= 0 {
		ratio = 1
	}

	r.RawFrechet = frechetOf(in, c)
	r.NormalizedFrechet = NormalizeFrechet(r.RawFrechet)
	r.SpeedSimilarity = SpeedSimilarity(in.Speed, c.Speed, ratio)
	r.Score = alpha*r.NormalizedFrechet + (1-alpha)*(1-r.SpeedSimilarity)
	return r
}

// Blend weighs raw Fréchet distance against the DTW distance between the
// timestamp series: w*frechet + (1-w)*dtw. Both series are shifted to start
// at zero. Lanes without timestamps are timed from their traversal duration
// or speed; failing both the DTW term is infinite.
type Blend struct {
	FrechetWeight float64
	DTW           similarity.DTWOptions
}

// Name implements Strategy.
func (Blend) Name() string { return config.StrategyBlend }

// Score implements Strategy.
func (b Blend) Score(in Input, c Candidate) MatchResult {
	r := newResult(b.Name(), in, c)
	w := clamp01(b.FrechetWeight)

	r.RawFrechet = frechetOf(in, c)
	r.NormalizedFrechet = NormalizeFrechet(r.RawFrechet)
	r.SpeedSimilarity = SpeedSimilarity(in.Speed, c.Speed, 1)

	inTimes := relativeTimes(in.Path.TimedPath, 0)
	laneTimes := relativeTimes(c.Path.TimedPath, laneDuration(c))
	r.DTW = similarity.DTW(inTimes, laneTimes, &b.DTW)
	if w == 1 {
		// Avoid 0*Inf when timing is unavailable.
		r.Score = r.RawFrechet
		return r
	}
	r.Score = w*r.RawFrechet + (1-w)*r.DTW
	return r
}

// laneDuration is the traversal time to assume for a lane without
// timestamps.
func laneDuration(c Candidate) float64 {
	if c.Lane.TraversalDuration > 0 {
		return c.Lane.TraversalDuration
	}
	if c.Speed > 0 {
		return trajectory.Length(c.Lane.Path) / c.Speed
	}
	return 0
}

// relativeTimes returns the path's timestamps shifted to start at zero. A
// path without timestamps is timed uniformly along its arc length over
// duration; with no duration it yields nil.
func relativeTimes(p trajectory.TimedPath, duration float64) []float64 {
	if p.HasTimestamps() {
		out := make([]float64, len(p.Timestamps))
		for i, t := range p.Timestamps {
			out[i] = t - p.Timestamps[0]
		}
		return out
	}
	if duration <= 0 || len(p.Points) == 0 {
		return nil
	}
	total := trajectory.Length(p)
	out := make([]float64, len(p.Points))
	if total == 0 {
		return out
	}
	walked := 0.0
	for i := 1; i < len(p.Points); i++ {
		walked += p.Points[i-1].Dist(p.Points[i])
		out[i] = duration * walked / total
	}
	return out
}

// ZScore standardizes the Fréchet distance and the speed difference with
// fixed means and deviations, blends them by alpha and squashes the result
// through a logistic into (0,1). The constants are tunable defaults fitted
// to one data set.
type ZScore struct {
	Alpha                float64
	PerceptualSpeedRatio float64
	FrechetMean          float64
	FrechetStd           float64
	SpeedMean            float64
	SpeedStd             float64
}

// Name implements Strategy.
func (ZScore) Name() string { return config.StrategyZScore }

// Score implements Strategy.
func (z ZScore) Score(in Input, c Candidate) MatchResult {
	r := newResult(z.Name(), in, c)
	alpha := clamp01(z.Alpha)
	ratio := z.PerceptualSpeedRatio
	if ratio <= 0 {
		ratio = 1
	}

	r.RawFrechet = frechetOf(in, c)
	r.NormalizedFrechet = NormalizeFrechet(r.RawFrechet)
	r.SpeedSimilarity = SpeedSimilarity(in.Speed, c.Speed, ratio)

	zf := standardize(r.RawFrechet, z.FrechetMean, z.FrechetStd)
	zs := standardize(math.Abs(in.Speed-ratio*c.Speed), z.SpeedMean, z.SpeedStd)
	r.Score = logistic(alpha*zf + (1-alpha)*zs)
	return r
}

func standardize(v, mean, std float64) float64 {
	if std <= 0 {
		std = 1
	}
	return (v - mean) / std
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Ratio divides the raw Fréchet distance by a speed similarity built from
// the relative speed difference and a path-length weight
// e^(-|len_in - len_lane| / LengthDecay). Lengths are measured on the raw
// paths. A zero similarity yields an infinite score.
type Ratio struct {
	LengthDecay float64
}

// Name implements Strategy.
func (Ratio) Name() string { return config.StrategyRatio }

// Score implements Strategy.
func (q Ratio) Score(in Input, c Candidate) MatchResult {
	r := newResult(q.Name(), in, c)
	decay := q.LengthDecay
	if decay <= 0 {
		decay = 3
	}

	r.RawFrechet = frechetOf(in, c)
	r.NormalizedFrechet = NormalizeFrechet(r.RawFrechet)

	speedDiff := 0.0
	if hi := math.Max(in.Speed, c.Speed); hi > 0 {
		speedDiff = math.Abs(c.Speed-in.Speed) / hi
	}
	lengthDiff := math.Abs(trajectory.Length(in.Raw) - trajectory.Length(c.Lane.Path))
	r.SpeedSimilarity = clamp01(math.Exp(-speedDiff) * math.Exp(-lengthDiff/decay))

	if r.SpeedSimilarity == 0 {
		r.Score = math.Inf(1)
		return r
	}
	r.Score = r.RawFrechet / r.SpeedSimilarity
	return r
}

// XCorr is a shape-only strategy: 1 minus the lagged cross-correlation of
// the interleaved paths. Speed is reported but not scored.
type XCorr struct{}

// Name implements Strategy.
func (XCorr) Name() string { return config.StrategyXCorr }

// Score implements Strategy.
func (x XCorr) Score(in Input, c Candidate) MatchResult {
	r := newResult(x.Name(), in, c)
	r.RawFrechet = frechetOf(in, c)
	r.NormalizedFrechet = NormalizeFrechet(r.RawFrechet)
	r.SpeedSimilarity = SpeedSimilarity(in.Speed, c.Speed, 1)
	r.CrossCorrelation = similarity.PathCrossCorrelation(in.Path.Points, c.Path.Points)
	r.Score = 1 - r.CrossCorrelation
	return r
}
