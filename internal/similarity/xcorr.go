package similarity

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/lanematch/internal/trajectory"
)

// VarianceEpsilon is the sum of squared deviations below which a signal is
// treated as constant.
const VarianceEpsilon = 1e-4

// MinCorrelationPoints is the fewest points PathCrossCorrelation will
// compare; shorter paths score 0.
const MinCorrelationPoints = 10

// SeriesEpsilon is the range below which NormalizeSeries leaves a series
// unscaled.
const SeriesEpsilon = 1e-9

// NormalizeSeries maps a series onto [0,1] by (x-min)/range. A range below
// SeriesEpsilon is replaced by 1. The input is not modified.
func NormalizeSeries(s []float64) []float64 {
	out := make([]float64, len(s))
	if len(s) == 0 {
		return out
	}
	lo, hi := floats.Min(s), floats.Max(s)
	r := hi - lo
	if r < SeriesEpsilon {
		r = 1
	}
	copy(out, s)
	floats.AddConst(-lo, out)
	floats.Scale(1/r, out)
	return out
}

// CrossCorrelation returns the best zero-mean normalized cross-correlation
// of a and b over lags in [-maxLag, maxLag], maxLag = min(len)/4, clamped to
// [0,1].
//
// At each lag the numerator and the a-side energy are summed over the
// overlapping indices while the b-side energy covers all of b. If either
// energy falls below VarianceEpsilon that lag contributes 0.
func CrossCorrelation(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	meanA := stat.Mean(a, nil)
	meanB := stat.Mean(b, nil)

	da := make([]float64, len(a))
	db := make([]float64, len(b))
	copy(da, a)
	copy(db, b)
	floats.AddConst(-meanA, da)
	floats.AddConst(-meanB, db)

	energyB := floats.Dot(db, db)
	if energyB < VarianceEpsilon {
		return 0
	}

	maxLag := min(len(a), len(b)) / 4
	best := 0.0
	for lag := -maxLag; lag <= maxLag; lag++ {
		// Overlap: i in [lo, hi) with j = i+lag in [0, len(b)).
		lo := max(0, -lag)
		hi := min(len(a), len(b)-lag)
		if hi <= lo {
			continue
		}
		num := floats.Dot(da[lo:hi], db[lo+lag:hi+lag])
		energyA := floats.Dot(da[lo:hi], da[lo:hi])
		if energyA < VarianceEpsilon {
			continue
		}
		if c := num / math.Sqrt(energyA*energyB); c > best {
			best = c
		}
	}
	if best > 1 {
		best = 1
	}
	return best
}

// PathCrossCorrelation compares two paths by interleaving each into a
// single channel [x0, y0, x1, y1, ...] and calling CrossCorrelation. Paths
// with fewer than MinCorrelationPoints points score 0.
func PathCrossCorrelation(p, q []trajectory.Point) float64 {
	if len(p) < MinCorrelationPoints || len(q) < MinCorrelationPoints {
		return 0
	}
	return CrossCorrelation(trajectory.Interleave(p), trajectory.Interleave(q))
}
