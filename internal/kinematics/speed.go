// Package kinematics estimates speeds from timed paths: the average speed
// used by the scorer, per-segment speed profiles and summary percentiles.
package kinematics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/lanematch/internal/lane"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

// AverageSpeed returns total arc length divided by t_last - t_first. It
// returns 0 when the path has fewer than two points, no timestamps, or a
// non-positive elapsed time.
func AverageSpeed(p trajectory.TimedPath) float64 {
	if p.Degenerate() || !p.HasTimestamps() {
		return 0
	}
	return AverageSpeedOver(p, trajectory.Duration(p))
}

// AverageSpeedOver returns total arc length divided by a caller-supplied
// duration, such as a lane's known traversal time. It returns 0 when the
// path has fewer than two points or duration <= 0.
func AverageSpeedOver(p trajectory.TimedPath, duration float64) float64 {
	if p.Degenerate() || !(duration > 0) {
		return 0
	}
	return trajectory.Length(p) / duration
}

// SpeedProfile returns the speed over each segment with a positive time
// step. Segments with a zero time step are skipped.
func SpeedProfile(p trajectory.TimedPath) []float64 {
	if p.Degenerate() || !p.HasTimestamps() {
		return nil
	}
	speeds := make([]float64, 0, len(p.Points)-1)
	for i := 1; i < len(p.Points); i++ {
		dt := p.Timestamps[i] - p.Timestamps[i-1]
		if dt <= 0 {
			continue
		}
		speeds = append(speeds, p.Points[i-1].Dist(p.Points[i])/dt)
	}
	return speeds
}

// PeakSpeed returns the largest value in a speed profile, or 0 if empty.
func PeakSpeed(speeds []float64) float64 {
	peak := 0.0
	for _, s := range speeds {
		if s > peak {
			peak = s
		}
	}
	return peak
}

// SpeedPercentiles computes the p50, p85 and p95 of a speed profile.
// Uses floor-based indexing for percentiles. For small arrays (n<3), all
// percentiles may return similar values.
func SpeedPercentiles(speeds []float64) (p50, p85, p95 float64) {
	if len(speeds) == 0 {
		return 0, 0, 0
	}

	sorted := make([]float64, len(speeds))
	copy(sorted, speeds)
	sort.Float64s(sorted)

	n := len(sorted)
	p50 = sorted[n/2]
	p85 = sorted[percentileIndex(n, 0.85)]
	p95 = sorted[percentileIndex(n, 0.95)]
	return
}

func percentileIndex(n int, q float64) int {
	idx := int(math.Floor(float64(n) * q))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// Summary describes the kinematics of one path.
type Summary struct {
	Avg      float64 `json:"avg_speed"`
	Peak     float64 `json:"peak_speed"`
	P50      float64 `json:"p50_speed"`
	P85      float64 `json:"p85_speed"`
	P95      float64 `json:"p95_speed"`
	Length   float64 `json:"length"`
	Duration float64 `json:"duration"`
}

// Summarize computes a Summary for p.
func Summarize(p trajectory.TimedPath) Summary {
	profile := SpeedProfile(p)
	p50, p85, p95 := SpeedPercentiles(profile)
	return Summary{
		Avg:      AverageSpeed(p),
		Peak:     PeakSpeed(profile),
		P50:      p50,
		P85:      p85,
		P95:      p95,
		Length:   trajectory.Length(p),
		Duration: trajectory.Duration(p),
	}
}

// LaneSpeed resolves the reference speed of a lane: an explicit
// ReferenceSpeed wins, then path length over TraversalDuration, then the
// mean of a recorded SpeedProfile, then the average speed of the lane's own
// timestamps. It returns 0 when none apply.
func LaneSpeed(l lane.Lane) float64 {
	if l.ReferenceSpeed != nil && *l.ReferenceSpeed >= 0 {
		return *l.ReferenceSpeed
	}
	if l.TraversalDuration > 0 {
		return AverageSpeedOver(l.Path, l.TraversalDuration)
	}
	if len(l.SpeedProfile) > 0 {
		return stat.Mean(l.SpeedProfile, nil)
	}
	return AverageSpeed(l.Path)
}
