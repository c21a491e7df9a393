package trajectory

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// DefaultResampleCount is the canonical point count paths are resampled to
// before comparison.
const DefaultResampleCount = 101

// AxisEpsilon is the smallest bounding-box extent treated as a real range.
// Narrower axes are scaled by 1 so straight lines do not blow up.
const AxisEpsilon = 1e-3

// lengthEpsilon is the total arc length below which a path is treated as a
// single repeated point.
const lengthEpsilon = 1e-9

// Resample redistributes the path to targetCount points spaced equally by arc
// length. The first and last points are copied exactly. Timestamps, when
// present, are interpolated along the same arc-length parameter.
//
// Paths with fewer than two points, targetCount < 2, or zero total length are
// returned unchanged with Resampled false.
func Resample(path TimedPath, targetCount int) NormalizedPath {
	n := len(path.Points)
	if n < 2 || targetCount < 2 {
		return NormalizedPath{TimedPath: path.Clone()}
	}
	if n == targetCount {
		return NormalizedPath{TimedPath: path.Clone(), Resampled: true}
	}

	cumLen := make([]float64, n)
	for i := 1; i < n; i++ {
		cumLen[i] = cumLen[i-1] + path.Points[i-1].Dist(path.Points[i])
	}
	total := cumLen[n-1]
	if total < lengthEpsilon {
		return NormalizedPath{TimedPath: path.Clone()}
	}

	timed := path.HasTimestamps()
	out := TimedPath{Points: make([]Point, targetCount)}
	if timed {
		out.Timestamps = make([]float64, targetCount)
		out.Timestamps[0] = path.Timestamps[0]
		out.Timestamps[targetCount-1] = path.Timestamps[n-1]
	}
	out.Points[0] = path.Points[0]
	out.Points[targetCount-1] = path.Points[n-1]

	step := total / float64(targetCount-1)
	seg := 0
	for i := 1; i < targetCount-1; i++ {
		target := step * float64(i)
		for seg < n-2 && cumLen[seg+1] < target {
			seg++
		}
		segLen := cumLen[seg+1] - cumLen[seg]
		t := 0.0
		if segLen > 0 {
			t = (target - cumLen[seg]) / segLen
		}
		t = clamp01(t)
		out.Points[i] = path.Points[seg].Lerp(path.Points[seg+1], t)
		if timed {
			t0, t1 := path.Timestamps[seg], path.Timestamps[seg+1]
			out.Timestamps[i] = t0 + t*(t1-t0)
		}
	}

	return NormalizedPath{TimedPath: out, Resampled: true}
}

// Normalize maps the path's bounding box onto the unit square, scaling each
// axis independently. An axis narrower than AxisEpsilon is translated but not
// stretched.
func Normalize(path TimedPath) NormalizedPath {
	if len(path.Points) == 0 {
		return NormalizedPath{TimedPath: path.Clone()}
	}

	bound := ToLineString(path.Points).Bound()
	rangeX := bound.Max[0] - bound.Min[0]
	rangeY := bound.Max[1] - bound.Min[1]
	if rangeX < AxisEpsilon {
		rangeX = 1
	}
	if rangeY < AxisEpsilon {
		rangeY = 1
	}

	out := path.Clone()
	for i, pt := range out.Points {
		out.Points[i] = Point{
			X: (pt.X - bound.Min[0]) / rangeX,
			Y: (pt.Y - bound.Min[1]) / rangeY,
		}
	}
	return NormalizedPath{TimedPath: out, Scaled: true}
}

// ResampleNormalized prepares a path for comparison: it optionally scales the
// path into the unit square and then resamples it to targetCount points.
func ResampleNormalized(path TimedPath, targetCount int, scale bool) NormalizedPath {
	if !scale {
		return Resample(path, targetCount)
	}
	scaled := Normalize(path)
	out := Resample(scaled.TimedPath, targetCount)
	out.Scaled = true
	return out
}

// Simplify removes vertices that lie within tolerance of the polyline using
// Douglas-Peucker. Timestamps of the retained vertices are kept. A
// non-positive tolerance or a path of fewer than three points is returned
// unchanged.
func Simplify(path TimedPath, tolerance float64) TimedPath {
	if tolerance <= 0 || len(path.Points) < 3 {
		return path.Clone()
	}

	ls := ToLineString(path.Points)
	simplified, ok := simplify.DouglasPeucker(tolerance).Simplify(ls.Clone()).(orb.LineString)
	if !ok || len(simplified) < 2 {
		return path.Clone()
	}

	out := TimedPath{Points: FromLineString(simplified)}
	if !path.HasTimestamps() {
		return out
	}

	// Retained vertices appear in their original order; walk both lists to
	// recover each vertex's timestamp.
	out.Timestamps = make([]float64, 0, len(simplified))
	j := 0
	for _, pt := range simplified {
		for j < len(ls) && ls[j] != pt {
			j++
		}
		if j == len(ls) {
			// Not found in order; fall back to the unsimplified path.
			return path.Clone()
		}
		out.Timestamps = append(out.Timestamps, path.Timestamps[j])
		j++
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
