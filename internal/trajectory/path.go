// Package trajectory holds the 2D path types shared by the matching engine
// together with arc-length resampling, bounding-box normalization and the
// gesture recorder that builds paths from streamed samples.
//
// Coordinates are planar. Input captured in 3D must be projected to the
// plane by the caller before it reaches this package.
package trajectory

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Point is a single 2D sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Lerp returns the point a fraction t of the way from p to q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + t*(q.X-p.X), Y: p.Y + t*(q.Y-p.Y)}
}

// TimedPath is an ordered sequence of samples with optional per-sample
// timestamps in seconds since the gesture began. Timestamps is either empty
// or the same length as Points and non-decreasing.
type TimedPath struct {
	Points     []Point   `json:"points"`
	Timestamps []float64 `json:"timestamps,omitempty"`
}

// NormalizedPath is a TimedPath derived for one comparison. Resampled is set
// when the path carries the requested canonical point count, Scaled when its
// bounding box was mapped to the unit square.
type NormalizedPath struct {
	TimedPath
	Resampled bool
	Scaled    bool
}

// Len returns the number of samples.
func (p TimedPath) Len() int { return len(p.Points) }

// Degenerate reports whether the path has fewer than two points, which is
// too few to define a shape or a speed.
func (p TimedPath) Degenerate() bool { return len(p.Points) < 2 }

// HasTimestamps reports whether every point carries a timestamp.
func (p TimedPath) HasTimestamps() bool {
	return len(p.Timestamps) > 0 && len(p.Timestamps) == len(p.Points)
}

// Validate reports structural problems with the path.
func (p TimedPath) Validate() error {
	for i, pt := range p.Points {
		if math.IsNaN(pt.X) || math.IsNaN(pt.Y) || math.IsInf(pt.X, 0) || math.IsInf(pt.Y, 0) {
			return fmt.Errorf("point %d is not finite", i)
		}
	}
	if len(p.Timestamps) == 0 {
		return nil
	}
	if len(p.Timestamps) != len(p.Points) {
		return fmt.Errorf("timestamp count %d does not match point count %d", len(p.Timestamps), len(p.Points))
	}
	for i := 1; i < len(p.Timestamps); i++ {
		if p.Timestamps[i] < p.Timestamps[i-1] {
			return fmt.Errorf("timestamps decrease at index %d (%.6f < %.6f)", i, p.Timestamps[i], p.Timestamps[i-1])
		}
	}
	return nil
}

// Clone returns a deep copy of the path.
func (p TimedPath) Clone() TimedPath {
	out := TimedPath{Points: append([]Point(nil), p.Points...)}
	if p.Timestamps != nil {
		out.Timestamps = append([]float64(nil), p.Timestamps...)
	}
	return out
}

// Length returns the total arc length of the polyline.
func Length(p TimedPath) float64 {
	total := 0.0
	for i := 1; i < len(p.Points); i++ {
		total += p.Points[i-1].Dist(p.Points[i])
	}
	return total
}

// Duration returns t_last - t_first, or 0 when the path has no timestamps.
func Duration(p TimedPath) float64 {
	if !p.HasTimestamps() {
		return 0
	}
	return p.Timestamps[len(p.Timestamps)-1] - p.Timestamps[0]
}

// Interleave flattens the points into a single channel [x0, y0, x1, y1, ...].
func Interleave(points []Point) []float64 {
	out := make([]float64, 0, 2*len(points))
	for _, pt := range points {
		out = append(out, pt.X, pt.Y)
	}
	return out
}

// ToLineString converts the points to an orb.LineString.
func ToLineString(points []Point) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, pt := range points {
		ls[i] = orb.Point{pt.X, pt.Y}
	}
	return ls
}

// FromLineString converts an orb.LineString back to points.
func FromLineString(ls orb.LineString) []Point {
	points := make([]Point, len(ls))
	for i, pt := range ls {
		points[i] = Point{X: pt[0], Y: pt[1]}
	}
	return points
}
