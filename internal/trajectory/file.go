package trajectory

import (
	"fmt"

	"github.com/banshee-data/lanematch/internal/fsutil"
)

// GestureFile is the on-disk form of a recorded gesture. Points are [x, y]
// pairs; timestamps are seconds since the gesture began.
type GestureFile struct {
	Points     [][2]float64 `json:"points"`
	Timestamps []float64    `json:"timestamps,omitempty"`
}

// PointsFromPairs converts [x, y] pairs to points.
func PointsFromPairs(pairs [][2]float64) []Point {
	points := make([]Point, len(pairs))
	for i, p := range pairs {
		points[i] = Point{X: p[0], Y: p[1]}
	}
	return points
}

// PairsFromPoints converts points to [x, y] pairs.
func PairsFromPoints(points []Point) [][2]float64 {
	pairs := make([][2]float64, len(points))
	for i, p := range points {
		pairs[i] = [2]float64{p.X, p.Y}
	}
	return pairs
}

// LoadGesture reads and validates a gesture file.
func LoadGesture(fsys fsutil.FileSystem, path string) (TimedPath, error) {
	var g GestureFile
	if err := fsutil.ReadJSON(fsys, path, &g); err != nil {
		return TimedPath{}, err
	}
	p := TimedPath{Points: PointsFromPairs(g.Points), Timestamps: g.Timestamps}
	if err := p.Validate(); err != nil {
		return TimedPath{}, fmt.Errorf("invalid gesture %s: %w", path, err)
	}
	return p, nil
}

// SaveGesture writes p as a gesture file.
func SaveGesture(fsys fsutil.FileSystem, path string, p TimedPath) error {
	return fsutil.WriteJSON(fsys, path, GestureFile{Points: PairsFromPoints(p.Points), Timestamps: p.Timestamps})
}
