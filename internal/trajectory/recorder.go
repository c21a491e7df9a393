package trajectory

import (
	"time"

	"github.com/banshee-data/lanematch/internal/timeutil"
)

// DefaultMaxPoints bounds how many samples a single gesture may hold.
const DefaultMaxPoints = 500

// RecorderConfig controls sample filtering during capture.
type RecorderConfig struct {
	// MinSampleDistance drops a sample closer than this to the previous one.
	// Zero keeps every sample.
	MinSampleDistance float64
	// MaxPoints caps the buffer; when full the oldest sample is discarded.
	MaxPoints int
}

// DefaultRecorderConfig returns the capture defaults.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{MinSampleDistance: 0, MaxPoints: DefaultMaxPoints}
}

// Recorder accumulates the samples of one gesture. It is not safe for
// concurrent use; the selector serializes access to it.
type Recorder struct {
	cfg     RecorderConfig
	clock   timeutil.Clock
	started time.Time
	points  []Point
	times   []float64
	dropped int
}

// NewRecorder creates a recorder. A nil clock uses the wall clock.
func NewRecorder(cfg RecorderConfig, clock timeutil.Clock) *Recorder {
	if cfg.MaxPoints <= 0 {
		cfg.MaxPoints = DefaultMaxPoints
	}
	if cfg.MinSampleDistance < 0 {
		cfg.MinSampleDistance = 0
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	r := &Recorder{cfg: cfg, clock: clock}
	r.Start()
	return r
}

// Start clears the buffer and restarts the gesture clock.
func (r *Recorder) Start() {
	r.started = r.clock.Now()
	r.points = r.points[:0]
	r.times = r.times[:0]
	r.dropped = 0
}

// Add appends p stamped with the time elapsed since Start.
func (r *Recorder) Add(p Point) bool {
	return r.AddAt(p, timeutil.Seconds(r.clock.Since(r.started)))
}

// AddAt appends p with an explicit timestamp. It reports whether the sample
// was kept. Samples too close to the previous one are skipped, and a
// timestamp earlier than the previous sample is raised to keep the sequence
// non-decreasing.
func (r *Recorder) AddAt(p Point, t float64) bool {
	if n := len(r.points); n > 0 {
		if r.cfg.MinSampleDistance > 0 && r.points[n-1].Dist(p) < r.cfg.MinSampleDistance {
			return false
		}
		if prev := r.times[n-1]; t < prev {
			t = prev
		}
	}
	if len(r.points) >= r.cfg.MaxPoints {
		copy(r.points, r.points[1:])
		copy(r.times, r.times[1:])
		r.points = r.points[:len(r.points)-1]
		r.times = r.times[:len(r.times)-1]
		r.dropped++
	}
	r.points = append(r.points, p)
	r.times = append(r.times, t)
	return true
}

// Len returns the number of buffered samples.
func (r *Recorder) Len() int { return len(r.points) }

// Dropped returns how many old samples were discarded to honour MaxPoints.
func (r *Recorder) Dropped() int { return r.dropped }

// Path returns a frozen copy of the buffered gesture.
func (r *Recorder) Path() TimedPath {
	return TimedPath{
		Points:     append([]Point(nil), r.points...),
		Timestamps: append([]float64(nil), r.times...),
	}
}
