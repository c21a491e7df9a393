package trajectory

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straightLine(n int, length float64) TimedPath {
	p := TimedPath{Points: make([]Point, n), Timestamps: make([]float64, n)}
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		p.Points[i] = Point{X: f * length, Y: 0}
		p.Timestamps[i] = f * 2
	}
	return p
}

func TestResample(t *testing.T) {
	t.Parallel()

	t.Run("uniform spacing and exact endpoints", func(t *testing.T) {
		t.Parallel()
		in := TimedPath{Points: []Point{{0, 0}, {1, 0}, {1, 1}, {4, 1}}}
		out := Resample(in, DefaultResampleCount)

		require.True(t, out.Resampled)
		require.Len(t, out.Points, DefaultResampleCount)
		assert.Equal(t, in.Points[0], out.Points[0])
		assert.Equal(t, in.Points[3], out.Points[DefaultResampleCount-1])

		step := Length(in) / float64(DefaultResampleCount-1)
		for i := 1; i < len(out.Points); i++ {
			// Chord length never exceeds the arc step and only shortens at corners.
			assert.LessOrEqual(t, out.Points[i-1].Dist(out.Points[i]), step+1e-9)
		}
	})

	t.Run("collinear input stays on the line", func(t *testing.T) {
		t.Parallel()
		out := Resample(straightLine(3, 10), 11)
		require.Len(t, out.Points, 11)
		for i, pt := range out.Points {
			assert.InDelta(t, float64(i), pt.X, 1e-9)
			assert.InDelta(t, 0, pt.Y, 1e-12)
		}
	})

	t.Run("timestamps follow arc length", func(t *testing.T) {
		t.Parallel()
		out := Resample(straightLine(5, 4), 9)
		require.Len(t, out.Timestamps, 9)
		for i, ts := range out.Timestamps {
			assert.InDelta(t, float64(i)*0.25, ts, 1e-9)
		}
		assert.NoError(t, out.Validate())
	})

	t.Run("same count returns copy", func(t *testing.T) {
		t.Parallel()
		in := straightLine(4, 3)
		out := Resample(in, 4)
		assert.True(t, out.Resampled)
		if diff := cmp.Diff(in, out.TimedPath); diff != "" {
			t.Errorf("unexpected diff (-want +got):\n%s", diff)
		}
		out.Points[0].X = 99
		assert.Equal(t, 0.0, in.Points[0].X, "result must not alias input")
	})

	t.Run("zero length path returned unresampled", func(t *testing.T) {
		t.Parallel()
		in := TimedPath{Points: []Point{{2, 2}, {2, 2}, {2, 2}}}
		out := Resample(in, 101)
		assert.False(t, out.Resampled)
		assert.Len(t, out.Points, 3)
		for _, pt := range out.Points {
			assert.False(t, math.IsNaN(pt.X) || math.IsNaN(pt.Y))
		}
	})

	t.Run("degenerate input is a no-op", func(t *testing.T) {
		t.Parallel()
		single := TimedPath{Points: []Point{{1, 1}}}
		assert.False(t, Resample(single, 101).Resampled)
		assert.Len(t, Resample(single, 101).Points, 1)
		assert.Empty(t, Resample(TimedPath{}, 101).Points)
		assert.False(t, Resample(straightLine(4, 1), 1).Resampled)
	})

	t.Run("repeated points inside the path", func(t *testing.T) {
		t.Parallel()
		in := TimedPath{Points: []Point{{0, 0}, {0, 0}, {2, 0}, {2, 0}, {4, 0}}}
		out := Resample(in, 9)
		assert.True(t, out.Resampled)
		want := []Point{{0, 0}, {0.5, 0}, {1, 0}, {1.5, 0}, {2, 0}, {2.5, 0}, {3, 0}, {3.5, 0}, {4, 0}}
		if diff := cmp.Diff(want, out.Points, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("unexpected points (-want +got):\n%s", diff)
		}
	})
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("maps bounding box to unit square", func(t *testing.T) {
		t.Parallel()
		in := TimedPath{Points: []Point{{10, 20}, {30, 60}, {20, 40}}}
		out := Normalize(in)
		assert.True(t, out.Scaled)
		want := []Point{{0, 0}, {1, 1}, {0.5, 0.5}}
		if diff := cmp.Diff(want, out.Points, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Errorf("unexpected points (-want +got):\n%s", diff)
		}
		for _, pt := range out.Points {
			assert.GreaterOrEqual(t, pt.X, 0.0)
			assert.LessOrEqual(t, pt.X, 1.0)
		}
	})

	t.Run("flat axis is translated not stretched", func(t *testing.T) {
		t.Parallel()
		in := TimedPath{Points: []Point{{0, 5}, {4, 5.0001}}}
		out := Normalize(in)
		assert.InDelta(t, 1.0, out.Points[1].X, 1e-12)
		assert.InDelta(t, 0.0001, out.Points[1].Y, 1e-9)
		assert.InDelta(t, 0.0, out.Points[0].Y, 1e-12)
	})

	t.Run("timestamps preserved", func(t *testing.T) {
		t.Parallel()
		in := straightLine(3, 8)
		out := Normalize(in)
		assert.Equal(t, in.Timestamps, out.Timestamps)
	})
}

func TestResampleNormalized(t *testing.T) {
	t.Parallel()
	in := TimedPath{Points: []Point{{0, 0}, {100, 0}, {100, 50}}}

	scaled := ResampleNormalized(in, 21, true)
	assert.True(t, scaled.Scaled)
	assert.True(t, scaled.Resampled)
	assert.Len(t, scaled.Points, 21)
	assert.Equal(t, Point{X: 1, Y: 1}, scaled.Points[20])

	raw := ResampleNormalized(in, 21, false)
	assert.False(t, raw.Scaled)
	assert.Equal(t, Point{X: 100, Y: 50}, raw.Points[20])
}

func TestSimplify(t *testing.T) {
	t.Parallel()

	in := TimedPath{
		Points:     []Point{{0, 0}, {1, 0.01}, {2, 0}, {3, 0.01}, {4, 0}, {4, 4}},
		Timestamps: []float64{0, 1, 2, 3, 4, 5},
	}
	out := Simplify(in, 0.1)

	require.NoError(t, out.Validate())
	assert.Equal(t, []Point{{0, 0}, {4, 0}, {4, 4}}, out.Points)
	assert.Equal(t, []float64{0, 4, 5}, out.Timestamps)

	assert.Equal(t, in, Simplify(in, 0))
}

func TestLineStringRoundTrip(t *testing.T) {
	t.Parallel()
	pts := []Point{{1, 2}, {3, 4}}
	ls := ToLineString(pts)
	assert.Equal(t, 2, len(ls))
	assert.Equal(t, pts, FromLineString(ls))
}

func TestInterleave(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []float64{1, 2, 3, 4}, Interleave([]Point{{1, 2}, {3, 4}}))
	assert.Empty(t, Interleave(nil))
}

func TestTimedPathValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		path    TimedPath
		wantErr bool
	}{
		{"no timestamps", TimedPath{Points: []Point{{0, 0}}}, false},
		{"matching timestamps", straightLine(3, 1), false},
		{"length mismatch", TimedPath{Points: []Point{{0, 0}, {1, 1}}, Timestamps: []float64{0}}, true},
		{"decreasing", TimedPath{Points: []Point{{0, 0}, {1, 1}}, Timestamps: []float64{1, 0}}, true},
		{"nan point", TimedPath{Points: []Point{{math.NaN(), 0}}, Timestamps: []float64{0}}, true},
		{"nan point without timestamps", TimedPath{Points: []Point{{0, 0}, {math.NaN(), 0}, {10, 0}}}, true},
		{"inf point without timestamps", TimedPath{Points: []Point{{0, 0}, {math.Inf(1), 0}}}, true},
		{"empty timestamps", TimedPath{Points: []Point{{0, 0}, {1, 1}}, Timestamps: []float64{}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.path.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLengthAndDuration(t *testing.T) {
	t.Parallel()
	p := straightLine(5, 8)
	assert.InDelta(t, 8.0, Length(p), 1e-12)
	assert.InDelta(t, 2.0, Duration(p), 1e-12)
	assert.Equal(t, 0.0, Duration(TimedPath{Points: p.Points}))
	assert.True(t, TimedPath{Points: []Point{{0, 0}}}.Degenerate())
	assert.False(t, p.Degenerate())
}

func BenchmarkResample(b *testing.B) {
	in := straightLine(500, 100)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Resample(in, DefaultResampleCount)
	}
}
