// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common path and lane fixtures so matching tests
// across packages compare against the same geometry.
package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/banshee-data/lanematch/internal/lane"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertInDelta fails the test if got is further than delta from want.
func AssertInDelta(t *testing.T, got, want, delta float64) {
	t.Helper()
	if math.Abs(got-want) > delta {
		t.Errorf("got %v, want %v (±%v)", got, want, delta)
	}
}

// StraightPath returns n evenly spaced samples from (0,0) to (x1,y1),
// traversed in duration seconds.
func StraightPath(x1, y1 float64, n int, duration float64) trajectory.TimedPath {
	if n < 2 {
		n = 2
	}
	p := trajectory.TimedPath{
		Points:     make([]trajectory.Point, n),
		Timestamps: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		p.Points[i] = trajectory.Point{X: x1 * f, Y: y1 * f}
		p.Timestamps[i] = duration * f
	}
	return p
}

// ArcPath returns n samples along a circular arc of the given radius
// centred on the origin, from angle 0 to sweep radians.
func ArcPath(radius, sweep float64, n int, duration float64) trajectory.TimedPath {
	if n < 2 {
		n = 2
	}
	p := trajectory.TimedPath{
		Points:     make([]trajectory.Point, n),
		Timestamps: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		f := float64(i) / float64(n-1)
		a := sweep * f
		p.Points[i] = trajectory.Point{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
		p.Timestamps[i] = duration * f
	}
	return p
}

// StraightLane returns a two-point lane from the origin to (x1,y1) named
// "LineTo_<key>" with the given reference speed.
func StraightLane(key string, x1, y1, speed float64) lane.Lane {
	name := fmt.Sprintf("LineTo_%s", key)
	return lane.Lane{
		ID:             key,
		Name:           name,
		Key:            key,
		Path:           trajectory.TimedPath{Points: []trajectory.Point{{X: 0, Y: 0}, {X: x1, Y: y1}}},
		ReferenceSpeed: &speed,
	}
}

// CompassLanes returns four straight lanes of length 10 pointing east,
// north, west and south, all with the given reference speed.
func CompassLanes(speed float64) []lane.Lane {
	return []lane.Lane{
		StraightLane("E", 10, 0, speed),
		StraightLane("N", 0, 10, speed),
		StraightLane("W", -10, 0, speed),
		StraightLane("S", 0, -10, speed),
	}
}
