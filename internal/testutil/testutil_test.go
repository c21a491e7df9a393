package testutil

import (
	"errors"
	"math"
	"testing"

	"github.com/banshee-data/lanematch/internal/trajectory"
)

func TestAssertNoError(t *testing.T) {
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	AssertError(t, errors.New("boom"))
}

func TestAssertInDelta(t *testing.T) {
	AssertInDelta(t, 1.0005, 1, 1e-3)
}

func TestStraightPath(t *testing.T) {
	p := StraightPath(10, 0, 5, 4)
	if err := p.Validate(); err != nil {
		t.Fatalf("invalid path: %v", err)
	}
	if p.Len() != 5 {
		t.Fatalf("len = %d, want 5", p.Len())
	}
	AssertInDelta(t, trajectory.Length(p), 10, 1e-12)
	AssertInDelta(t, trajectory.Duration(p), 4, 1e-12)
	AssertInDelta(t, p.Points[2].X, 5, 1e-12)

	if got := StraightPath(1, 1, 0, 1).Len(); got != 2 {
		t.Errorf("short path len = %d, want 2", got)
	}
}

func TestArcPath(t *testing.T) {
	p := ArcPath(2, math.Pi, 50, 1)
	if err := p.Validate(); err != nil {
		t.Fatalf("invalid path: %v", err)
	}
	for i, pt := range p.Points {
		AssertInDelta(t, math.Hypot(pt.X, pt.Y), 2, 1e-9)
		if t.Failed() {
			t.Fatalf("point %d off the arc", i)
		}
	}
	AssertInDelta(t, p.Points[len(p.Points)-1].X, -2, 1e-9)
}

func TestCompassLanes(t *testing.T) {
	lanes := CompassLanes(2)
	if len(lanes) != 4 {
		t.Fatalf("got %d lanes, want 4", len(lanes))
	}
	seen := make(map[string]bool)
	for _, l := range lanes {
		if err := l.Validate(); err != nil {
			t.Errorf("lane %s invalid: %v", l.ID, err)
		}
		if seen[l.ID] {
			t.Errorf("duplicate lane id %s", l.ID)
		}
		seen[l.ID] = true
		if *l.ReferenceSpeed != 2 {
			t.Errorf("lane %s speed = %v, want 2", l.ID, *l.ReferenceSpeed)
		}
	}
	if lanes[0].Name != "LineTo_E" {
		t.Errorf("name = %q, want LineTo_E", lanes[0].Name)
	}
}
