// Package lane defines reference lanes, the predefined paths a gesture is
// matched against, and the JSON lane-set format they are loaded from.
package lane

import (
	"errors"
	"fmt"
	"strings"

	"github.com/banshee-data/lanematch/internal/trajectory"
)

// ErrNotFound is returned when a lane lookup has no match.
var ErrNotFound = errors.New("lane not found")

// Lane is a reference path with its expected traversal speed. Lanes are
// read-only to the matching engine.
type Lane struct {
	ID   string
	Name string
	// Key is the action bound to the lane, parsed from Name.
	Key  string
	Path trajectory.TimedPath
	// ReferenceSpeed overrides any speed derived from the path when set.
	ReferenceSpeed *float64
	// SpeedProfile is an optional recorded per-segment speed series.
	SpeedProfile []float64
	// TraversalDuration is the time in seconds the lane is meant to take.
	TraversalDuration float64
}

// Degenerate reports whether the lane path is too short to compare.
func (l Lane) Degenerate() bool { return l.Path.Degenerate() }

// Label returns the most readable identifier for logs.
func (l Lane) Label() string {
	switch {
	case l.Key != "":
		return l.Key
	case l.Name != "":
		return l.Name
	default:
		return l.ID
	}
}

// Validate reports lanes that cannot be stored or matched.
func (l Lane) Validate() error {
	if l.ID == "" {
		return errors.New("lane id is required")
	}
	if err := l.Path.Validate(); err != nil {
		return fmt.Errorf("lane %s: %w", l.ID, err)
	}
	if l.ReferenceSpeed != nil && *l.ReferenceSpeed < 0 {
		return fmt.Errorf("lane %s: reference speed must be non-negative, got %f", l.ID, *l.ReferenceSpeed)
	}
	if l.TraversalDuration < 0 {
		return fmt.Errorf("lane %s: traversal duration must be non-negative, got %f", l.ID, l.TraversalDuration)
	}
	return nil
}

// KeyFromName extracts the bound key from a lane name of the form
// "<prefix>_<key>", e.g. "LineTo_Ctrl+S" yields "Ctrl+S". Names without an
// underscore are returned unchanged.
func KeyFromName(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) > 1 {
		return parts[1]
	}
	return name
}

// Find returns the lane with the given ID.
func Find(lanes []Lane, id string) (Lane, error) {
	for _, l := range lanes {
		if l.ID == id {
			return l, nil
		}
	}
	return Lane{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}
