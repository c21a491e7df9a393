package lane

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/banshee-data/lanematch/internal/fsutil"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

// File is the on-disk lane-set document.
type File struct {
	Lanes []Record `json:"lanes"`
}

// Record is one lane in a lane-set file. Points are [x, y] pairs.
type Record struct {
	ID                string       `json:"id,omitempty"`
	Name              string       `json:"name"`
	Key               string       `json:"key,omitempty"`
	Points            [][2]float64 `json:"points"`
	Timestamps        []float64    `json:"timestamps,omitempty"`
	ReferenceSpeed    *float64     `json:"reference_speed,omitempty"`
	SpeedProfile      []float64    `json:"speed_profile,omitempty"`
	TraversalDuration float64      `json:"traversal_duration,omitempty"`
}

// Lane converts the record, filling ID from Name and Key from the name
// suffix when they are omitted.
func (r Record) Lane() Lane {
	l := Lane{
		ID:                r.ID,
		Name:              r.Name,
		Key:               r.Key,
		Path:              trajectory.TimedPath{Points: trajectory.PointsFromPairs(r.Points), Timestamps: r.Timestamps},
		ReferenceSpeed:    r.ReferenceSpeed,
		SpeedProfile:      r.SpeedProfile,
		TraversalDuration: r.TraversalDuration,
	}
	if l.ID == "" {
		l.ID = r.Name
	}
	if l.Key == "" {
		l.Key = KeyFromName(r.Name)
	}
	return l
}

// RecordOf converts a lane back to its file form.
func RecordOf(l Lane) Record {
	return Record{
		ID:                l.ID,
		Name:              l.Name,
		Key:               l.Key,
		Points:            trajectory.PairsFromPoints(l.Path.Points),
		Timestamps:        l.Path.Timestamps,
		ReferenceSpeed:    l.ReferenceSpeed,
		SpeedProfile:      l.SpeedProfile,
		TraversalDuration: l.TraversalDuration,
	}
}

// Parse decodes and validates a lane-set document. Lane IDs must be unique.
func Parse(data []byte) ([]Lane, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse lane set: %w", err)
	}
	return fromFile(f)
}

// Load reads a lane-set file.
func Load(fsys fsutil.FileSystem, path string) ([]Lane, error) {
	var f File
	if err := fsutil.ReadJSON(fsys, path, &f); err != nil {
		return nil, err
	}
	lanes, err := fromFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lanes, nil
}

// Save writes lanes as a lane-set file.
func Save(fsys fsutil.FileSystem, path string, lanes []Lane) error {
	f := File{Lanes: make([]Record, len(lanes))}
	for i, l := range lanes {
		f.Lanes[i] = RecordOf(l)
	}
	return fsutil.WriteJSON(fsys, path, f)
}

func fromFile(f File) ([]Lane, error) {
	if len(f.Lanes) == 0 {
		return nil, errors.New("lane set is empty")
	}
	seen := make(map[string]bool, len(f.Lanes))
	lanes := make([]Lane, 0, len(f.Lanes))
	for i, r := range f.Lanes {
		l := r.Lane()
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("lane %d: %w", i, err)
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("lane %d: duplicate id %q", i, l.ID)
		}
		seen[l.ID] = true
		lanes = append(lanes, l)
	}
	return lanes, nil
}
