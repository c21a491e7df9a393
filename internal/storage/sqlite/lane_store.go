package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/lanematch/internal/lane"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

// LaneStore provides persistence for reference lanes.
type LaneStore struct {
	db *sql.DB
}

// NewLaneStore creates a new LaneStore.
func NewLaneStore(db *DB) *LaneStore {
	return &LaneStore{db: db.DB}
}

// Save inserts or replaces a lane. If l.ID is empty, a new UUID is
// generated and written back.
func (s *LaneStore) Save(l *lane.Lane) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Key == "" {
		l.Key = lane.KeyFromName(l.Name)
	}
	if err := l.Validate(); err != nil {
		return err
	}

	points, err := json.Marshal(trajectory.PairsFromPoints(l.Path.Points))
	if err != nil {
		return fmt.Errorf("encode lane points: %w", err)
	}
	timestamps, err := marshalOptional(l.Path.Timestamps)
	if err != nil {
		return fmt.Errorf("encode lane timestamps: %w", err)
	}
	profile, err := marshalOptional(l.SpeedProfile)
	if err != nil {
		return fmt.Errorf("encode lane speed profile: %w", err)
	}

	now := time.Now().UnixNano()
	query := `
		INSERT INTO lanes (
			lane_id, name, lane_key, points_json, timestamps_json,
			reference_speed, speed_profile_json, traversal_duration,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(lane_id) DO UPDATE SET
			name = excluded.name,
			lane_key = excluded.lane_key,
			points_json = excluded.points_json,
			timestamps_json = excluded.timestamps_json,
			reference_speed = excluded.reference_speed,
			speed_profile_json = excluded.speed_profile_json,
			traversal_duration = excluded.traversal_duration,
			updated_at = excluded.updated_at
	`
	_, err = s.db.Exec(query,
		l.ID,
		l.Name,
		l.Key,
		string(points),
		timestamps,
		nullFloat64(l.ReferenceSpeed),
		profile,
		l.TraversalDuration,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("save lane: %w", err)
	}
	return nil
}

const selectLanes = `
	SELECT lane_id, name, lane_key, points_json, timestamps_json,
	       reference_speed, speed_profile_json, traversal_duration
	FROM lanes
`

// Get returns the lane with the given ID, or lane.ErrNotFound.
func (s *LaneStore) Get(id string) (lane.Lane, error) {
	row := s.db.QueryRow(selectLanes+" WHERE lane_id = ?", id)
	l, err := scanLane(row)
	if errors.Is(err, sql.ErrNoRows) {
		return lane.Lane{}, fmt.Errorf("%w: %s", lane.ErrNotFound, id)
	}
	return l, err
}

// List returns every lane ordered by name.
func (s *LaneStore) List() ([]lane.Lane, error) {
	rows, err := s.db.Query(selectLanes + " ORDER BY name, lane_id")
	if err != nil {
		return nil, fmt.Errorf("list lanes: %w", err)
	}
	defer rows.Close()

	var lanes []lane.Lane
	for rows.Next() {
		l, err := scanLane(rows)
		if err != nil {
			return nil, err
		}
		lanes = append(lanes, l)
	}
	return lanes, rows.Err()
}

// Delete removes a lane by ID.
func (s *LaneStore) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM lanes WHERE lane_id = ?", id)
	if err != nil {
		return fmt.Errorf("delete lane: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lane rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", lane.ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLane(row scanner) (lane.Lane, error) {
	var (
		l                   lane.Lane
		points              string
		timestamps, profile sql.NullString
		referenceSpeed      sql.NullFloat64
	)
	err := row.Scan(&l.ID, &l.Name, &l.Key, &points, &timestamps,
		&referenceSpeed, &profile, &l.TraversalDuration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return lane.Lane{}, err
		}
		return lane.Lane{}, fmt.Errorf("scan lane: %w", err)
	}

	var pairs [][2]float64
	if err := json.Unmarshal([]byte(points), &pairs); err != nil {
		return lane.Lane{}, fmt.Errorf("decode points of lane %s: %w", l.ID, err)
	}
	l.Path.Points = trajectory.PointsFromPairs(pairs)

	if timestamps.Valid {
		if err := json.Unmarshal([]byte(timestamps.String), &l.Path.Timestamps); err != nil {
			return lane.Lane{}, fmt.Errorf("decode timestamps of lane %s: %w", l.ID, err)
		}
	}
	if profile.Valid {
		if err := json.Unmarshal([]byte(profile.String), &l.SpeedProfile); err != nil {
			return lane.Lane{}, fmt.Errorf("decode speed profile of lane %s: %w", l.ID, err)
		}
	}
	if referenceSpeed.Valid {
		v := referenceSpeed.Float64
		l.ReferenceSpeed = &v
	}
	return l, nil
}

// marshalOptional encodes a non-empty series as JSON, or NULL when empty.
func marshalOptional(series []float64) (sql.NullString, error) {
	if len(series) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(series)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullFloat64(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
