package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// Scoring strategy names accepted by scoring_strategy.
const (
	StrategyExponential = "exponential"
	StrategyBlend       = "blend"
	StrategyZScore      = "zscore"
	StrategyRatio       = "ratio"
	StrategyXCorr       = "xcorr"
)

// ValidStrategies lists every accepted scoring_strategy value.
var ValidStrategies = []string{StrategyExponential, StrategyBlend, StrategyZScore, StrategyRatio, StrategyXCorr}

// TuningConfig represents the root configuration for matching parameters.
// Every field is optional; the Get* accessors supply defaults for fields
// that are omitted, so partial JSON files are safe.
type TuningConfig struct {
	// Path preparation
	ResampleCount     *int     `json:"resample_count,omitempty"`
	ScaleToUnit       *bool    `json:"scale_to_unit,omitempty"`
	SimplifyTolerance *float64 `json:"simplify_tolerance,omitempty"`

	// Gesture capture
	MaxGesturePoints  *int     `json:"max_gesture_points,omitempty"`
	MinSampleDistance *float64 `json:"min_sample_distance,omitempty"`

	// Scoring
	ScoringStrategy      *string  `json:"scoring_strategy,omitempty"`
	Alpha                *float64 `json:"alpha,omitempty"`
	PerceptualSpeedRatio *float64 `json:"perceptual_speed_ratio,omitempty"`
	BlendFrechetWeight   *float64 `json:"blend_frechet_weight,omitempty"`
	DTWWindow            *int     `json:"dtw_window,omitempty"`
	LengthDecay          *float64 `json:"length_decay,omitempty"`

	// Z-score strategy constants. These were fitted to one study's data and
	// are tunable defaults only.
	ZScoreFrechetMean *float64 `json:"zscore_frechet_mean,omitempty"`
	ZScoreFrechetStd  *float64 `json:"zscore_frechet_std,omitempty"`
	ZScoreSpeedMean   *float64 `json:"zscore_speed_mean,omitempty"`
	ZScoreSpeedStd    *float64 `json:"zscore_speed_std,omitempty"`

	// Selection gate
	MatchThreshold   *float64 `json:"match_threshold,omitempty"`
	MinMatchAccuracy *float64 `json:"min_match_accuracy,omitempty"`

	// Evaluation
	ParallelLanes *bool `json:"parallel_lanes,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// with its default value. It mirrors config/tuning.defaults.json.
func DefaultTuningConfig() *TuningConfig {
	empty := EmptyTuningConfig()
	return &TuningConfig{
		ResampleCount:        ptrInt(empty.GetResampleCount()),
		ScaleToUnit:          ptrBool(empty.GetScaleToUnit()),
		SimplifyTolerance:    ptrFloat64(empty.GetSimplifyTolerance()),
		MaxGesturePoints:     ptrInt(empty.GetMaxGesturePoints()),
		MinSampleDistance:    ptrFloat64(empty.GetMinSampleDistance()),
		ScoringStrategy:      ptrString(empty.GetScoringStrategy()),
		Alpha:                ptrFloat64(empty.GetAlpha()),
		PerceptualSpeedRatio: ptrFloat64(empty.GetPerceptualSpeedRatio()),
		BlendFrechetWeight:   ptrFloat64(empty.GetBlendFrechetWeight()),
		DTWWindow:            ptrInt(empty.GetDTWWindow()),
		LengthDecay:          ptrFloat64(empty.GetLengthDecay()),
		ZScoreFrechetMean:    ptrFloat64(empty.GetZScoreFrechetMean()),
		ZScoreFrechetStd:     ptrFloat64(empty.GetZScoreFrechetStd()),
		ZScoreSpeedMean:      ptrFloat64(empty.GetZScoreSpeedMean()),
		ZScoreSpeedStd:       ptrFloat64(empty.GetZScoreSpeedStd()),
		MatchThreshold:       ptrFloat64(empty.GetMatchThreshold()),
		MinMatchAccuracy:     ptrFloat64(empty.GetMinMatchAccuracy()),
		ParallelLanes:        ptrBool(empty.GetParallelLanes()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseTuningConfig(data)
}

// ParseTuningConfig decodes and validates a JSON tuning document.
func ParseTuningConfig(data []byte) (*TuningConfig, error) {
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/storage/sqlite/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.ResampleCount != nil && *c.ResampleCount < 2 {
		return fmt.Errorf("resample_count must be at least 2, got %d", *c.ResampleCount)
	}

	if c.Alpha != nil {
		if *c.Alpha < 0 || *c.Alpha > 1 || math.IsNaN(*c.Alpha) {
			return fmt.Errorf("alpha must be between 0 and 1, got %f", *c.Alpha)
		}
	}

	if c.BlendFrechetWeight != nil {
		if *c.BlendFrechetWeight < 0 || *c.BlendFrechetWeight > 1 {
			return fmt.Errorf("blend_frechet_weight must be between 0 and 1, got %f", *c.BlendFrechetWeight)
		}
	}

	if c.MatchThreshold != nil && !(*c.MatchThreshold > 0) {
		return fmt.Errorf("match_threshold must be positive, got %f", *c.MatchThreshold)
	}

	if c.MinMatchAccuracy != nil {
		if *c.MinMatchAccuracy < 0 || *c.MinMatchAccuracy > 100 {
			return fmt.Errorf("min_match_accuracy must be between 0 and 100, got %f", *c.MinMatchAccuracy)
		}
	}

	if c.PerceptualSpeedRatio != nil && *c.PerceptualSpeedRatio <= 0 {
		return fmt.Errorf("perceptual_speed_ratio must be positive, got %f", *c.PerceptualSpeedRatio)
	}

	if c.ScoringStrategy != nil && !IsValidStrategy(*c.ScoringStrategy) {
		return fmt.Errorf("unknown scoring_strategy %q (valid: %s)", *c.ScoringStrategy, strings.Join(ValidStrategies, ", "))
	}

	if c.MaxGesturePoints != nil && *c.MaxGesturePoints < 2 {
		return fmt.Errorf("max_gesture_points must be at least 2, got %d", *c.MaxGesturePoints)
	}

	if c.MinSampleDistance != nil && *c.MinSampleDistance < 0 {
		return fmt.Errorf("min_sample_distance must be non-negative, got %f", *c.MinSampleDistance)
	}

	if c.SimplifyTolerance != nil && *c.SimplifyTolerance < 0 {
		return fmt.Errorf("simplify_tolerance must be non-negative, got %f", *c.SimplifyTolerance)
	}

	if c.DTWWindow != nil && *c.DTWWindow < 0 {
		return fmt.Errorf("dtw_window must be non-negative, got %d", *c.DTWWindow)
	}

	if c.LengthDecay != nil && *c.LengthDecay <= 0 {
		return fmt.Errorf("length_decay must be positive, got %f", *c.LengthDecay)
	}

	if c.ZScoreFrechetStd != nil && *c.ZScoreFrechetStd <= 0 {
		return fmt.Errorf("zscore_frechet_std must be positive, got %f", *c.ZScoreFrechetStd)
	}
	if c.ZScoreSpeedStd != nil && *c.ZScoreSpeedStd <= 0 {
		return fmt.Errorf("zscore_speed_std must be positive, got %f", *c.ZScoreSpeedStd)
	}

	return nil
}

// IsValidStrategy checks if the given name is a known scoring strategy.
func IsValidStrategy(name string) bool {
	for _, s := range ValidStrategies {
		if s == name {
			return true
		}
	}
	return false
}

// GetResampleCount returns the resample_count value or the default.
func (c *TuningConfig) GetResampleCount() int {
	if c.ResampleCount == nil {
		return 101
	}
	return *c.ResampleCount
}

// GetScaleToUnit returns the scale_to_unit value or the default.
// Lanes usually share the input's coordinate space, where position is part
// of a lane's identity, so scaling is off by default.
func (c *TuningConfig) GetScaleToUnit() bool {
	if c.ScaleToUnit == nil {
		return false
	}
	return *c.ScaleToUnit
}

// GetSimplifyTolerance returns the simplify_tolerance value or the default (disabled).
func (c *TuningConfig) GetSimplifyTolerance() float64 {
	if c.SimplifyTolerance == nil {
		return 0
	}
	return *c.SimplifyTolerance
}

// GetMaxGesturePoints returns the max_gesture_points value or the default.
func (c *TuningConfig) GetMaxGesturePoints() int {
	if c.MaxGesturePoints == nil {
		return 500
	}
	return *c.MaxGesturePoints
}

// GetMinSampleDistance returns the min_sample_distance value or the default.
func (c *TuningConfig) GetMinSampleDistance() float64 {
	if c.MinSampleDistance == nil {
		return 0
	}
	return *c.MinSampleDistance
}

// GetScoringStrategy returns the scoring_strategy value or the default.
func (c *TuningConfig) GetScoringStrategy() string {
	if c.ScoringStrategy == nil || *c.ScoringStrategy == "" {
		return StrategyExponential
	}
	return *c.ScoringStrategy
}

// GetAlpha returns the alpha (shape vs speed weight) value or the default.
func (c *TuningConfig) GetAlpha() float64 {
	if c.Alpha == nil {
		return 0.8
	}
	return *c.Alpha
}

// GetPerceptualSpeedRatio returns the perceptual_speed_ratio value or the default.
func (c *TuningConfig) GetPerceptualSpeedRatio() float64 {
	if c.PerceptualSpeedRatio == nil {
		return 1.0
	}
	return *c.PerceptualSpeedRatio
}

// GetBlendFrechetWeight returns the blend_frechet_weight value or the default.
func (c *TuningConfig) GetBlendFrechetWeight() float64 {
	if c.BlendFrechetWeight == nil {
		return 0.7
	}
	return *c.BlendFrechetWeight
}

// GetDTWWindow returns the dtw_window value or the default (unconstrained).
func (c *TuningConfig) GetDTWWindow() int {
	if c.DTWWindow == nil {
		return 0
	}
	return *c.DTWWindow
}

// GetLengthDecay returns the length_decay value or the default.
func (c *TuningConfig) GetLengthDecay() float64 {
	if c.LengthDecay == nil {
		return 3.0
	}
	return *c.LengthDecay
}

// GetZScoreFrechetMean returns the zscore_frechet_mean value or the default.
func (c *TuningConfig) GetZScoreFrechetMean() float64 {
	if c.ZScoreFrechetMean == nil {
		return 1.5
	}
	return *c.ZScoreFrechetMean
}

// GetZScoreFrechetStd returns the zscore_frechet_std value or the default.
func (c *TuningConfig) GetZScoreFrechetStd() float64 {
	if c.ZScoreFrechetStd == nil {
		return 0.8
	}
	return *c.ZScoreFrechetStd
}

// GetZScoreSpeedMean returns the zscore_speed_mean value or the default.
func (c *TuningConfig) GetZScoreSpeedMean() float64 {
	if c.ZScoreSpeedMean == nil {
		return 1.0
	}
	return *c.ZScoreSpeedMean
}

// GetZScoreSpeedStd returns the zscore_speed_std value or the default.
func (c *TuningConfig) GetZScoreSpeedStd() float64 {
	if c.ZScoreSpeedStd == nil {
		return 0.6
	}
	return *c.ZScoreSpeedStd
}

// GetMatchThreshold returns the match_threshold value or the default.
// Scores from the default exponential strategy are bounded by 1.
func (c *TuningConfig) GetMatchThreshold() float64 {
	if c.MatchThreshold == nil {
		return 1.0
	}
	return *c.MatchThreshold
}

// GetMinMatchAccuracy returns the min_match_accuracy percentage or the default.
func (c *TuningConfig) GetMinMatchAccuracy() float64 {
	if c.MinMatchAccuracy == nil {
		return 50
	}
	return *c.MinMatchAccuracy
}

// GetParallelLanes returns the parallel_lanes value or the default.
func (c *TuningConfig) GetParallelLanes() bool {
	if c.ParallelLanes == nil {
		return false
	}
	return *c.ParallelLanes
}
