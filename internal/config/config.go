// Package config holds the controller's process-wide constants. All
// values are fixed at startup and read-only afterwards; an invalid file
// is fatal at initialization, never mid-session.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/pathtrack/internal/units"
)

// Config is the root tuning configuration. Fields are pointers so that
// partial JSON files are safe: anything omitted keeps its default via
// the Get* accessors.
type Config struct {
	// Horizon params
	HorizonSteps *int     `json:"horizon_steps,omitempty"`
	StepSeconds  *float64 `json:"step_seconds,omitempty"`

	// Vehicle params
	Wheelbase   *float64 `json:"wheelbase,omitempty"` // effective CoM-to-front-axle distance, meters
	RefSpeedMPS *float64 `json:"ref_speed_mps,omitempty"`

	// Actuator limits
	SteerLimitDeg *float64 `json:"steer_limit_deg,omitempty"`
	AccelMin      *float64 `json:"accel_min,omitempty"`
	AccelMax      *float64 `json:"accel_max,omitempty"`

	// Cost weights
	WeightCrossTrack *float64 `json:"weight_cross_track,omitempty"`
	WeightHeading    *float64 `json:"weight_heading,omitempty"`
	WeightSpeed      *float64 `json:"weight_speed,omitempty"`
	WeightSteer      *float64 `json:"weight_steer,omitempty"`
	WeightAccel      *float64 `json:"weight_accel,omitempty"`
	WeightSteerRate  *float64 `json:"weight_steer_rate,omitempty"`
	WeightAccelRate  *float64 `json:"weight_accel_rate,omitempty"`

	// Solver budget
	MaxIterations *int    `json:"max_iterations,omitempty"`
	SolveBudget   *string `json:"solve_budget,omitempty"` // duration string like "250ms"

	// Actuation latency compensated by the state estimator. Empty or
	// "0s" disables compensation.
	Latency *string `json:"latency,omitempty"`

	// Telemetry params
	SpeedUnits *string `json:"speed_units,omitempty"`
}

// Default returns a Config with all fields nil, so every accessor
// reports its built-in default.
func Default() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. Fields omitted from the file
// retain their defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable. A failure
// here is fatal at startup.
func (c *Config) Validate() error {
	if c.HorizonSteps != nil && *c.HorizonSteps < 2 {
		return fmt.Errorf("horizon_steps must be at least 2, got %d", *c.HorizonSteps)
	}
	if c.StepSeconds != nil && *c.StepSeconds <= 0 {
		return fmt.Errorf("step_seconds must be positive, got %f", *c.StepSeconds)
	}
	if c.Wheelbase != nil && *c.Wheelbase <= 0 {
		return fmt.Errorf("wheelbase must be positive, got %f", *c.Wheelbase)
	}
	if c.SteerLimitDeg != nil && (*c.SteerLimitDeg <= 0 || *c.SteerLimitDeg >= 90) {
		return fmt.Errorf("steer_limit_deg must be in (0, 90), got %f", *c.SteerLimitDeg)
	}
	if c.GetAccelMin() >= c.GetAccelMax() {
		return fmt.Errorf("accel_min %f must be below accel_max %f", c.GetAccelMin(), c.GetAccelMax())
	}
	for name, w := range map[string]*float64{
		"weight_cross_track": c.WeightCrossTrack,
		"weight_heading":     c.WeightHeading,
		"weight_speed":       c.WeightSpeed,
		"weight_steer":       c.WeightSteer,
		"weight_accel":       c.WeightAccel,
		"weight_steer_rate":  c.WeightSteerRate,
		"weight_accel_rate":  c.WeightAccelRate,
	} {
		if w != nil && *w < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *w)
		}
	}
	if c.MaxIterations != nil && *c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", *c.MaxIterations)
	}
	if c.SolveBudget != nil && *c.SolveBudget != "" {
		if _, err := time.ParseDuration(*c.SolveBudget); err != nil {
			return fmt.Errorf("invalid solve_budget '%s': %w", *c.SolveBudget, err)
		}
	}
	if c.Latency != nil && *c.Latency != "" {
		d, err := time.ParseDuration(*c.Latency)
		if err != nil {
			return fmt.Errorf("invalid latency '%s': %w", *c.Latency, err)
		}
		if d < 0 {
			return fmt.Errorf("latency must be non-negative, got %s", d)
		}
	}
	if c.SpeedUnits != nil && !units.IsValid(*c.SpeedUnits) {
		return fmt.Errorf("speed_units must be one of %s, got %q", units.GetValidUnitsString(), *c.SpeedUnits)
	}
	return nil
}

// GetHorizonSteps returns the horizon length N or the default.
func (c *Config) GetHorizonSteps() int {
	if c.HorizonSteps == nil {
		return 10
	}
	return *c.HorizonSteps
}

// GetStepSeconds returns the horizon step duration dt or the default.
func (c *Config) GetStepSeconds() float64 {
	if c.StepSeconds == nil {
		return 0.1
	}
	return *c.StepSeconds
}

// GetWheelbase returns the turning-response constant Lf or the default.
func (c *Config) GetWheelbase() float64 {
	if c.Wheelbase == nil {
		return 2.67
	}
	return *c.Wheelbase
}

// GetRefSpeedMPS returns the speed reference or the default.
func (c *Config) GetRefSpeedMPS() float64 {
	if c.RefSpeedMPS == nil {
		return 18.0
	}
	return *c.RefSpeedMPS
}

// GetSteerLimitRad returns the steering-angle bound in radians.
func (c *Config) GetSteerLimitRad() float64 {
	deg := 25.0
	if c.SteerLimitDeg != nil {
		deg = *c.SteerLimitDeg
	}
	return deg * math.Pi / 180
}

// GetAccelMin returns the lower acceleration bound or the default.
func (c *Config) GetAccelMin() float64 {
	if c.AccelMin == nil {
		return -1.0
	}
	return *c.AccelMin
}

// GetAccelMax returns the upper acceleration bound or the default.
func (c *Config) GetAccelMax() float64 {
	if c.AccelMax == nil {
		return 1.0
	}
	return *c.AccelMax
}

// GetWeightCrossTrack returns the cross-track-error weight or the default.
func (c *Config) GetWeightCrossTrack() float64 {
	if c.WeightCrossTrack == nil {
		return 2000.0
	}
	return *c.WeightCrossTrack
}

// GetWeightHeading returns the heading-error weight or the default.
func (c *Config) GetWeightHeading() float64 {
	if c.WeightHeading == nil {
		return 2000.0
	}
	return *c.WeightHeading
}

// GetWeightSpeed returns the speed-tracking weight or the default.
func (c *Config) GetWeightSpeed() float64 {
	if c.WeightSpeed == nil {
		return 1.0
	}
	return *c.WeightSpeed
}

// GetWeightSteer returns the steering-effort weight or the default.
func (c *Config) GetWeightSteer() float64 {
	if c.WeightSteer == nil {
		return 10.0
	}
	return *c.WeightSteer
}

// GetWeightAccel returns the acceleration-effort weight or the default.
func (c *Config) GetWeightAccel() float64 {
	if c.WeightAccel == nil {
		return 10.0
	}
	return *c.WeightAccel
}

// GetWeightSteerRate returns the steering-smoothness weight or the default.
func (c *Config) GetWeightSteerRate() float64 {
	if c.WeightSteerRate == nil {
		return 600.0
	}
	return *c.WeightSteerRate
}

// GetWeightAccelRate returns the acceleration-smoothness weight or the default.
func (c *Config) GetWeightAccelRate() float64 {
	if c.WeightAccelRate == nil {
		return 10.0
	}
	return *c.WeightAccelRate
}

// GetMaxIterations returns the solver's major-iteration budget or the default.
func (c *Config) GetMaxIterations() int {
	if c.MaxIterations == nil {
		return 200
	}
	return *c.MaxIterations
}

// GetSolveBudget parses and returns the solver's wall-clock budget.
func (c *Config) GetSolveBudget() time.Duration {
	if c.SolveBudget == nil || *c.SolveBudget == "" {
		return 250 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.SolveBudget)
	if err != nil {
		return 250 * time.Millisecond
	}
	return d
}

// GetLatency parses and returns the compensated actuation latency.
func (c *Config) GetLatency() time.Duration {
	if c.Latency == nil {
		return 100 * time.Millisecond
	}
	if *c.Latency == "" {
		return 0
	}
	d, err := time.ParseDuration(*c.Latency)
	if err != nil {
		return 100 * time.Millisecond
	}
	return d
}

// GetSpeedUnits returns the inbound telemetry speed units or the default.
func (c *Config) GetSpeedUnits() string {
	if c.SpeedUnits == nil {
		return units.MPH
	}
	return *c.SpeedUnits
}
