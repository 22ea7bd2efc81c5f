package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 10, cfg.GetHorizonSteps())
	assert.InDelta(t, 0.1, cfg.GetStepSeconds(), 1e-12)
	assert.InDelta(t, 2.67, cfg.GetWheelbase(), 1e-12)
	assert.InDelta(t, 25*math.Pi/180, cfg.GetSteerLimitRad(), 1e-12)
	assert.InDelta(t, -1, cfg.GetAccelMin(), 1e-12)
	assert.InDelta(t, 1, cfg.GetAccelMax(), 1e-12)
	assert.Equal(t, 200, cfg.GetMaxIterations())
	assert.Equal(t, 250*time.Millisecond, cfg.GetSolveBudget())
	assert.Equal(t, 100*time.Millisecond, cfg.GetLatency())
	assert.Equal(t, "mph", cfg.GetSpeedUnits())
	assert.Positive(t, cfg.GetWeightCrossTrack())
	assert.Positive(t, cfg.GetWeightSteerRate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  Config
	}{
		{"horizon too short", Config{HorizonSteps: ptrInt(1)}},
		{"zero step duration", Config{StepSeconds: ptrFloat64(0)}},
		{"negative step duration", Config{StepSeconds: ptrFloat64(-0.1)}},
		{"zero wheelbase", Config{Wheelbase: ptrFloat64(0)}},
		{"steer limit out of range", Config{SteerLimitDeg: ptrFloat64(95)}},
		{"inverted accel bounds", Config{AccelMin: ptrFloat64(2), AccelMax: ptrFloat64(1)}},
		{"negative weight", Config{WeightHeading: ptrFloat64(-1)}},
		{"zero iteration budget", Config{MaxIterations: ptrInt(0)}},
		{"unparseable solve budget", Config{SolveBudget: ptrString("fast")}},
		{"negative latency", Config{Latency: ptrString("-50ms")}},
		{"unknown speed units", Config{SpeedUnits: ptrString("knots")}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Error(t, tc.cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("partial config keeps defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "tuning.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"horizon_steps": 15, "latency": "0s"}`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 15, cfg.GetHorizonSteps())
		assert.Equal(t, time.Duration(0), cfg.GetLatency())
		// Untouched fields keep defaults.
		assert.InDelta(t, 0.1, cfg.GetStepSeconds(), 1e-12)
	})

	t.Run("rejects non-json extension", func(t *testing.T) {
		t.Parallel()
		_, err := Load("tuning.yaml")
		assert.Error(t, err)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "tuning.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"step_seconds": -1}`), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "tuning.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}
