package control

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/pathtrack/internal/mpc"
	"github.com/banshee-data/pathtrack/internal/path"
)

func TestEstimate(t *testing.T) {
	t.Parallel()

	t.Run("tracking errors derive from the polynomial at the origin", func(t *testing.T) {
		t.Parallel()
		est := NewEstimator(2.67, 0)

		coeffSets := []path.Polynomial{
			{0, 0, 0, 0},
			{1.2, -0.3, 0.05, 0.001},
			{-4.5, 2.0, 0, 0},
			{0.001, 100, -3, 7},
		}
		for _, coeffs := range coeffSets {
			s := est.Estimate(coeffs, 15, mpc.Control{})
			assert.InDelta(t, coeffs.Eval(0), s.CrossTrack, 1e-12)
			assert.InDelta(t, -math.Atan(coeffs[1]), s.HeadingErr, 1e-12)
			assert.Zero(t, s.X)
			assert.Zero(t, s.Y)
			assert.Zero(t, s.Heading)
			assert.InDelta(t, 15, s.Speed, 1e-12)
		}
	})

	t.Run("latency compensation propagates the state forward", func(t *testing.T) {
		t.Parallel()
		est := NewEstimator(2.67, 100*time.Millisecond)
		coeffs := path.Polynomial{0.5, 0.2, 0, 0}
		applied := mpc.Control{Steer: 0.1, Accel: 0.8}
		speed := 10.0

		s := est.Estimate(coeffs, speed, applied)

		l := 0.1
		yaw := speed / 2.67 * applied.Steer * l
		epsi0 := -math.Atan(0.2)
		assert.InDelta(t, speed*l, s.X, 1e-12)
		assert.Zero(t, s.Y)
		assert.InDelta(t, yaw, s.Heading, 1e-12)
		assert.InDelta(t, speed+applied.Accel*l, s.Speed, 1e-12)
		assert.InDelta(t, 0.5+speed*math.Sin(epsi0)*l, s.CrossTrack, 1e-12)
		assert.InDelta(t, epsi0+yaw, s.HeadingErr, 1e-12)
	})

	t.Run("zero latency ignores the applied command", func(t *testing.T) {
		t.Parallel()
		est := NewEstimator(2.67, 0)
		coeffs := path.Polynomial{1, 0, 0, 0}

		idle := est.Estimate(coeffs, 5, mpc.Control{})
		braking := est.Estimate(coeffs, 5, mpc.Control{Steer: 0.3, Accel: -1})
		assert.Equal(t, idle, braking)
	})
}
