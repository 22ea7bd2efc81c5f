package control

import (
	"math"
	"time"

	"github.com/banshee-data/pathtrack/internal/mpc"
	"github.com/banshee-data/pathtrack/internal/path"
)

// Estimator assembles the optimizer's initial state from the fitted
// reference polynomial and the measured speed. The body frame is
// re-centered on the vehicle every cycle, so position and heading start
// at zero by construction: the cross-track error is f(0) and the
// heading error is -atan(f'(0)).
type Estimator struct {
	wheelbase float64
	latency   float64 // seconds; 0 disables compensation
}

// NewEstimator returns an Estimator. A non-zero latency makes Estimate
// propagate the state forward by that long under the previously applied
// command, so the solve starts from where the vehicle will be when the
// new command actually takes effect.
func NewEstimator(wheelbase float64, latency time.Duration) *Estimator {
	return &Estimator{wheelbase: wheelbase, latency: latency.Seconds()}
}

// Estimate builds the initial control state. applied is the command the
// platform is executing during the actuation delay; it is ignored when
// latency compensation is disabled.
func (e *Estimator) Estimate(coeffs path.Polynomial, speed float64, applied mpc.Control) mpc.State {
	s := mpc.State{
		Speed:      speed,
		CrossTrack: coeffs.Eval(0),
		HeadingErr: -math.Atan(coeffs.Slope(0)),
	}
	if e.latency <= 0 {
		return s
	}

	// Same kinematic model as the horizon dynamics, integrated once
	// over the latency interval from x = y = psi = 0.
	l := e.latency
	yaw := speed / e.wheelbase * applied.Steer * l
	return mpc.State{
		X:          speed * l,
		Y:          0,
		Heading:    yaw,
		Speed:      speed + applied.Accel*l,
		CrossTrack: s.CrossTrack + speed*math.Sin(s.HeadingErr)*l,
		HeadingErr: s.HeadingErr + yaw,
	}
}
