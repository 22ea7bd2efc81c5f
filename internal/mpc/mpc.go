// Package mpc solves the receding-horizon control problem: given the
// vehicle's current tracking state and the fitted reference polynomial,
// find the actuator sequence over the next N steps that minimizes a
// weighted tracking-plus-effort cost under the kinematic bicycle model
// and the actuator limits.
//
// The program is nonconvex (trigonometric and bilinear terms in the
// dynamics), so it is reduced to an unconstrained problem before being
// handed to gonum's L-BFGS minimizer: the dynamics equalities are
// eliminated by forward simulation from the pinned initial state
// (single shooting), and the box limits are enforced by a smooth tanh
// saturation of the raw decision variables, which keeps every candidate
// strictly inside its bounds. Gradients are estimated by the library's
// finite differencing; no hand-coded derivatives.
package mpc

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/banshee-data/pathtrack/internal/path"
)

// ErrNotConverged is returned when the solver exhausts its iteration or
// wall-clock budget without converging. Callers must fall back to a
// safe command rather than reuse a stale one.
var ErrNotConverged = errors.New("mpc: solver did not converge within budget")

// Weights are the relative costs of the tracking, effort and smoothness
// terms. All must be non-negative; their ratios are tuning, not
// correctness.
type Weights struct {
	CrossTrack float64
	Heading    float64
	Speed      float64
	Steer      float64
	Accel      float64
	SteerRate  float64
	AccelRate  float64
}

// Config holds the fixed optimization constants for one process.
type Config struct {
	Steps       int     // horizon length N (states; N-1 controls)
	StepSeconds float64 // dt between horizon steps
	Wheelbase   float64 // Lf, turning-response constant
	RefSpeed    float64 // speed setpoint, m/s

	SteerLimit float64 // |steer| bound, radians
	AccelMin   float64
	AccelMax   float64

	Weights Weights

	MaxIterations int           // solver major-iteration budget
	SolveBudget   time.Duration // solver wall-clock budget; 0 means unlimited
}

// State is one point of the predicted trajectory in the body frame.
type State struct {
	X          float64
	Y          float64
	Heading    float64
	Speed      float64
	CrossTrack float64
	HeadingErr float64
}

// Control is one actuator pair: steering angle in radians and
// acceleration in the platform's normalized units.
type Control struct {
	Steer float64
	Accel float64
}

// Solution is the optimizer's output for one cycle: N states and N-1
// controls. It is owned by the cycle that produced it.
type Solution struct {
	States   []State
	Controls []Control
}

// Optimizer solves the horizon problem once per cycle. It keeps only
// the previous raw solution as a warm start; correctness never depends
// on it (a cold start is neutral controls).
type Optimizer struct {
	cfg  Config
	warm []float64
}

// New returns an Optimizer for the given constants.
func New(cfg Config) *Optimizer {
	return &Optimizer{cfg: cfg}
}

// controlAt maps the flat raw decision vector to the bounded control at
// step t. tanh keeps steering strictly inside ±SteerLimit and
// acceleration strictly inside [AccelMin, AccelMax].
func (o *Optimizer) controlAt(u []float64, t int) Control {
	mid := (o.cfg.AccelMax + o.cfg.AccelMin) / 2
	half := (o.cfg.AccelMax - o.cfg.AccelMin) / 2
	return Control{
		Steer: o.cfg.SteerLimit * math.Tanh(u[2*t]),
		Accel: mid + half*math.Tanh(u[2*t+1]),
	}
}

// step advances the kinematic bicycle model by one horizon step.
func (o *Optimizer) step(s State, c Control, coeffs path.Polynomial) State {
	dt := o.cfg.StepSeconds
	lf := o.cfg.Wheelbase
	yaw := s.Speed / lf * c.Steer * dt
	desired := math.Atan(coeffs.Slope(s.X))
	return State{
		X:          s.X + s.Speed*math.Cos(s.Heading)*dt,
		Y:          s.Y + s.Speed*math.Sin(s.Heading)*dt,
		Heading:    s.Heading + yaw,
		Speed:      s.Speed + c.Accel*dt,
		CrossTrack: (coeffs.Eval(s.X) - s.Y) + s.Speed*math.Sin(s.HeadingErr)*dt,
		HeadingErr: (s.Heading - desired) + yaw,
	}
}

// simulate rolls the dynamics forward from the pinned initial state
// under the controls encoded in u, producing all N states.
func (o *Optimizer) simulate(initial State, coeffs path.Polynomial, u []float64) []State {
	states := make([]State, o.cfg.Steps)
	states[0] = initial
	for t := 0; t < o.cfg.Steps-1; t++ {
		states[t+1] = o.step(states[t], o.controlAt(u, t), coeffs)
	}
	return states
}

// cost is the weighted objective over the whole horizon.
func (o *Optimizer) cost(initial State, coeffs path.Polynomial, u []float64) float64 {
	w := o.cfg.Weights
	total := 0.0

	s := initial
	for t := 0; t < o.cfg.Steps; t++ {
		dv := s.Speed - o.cfg.RefSpeed
		total += w.CrossTrack*s.CrossTrack*s.CrossTrack +
			w.Heading*s.HeadingErr*s.HeadingErr +
			w.Speed*dv*dv
		if t < o.cfg.Steps-1 {
			s = o.step(s, o.controlAt(u, t), coeffs)
		}
	}

	for t := 0; t < o.cfg.Steps-1; t++ {
		c := o.controlAt(u, t)
		total += w.Steer*c.Steer*c.Steer + w.Accel*c.Accel*c.Accel
	}

	for t := 0; t < o.cfg.Steps-2; t++ {
		c0 := o.controlAt(u, t)
		c1 := o.controlAt(u, t+1)
		ds := c1.Steer - c0.Steer
		da := c1.Accel - c0.Accel
		total += w.SteerRate*ds*ds + w.AccelRate*da*da
	}

	return total
}

// Solve runs one horizon optimization. The returned solution's state 0
// is exactly the given initial state and every control respects the
// configured bounds. A solve that exhausts its budget returns
// ErrNotConverged and discards the warm start.
func (o *Optimizer) Solve(initial State, coeffs path.Polynomial) (*Solution, error) {
	dim := 2 * (o.cfg.Steps - 1)
	x0 := make([]float64, dim)
	if len(o.warm) == dim {
		copy(x0, o.warm)
	}

	costFn := func(u []float64) float64 { return o.cost(initial, coeffs, u) }
	problem := optimize.Problem{
		Func: costFn,
		Grad: func(grad, u []float64) {
			fd.Gradient(grad, costFn, u, nil)
		},
	}
	// Convergence tolerances sized for finite-difference gradients:
	// the library defaults wait far longer than a control period for
	// precision the actuators cannot use.
	settings := &optimize.Settings{
		MajorIterations:   o.cfg.MaxIterations,
		Runtime:           o.cfg.SolveBudget,
		GradientThreshold: 1e-4,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-8,
			Relative:   1e-10,
			Iterations: 10,
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if err != nil {
		o.warm = nil
		return nil, fmt.Errorf("%w: %v", ErrNotConverged, err)
	}
	switch result.Status {
	case optimize.Success, optimize.FunctionThreshold, optimize.FunctionConvergence,
		optimize.GradientThreshold, optimize.StepConvergence, optimize.MethodConverge:
		// converged
	default:
		o.warm = nil
		return nil, fmt.Errorf("%w: status %v after %d iterations", ErrNotConverged, result.Status, result.MajorIterations)
	}

	controls := make([]Control, o.cfg.Steps-1)
	for t := range controls {
		controls[t] = o.controlAt(result.X, t)
	}

	// Seed the next cycle with this solution shifted one step forward,
	// repeating the terminal control.
	o.warm = make([]float64, dim)
	copy(o.warm, result.X[2:])
	copy(o.warm[dim-2:], result.X[dim-2:])

	return &Solution{
		States:   o.simulate(initial, coeffs, result.X),
		Controls: controls,
	}, nil
}
