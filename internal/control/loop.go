package control

import (
	"time"

	"github.com/banshee-data/pathtrack/internal/config"
	"github.com/banshee-data/pathtrack/internal/frame"
	"github.com/banshee-data/pathtrack/internal/monitoring"
	"github.com/banshee-data/pathtrack/internal/mpc"
	"github.com/banshee-data/pathtrack/internal/path"
	"github.com/banshee-data/pathtrack/internal/units"
)

// refDegree is the reference-path polynomial degree. Telemetry must
// carry at least refDegree+1 waypoints to be usable.
const refDegree = 3

// fallbackBrake is the throttle applied when a solve fails: zero
// steering plus moderate braking, never a stale or undefined command.
const fallbackBrake = -0.5

// Cycle outcome labels used for logging and recording.
const (
	StatusOK           = "ok"
	StatusInputError   = "input_error"
	StatusFitError     = "fit_error"
	StatusSolveFailure = "solve_failure"
)

// Recorder receives one record per completed cycle. Implementations
// must tolerate being called from the control path, so failures are
// logged and dropped rather than propagated.
type Recorder interface {
	Record(r CycleRecord) error
}

// CycleRecord is the per-cycle diagnostic row handed to a Recorder.
type CycleRecord struct {
	Cycle       int
	Status      string
	Steering    float64
	Throttle    float64
	CrossTrack  float64
	HeadingErr  float64
	SpeedMPS    float64
	SolveMillis float64
}

// Driver orchestrates one control cycle per telemetry record. It is
// strictly single-threaded: the transport calls ProcessCycle for one
// record at a time and applies the returned command before the next.
type Driver struct {
	cfg *config.Config
	est *Estimator
	opt *mpc.Optimizer
	rec Recorder

	// Most recent applied command in model convention, consumed by
	// latency compensation. Single writer, single reader.
	applied mpc.Control
	cycle   int

	inputErrors   *monitoring.Counter
	fitErrors     *monitoring.Counter
	solveFailures *monitoring.Counter
}

// NewDriver wires the cycle pipeline from validated configuration.
func NewDriver(cfg *config.Config) *Driver {
	return &Driver{
		cfg: cfg,
		est: NewEstimator(cfg.GetWheelbase(), cfg.GetLatency()),
		opt: mpc.New(mpc.Config{
			Steps:       cfg.GetHorizonSteps(),
			StepSeconds: cfg.GetStepSeconds(),
			Wheelbase:   cfg.GetWheelbase(),
			RefSpeed:    cfg.GetRefSpeedMPS(),
			SteerLimit:  cfg.GetSteerLimitRad(),
			AccelMin:    cfg.GetAccelMin(),
			AccelMax:    cfg.GetAccelMax(),
			Weights: mpc.Weights{
				CrossTrack: cfg.GetWeightCrossTrack(),
				Heading:    cfg.GetWeightHeading(),
				Speed:      cfg.GetWeightSpeed(),
				Steer:      cfg.GetWeightSteer(),
				Accel:      cfg.GetWeightAccel(),
				SteerRate:  cfg.GetWeightSteerRate(),
				AccelRate:  cfg.GetWeightAccelRate(),
			},
			MaxIterations: cfg.GetMaxIterations(),
			SolveBudget:   cfg.GetSolveBudget(),
		}),
		inputErrors:   monitoring.NewCounter("cycle_input_errors"),
		fitErrors:     monitoring.NewCounter("cycle_fit_errors"),
		solveFailures: monitoring.NewCounter("cycle_solve_failures"),
	}
}

// SetRecorder attaches an optional per-cycle recorder.
func (d *Driver) SetRecorder(r Recorder) { d.rec = r }

// ProcessCycle runs the full pipeline for one telemetry record and
// returns the command to apply. A bad record never crashes the loop:
// malformed or insufficient telemetry yields a neutral command, and a
// failed solve yields the safe braking fallback.
func (d *Driver) ProcessCycle(t Telemetry) Command {
	d.cycle++

	if len(t.PtsX) != len(t.PtsY) || len(t.PtsX) < refDegree+1 {
		d.inputErrors.Add()
		monitoring.Logf("cycle %d: unusable telemetry (%d/%d waypoints), emitting neutral command",
			d.cycle, len(t.PtsX), len(t.PtsY))
		return d.finish(Command{}, CycleRecord{Status: StatusInputError})
	}

	speed := units.ToMPS(t.Speed, d.cfg.GetSpeedUnits())
	pose := frame.Pose{X: t.X, Y: t.Y, Heading: t.Psi, Speed: speed}

	local, err := frame.ToLocal(pose, frame.Zip(t.PtsX, t.PtsY))
	if err != nil {
		d.inputErrors.Add()
		monitoring.Logf("cycle %d: %v, emitting neutral command", d.cycle, err)
		return d.finish(Command{}, CycleRecord{Status: StatusInputError, SpeedMPS: speed})
	}

	xs, ys := frame.Unzip(local)
	coeffs, err := path.Fit(xs, ys, refDegree)
	if err != nil {
		d.fitErrors.Add()
		monitoring.Logf("cycle %d: %v, emitting neutral command", d.cycle, err)
		return d.finish(Command{}, CycleRecord{Status: StatusFitError, SpeedMPS: speed})
	}

	state := d.est.Estimate(coeffs, speed, d.applied)

	start := time.Now()
	sol, err := d.opt.Solve(state, coeffs)
	solveMillis := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		d.solveFailures.Add()
		monitoring.Logf("cycle %d: %v, applying safe fallback", d.cycle, err)
		fallback := Command{Throttle: fallbackBrake}
		fallback.ReferenceX, fallback.ReferenceY = frame.Unzip(local)
		d.applied = mpc.Control{Steer: 0, Accel: fallbackBrake}
		return d.finish(fallback, CycleRecord{
			Status:      StatusSolveFailure,
			Throttle:    fallbackBrake,
			CrossTrack:  state.CrossTrack,
			HeadingErr:  state.HeadingErr,
			SpeedMPS:    speed,
			SolveMillis: solveMillis,
		})
	}

	cmd := extract(sol, local, d.cfg.GetSteerLimitRad())
	d.applied = sol.Controls[0]
	return d.finish(cmd, CycleRecord{
		Status:      StatusOK,
		Steering:    cmd.SteeringAngle,
		Throttle:    cmd.Throttle,
		CrossTrack:  state.CrossTrack,
		HeadingErr:  state.HeadingErr,
		SpeedMPS:    speed,
		SolveMillis: solveMillis,
	})
}

func (d *Driver) finish(cmd Command, rec CycleRecord) Command {
	if d.rec != nil {
		rec.Cycle = d.cycle
		if err := d.rec.Record(rec); err != nil {
			monitoring.Logf("cycle %d: failed to record: %v", d.cycle, err)
		}
	}
	return cmd
}
