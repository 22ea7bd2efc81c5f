package control

import (
	"github.com/banshee-data/pathtrack/internal/frame"
	"github.com/banshee-data/pathtrack/internal/mpc"
)

// steerToPlatform converts a model-frame steering angle to the
// platform's normalized command. The platform's positive-heading
// direction is the reverse of the model's, so the sign flips here and
// only here; the dynamics model stays convention-free.
func steerToPlatform(steer, steerLimit float64) float64 {
	return -steer / steerLimit
}

// extract selects the first actuator pair of the solved horizon as the
// command to apply now and packages the predicted trajectory (t > 0)
// and the body-frame reference line for display.
func extract(sol *mpc.Solution, reference []frame.Point, steerLimit float64) Command {
	cmd := Command{
		SteeringAngle: steerToPlatform(sol.Controls[0].Steer, steerLimit),
		Throttle:      sol.Controls[0].Accel,
		TrajectoryX:   make([]float64, 0, len(sol.States)-1),
		TrajectoryY:   make([]float64, 0, len(sol.States)-1),
	}
	for _, s := range sol.States[1:] {
		cmd.TrajectoryX = append(cmd.TrajectoryX, s.X)
		cmd.TrajectoryY = append(cmd.TrajectoryY, s.Y)
	}
	cmd.ReferenceX, cmd.ReferenceY = frame.Unzip(reference)
	return cmd
}
