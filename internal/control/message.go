// Package control runs one control cycle end to end: body-frame
// transform, reference fit, state assembly, horizon solve, command
// extraction. The transport invokes ProcessCycle once per telemetry
// record; nothing here defines an event loop.
package control

// Telemetry is one inbound record from the driving platform. Waypoints
// and pose are in the global frame; speed is in the platform's units
// until the driver normalizes it.
type Telemetry struct {
	PtsX  []float64 `json:"ptsx"`
	PtsY  []float64 `json:"ptsy"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Psi   float64   `json:"psi"`
	Speed float64   `json:"speed"`
}

// Command is one outbound record: the normalized actuator pair plus the
// predicted and reference paths in the body frame for display.
type Command struct {
	SteeringAngle float64   `json:"steering_angle"`
	Throttle      float64   `json:"throttle"`
	TrajectoryX   []float64 `json:"trajectory_x"`
	TrajectoryY   []float64 `json:"trajectory_y"`
	ReferenceX    []float64 `json:"reference_x"`
	ReferenceY    []float64 `json:"reference_y"`
}
