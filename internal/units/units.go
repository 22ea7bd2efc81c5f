// Package units provides speed-unit constants and conversions for the
// telemetry boundary. The dynamics model runs in SI; simulators report
// speed in whatever unit they were built with (the reference simulator
// uses mph), so inbound speed is normalized once on receipt.
package units

// Unit constants
const (
	MPS  = "mps"
	MPH  = "mph"
	KMPH = "kmph"
	KPH  = "kph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MPS, MPH, KMPH, KPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mps, mph, kmph, kph"
}

// ToMPS converts a speed from the given source units to meters per
// second. Unknown units pass the value through unchanged.
func ToMPS(speed float64, sourceUnits string) float64 {
	switch sourceUnits {
	case MPS:
		return speed
	case MPH:
		return speed / 2.2369362920544
	case KMPH, KPH:
		return speed / 3.6
	default:
		return speed
	}
}

// FromMPS converts a speed in meters per second to the target units.
func FromMPS(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedMPS
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH, KPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}
