// Package units provides shared constants and validation for wavelength units
package units

// Unit constants
const (
	M  = "m"
	UM = "um"
	NM = "nm"
	A  = "angstrom"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{M, UM, NM, A}

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
	return "m, um, nm, angstrom"
}

// FromMeters converts a wavelength from meters to the target units.
// Solver code and the database always work in meters.
func FromMeters(lambdaM float64, targetUnits string) float64 {
	switch targetUnits {
	case UM:
		return lambdaM * 1e6
	case NM:
		return lambdaM * 1e9
	case A:
		return lambdaM * 1e10
	case M:
		return lambdaM
	default:
		return lambdaM // default to meters if unknown unit
	}
}

// Label returns the axis label for the given unit.
func Label(unit string) string {
	switch unit {
	case UM:
		return "Wavelength (µm)"
	case NM:
		return "Wavelength (nm)"
	case A:
		return "Wavelength (Å)"
	default:
		return "Wavelength (m)"
	}
}
