// internal/units/units.go
package units

import "math"

// Drive geometry. Fixed by the winch hardware, not configurable.
const (
	// RevolutionsPerMeter of the encoder shaft per meter of travel.
	// 14.16 m from the floor reads ~120000 counts.
	RevolutionsPerMeter = 16.818

	// EncoderResolution is counts per encoder revolution.
	EncoderResolution = 256

	// CountsPerMeter is encoder counts per meter of travel.
	CountsPerMeter = RevolutionsPerMeter * EncoderResolution
)

// MetersToEncoderUnits converts a travel distance to the nearest encoder count.
func MetersToEncoderUnits(meters float64) int {
	return int(math.Round(meters * CountsPerMeter))
}

// EncoderUnitsToMeters converts an encoder count to meters.
func EncoderUnitsToMeters(units int) float64 {
	return float64(units) / CountsPerMeter
}
