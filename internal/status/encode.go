// internal/status/encode.go
package status

// Describe returns the single status label shown to operators.
// A tripped latch overrides whatever the serial link is doing.
func Describe(s Snapshot) string {
	if !s.Active {
		return LowVoltage
	}
	return s.Link
}
