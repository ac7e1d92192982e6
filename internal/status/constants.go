// internal/status/constants.go
package status

// LowVoltage is reported in place of the link status once the latch has tripped.
const LowVoltage = "Low Voltage"
