// internal/serial/port.go
package serial

import "io"

// Port is an open serial device.
// Read blocks until data arrives or the port fails; read timeouts are
// absorbed by the driver wrapper.
type Port interface {
	io.ReadWriteCloser
}

// PortInfo describes one enumerated serial port.
type PortInfo struct {
	Path         string
	Manufacturer string
}

// Enumerator lists the serial ports currently present.
type Enumerator interface {
	Ports() ([]PortInfo, error)
}

// Opener opens a port at the given baud rate.
// ONE attempt per call: retries belong to the session.
type Opener func(path string, baud int) (Port, error)
