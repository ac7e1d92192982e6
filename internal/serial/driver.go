// internal/serial/driver.go
package serial

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Supported port drivers.
const (
	DriverGoburrow = "goburrow"
	DriverTarm     = "tarm"
)

// NewOpener returns the Opener for a driver name.
func NewOpener(driver string, readTimeout time.Duration) (Opener, error) {
	switch driver {
	case "", DriverGoburrow:
		return openGoburrow(readTimeout), nil
	case DriverTarm:
		return openTarm(readTimeout), nil
	default:
		return nil, fmt.Errorf("serial: unknown driver %q", driver)
	}
}

// blockingReader turns a driver's timed reads into a blocking Read.
// idle reports reads that timed out without data. While idle, the device
// node is checked so an unplugged adapter surfaces as an error.
type blockingReader struct {
	path string
	read func([]byte) (int, error)
	idle func(n int, err error) bool
}

func (r blockingReader) Read(b []byte) (int, error) {
	for {
		n, err := r.read(b)
		if !r.idle(n, err) {
			return n, err
		}
		if _, statErr := os.Stat(r.path); statErr != nil {
			return 0, fmt.Errorf("serial: %s vanished: %w", r.path, io.ErrUnexpectedEOF)
		}
	}
}
