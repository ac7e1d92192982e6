// internal/serial/driver_tarm.go
package serial

import (
	"errors"
	"io"
	"time"

	tserial "github.com/tarm/serial"
)

type tarmPort struct {
	*tserial.Port
	reader blockingReader
}

func (p *tarmPort) Read(b []byte) (int, error) {
	return p.reader.Read(b)
}

func openTarm(readTimeout time.Duration) Opener {
	return func(path string, baud int) (Port, error) {
		port, err := tserial.OpenPort(&tserial.Config{
			Name:        path,
			Baud:        baud,
			ReadTimeout: readTimeout,
		})
		if err != nil {
			return nil, err
		}

		return &tarmPort{
			Port: port,
			reader: blockingReader{
				path: path,
				read: port.Read,
				// tarm reports an expired read timeout as a zero-length EOF.
				idle: func(n int, err error) bool {
					return n == 0 && (err == nil || errors.Is(err, io.EOF))
				},
			},
		}, nil
	}
}
