// internal/serial/driver_goburrow.go
package serial

import (
	"errors"
	"time"

	gserial "github.com/goburrow/serial"
)

type goburrowPort struct {
	gserial.Port
	reader blockingReader
}

func (p *goburrowPort) Read(b []byte) (int, error) {
	return p.reader.Read(b)
}

func openGoburrow(readTimeout time.Duration) Opener {
	return func(path string, baud int) (Port, error) {
		port, err := gserial.Open(&gserial.Config{
			Address:  path,
			BaudRate: baud,
			DataBits: 8,
			StopBits: 1,
			Parity:   "N",
			Timeout:  readTimeout,
		})
		if err != nil {
			return nil, err
		}

		return &goburrowPort{
			Port: port,
			reader: blockingReader{
				path: path,
				read: port.Read,
				idle: func(n int, err error) bool {
					return n == 0 && (err == nil || errors.Is(err, gserial.ErrTimeout))
				},
			},
		}, nil
	}
}
