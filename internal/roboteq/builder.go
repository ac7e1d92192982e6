// internal/roboteq/builder.go
package roboteq

import (
	"time"

	cfg "github.com/tamzrod/actuator-supervisor/internal/config"
	"github.com/tamzrod/actuator-supervisor/internal/serial"
)

// Build constructs the serial session for a controller and the device on top of it.
// Nothing is opened here: the session connects when its Run loop starts.
func Build(d cfg.DeviceConfig, enum serial.Enumerator, opts ...serial.Option) (*serial.Session, *Device, error) {
	open, err := serial.NewOpener(d.Driver, time.Duration(d.ReadTimeoutMs)*time.Millisecond)
	if err != nil {
		return nil, nil, err
	}
	if enum == nil {
		enum = serial.SysfsEnumerator{}
	}

	sess, err := serial.New(
		serial.Config{
			Manufacturer:  d.Manufacturer,
			BaudRate:      d.BaudRate,
			RetryInterval: time.Duration(d.RetryIntervalMs) * time.Millisecond,
			QueryTimeout:  time.Duration(d.QueryTimeoutMs) * time.Millisecond,
			Echo:          IsEcho,
			Tag:           ResponseTag,
		},
		enum,
		open,
		opts...,
	)
	if err != nil {
		return nil, nil, err
	}

	return sess, New(sess), nil
}
