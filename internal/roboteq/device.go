// internal/roboteq/device.go
package roboteq

import (
	"context"
	"fmt"
)

// Link is the line transport the device talks over.
// Send does not wait for a response; Query returns the raw response line
// carrying the given tag.
type Link interface {
	Send(ctx context.Context, line string) error
	Query(ctx context.Context, line, tag string) (string, error)
}

// Device exposes the controller's command set as typed operations.
// Values are device-native: speed/accel/decel in controller units,
// position in encoder counts, volts and amps in tenths.
type Device struct {
	link Link
}

// New wraps a link.
func New(link Link) *Device {
	return &Device{link: link}
}

// ---- setters (fire-and-forget) ----

func (d *Device) SetSpeed(ctx context.Context, speed int) error {
	return d.command(ctx, CmdSpeed, speed)
}

func (d *Device) SetAcceleration(ctx context.Context, accel int) error {
	return d.command(ctx, CmdAcceleration, accel)
}

func (d *Device) SetDeceleration(ctx context.Context, decel int) error {
	return d.command(ctx, CmdDeceleration, decel)
}

// SetPosition moves to an absolute encoder count.
func (d *Device) SetPosition(ctx context.Context, counts int) error {
	return d.command(ctx, CmdPosition, counts)
}

// SetPositionRelative moves by a signed number of encoder counts.
func (d *Device) SetPositionRelative(ctx context.Context, delta int) error {
	return d.command(ctx, CmdPositionRelative, delta)
}

// SetEcho turns command echo on or off.
func (d *Device) SetEcho(ctx context.Context, enabled bool) error {
	off := 1
	if enabled {
		off = 0
	}
	return d.link.Send(ctx, FormatConfig(ConfigEcho, off))
}

// ---- getters (request/response) ----

// GetPosition returns the absolute encoder counter.
func (d *Device) GetPosition(ctx context.Context) (int, error) {
	return d.queryInt(ctx, QueryEncoderCounter)
}

func (d *Device) GetSpeed(ctx context.Context) (int, error) {
	return d.queryInt(ctx, QuerySpeed)
}

// GetVolts returns volts * 10.
func (d *Device) GetVolts(ctx context.Context) (int, error) {
	return d.queryInt(ctx, QueryVolts)
}

// GetMotorAmps returns amps * 10.
func (d *Device) GetMotorAmps(ctx context.Context) (int, error) {
	return d.queryInt(ctx, QueryMotorAmps)
}

// GetBatteryAmps returns amps * 10.
func (d *Device) GetBatteryAmps(ctx context.Context) (int, error) {
	return d.queryInt(ctx, QueryBatteryAmps)
}

func (d *Device) GetDestinationReached(ctx context.Context) (int, error) {
	return d.queryInt(ctx, QueryDestinationReached)
}

// GetFaults returns the fault flag bits.
func (d *Device) GetFaults(ctx context.Context) (int, error) {
	return d.queryInt(ctx, QueryFaultFlags)
}

// GetRuntimeStatus returns the runtime status flag bits.
func (d *Device) GetRuntimeStatus(ctx context.Context) (int, error) {
	return d.queryInt(ctx, QueryRuntimeStatus)
}

// GetStatus returns the status flag bits.
func (d *Device) GetStatus(ctx context.Context) (int, error) {
	return d.queryInt(ctx, QueryStatusFlags)
}

// Get issues a query and returns the full parsed response.
func (d *Device) Get(ctx context.Context, query string) (Response, error) {
	tag := Tag(query)

	line, err := d.link.Query(ctx, FormatQuery(query), tag)
	if err != nil {
		return Response{}, err
	}

	resp, err := ParseLine(line)
	if err != nil {
		return Response{}, err
	}
	if resp.Tag != tag {
		return Response{}, fmt.Errorf("%w: got=%s want=%s", ErrUnexpectedTag, resp.Tag, tag)
	}
	return resp, nil
}

// ---- internal helpers ----

func (d *Device) command(ctx context.Context, cmd string, value int) error {
	return d.link.Send(ctx, FormatCommand(cmd, value))
}

func (d *Device) queryInt(ctx context.Context, query string) (int, error) {
	resp, err := d.Get(ctx, query)
	if err != nil {
		return 0, err
	}
	return resp.Int()
}
