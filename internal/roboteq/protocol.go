// internal/roboteq/protocol.go
package roboteq

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Channel is the motor channel every command addresses. Single-channel controller.
const Channel = 1

// Runtime commands (!).
const (
	CmdSpeed            = "S"
	CmdAcceleration     = "AC"
	CmdDeceleration     = "DC"
	CmdPosition         = "P"
	CmdPositionRelative = "PR"
)

// Runtime queries (?).
const (
	QueryEncoderCounter     = "C" // encoder counter absolute
	QuerySpeed              = "S"
	QueryVolts              = "V"  // volts * 10
	QueryMotorAmps          = "A"  // amps * 10
	QueryBatteryAmps        = "BA" // amps * 10
	QueryDestinationReached = "DR"
	QueryFaultFlags         = "FF"
	QueryRuntimeStatus      = "FM"
	QueryStatusFlags        = "FS"
)

// ConfigEcho is the echo-off configuration item. 0 = echo on, 1 = echo off.
const ConfigEcho = "ECHOF"

var (
	ErrMalformedLine = errors.New("roboteq: malformed response line")
	ErrUnexpectedTag = errors.New("roboteq: unexpected response tag")
)

// FormatCommand builds a runtime command line: "!<CMD> 1 <value>".
func FormatCommand(cmd string, value int) string {
	return fmt.Sprintf("!%s %d %d", cmd, Channel, value)
}

// FormatQuery builds a runtime query line: "?<CMD> 1".
func FormatQuery(query string) string {
	return fmt.Sprintf("?%s %d", query, Channel)
}

// FormatConfig builds a configuration line: "^<CMD> <value>".
func FormatConfig(item string, value int) string {
	return fmt.Sprintf("^%s %d", item, value)
}

// Tag is the correlation tag a query's response carries.
func Tag(query string) string {
	return strings.ToLower(query)
}

// Response is one parsed "<TAG>=<value>[:<value>...]" line.
type Response struct {
	Tag    string // lowercased
	Value  string // first value
	Values []string
}

// Int parses the first value as a device integer.
func (r Response) Int() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(r.Value))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformedLine, r.Value)
	}
	return n, nil
}

// ParseLine decodes a response line. Trailing CR/LF is ignored.
func ParseLine(line string) (Response, error) {
	line = strings.TrimSpace(line)

	field, payload, ok := strings.Cut(line, "=")
	if !ok || field == "" {
		return Response{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	values := strings.Split(payload, ":")
	return Response{
		Tag:    strings.ToLower(strings.TrimSpace(field)),
		Value:  values[0],
		Values: values,
	}, nil
}

// ResponseTag extracts the correlation tag of a response line.
func ResponseTag(line string) (string, bool) {
	resp, err := ParseLine(line)
	if err != nil {
		return "", false
	}
	return resp.Tag, true
}

// IsEcho reports lines that are not query responses: echoed command lines
// and the "+"/"-" acknowledgements the controller sends for commands.
func IsEcho(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	switch line[0] {
	case '!', '?', '^', '%', '~', '#':
		return true
	}
	return line == "+" || line == "-"
}
