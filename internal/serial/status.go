// internal/serial/status.go
package serial

// Status is the lifecycle state of the serial session.
type Status int

const (
	StatusInitializing Status = iota
	StatusSearching
	StatusConnecting
	StatusConnected
	StatusDisconnected
	StatusError
)

// String returns the operator-facing label.
func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusSearching:
		return "not found, searching"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected, reconnecting"
	case StatusError:
		return "error connecting, reconnecting"
	default:
		return "unknown"
	}
}

// Statuses lists every status in declaration order.
func Statuses() []Status {
	return []Status{
		StatusInitializing,
		StatusSearching,
		StatusConnecting,
		StatusConnected,
		StatusDisconnected,
		StatusError,
	}
}
