// internal/status/snapshot.go
package status

// Snapshot is what the control surface reports about the supervisor.
// It holds no logic and is built fresh on every request.
type Snapshot struct {
	Active bool
	Link   string // serial session status label
	Open   bool
}
