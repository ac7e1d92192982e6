// internal/serial/session.go
package serial

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tamzrod/actuator-supervisor/internal/logging"
)

// LineEnding terminates every line written to the device.
// Lines read from the device are terminated by CR alone.
const LineEnding = "\r\n"

var (
	ErrNotOpen      = errors.New("serial: port not open")
	ErrNoDevice     = errors.New("serial: no matching device")
	ErrDisconnected = errors.New("serial: disconnected")
	ErrQueryTimeout = errors.New("serial: query timed out")
)

// Config is the session's immutable runtime config.
type Config struct {
	// Manufacturer is matched against enumerated ports to find the device.
	Manufacturer  string
	BaudRate      int
	RetryInterval time.Duration

	// QueryTimeout bounds every query. Zero waits forever.
	QueryTimeout time.Duration

	// Echo reports lines that are the device repeating traffic back. They are dropped.
	Echo func(line string) bool

	// Tag extracts a response line's correlation tag.
	// Lines it rejects are dropped.
	Tag func(line string) (string, bool)
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = logging.OrNop(l) }
}

// WithStatusHook is called after every status change.
func WithStatusHook(fn func(Status)) Option {
	return func(s *Session) { s.onStatus = fn }
}

// WithQueryHook is called once per finished query with "ok", "timeout",
// "disconnected" or "error".
func WithQueryHook(fn func(outcome string)) Option {
	return func(s *Session) { s.onQuery = fn }
}

// Session owns the single connection to the controller.
// All access to the port goes through it: writes are serialized and
// responses are routed to the query that asked for them.
type Session struct {
	cfg  Config
	enum Enumerator
	open Opener

	log      *slog.Logger
	onStatus func(Status)
	onQuery  func(string)

	connMu sync.Mutex // one connect attempt at a time

	mu      sync.Mutex
	link    *link
	status  Status
	pending []*pendingQuery
	token   uint64
}

// New creates a closed session. Nothing is opened until Connect or Run.
func New(cfg Config, enum Enumerator, open Opener, opts ...Option) (*Session, error) {
	if cfg.Manufacturer == "" {
		return nil, errors.New("serial: manufacturer required")
	}
	if cfg.BaudRate <= 0 {
		return nil, errors.New("serial: baud rate must be > 0")
	}
	if cfg.RetryInterval <= 0 {
		return nil, errors.New("serial: retry interval must be > 0")
	}
	if enum == nil || open == nil {
		return nil, errors.New("serial: enumerator and opener required")
	}
	if cfg.Echo == nil {
		cfg.Echo = func(string) bool { return false }
	}
	if cfg.Tag == nil {
		cfg.Tag = func(string) (string, bool) { return "", true }
	}

	s := &Session{
		cfg:    cfg,
		enum:   enum,
		open:   open,
		log:    logging.NewNop(),
		status: StatusInitializing,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IsOpen reports whether a port is currently held open.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link != nil
}

// Status returns the current lifecycle status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Connect makes ONE attempt to find and open the device.
// It is a no-op when the port is already open.
func (s *Session) Connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.IsOpen() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ports, err := s.enum.Ports()
	if err != nil {
		s.setStatus(StatusSearching)
		return fmt.Errorf("serial: enumerate: %w", err)
	}

	info, ok := findPort(ports, s.cfg.Manufacturer)
	if !ok {
		s.setStatus(StatusSearching)
		return fmt.Errorf("%w: manufacturer=%s", ErrNoDevice, s.cfg.Manufacturer)
	}

	s.setStatus(StatusConnecting)

	port, err := s.open(info.Path, s.cfg.BaudRate)
	if err != nil {
		s.setStatus(StatusError)
		return fmt.Errorf("serial: open %s: %w", info.Path, err)
	}

	l := newLink(info.Path, port)

	s.mu.Lock()
	s.link = l
	s.mu.Unlock()

	s.log.Info("serial port opened", "port", info.Path, "baud", s.cfg.BaudRate)
	s.setStatus(StatusConnected)

	go s.readLoop(l)
	return nil
}

// Close releases the port. Outstanding queries fail with ErrDisconnected.
func (s *Session) Close() error {
	s.mu.Lock()
	l := s.link
	s.link = nil
	pending := s.takePendingLocked()
	s.mu.Unlock()

	failAll(pending, ErrDisconnected)
	if l == nil {
		return nil
	}
	return l.shutdown()
}

// Send writes one line and does not wait for a response.
func (s *Session) Send(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l := s.current()
	if l == nil {
		s.log.Info("ignored command", "cmd", line)
		return ErrNotOpen
	}

	if err := l.write(line); err != nil {
		s.log.Warn("command write failed", "cmd", line, "err", err)
		return err
	}
	return nil
}

// ---- internal ----

func (s *Session) current() *link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link
}

// linkDone returns a channel closed when the current port goes away,
// or nil when no port is open.
func (s *Session) linkDone() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.link == nil {
		return nil
	}
	return s.link.done
}

// setStatus records a status and logs only actual changes.
func (s *Session) setStatus(next Status) {
	s.mu.Lock()
	prev := s.status
	s.status = next
	s.mu.Unlock()

	if prev == next {
		return
	}
	s.log.Info("roboteq link status", "status", next.String())
	if s.onStatus != nil {
		s.onStatus(next)
	}
}

func (s *Session) readLoop(l *link) {
	sc := bufio.NewScanner(l.port)
	sc.Split(scanCR)

	for sc.Scan() {
		s.dispatch(strings.TrimSpace(sc.Text()))
	}

	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	s.lost(l, err)
}

// lost handles an unexpected end of the read side.
func (s *Session) lost(l *link, cause error) {
	s.mu.Lock()
	if s.link != l {
		// Closed on purpose.
		s.mu.Unlock()
		return
	}
	s.link = nil
	pending := s.takePendingLocked()
	s.mu.Unlock()

	_ = l.shutdown()
	failAll(pending, ErrDisconnected)

	s.log.Warn("serial port lost", "port", l.path, "err", cause)
	s.setStatus(StatusDisconnected)
}

// scanCR splits device output on CR.
func scanCR(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\r'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ---- link ----

// link is one open port and its lifetime.
type link struct {
	path string
	port Port

	wmu  sync.Mutex
	once sync.Once
	done chan struct{}
}

func newLink(path string, port Port) *link {
	return &link{path: path, port: port, done: make(chan struct{})}
}

func (l *link) write(line string) error {
	l.wmu.Lock()
	defer l.wmu.Unlock()

	if _, err := io.WriteString(l.port, line+LineEnding); err != nil {
		return fmt.Errorf("serial: write %s: %w", l.path, err)
	}
	return nil
}

func (l *link) shutdown() error {
	var err error
	l.once.Do(func() {
		err = l.port.Close()
		close(l.done)
	})
	return err
}
