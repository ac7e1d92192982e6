package serial

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeEnum struct {
	mu    sync.Mutex
	ports []PortInfo
	err   error
}

func (f *fakeEnum) Ports() ([]PortInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ports, f.err
}

func (f *fakeEnum) set(ports ...PortInfo) {
	f.mu.Lock()
	f.ports = ports
	f.mu.Unlock()
}

// fakeDevice is the controller side of an in-memory port.
type fakeDevice struct {
	conn    net.Conn
	respond func(line string) []string

	mu       sync.Mutex
	received []string
}

func (d *fakeDevice) serve() {
	r := bufio.NewReader(d.conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		d.mu.Lock()
		d.received = append(d.received, line)
		d.mu.Unlock()

		if d.respond == nil {
			continue
		}
		for _, out := range d.respond(line) {
			if _, err := d.conn.Write([]byte(out + "\r")); err != nil {
				return
			}
		}
	}
}

func (d *fakeDevice) lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.received...)
}

type fakeOpener struct {
	mu      sync.Mutex
	calls   int
	err     error
	respond func(line string) []string
	devices []*fakeDevice
}

func (o *fakeOpener) open(path string, baud int) (Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls++
	if o.err != nil {
		return nil, o.err
	}

	host, dev := net.Pipe()
	d := &fakeDevice{conn: dev, respond: o.respond}
	o.devices = append(o.devices, d)
	go d.serve()
	return host, nil
}

func (o *fakeOpener) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

func (o *fakeOpener) device(i int) *fakeDevice {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.devices[i]
}

// test-local protocol helpers; the real ones live in the roboteq package.
func testEcho(line string) bool {
	return strings.HasPrefix(line, "?") || strings.HasPrefix(line, "!") || line == "+" || line == "-"
}

func testTag(line string) (string, bool) {
	field, _, ok := strings.Cut(line, "=")
	if !ok {
		return "", false
	}
	return strings.ToLower(field), true
}

var roboteqPort = PortInfo{Path: "/dev/ttyACM0", Manufacturer: "Roboteq"}

func newTestSession(t *testing.T, enum *fakeEnum, op *fakeOpener, opts ...Option) *Session {
	t.Helper()
	s, err := New(Config{
		Manufacturer:  "Roboteq",
		BaudRate:      115200,
		RetryInterval: 10 * time.Millisecond,
		QueryTimeout:  200 * time.Millisecond,
		Echo:          testEcho,
		Tag:           testTag,
	}, enum, op.open, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// ---- tests ----

func TestNew_Validation(t *testing.T) {
	op := &fakeOpener{}
	_, err := New(Config{BaudRate: 1, RetryInterval: time.Second}, &fakeEnum{}, op.open)
	assert.Error(t, err)

	_, err = New(Config{Manufacturer: "x", RetryInterval: time.Second}, &fakeEnum{}, op.open)
	assert.Error(t, err)

	_, err = New(Config{Manufacturer: "x", BaudRate: 1}, &fakeEnum{}, op.open)
	assert.Error(t, err)

	_, err = New(Config{Manufacturer: "x", BaudRate: 1, RetryInterval: time.Second}, nil, op.open)
	assert.Error(t, err)
}

func TestConnect_NoMatchingDeviceSearches(t *testing.T) {
	enum := &fakeEnum{ports: []PortInfo{{Path: "/dev/ttyUSB0", Manufacturer: "FTDI"}}}
	op := &fakeOpener{}
	s := newTestSession(t, enum, op)

	assert.Equal(t, StatusInitializing, s.Status())

	err := s.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNoDevice)
	assert.Equal(t, StatusSearching, s.Status())
	assert.False(t, s.IsOpen())
	assert.Equal(t, 0, op.callCount())
}

func TestConnect_EnumerateErrorSearches(t *testing.T) {
	enum := &fakeEnum{err: errors.New("no sysfs")}
	s := newTestSession(t, enum, &fakeOpener{})

	assert.Error(t, s.Connect(context.Background()))
	assert.Equal(t, StatusSearching, s.Status())
}

func TestConnect_OpenFailure(t *testing.T) {
	enum := &fakeEnum{ports: []PortInfo{roboteqPort}}
	op := &fakeOpener{err: errors.New("permission denied")}
	s := newTestSession(t, enum, op)

	assert.Error(t, s.Connect(context.Background()))
	assert.Equal(t, StatusError, s.Status())
	assert.False(t, s.IsOpen())
}

func TestConnect_SelectsManufacturerAndIsIdempotent(t *testing.T) {
	enum := &fakeEnum{ports: []PortInfo{
		{Path: "/dev/ttyUSB0", Manufacturer: "FTDI"},
		roboteqPort,
	}}
	op := &fakeOpener{}

	var seen []Status
	s := newTestSession(t, enum, op, WithStatusHook(func(st Status) { seen = append(seen, st) }))

	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Connect(context.Background()))

	assert.True(t, s.IsOpen())
	assert.Equal(t, StatusConnected, s.Status())
	assert.Equal(t, 1, op.callCount())
	assert.Equal(t, []Status{StatusConnecting, StatusConnected}, seen)
}

func TestStatusHook_OnlyOnChange(t *testing.T) {
	enum := &fakeEnum{}
	var seen []Status
	s := newTestSession(t, enum, &fakeOpener{}, WithStatusHook(func(st Status) { seen = append(seen, st) }))

	for i := 0; i < 3; i++ {
		_ = s.Connect(context.Background())
	}
	assert.Equal(t, []Status{StatusSearching}, seen)
}

func TestSendAndQuery_WhenClosed(t *testing.T) {
	s := newTestSession(t, &fakeEnum{}, &fakeOpener{})

	assert.ErrorIs(t, s.Send(context.Background(), "!S 1 100"), ErrNotOpen)

	_, err := s.Query(context.Background(), "?V 1", "v")
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestSend_WritesCRLFLine(t *testing.T) {
	enum := &fakeEnum{ports: []PortInfo{roboteqPort}}
	op := &fakeOpener{}
	s := newTestSession(t, enum, op)
	require.NoError(t, s.Connect(context.Background()))

	require.NoError(t, s.Send(context.Background(), "!P 1 400"))

	assert.Eventually(t, func() bool {
		lines := op.device(0).lines()
		return len(lines) == 1 && lines[0] == "!P 1 400"
	}, time.Second, 5*time.Millisecond)
}

func TestQuery_IgnoresEchoAndAck(t *testing.T) {
	enum := &fakeEnum{ports: []PortInfo{roboteqPort}}
	op := &fakeOpener{respond: func(line string) []string {
		if line == "?V 1" {
			return []string{line, "+", "V=245:250:4950"}
		}
		return nil
	}}
	s := newTestSession(t, enum, op)
	require.NoError(t, s.Connect(context.Background()))

	got, err := s.Query(context.Background(), "?V 1", "v")
	require.NoError(t, err)
	assert.Equal(t, "V=245:250:4950", got)
	assert.Equal(t, 0, s.Pending())
}

func TestQuery_SkipsStrayAndDuplicateLines(t *testing.T) {
	enum := &fakeEnum{ports: []PortInfo{roboteqPort}}
	op := &fakeOpener{respond: func(line string) []string {
		switch line {
		case "?C 1":
			// a late duplicate of an earlier volts answer arrives first
			return []string{"V=245", "garbage", "C=40900", "C=40900"}
		case "?V 1":
			return []string{"V=240"}
		}
		return nil
	}}
	s := newTestSession(t, enum, op)
	require.NoError(t, s.Connect(context.Background()))

	pos, err := s.Query(context.Background(), "?C 1", "c")
	require.NoError(t, err)
	assert.Equal(t, "C=40900", pos)

	volts, err := s.Query(context.Background(), "?V 1", "v")
	require.NoError(t, err)
	assert.Equal(t, "V=240", volts)
}

func TestQuery_TimesOutAndForgets(t *testing.T) {
	enum := &fakeEnum{ports: []PortInfo{roboteqPort}}
	var outcomes []string
	var mu sync.Mutex
	s := newTestSession(t, enum, &fakeOpener{}, WithQueryHook(func(o string) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}))
	require.NoError(t, s.Connect(context.Background()))

	_, err := s.Query(context.Background(), "?FF 1", "ff")
	assert.ErrorIs(t, err, ErrQueryTimeout)
	assert.Equal(t, 0, s.Pending())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"timeout"}, outcomes)
}

func TestQuery_ContextCancel(t *testing.T) {
	enum := &fakeEnum{ports: []PortInfo{roboteqPort}}
	s := newTestSession(t, enum, &fakeOpener{})
	require.NoError(t, s.Connect(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Query(ctx, "?FS 1", "fs")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, s.Pending())
}

func TestDisconnect_FailsPendingAndReportsStatus(t *testing.T) {
	enum := &fakeEnum{ports: []PortInfo{roboteqPort}}
	op := &fakeOpener{}
	s := newTestSession(t, enum, op)
	require.NoError(t, s.Connect(context.Background()))

	errc := make(chan error, 1)
	go func() {
		_, err := s.Query(context.Background(), "?C 1", "c")
		errc <- err
	}()

	require.Eventually(t, func() bool { return s.Pending() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return len(op.device(0).lines()) == 1 }, time.Second, time.Millisecond)

	// unplug
	_ = op.device(0).conn.Close()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrDisconnected)
	case <-time.After(time.Second):
		t.Fatal("query not released on disconnect")
	}

	assert.Eventually(t, func() bool { return s.Status() == StatusDisconnected }, time.Second, time.Millisecond)
	assert.False(t, s.IsOpen())
}

func TestRun_RetriesUntilFoundAndReconnects(t *testing.T) {
	enum := &fakeEnum{}
	op := &fakeOpener{}
	s := newTestSession(t, enum, op)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return s.Status() == StatusSearching }, time.Second, time.Millisecond)

	enum.set(roboteqPort)
	require.Eventually(t, func() bool { return s.IsOpen() }, time.Second, time.Millisecond)

	_ = op.device(0).conn.Close()
	require.Eventually(t, func() bool { return op.callCount() == 2 && s.IsOpen() }, time.Second, time.Millisecond)
	assert.Equal(t, StatusConnected, s.Status())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, s.IsOpen())
}

func TestScanCR(t *testing.T) {
	sc := bufio.NewScanner(strings.NewReader("V=1\r\nC=2\rFF=0"))
	sc.Split(scanCR)

	var got []string
	for sc.Scan() {
		got = append(got, strings.TrimSpace(sc.Text()))
	}
	assert.Equal(t, []string{"V=1", "C=2", "FF=0"}, got)
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "connected", StatusConnected.String())
	assert.Equal(t, "not found, searching", StatusSearching.String())
	assert.Equal(t, "disconnected, reconnecting", StatusDisconnected.String())
	assert.Equal(t, "error connecting, reconnecting", StatusError.String())
	assert.Len(t, Statuses(), 6)
}
