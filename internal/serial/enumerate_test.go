package serial

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSysfsEnumerator(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "class", "tty")

	// USB device with an interface directory, as the kernel lays it out.
	usbDev := filepath.Join(base, "devices", "usb1", "1-1")
	iface := filepath.Join(usbDev, "1-1:1.0")
	require.NoError(t, os.MkdirAll(iface, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(usbDev, "manufacturer"), []byte("Roboteq\n"), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "ttyACM0"), 0o755))
	require.NoError(t, os.Symlink(iface, filepath.Join(root, "ttyACM0", "device")))

	// virtual terminal: no device link
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tty1"), 0o755))

	ports, err := SysfsEnumerator{Root: root, DevDir: "/dev"}.Ports()
	require.NoError(t, err)

	assert.Equal(t, []PortInfo{{Path: "/dev/ttyACM0", Manufacturer: "Roboteq"}}, ports)

	found, ok := findPort(ports, "Roboteq")
	assert.True(t, ok)
	assert.Equal(t, "/dev/ttyACM0", found.Path)

	_, ok = findPort(ports, "FTDI")
	assert.False(t, ok)
}

func TestSysfsEnumerator_MissingRoot(t *testing.T) {
	_, err := SysfsEnumerator{Root: filepath.Join(t.TempDir(), "nope")}.Ports()
	assert.Error(t, err)
}

func TestNewOpener(t *testing.T) {
	for _, name := range []string{"", DriverGoburrow, DriverTarm} {
		op, err := NewOpener(name, 100*time.Millisecond)
		assert.NoError(t, err, name)
		assert.NotNil(t, op, name)
	}

	_, err := NewOpener("usb-magic", time.Second)
	assert.Error(t, err)
}

func TestBlockingReader_SkipsIdleReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttyACM0")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	calls := 0
	r := blockingReader{
		path: path,
		read: func(b []byte) (int, error) {
			calls++
			if calls < 3 {
				return 0, nil
			}
			return copy(b, "V=1\r"), nil
		},
		idle: func(n int, err error) bool { return n == 0 && err == nil },
	}

	buf := make([]byte, 16)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "V=1\r", string(buf[:n]))
	assert.Equal(t, 3, calls)
}

func TestBlockingReader_DeviceVanished(t *testing.T) {
	r := blockingReader{
		path: filepath.Join(t.TempDir(), "gone"),
		read: func(b []byte) (int, error) { return 0, nil },
		idle: func(n int, err error) bool { return n == 0 && err == nil },
	}

	_, err := r.Read(make([]byte, 4))
	assert.Error(t, err)
}
