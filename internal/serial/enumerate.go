// internal/serial/enumerate.go
package serial

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	DefaultSysfsRoot = "/sys/class/tty"
	DefaultDevDir    = "/dev"
)

// SysfsEnumerator lists tty devices from sysfs and reads the USB
// manufacturer string of the device behind each one.
type SysfsEnumerator struct {
	Root   string // defaults to /sys/class/tty
	DevDir string // defaults to /dev
}

func (e SysfsEnumerator) Ports() ([]PortInfo, error) {
	root := e.Root
	if root == "" {
		root = DefaultSysfsRoot
	}
	devDir := e.DevDir
	if devDir == "" {
		devDir = DefaultDevDir
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("serial: list %s: %w", root, err)
	}

	var out []PortInfo
	for _, ent := range entries {
		// Virtual terminals have no backing device.
		dev, err := filepath.EvalSymlinks(filepath.Join(root, ent.Name(), "device"))
		if err != nil {
			continue
		}
		out = append(out, PortInfo{
			Path:         filepath.Join(devDir, ent.Name()),
			Manufacturer: usbAttribute(dev, "manufacturer"),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// usbAttribute walks up from the tty's interface directory to the USB
// device directory that carries the attribute.
func usbAttribute(dir, name string) string {
	for i := 0; i < 3; i++ {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return strings.TrimSpace(string(b))
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// findPort returns the first port made by manufacturer.
func findPort(ports []PortInfo, manufacturer string) (PortInfo, bool) {
	for _, p := range ports {
		if p.Manufacturer == manufacturer {
			return p, true
		}
	}
	return PortInfo{}, false
}
