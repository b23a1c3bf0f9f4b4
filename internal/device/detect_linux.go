//go:build linux

package device

import "golang.org/x/sys/unix"

// Detect builds a device sized to the host's total memory, falling back to
// a fixed capacity when sysinfo is unavailable.
func Detect() *Device {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return New("cpu", fallbackCapacity)
	}
	total := int64(info.Totalram) * int64(info.Unit)
	if total <= 0 {
		total = fallbackCapacity
	}
	return New("cpu", total)
}
