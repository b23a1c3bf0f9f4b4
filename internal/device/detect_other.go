//go:build !linux

package device

// Detect builds a device with a conservative fixed capacity on platforms
// without sysinfo.
func Detect() *Device {
	return New("cpu", fallbackCapacity)
}
