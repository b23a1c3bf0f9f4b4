// Package device models a single accelerator memory context as an
// accounting allocator: models reserve scratch bytes against a fixed
// capacity, and the peak counter backs forward-pass memory measurement.
package device

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfMemory reports a reservation that exceeds the device capacity.
// It is the value a memory-probe search terminates on; anywhere else it is
// a hard failure.
var ErrOutOfMemory = errors.New("device: out of memory")

// Device tracks live and peak allocations against a byte capacity.
// All methods are safe for concurrent use, but peak measurement is global
// to the device: do not interleave measurement with production forward
// passes.
type Device struct {
	name string

	mu       sync.Mutex
	capacity int64
	used     int64
	peak     int64
}

// New creates a device with the given byte capacity.
func New(name string, capacity int64) *Device {
	return &Device{name: name, capacity: capacity}
}

func (d *Device) Name() string { return d.name }

// Capacity returns the device's total memory in bytes.
func (d *Device) Capacity() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capacity
}

// Allocated returns the bytes currently reserved.
func (d *Device) Allocated() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.used
}

// PeakAllocated returns the high-water mark since the last ResetPeakStats.
func (d *Device) PeakAllocated() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.peak
}

// Reserve claims n bytes, failing with ErrOutOfMemory when the claim would
// exceed capacity. The failed claim leaves the accounting unchanged.
func (d *Device) Reserve(n int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.used+n > d.capacity {
		return fmt.Errorf("%w: %s has %d of %d bytes in use, cannot reserve %d",
			ErrOutOfMemory, d.name, d.used, d.capacity, n)
	}
	d.used += n
	if d.used > d.peak {
		d.peak = d.used
	}
	return nil
}

// Release returns n bytes to the device.
func (d *Device) Release(n int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.used -= n
	if d.used < 0 {
		d.used = 0
	}
}

// ResetPeakStats clears the high-water mark down to the live allocation.
func (d *Device) ResetPeakStats() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.peak = d.used
}

// EmptyCache drops any cached allocations. The accounting allocator holds
// no cache; the call exists so measurement code can follow the full
// clear-measure-read protocol against any device.
func (d *Device) EmptyCache() {}

// Synchronize blocks until outstanding device work completes. Forward
// passes on the accounting device are synchronous already.
func (d *Device) Synchronize() {}
