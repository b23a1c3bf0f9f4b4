package device

import (
	"errors"
	"testing"
)

func TestReserveRelease(t *testing.T) {
	d := New("test", 100)

	if err := d.Reserve(60); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if d.Allocated() != 60 {
		t.Errorf("expected 60 allocated, got %d", d.Allocated())
	}

	d.Release(20)
	if d.Allocated() != 40 {
		t.Errorf("expected 40 allocated, got %d", d.Allocated())
	}
	if d.PeakAllocated() != 60 {
		t.Errorf("expected peak 60, got %d", d.PeakAllocated())
	}
}

func TestReserveOutOfMemory(t *testing.T) {
	d := New("test", 100)
	if err := d.Reserve(101); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	// A failed reservation leaves accounting untouched.
	if d.Allocated() != 0 || d.PeakAllocated() != 0 {
		t.Errorf("failed reserve changed accounting: used %d, peak %d", d.Allocated(), d.PeakAllocated())
	}

	if err := d.Reserve(100); err != nil {
		t.Fatalf("exact-fit reserve: %v", err)
	}
	if err := d.Reserve(1); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("expected ErrOutOfMemory on full device, got %v", err)
	}
}

func TestResetPeakStats(t *testing.T) {
	d := New("test", 100)
	if err := d.Reserve(80); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	d.Release(50)
	d.ResetPeakStats()
	if d.PeakAllocated() != 30 {
		t.Errorf("expected peak to reset to live usage 30, got %d", d.PeakAllocated())
	}

	if err := d.Reserve(40); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if d.PeakAllocated() != 70 {
		t.Errorf("expected peak 70, got %d", d.PeakAllocated())
	}
}

func TestDetect(t *testing.T) {
	d := Detect()
	if d.Capacity() <= 0 {
		t.Errorf("expected positive detected capacity, got %d", d.Capacity())
	}
	if d.Name() == "" {
		t.Error("expected a device name")
	}
}
