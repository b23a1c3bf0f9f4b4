package autobatch

import (
	"errors"
	"math"
	"testing"

	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

func TestMetricAtoms(t *testing.T) {
	got, err := Metric(cube(7, 4), potential.ScalesWithAtoms)
	if err != nil {
		t.Fatalf("metric: %v", err)
	}
	if got != 7 {
		t.Errorf("expected 7, got %g", got)
	}
}

func TestMetricAtomsDensity(t *testing.T) {
	// 8 atoms in a 10^3 cell: number density is 8 per 1000 volume units,
	// so the metric is n * density = 8 * 8.
	got, err := Metric(cube(8, 10), potential.ScalesWithAtomsDensity)
	if err != nil {
		t.Fatalf("metric: %v", err)
	}
	if math.Abs(got-64) > 1e-9 {
		t.Errorf("expected 64, got %g", got)
	}
}

func TestMetricZeroVolume(t *testing.T) {
	s := cube(4, 0)
	if _, err := Metric(s, potential.ScalesWithAtomsDensity); !errors.Is(err, state.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestMetricInvalidKind(t *testing.T) {
	if _, err := Metric(cube(4, 4), potential.Scaling("n_bonds")); !errors.Is(err, state.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestMetricsReportsIndex(t *testing.T) {
	_, err := Metrics([]*state.SimState{cube(4, 4), cube(4, 0)}, potential.ScalesWithAtomsDensity)
	if err == nil || !errors.Is(err, state.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
