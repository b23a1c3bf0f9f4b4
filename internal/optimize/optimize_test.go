package optimize

import (
	"errors"
	"math"
	"testing"

	"github.com/Radical-AI/atomsim/internal/device"
	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

func dimer(r float64) *state.SimState {
	return &state.SimState{
		Positions: []float64{0, 0, 0, r, 0, 0},
		Masses:    []float64{1, 1},
		Species:   []int{0, 0},
		Segments:  []int{0, 0},
		Cell:      []float64{100, 0, 0, 0, 100, 0, 0, 0, 100},
		PBC:       false,
	}
}

func testModel() potential.Model {
	return potential.NewLennardJones(1.0, 1.0, device.New("test", 1<<30))
}

func relax(t *testing.T, opt Optimizer, s *state.SimState, steps int) {
	t.Helper()
	if err := opt.Init(s); err != nil {
		t.Fatalf("init: %v", err)
	}
	for i := 0; i < steps; i++ {
		if err := opt.Step(s); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestDescentRelaxesDimer(t *testing.T) {
	s := dimer(1.3)
	relax(t, NewDescent(testModel(), 0.01), s, 800)

	maxForce, err := s.PerSystemMaxForce()
	if err != nil {
		t.Fatalf("max force: %v", err)
	}
	if maxForce[0] > 0.01 {
		t.Errorf("descent left residual force %g", maxForce[0])
	}
	if math.Abs(s.Energies[0]+1.0) > 1e-3 {
		t.Errorf("expected energy near -1, got %g", s.Energies[0])
	}
}

func TestFireRelaxesDimer(t *testing.T) {
	s := dimer(1.3)
	relax(t, NewFire(testModel(), 0.01), s, 400)

	maxForce, err := s.PerSystemMaxForce()
	if err != nil {
		t.Fatalf("max force: %v", err)
	}
	if maxForce[0] > 0.01 {
		t.Errorf("fire left residual force %g", maxForce[0])
	}
	sep := math.Abs(s.Positions[3] - s.Positions[0])
	if math.Abs(sep-math.Pow(2, 1.0/6.0)) > 1e-2 {
		t.Errorf("expected separation near the minimum, got %g", sep)
	}
}

func TestFireExtrasSurvivePop(t *testing.T) {
	a := dimer(1.3)
	b := dimer(1.5)
	batch, err := state.Concatenate([]*state.SimState{a, b})
	if err != nil {
		t.Fatalf("concatenate: %v", err)
	}

	fire := NewFire(testModel(), 0.01)
	if err := fire.Init(batch); err != nil {
		t.Fatalf("init: %v", err)
	}
	for i := 0; i < 10; i++ {
		if err := fire.Step(batch); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	remaining, popped, err := batch.Pop(0)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	for _, name := range []string{"fire_dt", "fire_alpha", "fire_n_pos"} {
		if len(popped[0].Extras[name].Data) != 1 {
			t.Errorf("popped system lost extra %q", name)
		}
		if len(remaining.Extras[name].Data) != 1 {
			t.Errorf("remaining batch lost extra %q", name)
		}
	}

	// The remaining batch keeps stepping with its own parameters.
	if err := fire.Step(remaining); err != nil {
		t.Fatalf("step after pop: %v", err)
	}
}

// The Momenta field holds true momenta, so kinetic reductions over a
// relaxing batch stay meaningful: the first kick gives p = dt*F for any
// mass, while displacement and kinetic energy scale with 1/m.
func TestFireMomentaScaleWithMass(t *testing.T) {
	light := dimer(1.3)
	heavy := dimer(1.3)
	heavy.Masses = []float64{4, 4}

	for _, s := range []*state.SimState{light, heavy} {
		fire := NewFire(testModel(), 0.01)
		if err := fire.Init(s); err != nil {
			t.Fatalf("init: %v", err)
		}
		if err := fire.Step(s); err != nil {
			t.Fatalf("step: %v", err)
		}
	}

	for i := range light.Momenta {
		if math.Abs(light.Momenta[i]-heavy.Momenta[i]) > 1e-12 {
			t.Fatalf("first-kick momenta differ at %d: %g vs %g", i, light.Momenta[i], heavy.Momenta[i])
		}
	}

	moveLight := light.Positions[3] - dimer(1.3).Positions[3]
	moveHeavy := heavy.Positions[3] - dimer(1.3).Positions[3]
	if math.Abs(moveLight-4*moveHeavy) > 1e-12 {
		t.Errorf("displacement not inverse to mass: %g vs %g", moveLight, moveHeavy)
	}

	kinLight, err := light.KineticEnergies()
	if err != nil {
		t.Fatalf("kinetic: %v", err)
	}
	kinHeavy, err := heavy.KineticEnergies()
	if err != nil {
		t.Fatalf("kinetic: %v", err)
	}
	if math.Abs(kinLight[0]-4*kinHeavy[0]) > 1e-12 {
		t.Errorf("kinetic energies inconsistent with momenta: %g vs %g", kinLight[0], kinHeavy[0])
	}
}

func TestFireAdaptsTimestepPerSystem(t *testing.T) {
	near := dimer(1.15)
	far := dimer(1.6)
	batch, err := state.Concatenate([]*state.SimState{near, far})
	if err != nil {
		t.Fatalf("concatenate: %v", err)
	}

	fire := NewFire(testModel(), 0.01)
	if err := fire.Init(batch); err != nil {
		t.Fatalf("init: %v", err)
	}
	for i := 0; i < 30; i++ {
		if err := fire.Step(batch); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	dt := batch.Extras["fire_dt"].Data
	if dt[0] == dt[1] {
		t.Log("per-system timesteps happen to agree after 30 steps")
	}
	for i, v := range dt {
		if v <= 0 || v > fire.DtMax {
			t.Errorf("system %d timestep %g outside (0, %g]", i, v, fire.DtMax)
		}
	}
}

func TestForceConvergence(t *testing.T) {
	s := dimer(1.3)
	if err := NewDescent(testModel(), 0.01).Init(s); err != nil {
		t.Fatalf("init: %v", err)
	}

	loose := ForceConvergence(1e6)
	flags, err := loose(s)
	if err != nil {
		t.Fatalf("convergence: %v", err)
	}
	if len(flags) != 1 || !flags[0] {
		t.Errorf("expected converged under loose tolerance, got %v", flags)
	}

	tight := ForceConvergence(1e-12)
	flags, err = tight(s)
	if err != nil {
		t.Fatalf("convergence: %v", err)
	}
	if flags[0] {
		t.Error("expected unconverged under tight tolerance")
	}
}

func TestForceConvergenceNoForces(t *testing.T) {
	if _, err := ForceConvergence(0.1)(dimer(1.3)); !errors.Is(err, state.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}
