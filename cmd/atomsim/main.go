package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Radical-AI/atomsim/internal/autobatch"
	"github.com/Radical-AI/atomsim/internal/config"
	"github.com/Radical-AI/atomsim/internal/device"
	"github.com/Radical-AI/atomsim/internal/integrate"
	"github.com/Radical-AI/atomsim/internal/lattice"
	"github.com/Radical-AI/atomsim/internal/optimize"
	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/report"
	"github.com/Radical-AI/atomsim/internal/runner"
	"github.com/Radical-AI/atomsim/internal/state"
	"github.com/Radical-AI/atomsim/internal/trajectory"
)

var (
	configFile string
	preset     string
	nSystems   int
	cells      int
	spacing    float64
	seed       int64
	trajPath   string
	memoryGB   float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "atomsim",
		Short: "batched atomistic simulation lab",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().IntVar(&nSystems, "systems", 4, "number of systems to simulate")
	rootCmd.PersistentFlags().IntVar(&cells, "cells", 3, "lattice cells per side for the smallest system")
	rootCmd.PersistentFlags().Float64Var(&spacing, "spacing", 1.1, "lattice spacing")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	rootCmd.PersistentFlags().Float64Var(&memoryGB, "memory-gb", 0, "override device memory capacity in GB")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run batched molecular dynamics",
		RunE:  runDynamics,
	}
	runCmd.Flags().StringVar(&trajPath, "traj", "", "trajectory database path")

	relaxCmd := &cobra.Command{
		Use:   "relax",
		Short: "relax structures with hot-swap batching",
		RunE:  runRelax,
	}

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "single-point energies and forces",
		RunE:  runEval,
	}

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "probe memory limits for the configured potential",
		RunE:  runProbe,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, relaxCmd, evalCmd, probeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cfg.Seed != 0 {
		seed = cfg.Seed
	}
	return cfg, nil
}

func buildDevice() *device.Device {
	if memoryGB > 0 {
		return device.New("cpu", int64(memoryGB*float64(1<<30)))
	}
	return device.Detect()
}

func buildModel(cfg *config.Config, dev *device.Device) (potential.Model, error) {
	switch cfg.Potential.Kind {
	case "lennard_jones":
		lj := potential.NewLennardJones(cfg.Potential.Sigma, cfg.Potential.Epsilon, dev)
		if cfg.Potential.Cutoff > 0 {
			lj.Cutoff = cfg.Potential.Cutoff
		}
		lj.WithStress = cfg.Potential.Stress
		return lj, nil
	case "morse":
		m := potential.NewMorse(cfg.Potential.Sigma, cfg.Potential.Epsilon, cfg.Potential.Alpha, dev)
		if cfg.Potential.Cutoff > 0 {
			m.Cutoff = cfg.Potential.Cutoff
		}
		m.WithStress = cfg.Potential.Stress
		return m, nil
	default:
		return nil, fmt.Errorf("unknown potential: %s", cfg.Potential.Kind)
	}
}

// buildSystems creates nSystems perturbed lattices of staggered sizes so
// batches are heterogeneous.
func buildSystems() []*state.SimState {
	systems := make([]*state.SimState, nSystems)
	for i := range systems {
		side := cells + i%3
		systems[i] = lattice.Perturbed(side, side, side, spacing, 1.0, 0.05*spacing)
	}
	return systems
}

func buildStepper(cfg *config.Config, model potential.Model) (runner.Stepper, error) {
	d := cfg.Dynamics
	switch d.Integrator {
	case "nve":
		return integrate.NewNVE(model, d.Dt, d.Temperature, seed), nil
	case "langevin":
		return integrate.NewLangevin(model, d.Dt, d.Temperature, d.Friction, seed), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", d.Integrator)
	}
}

func buildOptimizer(cfg *config.Config, model potential.Model) (optimize.Optimizer, error) {
	r := cfg.Relax
	switch r.Optimizer {
	case "fire":
		return optimize.NewFire(model, r.DtStart), nil
	case "descent":
		lr := r.LearningRate
		if lr <= 0 {
			lr = 0.01
		}
		return optimize.NewDescent(model, lr), nil
	default:
		return nil, fmt.Errorf("unknown optimizer: %s", r.Optimizer)
	}
}

func runDynamics(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dev := buildDevice()
	model, err := buildModel(cfg, dev)
	if err != nil {
		return err
	}
	stepper, err := buildStepper(cfg, model)
	if err != nil {
		return err
	}
	batchOpts, err := cfg.BatchOptions()
	if err != nil {
		return err
	}
	systems := buildSystems()

	opts := runner.IntegrateOptions{Steps: cfg.Dynamics.Steps, Batch: batchOpts}
	var traj *trajectory.Writer
	if trajPath == "" {
		trajPath = cfg.Trajectory.Path
	}
	if trajPath != "" {
		traj, err = trajectory.Open(trajPath, cfg.Potential.Kind)
		if err != nil {
			return err
		}
		defer traj.Close()
		opts.Reporter = traj
		opts.ReportEvery = cfg.Trajectory.Every
	}

	start := time.Now()
	final, err := runner.Integrate(context.Background(), model, stepper, systems, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Println(report.Header("dynamics"))
	fmt.Println(report.Field("integrator", cfg.Dynamics.Integrator))
	fmt.Println(report.Field("systems", len(final)))
	fmt.Println(report.Field("steps", cfg.Dynamics.Steps))
	fmt.Println(report.Field("wall time", elapsed.Round(time.Millisecond)))
	printStateTable(final)

	if traj != nil {
		fmt.Println(report.Field("trajectory run", traj.RunID()))
		_, energies, err := traj.Energies(0)
		if err != nil {
			return err
		}
		fmt.Println(report.EnergyPlot(energies, "potential energy (system 0)"))
	}
	return nil
}

func runRelax(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dev := buildDevice()
	model, err := buildModel(cfg, dev)
	if err != nil {
		return err
	}
	opt, err := buildOptimizer(cfg, model)
	if err != nil {
		return err
	}
	batchOpts, err := cfg.BatchOptions()
	if err != nil {
		return err
	}
	systems := buildSystems()

	start := time.Now()
	relaxed, err := runner.Optimize(context.Background(), model, opt, systems, runner.OptimizeOptions{
		Convergence:       optimize.ForceConvergence(cfg.Relax.ForceTol),
		MaxSteps:          cfg.Relax.MaxSteps,
		StepsBetweenSwaps: cfg.Relax.StepsBetweenSwaps,
		Batch:             batchOpts,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Println(report.Header("relaxation"))
	fmt.Println(report.Field("optimizer", cfg.Relax.Optimizer))
	fmt.Println(report.Field("force tolerance", cfg.Relax.ForceTol))
	fmt.Println(report.Field("wall time", elapsed.Round(time.Millisecond)))
	printStateTable(relaxed)
	return nil
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dev := buildDevice()
	model, err := buildModel(cfg, dev)
	if err != nil {
		return err
	}
	batchOpts, err := cfg.BatchOptions()
	if err != nil {
		return err
	}
	systems := buildSystems()

	results, err := runner.Static(context.Background(), model, systems, runner.StaticOptions{Batch: batchOpts})
	if err != nil {
		return err
	}

	fmt.Println(report.Header("single-point"))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "system\tatoms\tenergy")
	for i, res := range results {
		fmt.Fprintf(w, "%d\t%d\t%.6f\n", i, systems[i].NAtoms(), res.Energies[0])
	}
	return w.Flush()
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dev := buildDevice()
	model, err := buildModel(cfg, dev)
	if err != nil {
		return err
	}
	systems := buildSystems()

	fmt.Println(report.Header("memory probe"))
	fmt.Println(report.Field("device", dev.Name()))
	fmt.Println(report.Field("capacity", humanize.IBytes(uint64(dev.Capacity()))))

	maxBatch, err := autobatch.DetermineMaxBatchSize(model, systems[0], cfg.Batch.AtomCeiling)
	if err != nil {
		return err
	}
	fmt.Println(report.Field("max copies of smallest system", maxBatch))

	metrics, err := autobatch.Metrics(systems, model.MemoryScaling())
	if err != nil {
		return err
	}
	maxMetric, err := autobatch.EstimateMaxMetric(model, systems, metrics, cfg.Batch.AtomCeiling)
	if err != nil {
		return err
	}
	fmt.Println(report.Field("metric", string(model.MemoryScaling())))
	fmt.Println(report.Field("estimated budget", fmt.Sprintf("%.1f", maxMetric)))
	return nil
}

func printStateTable(states []*state.SimState) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "system\tatoms\tenergy\tmax force")
	for i, s := range states {
		energy := "-"
		if s.Energies != nil {
			energy = fmt.Sprintf("%.6f", s.Energies[0])
		}
		maxForce := "-"
		if mf, err := s.PerSystemMaxForce(); err == nil {
			maxForce = fmt.Sprintf("%.4f", mf[0])
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", i, s.NAtoms(), energy, maxForce)
	}
	w.Flush()
}
