// Package integrate provides batched time integrators for molecular
// dynamics. Each stepper advances every system in a SimState batch jointly
// through one model evaluation per step, with per-system reductions keyed
// on the batch's segment index.
package integrate
