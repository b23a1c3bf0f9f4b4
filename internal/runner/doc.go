// Package runner drives batched simulations end to end: it splits a
// collection of systems into memory-safe batches, advances each batch with
// an integrator or optimizer, and reassembles results in the caller's
// original order.
//
// Integrate uses a chunking batcher (fixed bins, each run to completion);
// Optimize uses a hot-swapping batcher that replaces converged systems
// with queued ones between convergence sweeps.
package runner
