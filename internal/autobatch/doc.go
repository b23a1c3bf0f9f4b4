// Package autobatch decides which systems run together on a device.
//
// Two strategies are provided. The chunking batcher bin-packs a fixed
// collection of systems into memory-safe batches processed sequentially,
// for workloads where no system leaves a batch early (fixed-length MD,
// single-point evaluation). The hot-swapping batcher keeps a batch full by
// evicting converged systems and admitting queued ones, for optimization
// workloads where systems converge at different rates.
//
// Both restore results to the caller's original input order, and both can
// estimate a memory budget empirically by probing forward passes with
// replicated systems. Out-of-memory during estimation is the probe's
// expected terminating signal; out-of-memory during a production forward
// pass propagates to the caller untouched, because it means the safety
// margin itself was wrong.
package autobatch
