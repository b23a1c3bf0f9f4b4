// Package state implements the heterogeneous batch of atomistic systems.
//
// A SimState packs any number of independent systems (molecules, crystal
// cells) into flat per-atom and per-system slices, tied together by a
// per-atom segment index. All batch surgery (slicing, concatenation,
// splitting, popping) is driven by a single property-scope classification,
// so derived per-atom and per-system fields compose without bespoke code:
//
//	batch, _ := state.Concatenate([]*state.SimState{si, fe})
//	single, _ := batch.Slice(0)
//	remaining, popped, _ := batch.Pop([]int{1})
//
// Per-system reductions (energies, force norms, temperatures) are keyed on
// the segment index and operate on the batch without unpacking it.
package state
