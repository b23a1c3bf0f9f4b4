// Package optimize provides batched structure relaxation. Optimizers keep
// any per-system adaptive parameters inside the batch's extra properties,
// so systems carry their optimizer state through autobatcher slicing,
// popping and re-concatenation.
package optimize
