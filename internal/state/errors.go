package state

import "errors"

// Domain errors for batch state operations.
var (
	// ErrConfiguration indicates inputs that disagree on a global property
	// or otherwise cannot be combined into one batch.
	ErrConfiguration = errors.New("state: incompatible configuration")

	// ErrShape indicates a violated tensor-shape invariant.
	ErrShape = errors.New("state: shape mismatch")

	// ErrIndex indicates a system index outside the batch.
	ErrIndex = errors.New("state: system index out of range")

	// ErrIndexType indicates an index expression of an unsupported kind.
	ErrIndexType = errors.New("state: unsupported index type")
)
