package evaluation

import "github.com/pkg/errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrShapeMismatch indicates the computed and gold masks differ in dimensions.
	ErrShapeMismatch = errors.New("evaluation: computed and gold masks have different shapes")

	// ErrInvalidThreshold indicates an overlap threshold outside (0, 1].
	ErrInvalidThreshold = errors.New("evaluation: overlap threshold must be in (0, 1]")
)
