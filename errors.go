package gathernd

import (
	"github.com/pkg/errors"
)

// Sentinel errors returned by GatherND when the shapes of params, indices and out
// don't describe a valid gather. They are always returned wrapped with the offending
// shapes; match them with errors.Is.
//
// All of them are detected before anything is written to the output buffer.
var (
	// ErrBatchShapeMismatch is returned when batchDims > 0 and the leading dimension
	// of the output shape is not the flattened size of params' batch dimensions.
	ErrBatchShapeMismatch = errors.New("output shape must have as leading dimension the flattened size of params' batch dimensions")

	// ErrBatchDimsMismatch is returned when params and indices disagree on any of the
	// batchDims leading dimensions.
	ErrBatchDimsMismatch = errors.New("params and indices must have equal dimensions on the batch axes")

	// ErrInsufficientRank is returned when params doesn't have enough axes left, after
	// the batch axes, to be addressed by one coordinate tuple of indices.
	ErrInsufficientRank = errors.New("params has too few axes to be addressed by the batch dimensions plus one coordinate tuple")
)
