package gathernd

import (
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"

	"github.com/gomlx/gathernd/types/shapes"
	"github.com/gomlx/gathernd/types/xslices"
)

// IndicesConstraint are the Go types accepted for the indices buffer: signed
// integers only, since negative coordinates wrap around the corresponding params
// dimension.
type IndicesConstraint interface {
	int8 | int16 | int32 | int64
}

// GatherND copies slices of params selected by the coordinate tuples in indices
// into out, optionally batched over batchDims leading dimensions shared by params
// and indices.
//
// All buffers are flat, row-major views of the corresponding shapes. The last
// dimension of indicesShape is the coordinate size: each group of that many
// consecutive values in indices addresses one contiguous slice of params, whose
// shape is the suffix of paramsShape after the batch axes and the coordinate axes.
// The layout is:
//
//	+-------+--------------+-------+
//	| batch | indices[:-1] | slice |
//	| shape |   shape      | shape |
//	+-------+--------------+-------+
//
// Negative coordinate values wrap around: a coordinate c with value v < 0 addresses
// position paramsShape.Dimensions[batchDims+c] + v.
//
// out must be pre-allocated by the caller with outShape.Size() elements; use
// shapeinference.GatherND to compute outShape. Elements of out not written by the
// gather are left untouched. params and indices are never mutated, so they may be
// shared by concurrent calls with distinct out buffers.
//
// It returns ErrBatchShapeMismatch, ErrBatchDimsMismatch or ErrInsufficientRank
// (wrapped with the offending shapes) on shape-contract violations, all detected
// before anything is written to out.
func GatherND[T dtypes.Supported, U IndicesConstraint](
	params []T, indices []U, out []T,
	paramsShape, indicesShape, outShape shapes.Shape,
	batchDims int) error {
	if indicesShape.Rank() < 1 {
		return errors.Errorf("GatherND: indices must have rank >= 1, the last axis holding the coordinates of one slice, got %s", indicesShape)
	}
	if batchDims < 0 || batchDims > paramsShape.Rank() || batchDims >= indicesShape.Rank() {
		return errors.Errorf("GatherND: batchDims=%d out of range for params=%s, indices=%s", batchDims, paramsShape, indicesShape)
	}
	if len(params) != paramsShape.Size() {
		return errors.Errorf("GatherND: params buffer has %d elements, but its shape %s sizes %d", len(params), paramsShape, paramsShape.Size())
	}
	if len(indices) != indicesShape.Size() {
		return errors.Errorf("GatherND: indices buffer has %d elements, but its shape %s sizes %d", len(indices), indicesShape, indicesShape.Size())
	}
	if len(out) != outShape.Size() {
		return errors.Errorf("GatherND: out buffer has %d elements, but its shape %s sizes %d", len(out), outShape, outShape.Size())
	}

	batchSize := xslices.Product(paramsShape.Dimensions[:batchDims])
	if batchDims > 0 && (outShape.Rank() == 0 || batchSize != outShape.Dimensions[0]) {
		return errors.Wrapf(ErrBatchShapeMismatch,
			"GatherND: batchDims=%d flattens to a leading batch dimension of %d, out=%s", batchDims, batchSize, outShape)
	}
	if !slices.Equal(paramsShape.Dimensions[:batchDims], indicesShape.Dimensions[:batchDims]) {
		return errors.Wrapf(ErrBatchDimsMismatch,
			"GatherND: batchDims=%d, params=%s, indices=%s", batchDims, paramsShape, indicesShape)
	}
	coordinatesSize := xslices.Last(indicesShape.Dimensions)
	firstSliceAxis := batchDims + coordinatesSize
	if firstSliceAxis > paramsShape.Rank() {
		return errors.Wrapf(ErrInsufficientRank,
			"GatherND: batchDims=%d plus coordinate size %d exceed params rank, params=%s", batchDims, coordinatesSize, paramsShape)
	}

	// Linear strides (in elements of params) contributed by each coordinate
	// component, built walking the coordinate axes of params back to front.
	// After the loop, stride is the linear distance between successive batches.
	sliceSize := xslices.Product(paramsShape.Dimensions[firstSliceAxis:])
	indicesOffsets := make([]int, coordinatesSize)
	stride := sliceSize
	for c := coordinatesSize - 1; c >= 0; c-- {
		indicesOffsets[c] = stride
		stride *= paramsShape.Dimensions[batchDims+c]
	}
	batchOffset := stride

	// Dimensions negative coordinates wrap around on: the params axes co-located
	// with each coordinate component.
	wrapDims := paramsShape.Dimensions[batchDims:firstSliceAxis]

	numSlicesPerBatch := xslices.Product(indicesShape.Dimensions[batchDims : indicesShape.Rank()-1])
	for batch := 0; batch < batchSize; batch++ {
		inputBatchOffset := batch * batchOffset
		outputBatchOffset := batch * numSlicesPerBatch * sliceSize
		coordinatesBatchOffset := batch * numSlicesPerBatch * coordinatesSize
		for slice := 0; slice < numSlicesPerBatch; slice++ {
			coordinates := indices[coordinatesBatchOffset+slice*coordinatesSize:][:coordinatesSize]
			inputSliceOffset := inputBatchOffset
			for c, coordinate := range coordinates {
				index := int(coordinate)
				if index < 0 {
					index += wrapDims[c]
				}
				inputSliceOffset += index * indicesOffsets[c]
			}
			outputSliceOffset := outputBatchOffset + slice*sliceSize
			copy(out[outputSliceOffset:outputSliceOffset+sliceSize], params[inputSliceOffset:inputSliceOffset+sliceSize])
		}
	}
	return nil
}
