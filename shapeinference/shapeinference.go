// Package shapeinference calculates the output shape of a GatherND operation and
// validates its inputs.
//
// It plays the role of the graph-building layer around the kernel: callers use it to
// find the shape (and hence size) of the output buffer they must allocate before
// invoking gathernd.GatherND.
package shapeinference

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/gomlx/gathernd/types/shapes"
	"github.com/gomlx/gathernd/types/xslices"
)

// GatherND returns the output shape of a GatherND operation with the given params and
// indices shapes and number of leading batch dimensions.
//
// The last dimension of indices is the "coordinate size": the number of integer
// components used to address one slice of params, after skipping the batch dimensions.
// The output shape is laid out as:
//
//	[product(batch dimensions)] ++ indices.Dimensions[batchDims:rank-1] ++ params.Dimensions[batchDims+coordinateSize:]
//
// where the leading merged batch dimension is only present if batchDims > 0.
// The output DType is params' DType.
//
// It returns an error if the shapes or batchDims do not describe a valid GatherND
// operation.
func GatherND(params, indices shapes.Shape, batchDims int) (output shapes.Shape, err error) {
	if !params.Ok() || !indices.Ok() {
		return output, errors.Errorf("GatherND() requires valid params and indices shapes, got params=%s, indices=%s", params, indices)
	}
	if params.IsScalar() {
		return output, errors.Errorf("GatherND() requires a non-scalar params, got %s", params)
	}
	if !indices.DType.IsInt() {
		return output, errors.Errorf("GatherND() requires indices with an integer dtype, got %s", indices)
	}
	if indices.Rank() < 1 {
		return output, errors.Errorf("GatherND() requires indices with rank >= 1 (the last axis holds the coordinates of one slice), got %s", indices)
	}
	if batchDims < 0 {
		return output, errors.Errorf("GatherND() requires batchDims >= 0, got %d", batchDims)
	}
	if batchDims >= indices.Rank() {
		return output, errors.Errorf("GatherND() requires batchDims (%d) < indices rank (%d): the coordinate axis cannot be a batch axis", batchDims, indices.Rank())
	}
	if batchDims > params.Rank() {
		return output, errors.Errorf("GatherND() requires batchDims (%d) <= params rank (%d)", batchDims, params.Rank())
	}
	if !slices.Equal(params.Dimensions[:batchDims], indices.Dimensions[:batchDims]) {
		return output, errors.Errorf("GatherND() requires params (%s) and indices (%s) to have equal dimensions on the %d batch axes", params, indices, batchDims)
	}
	coordinateSize := xslices.Last(indices.Dimensions)
	if batchDims+coordinateSize > params.Rank() {
		return output, errors.Errorf("GatherND() coordinate size %d plus batchDims %d exceeds params rank %d: not enough axes left to address a slice", coordinateSize, batchDims, params.Rank())
	}

	var outputDims []int
	if batchDims > 0 {
		outputDims = append(outputDims, xslices.Product(params.Dimensions[:batchDims]))
	}
	outputDims = append(outputDims, indices.Dimensions[batchDims:indices.Rank()-1]...)
	outputDims = append(outputDims, params.Dimensions[batchDims+coordinateSize:]...)
	return shapes.Make(params.DType, outputDims...), nil
}
