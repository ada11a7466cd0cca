// Package gathernd is a reference implementation of the GatherND tensor operator:
// given a dense N-dimensional params buffer and a buffer of index tuples (indices),
// it copies the selected contiguous slices of params into an output buffer,
// optionally batched over a set of leading dimensions shared by params and indices.
//
// It is meant as a single-threaded correctness oracle for backends implementing the
// same operator, not as an optimized execution strategy.
//
// # Architecture
//
// The module is organized into a few packages:
//
//   - gathernd (this package): the generic kernel GatherND[T, U] over flat slices,
//     plus a dtype-erased Buffer front end (Exec) that allocates the output and
//     dispatches on the params dtype.
//   - shapeinference: computes and validates the output shape of a GatherND
//     operation, which callers of the typed kernel use to allocate the output.
//   - types/shapes: the Shape type (dimensions + dtype), with the dtype enumeration
//     from github.com/gomlx/gopjrt/dtypes.
//
// # Usage
//
// Through the Buffer front end:
//
//	params := gathernd.FromFlatDataAndDimensions([]float32{1, 2, 3, 4}, 2, 2)
//	indices := gathernd.FromFlatDataAndDimensions([]int32{1, 0}, 2, 1)
//	out, err := gathernd.Exec(params, indices, 0)
//	// out.FlatData() == []float32{3, 4, 1, 2}
//
// Or calling the typed kernel directly with caller-allocated buffers:
//
//	outShape, err := shapeinference.GatherND(paramsShape, indicesShape, batchDims)
//	out := make([]float32, outShape.Size())
//	err = gathernd.GatherND(params, indices, out, paramsShape, indicesShape, outShape, batchDims)
package gathernd
