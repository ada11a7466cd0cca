package gathernd

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/gathernd/shapeinference"
	"github.com/gomlx/gathernd/types/shapes"
	"github.com/gomlx/gathernd/types/xslices"
)

// Aliases
var (
	I32 = dtypes.Int32
	F32 = dtypes.Float32

	MS = shapes.Make
)

// runGatherND infers the output shape, allocates the output and runs the kernel.
func runGatherND[T dtypes.Supported, U IndicesConstraint](t *testing.T, params []T, indices []U, paramsShape, indicesShape shapes.Shape, batchDims int) ([]T, shapes.Shape) {
	outShape, err := shapeinference.GatherND(paramsShape, indicesShape, batchDims)
	require.NoError(t, err)
	out := make([]T, outShape.Size())
	require.NoError(t, GatherND(params, indices, out, paramsShape, indicesShape, outShape, batchDims))
	return out, outShape
}

func TestGatherND_GatherRows(t *testing.T) {
	// params=[[1,2],[3,4]], one coordinate of size 1 per row: row 1 then row 0.
	params := []float32{1, 2, 3, 4}
	indices := []int32{1, 0}
	out, outShape := runGatherND(t, params, indices, MS(F32, 2, 2), MS(I32, 2, 1), 0)
	require.NoError(t, outShape.Check(F32, 2, 2))
	assert.Equal(t, []float32{3, 4, 1, 2}, out)
}

func TestGatherND_FullRankIndexing(t *testing.T) {
	// Coordinate tuples of size 2 pick single elements of params=[[1,2],[3,4]].
	params := []float32{1, 2, 3, 4}
	indices := []int32{0, 0, 1, 1}
	out, outShape := runGatherND(t, params, indices, MS(F32, 2, 2), MS(I32, 2, 2), 0)
	require.NoError(t, outShape.Check(F32, 2))
	assert.Equal(t, []float32{1, 4}, out)
}

func TestGatherND_SlicesOfRank1(t *testing.T) {
	// params [2,3,4], coordinate size 2: each tuple selects a row of 4 elements.
	params := xslices.Iota[float32](0, 2*3*4)
	indices := []int32{0, 0, 1, 2, 0, 1}
	out, outShape := runGatherND(t, params, indices, MS(F32, 2, 3, 4), MS(I32, 3, 2), 0)
	require.NoError(t, outShape.Check(F32, 3, 4))
	want := []float32{
		0, 1, 2, 3, // params[0][0]
		20, 21, 22, 23, // params[1][2]
		4, 5, 6, 7, // params[0][1]
	}
	assert.Equal(t, want, out)
}

func TestGatherND_NegativeIndices(t *testing.T) {
	// A negative coordinate v addresses dimension+v of the co-located params axis.
	params := xslices.Iota[float64](0, 2*3*4)
	paramsShape := MS(dtypes.Float64, 2, 3, 4)
	indicesShape := MS(I32, 2, 2)

	negative := []int32{-1, -3, -2, 1}
	wrapped := []int32{1, 0, 0, 1}
	outNegative, _ := runGatherND(t, params, negative, paramsShape, indicesShape, 0)
	outWrapped, outShape := runGatherND(t, params, wrapped, paramsShape, indicesShape, 0)
	require.NoError(t, outShape.Check(dtypes.Float64, 2, 4))
	assert.Equal(t, outWrapped, outNegative)
	assert.Equal(t, []float64{12, 13, 14, 15, 4, 5, 6, 7}, outNegative)
}

func TestGatherND_BatchDims(t *testing.T) {
	// params [2,3,4] with batchDims=1: each batch selects rows of its own 3x4 block.
	params := xslices.Iota[float32](0, 2*3*4)
	indices := []int32{2, 1, 0, 2}
	out, outShape := runGatherND(t, params, indices, MS(F32, 2, 3, 4), MS(I32, 2, 2, 1), 1)
	require.NoError(t, outShape.Check(F32, 2, 2, 4))
	want := []float32{
		8, 9, 10, 11, // batch 0, row 2
		4, 5, 6, 7, // batch 0, row 1
		12, 13, 14, 15, // batch 1, row 0
		20, 21, 22, 23, // batch 1, row 2
	}
	assert.Equal(t, want, out)
}

func TestGatherND_TwoBatchAxes(t *testing.T) {
	// Batch axes [2,2] are iterated independently; output flattens them to 4.
	params := xslices.Iota[int64](0, 2*2*3)
	indices := []int32{1, 0, 2, 1}
	out, outShape := runGatherND(t, params, indices, MS(dtypes.Int64, 2, 2, 3), MS(I32, 2, 2, 1), 2)
	require.NoError(t, outShape.Check(dtypes.Int64, 4))
	assert.Equal(t, []int64{1, 3, 8, 10}, out)
}

func TestGatherND_ElementCount(t *testing.T) {
	// The kernel writes exactly batchSize * slicesPerBatch * sliceSize elements,
	// which is the flattened size of the inferred output shape.
	params := xslices.Iota[float32](0, 2*3*4*5)
	paramsShape := MS(F32, 2, 3, 4, 5)
	indicesShape := MS(I32, 2, 7, 2)
	indices := make([]int32, indicesShape.Size())
	for ii := range indices {
		indices[ii] = int32(ii % 3)
	}
	out, outShape := runGatherND(t, params, indices, paramsShape, indicesShape, 1)
	batchSize, slicesPerBatch, sliceSize := 2, 7, 5
	assert.Equal(t, batchSize*slicesPerBatch*sliceSize, outShape.Size())
	assert.Len(t, out, outShape.Size())
}

func TestGatherND_Idempotence(t *testing.T) {
	params := xslices.Iota[float32](0, 3*4)
	indices := []int32{2, 0, 1}
	out1, _ := runGatherND(t, params, indices, MS(F32, 3, 4), MS(I32, 3, 1), 0)
	out2, _ := runGatherND(t, params, indices, MS(F32, 3, 4), MS(I32, 3, 1), 0)
	assert.Equal(t, out1, out2)
}

func TestGatherND_Errors(t *testing.T) {
	params := xslices.Iota[float32](0, 2*3*4)

	// Batch dimensions of params and indices disagree (2 vs 3).
	indices := []int32{0, 0, 0, 0, 0, 0}
	out := make([]float32, 2)
	err := GatherND(params, indices, out, MS(F32, 2, 3, 4), MS(I32, 3, 1, 2), MS(F32, 2, 1), 1)
	require.ErrorIs(t, err, ErrBatchDimsMismatch)

	// Output leading dimension disagrees with the flattened batch size.
	indices = []int32{0, 0, 0, 0}
	out = make([]float32, 3*4)
	err = GatherND(params, indices, out, MS(F32, 2, 3, 4), MS(I32, 2, 1, 2), MS(F32, 3, 4), 1)
	require.ErrorIs(t, err, ErrBatchShapeMismatch)

	// Coordinate size exceeds the params axes left after the batch axes.
	indices = []int32{0, 0, 0, 0}
	out = make([]float32, 1)
	err = GatherND(params, indices, out, MS(F32, 2, 3, 4), MS(I32, 1, 4), MS(F32, 1), 0)
	require.ErrorIs(t, err, ErrInsufficientRank)

	// Buffer sizes must match the shapes.
	indices = []int32{0}
	out = make([]float32, 3*4)
	err = GatherND(params[:5], indices, out, MS(F32, 2, 3, 4), MS(I32, 1, 1), MS(F32, 1, 3, 4), 0)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrBatchDimsMismatch))

	// batchDims out of range.
	err = GatherND(params, indices, out, MS(F32, 2, 3, 4), MS(I32, 1, 1), MS(F32, 1, 3, 4), -1)
	require.Error(t, err)
}

func TestGatherND_NoWritesBeforeValidation(t *testing.T) {
	// On error, the output buffer is left untouched.
	params := xslices.Iota[float32](0, 2*3*4)
	indices := []int32{0, 0, 0, 0, 0, 0}
	out := xslices.SliceWithValue(2, float32(-7))
	err := GatherND(params, indices, out, MS(F32, 2, 3, 4), MS(I32, 3, 1, 2), MS(F32, 2, 1), 1)
	require.ErrorIs(t, err, ErrBatchDimsMismatch)
	assert.Equal(t, []float32{-7, -7}, out)
}

func TestGatherND_Concurrent(t *testing.T) {
	// params and indices are read-only: concurrent calls with distinct outputs are safe.
	params := xslices.Iota[float32](0, 100*8)
	paramsShape := MS(F32, 100, 8)
	indicesShape := MS(I32, 64, 1)
	indices := make([]int32, 64)
	for ii := range indices {
		indices[ii] = int32((ii * 37) % 100)
	}
	outShape, err := shapeinference.GatherND(paramsShape, indicesShape, 0)
	require.NoError(t, err)

	const numGoroutines = 8
	outs := make([][]float32, numGoroutines)
	var wg sync.WaitGroup
	for g := range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outs[g] = make([]float32, outShape.Size())
			_ = GatherND(params, indices, outs[g], paramsShape, indicesShape, outShape, 0)
		}()
	}
	wg.Wait()
	for g := 1; g < numGoroutines; g++ {
		require.Equal(t, outs[0], outs[g], fmt.Sprintf("goroutine %d disagrees", g))
	}
}
