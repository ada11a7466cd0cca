package gathernd

import (
	"testing"

	"github.com/gomlx/gathernd/shapeinference"
	"github.com/gomlx/gathernd/types/xslices"
)

// benchmarkGatherND runs the typed kernel over a params tensor of the given
// dimensions, gathering numSlices rows along axis 0.
func benchmarkGatherND(b *testing.B, numSlices int, dimensions ...int) {
	paramsShape := MS(F32, dimensions...)
	params := xslices.Iota[float32](0, paramsShape.Size())
	indicesShape := MS(I32, numSlices, 1)
	indices := make([]int32, numSlices)
	for ii := range indices {
		indices[ii] = int32((ii * 31) % dimensions[0])
	}
	outShape, err := shapeinference.GatherND(paramsShape, indicesShape, 0)
	if err != nil {
		b.Fatal(err)
	}
	out := make([]float32, outShape.Size())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := GatherND(params, indices, out, paramsShape, indicesShape, outShape, 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGatherND_SmallSlices(b *testing.B) {
	benchmarkGatherND(b, 64, 128, 8)
}

func BenchmarkGatherND_LargeSlices(b *testing.B) {
	benchmarkGatherND(b, 64, 128, 1024)
}

func BenchmarkGatherND_ManySmallSlices(b *testing.B) {
	benchmarkGatherND(b, 4096, 128, 8)
}

func BenchmarkExec(b *testing.B) {
	params := FromFlatDataAndDimensions(xslices.Iota[float32](0, 128*64), 128, 64)
	indices := FromFlatDataAndDimensions(xslices.Iota[int32](0, 64), 64, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Exec(params, indices, 0); err != nil {
			b.Fatal(err)
		}
	}
}
