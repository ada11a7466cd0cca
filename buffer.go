package gathernd

import (
	"reflect"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"k8s.io/klog/v2"

	"github.com/gomlx/gathernd/shapeinference"
	"github.com/gomlx/gathernd/types/shapes"
)

// Buffer holds a shape and the flat data for one tensor.
//
// The flat data is always a slice of the Go type corresponding to shape.DType.
// It is the dtype-erased currency of the Exec entry point; the typed kernel is
// reached through the dtype dispatcher.
type Buffer struct {
	shape shapes.Shape

	// flat is always a slice of the underlying data type (shape.DType).
	flat any
}

// NewBuffer returns a Buffer of the given shape with zero-initialized data.
func NewBuffer(shape shapes.Shape) *Buffer {
	if !shape.Ok() {
		exceptions.Panicf("NewBuffer: invalid shape %s", shape)
	}
	flatV := reflect.MakeSlice(reflect.SliceOf(shape.DType.GoType()), shape.Size(), shape.Size())
	return &Buffer{
		shape: shape,
		flat:  flatV.Interface(),
	}
}

// FromFlatDataAndDimensions returns a Buffer with the given dimensions, initialized
// with a copy of the flat data. The dtype is taken from the Go type T.
// It panics if the data doesn't fit the dimensions exactly.
func FromFlatDataAndDimensions[T dtypes.Supported](data []T, dimensions ...int) *Buffer {
	dtype := dtypes.FromGenericsType[T]()
	shape := shapes.Make(dtype, dimensions...)
	if len(data) != shape.Size() {
		exceptions.Panicf("FromFlatDataAndDimensions(%s): data size is %d, but dimensions size is %d", shape, len(data), shape.Size())
	}
	b := NewBuffer(shape)
	switch flat := b.flat.(type) {
	case []T:
		copy(flat, data)
	default:
		// T is the platform-dependent int, stored as its fixed-size equivalent.
		flatV := reflect.ValueOf(b.flat)
		elemType := flatV.Type().Elem()
		for ii, value := range data {
			flatV.Index(ii).Set(reflect.ValueOf(value).Convert(elemType))
		}
	}
	return b
}

// Shape of the buffer. It implements the shapes.HasShape interface.
func (b *Buffer) Shape() shapes.Shape { return b.shape }

// FlatData returns the flat data of the buffer, a slice of the Go type
// corresponding to its DType. The slice is aliased, not copied.
func (b *Buffer) FlatData() any { return b.flat }

// FlatData returns the flat data of the buffer as a slice of T.
// It panics if T doesn't correspond to the buffer's DType.
func FlatData[T dtypes.Supported](b *Buffer) []T {
	flat, ok := b.flat.([]T)
	if !ok {
		exceptions.Panicf("FlatData[%s]: buffer dtype is %s", dtypes.FromGenericsType[T](), b.shape.DType)
	}
	return flat
}

// Exec runs GatherND over dtype-erased buffers: it infers and allocates the output
// buffer and dispatches to the generic kernel for params' dtype.
//
// indices must use one of the signed integer dtypes (negative coordinates wrap
// around the corresponding params dimension).
func Exec(params, indices *Buffer, batchDims int) (*Buffer, error) {
	switch indices.shape.DType {
	case dtypes.Int8, dtypes.Int16, dtypes.Int32, dtypes.Int64:
	default:
		return nil, errors.Errorf("GatherND requires indices with a signed integer dtype, got %s", indices.shape)
	}
	outputShape, err := shapeinference.GatherND(params.shape, indices.shape, batchDims)
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("GatherND: params=%s, indices=%s, batchDims=%d -> output=%s",
		params.shape, indices.shape, batchDims, outputShape)
	out := NewBuffer(outputShape)
	result := dispatchGatherND.Dispatch(params.shape.DType, params, indices, out, batchDims)
	if result != nil {
		return nil, result.(error)
	}
	return out, nil
}

var dispatchGatherND = NewDTypeDispatcher("GatherND")

func registerGatherND[T dtypes.Supported](dtype dtypes.DType) {
	dispatchGatherND.Register(dtype, execGatherNDGeneric[T])
}

func init() {
	registerGatherND[bool](dtypes.Bool)
	registerGatherND[int8](dtypes.Int8)
	registerGatherND[int16](dtypes.Int16)
	registerGatherND[int32](dtypes.Int32)
	registerGatherND[int64](dtypes.Int64)
	registerGatherND[uint8](dtypes.Uint8)
	registerGatherND[uint16](dtypes.Uint16)
	registerGatherND[uint32](dtypes.Uint32)
	registerGatherND[uint64](dtypes.Uint64)
	registerGatherND[float16.Float16](dtypes.Float16)
	registerGatherND[bfloat16.BFloat16](dtypes.BFloat16)
	registerGatherND[float32](dtypes.Float32)
	registerGatherND[float64](dtypes.Float64)
	registerGatherND[complex64](dtypes.Complex64)
	registerGatherND[complex128](dtypes.Complex128)
}

// execGatherNDGeneric bridges the dtype-erased dispatch to the typed kernel.
// args are: params, indices, out *Buffer and batchDims int. It returns the kernel's
// error, or nil.
func execGatherNDGeneric[T dtypes.Supported](args ...any) any {
	params := args[0].(*Buffer)
	indices := args[1].(*Buffer)
	out := args[2].(*Buffer)
	batchDims := args[3].(int)
	paramsFlat := params.flat.([]T)
	outFlat := out.flat.([]T)
	var err error
	switch indicesFlat := indices.flat.(type) {
	case []int8:
		err = GatherND(paramsFlat, indicesFlat, outFlat, params.shape, indices.shape, out.shape, batchDims)
	case []int16:
		err = GatherND(paramsFlat, indicesFlat, outFlat, params.shape, indices.shape, out.shape, batchDims)
	case []int32:
		err = GatherND(paramsFlat, indicesFlat, outFlat, params.shape, indices.shape, out.shape, batchDims)
	case []int64:
		err = GatherND(paramsFlat, indicesFlat, outFlat, params.shape, indices.shape, out.shape, batchDims)
	default:
		exceptions.Panicf("GatherND: unsupported indices dtype %s", indices.shape.DType)
	}
	if err == nil {
		return nil
	}
	return err
}
