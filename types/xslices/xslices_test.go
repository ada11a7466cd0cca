package xslices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtAndLast(t *testing.T) {
	slice := []int{0, 1, 2, 3, 4, 5}
	assert.Equal(t, 5, At(slice, -1))
	assert.Equal(t, 4, At(slice, -2))
	assert.Equal(t, 2, At(slice, 2))
	assert.Equal(t, 5, Last(slice))

	SetAt(slice, -1, 7)
	assert.Equal(t, 7, Last(slice))
	SetLast(slice, 11)
	assert.Equal(t, 11, Last(slice))
}

func TestCopy(t *testing.T) {
	slice := []int{1, 2, 3}
	slice2 := Copy(slice)
	assert.Equal(t, slice, slice2)
	slice2[0] = 7
	assert.Equal(t, 1, slice[0])
	assert.Nil(t, Copy([]int(nil)))
}

func TestIota(t *testing.T) {
	assert.Equal(t, []float64{3, 4}, Iota(3.0, 2))
	assert.Equal(t, []int32{0, 1, 2, 3}, Iota[int32](0, 4))
}

func TestProduct(t *testing.T) {
	assert.Equal(t, 24, Product([]int{2, 3, 4}))
	assert.Equal(t, 1, Product([]int{}))
	assert.Equal(t, 1, Product([]int(nil)))
}

func TestSliceWithValue(t *testing.T) {
	assert.Equal(t, []float32{7, 7, 7}, SliceWithValue(3, float32(7)))
}
