package normalize

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/born-ml/relayout/internal/tensor"
)

// Dimension is one (size, stride) pair of accelerated layout metadata.
type Dimension struct {
	Size   int
	Stride int
}

// ReconstructShape recovers the standard tensor shape from accelerated
// layout metadata. Dimensions are ordered by stride, largest first; equal
// strides put the larger size first. Dimensions equal in both size and
// stride may come out in either order, which does not change the shape.
//
// Panics if sizes and strides differ in length.
func ReconstructShape(sizes, strides []int) tensor.Shape {
	return shapeOf(SortDimensions(sizes, strides))
}

// SortDimensions pairs sizes with strides and returns them in the order
// ReconstructShape uses. The inputs are not modified.
// Panics if sizes and strides differ in length.
func SortDimensions(sizes, strides []int) []Dimension {
	if len(sizes) != len(strides) {
		panic(fmt.Sprintf("SortDimensions: %d sizes but %d strides", len(sizes), len(strides)))
	}
	dims := make([]Dimension, len(sizes))
	for i := range sizes {
		dims[i] = Dimension{Size: sizes[i], Stride: strides[i]}
	}
	slices.SortFunc(dims, func(a, b Dimension) int {
		if c := cmp.Compare(b.Stride, a.Stride); c != 0 {
			return c
		}
		return cmp.Compare(b.Size, a.Size)
	})
	return dims
}

func shapeOf(dims []Dimension) tensor.Shape {
	shape := make(tensor.Shape, len(dims))
	for i, d := range dims {
		shape[i] = d.Size
	}
	return shape
}
