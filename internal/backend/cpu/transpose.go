package cpu

import (
	"fmt"

	"github.com/born-ml/relayout/internal/parallel"
	"github.com/born-ml/relayout/internal/tensor"
)

// Transpose returns a new row-major tensor whose dimension i is dimension
// axes[i] of t. With no axes, all dimensions are reversed.
// Panics on invalid axes.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if err := validateAxes(axes, ndim); err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(newShape, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	cpu.permuteBytes(result.Data(), t.Data(), shape, axes, t.DType().Size())
	return result
}

// validateAxes checks that axes is a permutation of [0, ndim).
func validateAxes(axes []int, ndim int) error {
	if len(axes) != ndim {
		return fmt.Errorf("axes length %d != ndim %d", len(axes), ndim)
	}
	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			return fmt.Errorf("invalid axis %d for %dD tensor", ax, ndim)
		}
		if seen[ax] {
			return fmt.Errorf("duplicate axis %d", ax)
		}
		seen[ax] = true
	}
	return nil
}

// permuteBytes writes src (row-major over shape) into dst so that dst is
// row-major over the permuted shape. Elements are copied as elemSize-byte
// units, so the routine is dtype agnostic.
func (cpu *CPUBackend) permuteBytes(dst, src []byte, shape tensor.Shape, axes []int, elemSize int) {
	ndim := len(shape)
	srcStrides := shape.ComputeStrides()

	dstShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		dstShape[i] = shape[ax]
	}
	dstStrides := dstShape.ComputeStrides()

	// srcToDst[d] is the dst stride that source dimension d maps to.
	srcToDst := make([]int, ndim)
	for dstDim, srcDim := range axes {
		srcToDst[srcDim] = dstStrides[dstDim]
	}

	_ = parallel.ForRange(shape.NumElements(), func(start, end int) error {
		for i := start; i < end; i++ {
			idx := i
			dstIdx := 0
			for dim := 0; dim < ndim; dim++ {
				dstIdx += (idx / srcStrides[dim]) * srcToDst[dim]
				idx %= srcStrides[dim]
			}
			copy(dst[dstIdx*elemSize:(dstIdx+1)*elemSize], src[i*elemSize:(i+1)*elemSize])
		}
		return nil
	}, cpu.parallel)
}
