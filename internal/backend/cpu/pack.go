package cpu

import (
	"fmt"

	"github.com/born-ml/relayout/internal/layout"
	"github.com/born-ml/relayout/internal/tensor"
)

var _ layout.Handle = (*Plan)(nil)

// Plan is the CPU backend's handle for a standard-layout target. It records,
// for every dimension of the row-major target shape, the element stride of
// that dimension inside the packed buffer.
type Plan struct {
	shape  tensor.Shape
	source []int
	dtype  tensor.DataType
}

// Shape returns the row-major shape the plan converts to.
func (p *Plan) Shape() tensor.Shape {
	return p.shape
}

// DType returns the element type the plan was built for.
func (p *Plan) DType() tensor.DataType {
	return p.dtype
}

// String implements layout.Handle.
func (p *Plan) String() string {
	return fmt.Sprintf("cpu.Plan(%s%v src=%v)", p.dtype, []int(p.shape), p.source)
}

// Pack rearranges a standard-layout tensor into the physical dimension order
// given by physical (outermost first) and describes the result.
//
// The returned tensor is shaped in physical order. The descriptor lists the
// standard geometry innermost dimension first, the way the accelerated
// library reports it, so callers have to reconstruct the logical order from
// the strides.
func (cpu *CPUBackend) Pack(x *tensor.RawTensor, physical []int) (*tensor.RawTensor, layout.Descriptor, error) {
	shape := x.Shape()
	ndim := len(shape)
	if err := validateAxes(physical, ndim); err != nil {
		return nil, layout.Descriptor{}, fmt.Errorf("pack: %w", err)
	}

	packed := cpu.Transpose(x, physical...)

	physStrides := packed.Shape().ComputeStrides()
	source := make([]int, ndim)
	for i, ax := range physical {
		source[ax] = physStrides[i]
	}

	stdStrides := shape.ComputeStrides()
	sizes := make([]int, ndim)
	strides := make([]int, ndim)
	for k := 0; k < ndim; k++ {
		d := ndim - 1 - k
		sizes[k] = shape[d]
		strides[k] = stdStrides[d]
	}

	desc := layout.Descriptor{
		Accelerated: true,
		Sizes:       sizes,
		Strides:     strides,
		Standard: &Plan{
			shape:  shape.Clone(),
			source: source,
			dtype:  x.DType(),
		},
	}
	return packed, desc, nil
}
