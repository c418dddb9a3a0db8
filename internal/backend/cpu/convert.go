package cpu

import (
	"fmt"

	"github.com/born-ml/relayout/internal/layout"
	"github.com/born-ml/relayout/internal/parallel"
)

// Convert gathers a buffer produced by Pack into the row-major layout
// described by dst. dst must be a *Plan created by this backend.
func (cpu *CPUBackend) Convert(src []byte, dst layout.Handle, out []byte) error {
	plan, ok := dst.(*Plan)
	if !ok || plan == nil {
		return fmt.Errorf("cpu convert: %w: %T", layout.ErrUnsupportedHandle, dst)
	}

	elem := plan.dtype.Size()
	n := plan.shape.NumElements()
	want := n * elem
	if len(out) != want {
		return fmt.Errorf("cpu convert: output buffer has %d bytes, plan %s needs %d", len(out), plan, want)
	}
	if len(src) < want {
		return fmt.Errorf("cpu convert: source buffer has %d bytes, plan %s needs %d", len(src), plan, want)
	}

	outStrides := plan.shape.ComputeStrides()
	return parallel.ForRange(n, func(start, end int) error {
		for i := start; i < end; i++ {
			rem := i
			off := 0
			for d, stride := range outStrides {
				off += (rem / stride) * plan.source[d]
				rem %= stride
			}
			copy(out[i*elem:(i+1)*elem], src[off*elem:(off+1)*elem])
		}
		return nil
	}, cpu.parallel)
}
