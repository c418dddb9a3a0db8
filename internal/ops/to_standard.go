package ops

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/born-ml/relayout/internal/layout"
	"github.com/born-ml/relayout/internal/normalize"
	"github.com/born-ml/relayout/internal/tensor"
)

// Names used by the ToStandardLayout operator.
const (
	OpToStandardLayout = "ToStandardLayout"
	AcceleratedLabel   = "accel"

	AttrDataFormat = "data_format"
	AttrT          = "T"
)

// NewDefaultRegistry returns a registry holding every built-in kernel, with
// conv as the accelerated library's conversion primitive.
func NewDefaultRegistry(conv layout.Converter) *Registry {
	r := NewRegistry()
	if err := RegisterToStandard(r, conv); err != nil {
		panic(err)
	}
	return r
}

// RegisterToStandard registers the ToStandardLayout kernel. Only the CPU
// float32 instantiation exists.
func RegisterToStandard(r *Registry, conv layout.Converter) error {
	key := KernelKey{
		OpType:   OpToStandardLayout,
		Device:   tensor.CPU,
		DataType: normalize.SupportedType,
		Label:    AcceleratedLabel,
	}
	return r.Register(key, func(node *Node) (Kernel, error) {
		k, err := newToStandardKernel(node, conv)
		if err != nil {
			return nil, err
		}
		return k, nil
	})
}

// toStandardKernel converts input 0 from the accelerated layout into a
// standard-layout output 0.
type toStandardKernel struct {
	name string
	norm *normalize.Normalizer
}

// newToStandardKernel binds the current package Logger, tagged with the node
// name and op, for the kernel's lifetime.
func newToStandardKernel(node *Node, conv layout.Converter) (*toStandardKernel, error) {
	format, err := RequireAttrString(node, AttrDataFormat)
	if err != nil {
		return nil, err
	}
	dt, err := AttrDataType(node)
	if err != nil {
		return nil, err
	}

	log := Logger().With(zap.String("node", node.Name), zap.String("op", node.OpType))
	norm, err := normalize.New(normalize.Config{DataFormat: format, DataType: dt}, conv, normalize.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &toStandardKernel{name: node.Name, norm: norm}, nil
}

// Compute implements Kernel.
func (k *toStandardKernel) Compute(ctx *Context) error {
	res, err := k.norm.NormalizeWith(ctx.slotAllocator(0), ctx.Input(0), ctx.Layout(0), ctx.OutputType(0))
	if err != nil {
		ctx.SetOutput(0, nil)
		return fmt.Errorf("node %q: %w", k.name, err)
	}
	if res.Ownership == normalize.Aliased {
		ctx.SetOutput(0, res.Tensor)
	}
	return nil
}
