package ops

import (
	"fmt"

	"github.com/born-ml/relayout/internal/layout"
	"github.com/born-ml/relayout/internal/normalize"
	"github.com/born-ml/relayout/internal/tensor"
)

// Input is one input slot: a tensor and the layout metadata attached to it.
type Input struct {
	Tensor *tensor.RawTensor
	Layout layout.Descriptor
}

// Context carries the inputs and outputs of one kernel invocation.
// It is not safe for concurrent use.
type Context struct {
	device      tensor.Device
	inputs      []Input
	outputTypes []tensor.DataType
	outputs     []*tensor.RawTensor
	alloc       normalize.Allocator
}

// ContextOption customises a Context.
type ContextOption func(*Context)

// WithOutputAllocator sets the allocator behind AllocateOutput.
func WithOutputAllocator(a normalize.Allocator) ContextOption {
	return func(c *Context) {
		c.alloc = a
	}
}

// WithDevice sets the device outputs are allocated on.
func WithDevice(d tensor.Device) ContextOption {
	return func(c *Context) {
		c.device = d
	}
}

// NewContext creates a context with the given inputs and declared output types.
func NewContext(inputs []Input, outputTypes []tensor.DataType, opts ...ContextOption) *Context {
	c := &Context{
		device:      tensor.CPU,
		inputs:      inputs,
		outputTypes: outputTypes,
		outputs:     make([]*tensor.RawTensor, len(outputTypes)),
		alloc:       normalize.HeapAllocator,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NumInputs returns the number of input slots.
func (c *Context) NumInputs() int {
	return len(c.inputs)
}

// NumOutputs returns the number of output slots.
func (c *Context) NumOutputs() int {
	return len(c.outputs)
}

// Input returns the tensor in an input slot. Panics on a bad slot.
func (c *Context) Input(slot int) *tensor.RawTensor {
	return c.inputs[c.checkInput(slot)].Tensor
}

// Layout returns the layout metadata of an input slot. Panics on a bad slot.
func (c *Context) Layout(slot int) layout.Descriptor {
	return c.inputs[c.checkInput(slot)].Layout
}

// InputType returns the element type of an input slot.
func (c *Context) InputType(slot int) tensor.DataType {
	if t := c.Input(slot); t != nil {
		return t.DType()
	}
	return tensor.Invalid
}

// OutputType returns the declared element type of an output slot.
func (c *Context) OutputType(slot int) tensor.DataType {
	return c.outputTypes[c.checkOutput(slot)]
}

// AllocateOutput allocates a tensor of the declared output type and places
// it in the slot.
func (c *Context) AllocateOutput(slot int, shape tensor.Shape) (*tensor.RawTensor, error) {
	return c.allocateOutput(slot, shape, c.OutputType(slot), c.device)
}

func (c *Context) allocateOutput(slot int, shape tensor.Shape, dtype tensor.DataType, device tensor.Device) (*tensor.RawTensor, error) {
	c.checkOutput(slot)
	t, err := c.alloc.Allocate(shape, dtype, device)
	if err != nil {
		return nil, fmt.Errorf("allocate output %d: %w", slot, err)
	}
	c.outputs[slot] = t
	return t, nil
}

// SetOutput places an existing tensor in an output slot without copying.
func (c *Context) SetOutput(slot int, t *tensor.RawTensor) {
	c.outputs[c.checkOutput(slot)] = t
}

// Output returns the tensor in an output slot, or nil if none was produced.
func (c *Context) Output(slot int) *tensor.RawTensor {
	return c.outputs[c.checkOutput(slot)]
}

// Outputs returns all output slots.
func (c *Context) Outputs() []*tensor.RawTensor {
	return c.outputs
}

// slotAllocator routes normalizer allocations into an output slot.
func (c *Context) slotAllocator(slot int) normalize.Allocator {
	return normalize.AllocatorFunc(func(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) (*tensor.RawTensor, error) {
		return c.allocateOutput(slot, shape, dtype, device)
	})
}

func (c *Context) clearOutputs() {
	for i := range c.outputs {
		c.outputs[i] = nil
	}
}

func (c *Context) checkInput(slot int) int {
	if slot < 0 || slot >= len(c.inputs) {
		panic(fmt.Sprintf("input slot %d out of range (have %d)", slot, len(c.inputs)))
	}
	return slot
}

func (c *Context) checkOutput(slot int) int {
	if slot < 0 || slot >= len(c.outputs) {
		panic(fmt.Sprintf("output slot %d out of range (have %d)", slot, len(c.outputs)))
	}
	return slot
}
