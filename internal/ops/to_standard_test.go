package ops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/born-ml/relayout/internal/backend/cpu"
	"github.com/born-ml/relayout/internal/layout"
	"github.com/born-ml/relayout/internal/normalize"
	"github.com/born-ml/relayout/internal/tensor"
)

func iotaTensor(t *testing.T, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	data := make([]float32, shape.NumElements())
	for i := range data {
		data[i] = float32(i)
	}
	raw, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return raw
}

func TestToStandard_EndToEnd(t *testing.T) {
	backend := cpu.New()
	r := NewDefaultRegistry(backend)

	kernel, err := r.Create(toStandardNode("float32"))
	require.NoError(t, err)

	for _, physical := range [][]int{{0, 2, 3, 1}, {3, 2, 1, 0}, {0, 1, 2, 3}} {
		original := iotaTensor(t, tensor.Shape{2, 3, 4, 5})
		packed, desc, err := backend.Pack(original, physical)
		require.NoError(t, err)

		ctx := NewContext([]Input{{Tensor: packed, Layout: desc}}, []tensor.DataType{tensor.Float32})
		require.NoError(t, Run(kernel, ctx))

		out := ctx.Output(0)
		require.NotNil(t, out)
		assert.Equal(t, tensor.Shape{2, 3, 4, 5}, out.Shape())
		assert.Equal(t, original.AsFloat32(), out.AsFloat32(), "physical order %v", physical)
		assert.False(t, out.SharesBuffer(packed))
	}
}

func TestToStandard_PassThrough(t *testing.T) {
	r := NewDefaultRegistry(cpu.New())
	kernel, err := r.Create(toStandardNode("float32"))
	require.NoError(t, err)

	var allocs int
	alloc := normalize.AllocatorFunc(func(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) (*tensor.RawTensor, error) {
		allocs++
		return tensor.NewRaw(shape, dtype, device)
	})

	in := iotaTensor(t, tensor.Shape{3, 2})
	ctx := NewContext([]Input{{Tensor: in, Layout: layout.Standard()}}, []tensor.DataType{tensor.Float32},
		WithOutputAllocator(alloc))
	require.NoError(t, Run(kernel, ctx))

	assert.Same(t, in, ctx.Output(0))
	assert.Zero(t, allocs)
}

func TestToStandard_TypeMismatch(t *testing.T) {
	r := NewDefaultRegistry(cpu.New())
	kernel, err := r.Create(toStandardNode("float32"))
	require.NoError(t, err)

	in, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	desc := layout.Descriptor{Accelerated: true, Sizes: []int{2, 2}, Strides: []int{1, 2}}

	ctx := NewContext([]Input{{Tensor: in, Layout: desc}}, []tensor.DataType{tensor.Float64})
	err = Run(kernel, ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, normalize.ErrConfigurationMismatch)
	assert.Nil(t, ctx.Output(0))
}

func TestToStandard_ConversionFailureClearsOutput(t *testing.T) {
	broken := errors.New("primitive failed")
	conv := layout.ConverterFunc(func([]byte, layout.Handle, []byte) error { return broken })
	r := NewDefaultRegistry(conv)
	kernel, err := r.Create(toStandardNode("float32"))
	require.NoError(t, err)

	in := iotaTensor(t, tensor.Shape{2, 3})
	desc := layout.Descriptor{Accelerated: true, Sizes: []int{3, 2}, Strides: []int{1, 3}}
	ctx := NewContext([]Input{{Tensor: in, Layout: desc}}, []tensor.DataType{tensor.Float32})

	err = Run(kernel, ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, normalize.ErrConversion)
	assert.ErrorIs(t, err, broken)
	assert.Nil(t, ctx.Output(0))
}

func TestToStandard_AllocationFailure(t *testing.T) {
	r := NewDefaultRegistry(cpu.New())
	kernel, err := r.Create(toStandardNode("float32"))
	require.NoError(t, err)

	oom := errors.New("out of memory")
	alloc := normalize.AllocatorFunc(func(tensor.Shape, tensor.DataType, tensor.Device) (*tensor.RawTensor, error) {
		return nil, oom
	})

	original := iotaTensor(t, tensor.Shape{2, 3})
	packed, desc, err := cpu.New().Pack(original, []int{1, 0})
	require.NoError(t, err)
	ctx := NewContext([]Input{{Tensor: packed, Layout: desc}}, []tensor.DataType{tensor.Float32},
		WithOutputAllocator(alloc))

	err = Run(kernel, ctx)
	assert.ErrorIs(t, err, normalize.ErrAllocation)
	assert.ErrorIs(t, err, oom)
	assert.Nil(t, ctx.Output(0))
}

func TestToStandard_LogsNodeName(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	backend := cpu.New()
	kernel, err := NewDefaultRegistry(backend).Create(toStandardNode("float32"))
	require.NoError(t, err)

	packed, desc, err := backend.Pack(iotaTensor(t, tensor.Shape{2, 2}), []int{1, 0})
	require.NoError(t, err)
	require.NoError(t, Run(kernel, NewContext([]Input{{Tensor: packed, Layout: desc}}, []tensor.DataType{tensor.Float32})))

	done := logs.FilterMessage("conversion to standard layout complete").All()
	require.Len(t, done, 1)
	fields := done[0].ContextMap()
	assert.Equal(t, "conv1/to_standard", fields["node"])
	assert.Equal(t, OpToStandardLayout, fields["op"])
	assert.Equal(t, "NHWC", fields["data_format"])
}

func TestToStandard_LoggerBoundAtCreate(t *testing.T) {
	backend := cpu.New()
	r := NewDefaultRegistry(backend)

	before, err := r.Create(toStandardNode("float32"))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	after, err := r.Create(toStandardNode("float32"))
	require.NoError(t, err)

	packed, desc, err := backend.Pack(iotaTensor(t, tensor.Shape{2, 2}), []int{1, 0})
	require.NoError(t, err)
	run := func(k Kernel) {
		ctx := NewContext([]Input{{Tensor: packed, Layout: desc}}, []tensor.DataType{tensor.Float32})
		require.NoError(t, Run(k, ctx))
	}

	run(before)
	assert.Zero(t, logs.Len())

	run(after)
	assert.Equal(t, 1, logs.FilterMessage("conversion to standard layout complete").Len())
}

func TestContextSlots(t *testing.T) {
	in := iotaTensor(t, tensor.Shape{2})
	ctx := NewContext([]Input{{Tensor: in, Layout: layout.Standard()}}, []tensor.DataType{tensor.Float32}, WithDevice(tensor.CPU))

	assert.Equal(t, 1, ctx.NumInputs())
	assert.Equal(t, 1, ctx.NumOutputs())
	assert.Equal(t, tensor.Float32, ctx.InputType(0))
	assert.Equal(t, tensor.Float32, ctx.OutputType(0))
	assert.Panics(t, func() { ctx.Input(1) })
	assert.Panics(t, func() { ctx.Output(-1) })

	out, err := ctx.AllocateOutput(0, tensor.Shape{4})
	require.NoError(t, err)
	assert.Same(t, out, ctx.Output(0))
	assert.Equal(t, tensor.Float32, out.DType())

	_, err = ctx.AllocateOutput(0, tensor.Shape{-1})
	assert.Error(t, err)

	nilCtx := NewContext([]Input{{}}, nil)
	assert.Equal(t, tensor.Invalid, nilCtx.InputType(0))
}
