// Package normalize converts tensors held in an accelerated library's
// internal layout back into the standard row-major layout.
//
// A Normalizer is configured once with the operator's declared data format
// and element type. Each call to Normalize either forwards a standard-layout
// input unchanged or allocates a new tensor whose shape is reconstructed from
// the layout metadata and fills it through a layout.Converter.
//
// The data format attribute is recorded for diagnostics only; the output
// shape is always derived from the size/stride metadata.
package normalize

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/born-ml/relayout/internal/layout"
	"github.com/born-ml/relayout/internal/tensor"
)

// SupportedType is the element type this operator is specialised for.
const SupportedType = tensor.Float32

// Config is the fixed operator configuration.
type Config struct {
	DataFormat string          // Declared data format. Advisory only.
	DataType   tensor.DataType // Declared element type.
}

// Allocator provides output tensors on the conversion path.
type Allocator interface {
	Allocate(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) (*tensor.RawTensor, error)
}

// AllocatorFunc adapts a function to the Allocator interface.
type AllocatorFunc func(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) (*tensor.RawTensor, error)

// Allocate calls f.
func (f AllocatorFunc) Allocate(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) (*tensor.RawTensor, error) {
	return f(shape, dtype, device)
}

// HeapAllocator allocates fresh Go heap buffers.
var HeapAllocator Allocator = AllocatorFunc(tensor.NewRaw)

// Ownership tells the caller whether a Result aliases the input.
type Ownership int

// Ownership values.
const (
	Aliased Ownership = iota // Result is the input tensor itself.
	Owned                    // Result is a new tensor owned by the caller.
)

// String returns "aliased" or "owned".
func (o Ownership) String() string {
	if o == Owned {
		return "owned"
	}
	return "aliased"
}

// Result is the output of Normalize.
type Result struct {
	Tensor    *tensor.RawTensor
	Ownership Ownership
}

// Option customises a Normalizer.
type Option func(*Normalizer)

// WithAllocator sets the allocator used on the conversion path.
func WithAllocator(a Allocator) Option {
	return func(n *Normalizer) {
		n.alloc = a
	}
}

// WithLogger sets the logger for trace events. Without it the package
// Logger is used.
func WithLogger(l *zap.Logger) Option {
	return func(n *Normalizer) {
		n.logger = l
	}
}

// Normalizer is the layout normalization operator. It holds no mutable
// state and is safe for concurrent use on distinct tensors.
type Normalizer struct {
	cfg    Config
	conv   layout.Converter
	alloc  Allocator
	logger *zap.Logger
}

// New creates a Normalizer. It fails when cfg.DataType is not SupportedType
// or conv is nil.
func New(cfg Config, conv layout.Converter, opts ...Option) (*Normalizer, error) {
	if cfg.DataType != SupportedType {
		return nil, newError(KindConfigurationMismatch,
			fmt.Sprintf("operator type %s is not supported (want %s)", cfg.DataType, SupportedType), nil)
	}
	if conv == nil {
		return nil, fmt.Errorf("normalize: nil converter")
	}

	n := &Normalizer{
		cfg:   cfg,
		conv:  conv,
		alloc: HeapAllocator,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.alloc == nil {
		n.alloc = HeapAllocator
	}
	if n.logger != nil {
		n.logger = n.logger.With(zap.String("data_format", n.cfg.DataFormat))
	}
	return n, nil
}

// Config returns the operator configuration.
func (n *Normalizer) Config() Config {
	return n.cfg
}

// log returns the instance logger, which New binds to data_format, or the
// package logger bound per call.
func (n *Normalizer) log() *zap.Logger {
	if n.logger != nil {
		return n.logger
	}
	return Logger().With(zap.String("data_format", n.cfg.DataFormat))
}

// Normalize returns in converted to the standard layout.
//
// When desc is not accelerated, the input is returned as is with Ownership
// Aliased; nothing is allocated or copied. Otherwise the operator type, the
// input type and outType must all match, the output shape is reconstructed
// from desc, a new tensor is allocated and filled by the converter, and the
// result is Owned by the caller.
//
// Errors are *Error values matching ErrConfigurationMismatch, ErrAllocation
// or ErrConversion. On error no tensor is returned.
func (n *Normalizer) Normalize(in *tensor.RawTensor, desc layout.Descriptor, outType tensor.DataType) (Result, error) {
	return n.NormalizeWith(n.alloc, in, desc, outType)
}

// NormalizeWith is Normalize with a per-call allocator, used by callers that
// own the output slot (such as an operator kernel context).
func (n *Normalizer) NormalizeWith(alloc Allocator, in *tensor.RawTensor, desc layout.Descriptor, outType tensor.DataType) (Result, error) {
	if alloc == nil {
		alloc = n.alloc
	}
	log := n.log()

	if !desc.Accelerated {
		log.Debug("no conversion needed, forwarding input")
		return Result{Tensor: in, Ownership: Aliased}, nil
	}

	if in == nil {
		return Result{}, n.fail(log, newError(KindConfigurationMismatch, "nil input tensor", nil))
	}
	if in.DType() != n.cfg.DataType || outType != n.cfg.DataType {
		return Result{}, n.fail(log, newError(KindConfigurationMismatch,
			fmt.Sprintf("operator type %s, input type %s, output type %s", n.cfg.DataType, in.DType(), outType), nil))
	}
	if err := desc.Validate(); err != nil {
		return Result{}, n.fail(log, newError(KindConfigurationMismatch, "", err))
	}

	for i := range desc.Sizes {
		log.Debug("layout dimension",
			zap.Int("size", desc.Sizes[i]),
			zap.Int("stride", desc.Strides[i]))
	}
	dims := SortDimensions(desc.Sizes, desc.Strides)
	for _, d := range dims {
		log.Debug("added dimension", zap.Int("size", d.Size))
	}
	shape := shapeOf(dims)

	out, err := alloc.Allocate(shape, n.cfg.DataType, in.Device())
	if err != nil {
		return Result{}, n.fail(log, newError(KindAllocation, fmt.Sprintf("shape %v", shape), err))
	}
	if out == nil {
		return Result{}, n.fail(log, newError(KindAllocation, fmt.Sprintf("shape %v: allocator returned no tensor", shape), nil))
	}

	if err := n.conv.Convert(in.Data(), desc.Standard, out.Data()); err != nil {
		out.Release()
		return Result{}, n.fail(log, newError(KindConversion, fmt.Sprintf("target %v", desc.Standard), err))
	}

	log.Debug("conversion to standard layout complete", zap.Ints("shape", shape))
	return Result{Tensor: out, Ownership: Owned}, nil
}

// MustNormalize is like Normalize but panics with the *Error on failure.
func (n *Normalizer) MustNormalize(in *tensor.RawTensor, desc layout.Descriptor, outType tensor.DataType) Result {
	res, err := n.Normalize(in, desc, outType)
	if err != nil {
		panic(err)
	}
	return res
}

func (n *Normalizer) fail(log *zap.Logger, err *Error) *Error {
	log.Debug("conversion to standard layout failed",
		zap.Stringer("kind", err.Kind),
		zap.Error(err))
	return err
}
