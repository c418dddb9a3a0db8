// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package normalize converts tensors held in an accelerated library's
// internal layout back into the standard row-major layout.
//
// Tensors already in the standard layout are forwarded without a copy.
// Otherwise the output shape is reconstructed from the layout's (size,
// stride) pairs and the data is rewritten by the library's Converter.
//
// Example:
//
//	n, err := normalize.New(normalize.Config{DataFormat: "NHWC", DataType: tensor.Float32}, conv)
//	if err != nil {
//	    return err
//	}
//	res, err := n.Normalize(in, desc, tensor.Float32)
//	if err != nil {
//	    return err // always fatal: ErrConfigurationMismatch, ErrAllocation or ErrConversion
//	}
//	if res.Ownership == normalize.Owned {
//	    defer res.Tensor.Release()
//	}
package normalize

import (
	"go.uber.org/zap"

	"github.com/born-ml/relayout/internal/layout"
	"github.com/born-ml/relayout/internal/normalize"
	"github.com/born-ml/relayout/tensor"
)

// Layout metadata types.
type (
	// Descriptor is the layout metadata attached to a tensor.
	Descriptor = layout.Descriptor

	// Handle is an opaque description of a target layout.
	Handle = layout.Handle

	// Converter rewrites a buffer into the layout named by a Handle.
	Converter = layout.Converter

	// ConverterFunc adapts a function to Converter.
	ConverterFunc = layout.ConverterFunc
)

// Operator types.
type (
	// Normalizer is the layout normalization operator.
	Normalizer = normalize.Normalizer

	// Config is the fixed operator configuration.
	Config = normalize.Config

	// Option customises a Normalizer.
	Option = normalize.Option

	// Allocator provides output tensors.
	Allocator = normalize.Allocator

	// AllocatorFunc adapts a function to Allocator.
	AllocatorFunc = normalize.AllocatorFunc

	// Result is the output of Normalize.
	Result = normalize.Result

	// Ownership tells whether a Result aliases its input.
	Ownership = normalize.Ownership

	// Error is the error type returned by Normalize.
	Error = normalize.Error

	// Kind classifies an Error.
	Kind = normalize.Kind

	// Dimension is one (size, stride) pair of layout metadata.
	Dimension = normalize.Dimension
)

// Ownership values.
const (
	Aliased = normalize.Aliased
	Owned   = normalize.Owned
)

// Failure kinds.
const (
	KindConfigurationMismatch = normalize.KindConfigurationMismatch
	KindAllocation            = normalize.KindAllocation
	KindConversion            = normalize.KindConversion
)

// SupportedType is the only element type the operator accepts.
const SupportedType tensor.DataType = normalize.SupportedType

// Error sentinels. None of them is retryable.
var (
	ErrConfigurationMismatch = normalize.ErrConfigurationMismatch
	ErrAllocation            = normalize.ErrAllocation
	ErrConversion            = normalize.ErrConversion
)

// HeapAllocator allocates fresh Go heap buffers.
var HeapAllocator = normalize.HeapAllocator

// New creates a Normalizer that converts through conv.
func New(cfg Config, conv Converter, opts ...Option) (*Normalizer, error) {
	return normalize.New(cfg, conv, opts...)
}

// WithAllocator sets the allocator used for converted outputs.
func WithAllocator(a Allocator) Option {
	return normalize.WithAllocator(a)
}

// WithLogger sets the logger for trace events.
func WithLogger(l *zap.Logger) Option {
	return normalize.WithLogger(l)
}

// SetLogger replaces the package-wide trace logger. nil restores the no-op
// logger.
func SetLogger(l *zap.Logger) {
	normalize.SetLogger(l)
}

// StandardLayout returns a descriptor for a tensor already in the standard
// layout.
func StandardLayout() Descriptor {
	return layout.Standard()
}

// ReconstructShape orders (size, stride) pairs by stride descending, ties
// by size descending, and returns the sizes in that order.
func ReconstructShape(sizes, strides []int) tensor.Shape {
	return normalize.ReconstructShape(sizes, strides)
}

// SortDimensions returns the (size, stride) pairs in the order
// ReconstructShape uses.
func SortDimensions(sizes, strides []int) []Dimension {
	return normalize.SortDimensions(sizes, strides)
}

// IsFatal reports whether err came from the operator.
func IsFatal(err error) bool {
	return normalize.IsFatal(err)
}
