// Package layout describes tensors that live in an accelerated library's
// internal memory arrangement and the primitive that converts them back.
//
// A Descriptor travels alongside a tensor buffer. When Accelerated is false
// the buffer is already in the standard row-major layout and the geometric
// fields are ignored. When it is true, Sizes and Strides describe the
// standard layout the data converts to (in whatever dimension order the
// accelerated library reports), and Standard is the library's opaque handle
// for that target layout.
package layout

import (
	"errors"
	"fmt"
)

// ErrUnsupportedHandle is returned by a Converter given a Handle it did not produce.
var ErrUnsupportedHandle = errors.New("unsupported layout handle")

// Handle is an opaque description of a target layout. Only the Converter of
// the library that created it can interpret it.
type Handle interface {
	fmt.Stringer
}

// Converter rewrites a buffer from the accelerated layout into the layout
// described by dst, writing the result into out.
type Converter interface {
	Convert(src []byte, dst Handle, out []byte) error
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(src []byte, dst Handle, out []byte) error

// Convert calls f(src, dst, out).
func (f ConverterFunc) Convert(src []byte, dst Handle, out []byte) error {
	return f(src, dst, out)
}

// Descriptor is the layout metadata attached to a tensor.
type Descriptor struct {
	Accelerated bool
	Sizes       []int
	Strides     []int
	Standard    Handle
}

// Standard returns the descriptor of a tensor already in standard layout.
func Standard() Descriptor {
	return Descriptor{}
}

// Dims returns the dimension count recorded in the descriptor.
func (d Descriptor) Dims() int {
	return len(d.Sizes)
}

// Validate checks that the geometric fields are consistent. Zero sizes are
// allowed and describe an empty tensor.
func (d Descriptor) Validate() error {
	if !d.Accelerated {
		return nil
	}
	if len(d.Sizes) != len(d.Strides) {
		return fmt.Errorf("layout: %d sizes but %d strides", len(d.Sizes), len(d.Strides))
	}
	for i, size := range d.Sizes {
		if size < 0 {
			return fmt.Errorf("layout: negative size %d at index %d", size, i)
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (d Descriptor) String() string {
	if !d.Accelerated {
		return "standard"
	}
	return fmt.Sprintf("accelerated(sizes=%v strides=%v)", d.Sizes, d.Strides)
}
