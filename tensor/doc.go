// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor types used by relayout.
//
// # Overview
//
// A RawTensor is a contiguous, reference-counted byte buffer with a shape,
// an element type and a device. Tensors in the standard layout are
// row-major. Tensors produced by an accelerated library carry a separate
// layout descriptor (see the normalize package) and are converted back
// before the rest of a graph reads them.
//
// # Basic Usage
//
//	import "github.com/born-ml/relayout/tensor"
//
//	func main() {
//	    raw, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	    fmt.Println(raw)           // float32[2 3] on CPU
//	    fmt.Println(raw.Strides()) // [3 1]
//	}
package tensor
