// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go reference implementation of an accelerated
// memory layout.
//
// # Overview
//
// The backend plays the role of an accelerated library for tests, tools and
// demos:
//   - Pack rearranges a standard tensor into a permuted physical order and
//     returns the layout descriptor such a library would attach to it
//   - Convert gathers a packed buffer back into row-major order
//   - Transpose permutes the axes of a standard tensor
//
// Conversion fans out over goroutines for large tensors and always finishes
// before returning.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/relayout/backend/cpu"
//	    "github.com/born-ml/relayout/normalize"
//	    "github.com/born-ml/relayout/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x, _ := tensor.FromSlice(data, tensor.Shape{2, 3, 4})
//
//	    // Store x with its last two axes swapped in memory.
//	    packed, desc, _ := backend.Pack(x, []int{0, 2, 1})
//
//	    n, _ := normalize.New(normalize.Config{DataFormat: "NHWC", DataType: tensor.Float32}, backend)
//	    res, _ := n.Normalize(packed, desc, tensor.Float32)
//	    // res.Tensor has shape [2 3 4] and the values of x.
//	}
package cpu
