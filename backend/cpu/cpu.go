// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/relayout/internal/backend/cpu"
	"github.com/born-ml/relayout/internal/layout"
	"github.com/born-ml/relayout/internal/parallel"
)

// Backend represents the CPU reference backend.
type Backend = internalcpu.CPUBackend

// Plan is the standard-layout handle produced by Pack.
type Plan = internalcpu.Plan

// ParallelConfig controls how Convert splits work across goroutines.
type ParallelConfig = parallel.Config

// Compile-time check that Backend implements layout.Converter.
var _ layout.Converter = (*Backend)(nil)

// New creates a new CPU backend with the default parallel settings.
//
// Example:
//
//	backend := cpu.New()
//	packed, desc, err := backend.Pack(x, []int{0, 2, 3, 1})
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with explicit parallel settings.
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultParallelConfig returns the settings used by New.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// SequentialConfig returns settings that run Convert on the calling goroutine.
func SequentialConfig() ParallelConfig {
	return parallel.Sequential()
}
