// Package cpu implements the CPU reference for the accelerated layout
// library: it packs standard tensors into a permuted physical arrangement,
// describes them with layout.Descriptor values and converts them back.
package cpu

import (
	"github.com/born-ml/relayout/internal/layout"
	"github.com/born-ml/relayout/internal/parallel"
	"github.com/born-ml/relayout/internal/tensor"
)

var _ layout.Converter = (*CPUBackend)(nil)

// CPUBackend packs and converts tensors on the CPU.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a CPU backend using the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}
