package ops

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/born-ml/relayout/internal/tensor"
)

// ErrUnknownKernel is returned when no kernel matches a node.
var ErrUnknownKernel = errors.New("no kernel registered")

// Kernel is a constructed operator, bound to one node's attributes.
type Kernel interface {
	Compute(ctx *Context) error
}

// Factory builds a Kernel from a node. It runs once per node, so attribute
// errors surface at construction time.
type Factory func(node *Node) (Kernel, error)

// KernelKey selects a kernel implementation.
type KernelKey struct {
	OpType   string
	Device   tensor.Device
	DataType tensor.DataType
	Label    string
}

// String implements fmt.Stringer.
func (k KernelKey) String() string {
	s := fmt.Sprintf("%s/%s/%s", k.OpType, k.Device, k.DataType)
	if k.Label != "" {
		s += "[" + k.Label + "]"
	}
	return s
}

// Registry maps kernel keys to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[KernelKey]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[KernelKey]Factory),
	}
}

// Register adds a kernel factory. Registering the same key twice is an error.
func (r *Registry) Register(key KernelKey, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[key]; ok {
		return fmt.Errorf("kernel %s already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// Get returns the factory for a key.
func (r *Registry) Get(key KernelKey) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[key]
	return f, ok
}

// KeyFor derives the kernel key of a node from its op type, device, label
// and "T" attribute.
func KeyFor(node *Node) (KernelKey, error) {
	dt, err := AttrDataType(node)
	if err != nil {
		return KernelKey{}, err
	}
	return KernelKey{
		OpType:   node.OpType,
		Device:   node.Device,
		DataType: dt,
		Label:    node.Label,
	}, nil
}

// Create constructs the kernel registered for node.
func (r *Registry) Create(node *Node) (Kernel, error) {
	key, err := KeyFor(node)
	if err != nil {
		return nil, err
	}
	factory, ok := r.Get(key)
	if !ok {
		return nil, fmt.Errorf("node %q: %w for %s", node.Name, ErrUnknownKernel, key)
	}
	k, err := factory(node)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", node.Name, err)
	}
	return k, nil
}

// SupportedKernels returns all registered keys in a stable order.
func (r *Registry) SupportedKernels() []KernelKey {
	r.mu.RLock()
	keys := make([]KernelKey, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// Run computes k on ctx. If the kernel fails, every output slot is cleared
// so the caller never sees a partially produced tensor.
func Run(k Kernel, ctx *Context) error {
	if err := k.Compute(ctx); err != nil {
		ctx.clearOutputs()
		return err
	}
	return nil
}
