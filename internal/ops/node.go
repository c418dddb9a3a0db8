// Package ops is the operator harness around the layout normalizer: graph
// nodes with attributes, a kernel registry keyed by op type, device, element
// type and label, and the per-call kernel context that hands inputs to a
// kernel and collects its outputs.
package ops

import (
	"errors"
	"fmt"

	"github.com/born-ml/relayout/internal/tensor"
)

// ErrMissingAttr is returned when a kernel needs an attribute the node lacks.
var ErrMissingAttr = errors.New("missing attribute")

// AttrType identifies which field of an Attribute holds the value.
type AttrType int

// Attribute types.
const (
	AttrString AttrType = iota + 1
)

// Node is one operation in a graph.
type Node struct {
	Name       string        // Node name
	OpType     string        // Operation type, e.g. "ToStandardLayout"
	Device     tensor.Device // Device the node is placed on
	Label      string        // Kernel label, selects between kernels of the same op
	Attributes []Attribute   // Operation attributes
}

// Attribute represents a node attribute.
type Attribute struct {
	Name string
	Type AttrType
	S    string // STRING value
}

// StringAttr returns a string attribute.
func StringAttr(name, value string) Attribute {
	return Attribute{Name: name, Type: AttrString, S: value}
}

func (n *Node) attr(name string) (*Attribute, bool) {
	for i := range n.Attributes {
		if n.Attributes[i].Name == name {
			return &n.Attributes[i], true
		}
	}
	return nil, false
}

// RequireAttrString returns a string attribute that must be present.
func RequireAttrString(node *Node, name string) (string, error) {
	a, ok := node.attr(name)
	if !ok {
		return "", fmt.Errorf("node %q: %w %q", node.Name, ErrMissingAttr, name)
	}
	if a.Type != AttrString {
		return "", fmt.Errorf("node %q: attribute %q is not a string", node.Name, name)
	}
	return a.S, nil
}

// AttrDataType reads the element type attribute "T".
func AttrDataType(node *Node) (tensor.DataType, error) {
	name, err := RequireAttrString(node, AttrT)
	if err != nil {
		return tensor.Invalid, err
	}
	dt, err := tensor.ParseDataType(name)
	if err != nil {
		return tensor.Invalid, fmt.Errorf("node %q: %w", node.Name, err)
	}
	return dt, nil
}
