// Package unknown implements the symbolic unknown registry shared by a
// circuit's components: node voltages and branch currents are registered
// under stable string labels and frozen into dense integer indices before
// the transient driver starts solving.
package unknown

import (
	"errors"
	"fmt"
)

// ErrUnknownNotFound is returned by Lookup when a label was never
// registered. Seeing this at runtime means a component asked for an
// unknown it never declared - a programming error, not a netlist error.
var ErrUnknownNotFound = errors.New("unknown: label not found")

// ErrRegistryFrozen is returned by Register for a new label once Freeze
// has been called.
var ErrRegistryFrozen = errors.New("unknown: registry already frozen")

// Kind distinguishes the two unknown families a component can introduce.
type Kind int

const (
	NodeVoltage Kind = iota
	BranchCurrent
)

// Label identifies a scalar unknown: either V(node) or I(name).
type Label struct {
	Kind Kind
	Node int    // valid when Kind == NodeVoltage
	Name string // valid when Kind == BranchCurrent
}

// Voltage builds the label for a node voltage unknown.
func Voltage(node int) Label { return Label{Kind: NodeVoltage, Node: node} }

// Current builds the label for a branch current unknown.
func Current(name string) Label { return Label{Kind: BranchCurrent, Name: name} }

func (l Label) String() string {
	if l.Kind == NodeVoltage {
		return fmt.Sprintf("V(%d)", l.Node)
	}
	return fmt.Sprintf("I(%s)", l.Name)
}

// Registry maps symbolic labels to dense, stable integer indices.
// Indices are contiguous [0, N) and stable once Freeze is called.
type Registry struct {
	index  map[Label]int
	order  []Label
	frozen bool
}

// New returns an empty, unfrozen registry.
func New() *Registry {
	return &Registry{index: make(map[Label]int)}
}

// Register returns the index for label, assigning the next integer the
// first time it is seen. Idempotent: registering the same label twice
// returns the same index, even after Freeze. Registering a new label
// fails once the registry is frozen.
func (r *Registry) Register(label Label) (int, error) {
	if idx, ok := r.index[label]; ok {
		return idx, nil
	}
	if r.frozen {
		return 0, fmt.Errorf("%w: %s", ErrRegistryFrozen, label)
	}
	idx := len(r.order)
	r.index[label] = idx
	r.order = append(r.order, label)
	return idx, nil
}

// Lookup returns the index assigned to label, or ErrUnknownNotFound.
func (r *Registry) Lookup(label Label) (int, error) {
	idx, ok := r.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNotFound, label)
	}
	return idx, nil
}

// Freeze closes the registry to further registration. Len and existing
// indices remain valid and stable for the lifetime of the registry.
func (r *Registry) Freeze() { r.frozen = true }

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool { return r.frozen }

// Len returns the total number of registered unknowns, N.
func (r *Registry) Len() int { return len(r.order) }

// Labels returns the registered labels in registration order, index i
// of the slice corresponding to unknown index i.
func (r *Registry) Labels() []Label {
	out := make([]Label, len(r.order))
	copy(out, r.order)
	return out
}
