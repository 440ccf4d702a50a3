// Package component implements the closed set of circuit element
// variants the transient engine understands: Resistor, Capacitor,
// Inductor, Diode, DCInput, VoltageIn and VoltageOut. Each variant
// implements a three-operation stamping contract: declare the unknowns
// it introduces, bind its indices once the unknown registry is frozen,
// and stamp its contribution into the shared linear system on every
// Newton iteration.
package component

import (
	"github.com/circuitfx/ampsim/pkg/linsolve"
	"github.com/circuitfx/ampsim/pkg/unknown"
)

// Lookup resolves a symbolic unknown label to its frozen integer index.
type Lookup func(unknown.Label) (int, error)

// Component is the capability set every circuit element implements.
// The set of concrete variants is closed and small, so a single
// interface with exactly these three operations is preferred over a
// deeper class hierarchy: the hot loop dispatches through a slice of
// this interface, and netlist construction maps one
// variant per element type.
type Component interface {
	// Name identifies the component for error messages and the
	// V(node)/I(name) unknown labels its branch current introduces.
	Name() string

	// Unknowns lists the unknowns this component introduces so the
	// circuit can register them before the registry is frozen.
	Unknowns() []unknown.Label

	// Bind caches this component's unknown indices after the registry
	// is frozen. Called exactly once before any Stamp call.
	Bind(lookup Lookup) error

	// Stamp adds this component's contribution to sys.A and sys.B.
	// xPrevTimestep is the committed solution from the previous
	// sample (read-only - never mutated mid-Newton); xPrevNewton is
	// the current Newton iterate. Stamp must only write through
	// sys.IncrementLHS/IncrementRHS.
	Stamp(sys *linsolve.System, xPrevTimestep, xPrevNewton []float64, dt float64)
}

// Nonlinear is implemented by components whose stamp depends on the
// current Newton iterate in a genuinely nonlinear way (only Diode, in
// this engine). The transient driver does not need to special-case
// these beyond calling Stamp every iteration; the marker exists so
// diagnostics and tests can identify which components drive Newton
// iteration count.
type Nonlinear interface {
	Component
	IsNonlinear() bool
}

// voltageAt reads an unknown's value out of a solution vector. Ground
// is a real registered unknown like any other (pinned to zero by the
// linear system, not special-cased here), so this is a plain indexed
// read with a defensive bounds check: an index outside a nil or short
// vector reads as zero.
func voltageAt(x []float64, idx int) float64 {
	if idx < 0 || idx >= len(x) {
		return 0
	}
	return x[idx]
}
