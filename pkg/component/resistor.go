package component

import (
	"github.com/circuitfx/ampsim/pkg/linsolve"
	"github.com/circuitfx/ampsim/pkg/unknown"
)

// Resistor is a linear two-terminal device: conductance G = 1/R.
type Resistor struct {
	name string
	npos int
	nneg int
	r    float64
	iPos int
	iNeg int
}

// NewResistor builds a resistor between nodes npos and nneg with
// resistance r ohms.
func NewResistor(name string, npos, nneg int, r float64) *Resistor {
	return &Resistor{name: name, npos: npos, nneg: nneg, r: r}
}

func (r *Resistor) Name() string { return r.name }

func (r *Resistor) Unknowns() []unknown.Label {
	return []unknown.Label{unknown.Voltage(r.npos), unknown.Voltage(r.nneg)}
}

func (r *Resistor) Bind(lookup Lookup) error {
	var err error
	if r.iPos, err = lookup(unknown.Voltage(r.npos)); err != nil {
		return err
	}
	if r.iNeg, err = lookup(unknown.Voltage(r.nneg)); err != nil {
		return err
	}
	return nil
}

// Stamp contributes the symmetric four-entry conductance stamp, plus
// the Newton residual term -g*(x_prev_newton[n1]-x_prev_newton[n2])
// evaluated at the current iterate. A resistor's current is exactly
// linear, so this residual is not an approximation - it is the same
// completion Diode carries for its nonlinear current, applied to a
// device whose current happens to be linear in its own voltage.
// Without it, a resistor's contribution never "settles" across Newton
// iterations in a circuit that also carries reactive history, since
// nothing would offset the conductance the LHS keeps re-stamping.
func (r *Resistor) Stamp(sys *linsolve.System, _, xPrevNewton []float64, _ float64) {
	g := 1.0 / r.r
	n1, n2 := r.iPos, r.iNeg

	sys.IncrementLHS(n1, n1, g)
	sys.IncrementLHS(n2, n2, g)
	sys.IncrementLHS(n1, n2, -g)
	sys.IncrementLHS(n2, n1, -g)

	v := voltageAt(xPrevNewton, n1) - voltageAt(xPrevNewton, n2)
	sys.IncrementRHS(n1, -g*v)
	sys.IncrementRHS(n2, g*v)
}
