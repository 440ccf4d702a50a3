package component

import (
	"github.com/circuitfx/ampsim/pkg/linsolve"
	"github.com/circuitfx/ampsim/pkg/unknown"
)

// DCInput enforces a constant voltage V(npos) - V(nneg) = v0 via a
// branch-current unknown, exactly like VoltageIn except the enforced
// voltage is a netlist constant rather than a streamed audio sample.
type DCInput struct {
	name string
	npos int
	nneg int
	v0   float64
	iPos int
	iNeg int
	iBr  int
}

// NewDCInput builds a DC voltage source between nodes npos and nneg
// holding v0 volts.
func NewDCInput(name string, npos, nneg int, v0 float64) *DCInput {
	return &DCInput{name: name, npos: npos, nneg: nneg, v0: v0}
}

func (d *DCInput) Name() string { return d.name }

func (d *DCInput) Unknowns() []unknown.Label {
	return []unknown.Label{
		unknown.Voltage(d.npos),
		unknown.Voltage(d.nneg),
		unknown.Current(d.name),
	}
}

func (d *DCInput) Bind(lookup Lookup) error {
	var err error
	if d.iPos, err = lookup(unknown.Voltage(d.npos)); err != nil {
		return err
	}
	if d.iNeg, err = lookup(unknown.Voltage(d.nneg)); err != nil {
		return err
	}
	if d.iBr, err = lookup(unknown.Current(d.name)); err != nil {
		return err
	}
	return nil
}

func (d *DCInput) Stamp(sys *linsolve.System, _, xPrevNewton []float64, _ float64) {
	stampVoltageConstraint(sys, xPrevNewton, d.iPos, d.iNeg, d.iBr, d.v0)
}

// stampVoltageConstraint contributes the branch-current constraint
// shared by DCInput and VoltageIn: V(n1) - V(n2) = enforced, solved as
// a branch-current unknown the rest of the circuit can draw through.
func stampVoltageConstraint(sys *linsolve.System, xPrevNewton []float64, n1, n2, ni int, enforced float64) {
	sys.IncrementLHS(ni, n1, 1)
	sys.IncrementLHS(ni, n2, -1)
	sys.IncrementLHS(n1, ni, -1)
	sys.IncrementLHS(n2, ni, 1)

	v1 := voltageAt(xPrevNewton, n1)
	v2 := voltageAt(xPrevNewton, n2)
	iBr := voltageAt(xPrevNewton, ni)

	sys.IncrementRHS(ni, enforced-(v1-v2))
	sys.IncrementRHS(n1, iBr)
	sys.IncrementRHS(n2, -iBr)
}
