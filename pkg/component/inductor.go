package component

import (
	"github.com/circuitfx/ampsim/pkg/linsolve"
	"github.com/circuitfx/ampsim/pkg/unknown"
	"github.com/circuitfx/ampsim/pkg/util"
)

// Inductor is a reactive two-terminal device represented by its
// backward-Euler companion model with an explicit branch current
// unknown I(name): conductance L/dt on the branch equation, plus a
// history term from the previous timestep's branch current.
type Inductor struct {
	name string
	npos int
	nneg int
	l    float64
	iPos int
	iNeg int
	iBr  int
}

// NewInductor builds an inductor between nodes npos and nneg with
// inductance l henries. Unlike a resistor or capacitor, an inductor
// introduces its own branch-current unknown I(name).
func NewInductor(name string, npos, nneg int, l float64) *Inductor {
	return &Inductor{name: name, npos: npos, nneg: nneg, l: l}
}

func (l *Inductor) Name() string { return l.name }

func (l *Inductor) Unknowns() []unknown.Label {
	return []unknown.Label{
		unknown.Voltage(l.npos),
		unknown.Voltage(l.nneg),
		unknown.Current(l.name),
	}
}

func (l *Inductor) Bind(lookup Lookup) error {
	var err error
	if l.iPos, err = lookup(unknown.Voltage(l.npos)); err != nil {
		return err
	}
	if l.iNeg, err = lookup(unknown.Voltage(l.nneg)); err != nil {
		return err
	}
	if l.iBr, err = lookup(unknown.Current(l.name)); err != nil {
		return err
	}
	return nil
}

// Stamp contributes the branch-current coupling rows/columns plus the
// L/dt companion conductance on the branch equation, and the Newton
// residual of both: the node rows carry -I(name) evaluated at the
// current Newton iterate (the branch current is exactly linear in its
// own unknown, so this residual is exact, not approximate - the same
// completion Resistor carries), and the branch equation carries the
// backward-Euler residual (x_prev_newton[n1]-x_prev_newton[n2]) -
// L/dt*(I_iter - I_prev_timestep), which is zero exactly when the
// companion model's defining equation already holds.
func (l *Inductor) Stamp(sys *linsolve.System, xPrevTimestep, xPrevNewton []float64, dt float64) {
	n1, n2, ni := l.iPos, l.iNeg, l.iBr
	g := l.l * util.GetBDFcoeffs(1, dt)[0]

	sys.IncrementLHS(n1, ni, 1)
	sys.IncrementLHS(n2, ni, -1)
	sys.IncrementLHS(ni, n1, -1)
	sys.IncrementLHS(ni, n2, 1)
	sys.IncrementLHS(ni, ni, g)

	iIter := voltageAt(xPrevNewton, ni)
	iHist := voltageAt(xPrevTimestep, ni)
	vIter := voltageAt(xPrevNewton, n1) - voltageAt(xPrevNewton, n2)

	sys.IncrementRHS(n1, -iIter)
	sys.IncrementRHS(n2, iIter)
	sys.IncrementRHS(ni, vIter-g*(iIter-iHist))
}
