package component

import (
	"github.com/circuitfx/ampsim/pkg/linsolve"
	"github.com/circuitfx/ampsim/pkg/unknown"
	"github.com/circuitfx/ampsim/pkg/util"
)

// Capacitor is a reactive two-terminal device represented by its
// backward-Euler companion model: conductance G = C/dt in parallel
// with a current source proportional to the previous timestep's
// voltage across the device.
type Capacitor struct {
	name string
	npos int
	nneg int
	c    float64
	iPos int
	iNeg int
}

// NewCapacitor builds a capacitor between nodes npos and nneg with
// capacitance c farads.
func NewCapacitor(name string, npos, nneg int, c float64) *Capacitor {
	return &Capacitor{name: name, npos: npos, nneg: nneg, c: c}
}

func (c *Capacitor) Name() string { return c.name }

func (c *Capacitor) Unknowns() []unknown.Label {
	return []unknown.Label{unknown.Voltage(c.npos), unknown.Voltage(c.nneg)}
}

func (c *Capacitor) Bind(lookup Lookup) error {
	var err error
	if c.iPos, err = lookup(unknown.Voltage(c.npos)); err != nil {
		return err
	}
	if c.iNeg, err = lookup(unknown.Voltage(c.nneg)); err != nil {
		return err
	}
	return nil
}

// Stamp contributes the companion conductance G = C/dt plus the
// Newton residual G*(v_prev_timestep - v_prev_newton): v_prev_timestep
// is the voltage across the capacitor committed at the end of the
// previous sample (the backward-Euler history term), and subtracting
// the current Newton iterate's voltage is the same residual completion
// every other time-coupled or nonlinear stamp in this engine carries -
// without it the history term would keep reapplying itself every
// Newton iteration instead of settling once the iterate catches up to
// it.
func (c *Capacitor) Stamp(sys *linsolve.System, xPrevTimestep, xPrevNewton []float64, dt float64) {
	g := c.c * util.GetBDFcoeffs(1, dt)[0]
	n1, n2 := c.iPos, c.iNeg

	sys.IncrementLHS(n1, n1, g)
	sys.IncrementLHS(n2, n2, g)
	sys.IncrementLHS(n1, n2, -g)
	sys.IncrementLHS(n2, n1, -g)

	vHist := voltageAt(xPrevTimestep, n1) - voltageAt(xPrevTimestep, n2)
	vIter := voltageAt(xPrevNewton, n1) - voltageAt(xPrevNewton, n2)
	residual := g * (vHist - vIter)
	sys.IncrementRHS(n1, residual)
	sys.IncrementRHS(n2, -residual)
}
