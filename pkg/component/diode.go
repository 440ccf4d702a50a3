package component

import (
	"math"

	"github.com/circuitfx/ampsim/internal/consts"
	"github.com/circuitfx/ampsim/pkg/linsolve"
	"github.com/circuitfx/ampsim/pkg/unknown"
)

// expArgCeiling clamps the diode exponent argument to avoid exp()
// overflowing to +Inf under heavy forward bias and poisoning the
// matrix; exp(40) is already far beyond any physically meaningful
// diode current.
const expArgCeiling = 40.0

// Diode is the only nonlinear device this engine models:
// I_d = Is * (exp((Vn1-Vn2)/(N*Vt)) - 1). Its stamp is the Newton
// linearization of that I-V curve around the previous Newton iterate.
type Diode struct {
	name string
	npos int
	nneg int
	is   float64
	n    float64
	vt   float64
	iPos int
	iNeg int
}

// NewDiode builds a diode with the SPICE-standard defaults
// (Is=1e-12, N=1.5, Vt=0.026) between nodes npos and nneg.
func NewDiode(name string, npos, nneg int) *Diode {
	return NewDiodeParams(name, npos, nneg, 1e-12, 1.5, 0.026)
}

// NewDiodeParams builds a diode with explicit saturation current,
// ideality factor and thermal voltage.
func NewDiodeParams(name string, npos, nneg int, is, n, vt float64) *Diode {
	return &Diode{name: name, npos: npos, nneg: nneg, is: is, n: n, vt: vt}
}

// NewDiodeAtTemp builds a diode whose thermal voltage is derived from
// kT/q at tempCelsius rather than the fixed 0.026 V default, for
// callers that care about temperature-dependent behavior.
func NewDiodeAtTemp(name string, npos, nneg int, is, n, tempCelsius float64) *Diode {
	return NewDiodeParams(name, npos, nneg, is, n, ThermalVoltage(tempCelsius+consts.KELVIN))
}

// ThermalVoltage computes kT/q, the thermal voltage at tempKelvin.
func ThermalVoltage(tempKelvin float64) float64 {
	return consts.BOLTZMANN * tempKelvin / consts.CHARGE
}

func (d *Diode) Name() string      { return d.name }
func (d *Diode) IsNonlinear() bool { return true }

func (d *Diode) Unknowns() []unknown.Label {
	return []unknown.Label{unknown.Voltage(d.npos), unknown.Voltage(d.nneg)}
}

func (d *Diode) Bind(lookup Lookup) error {
	var err error
	if d.iPos, err = lookup(unknown.Voltage(d.npos)); err != nil {
		return err
	}
	if d.iNeg, err = lookup(unknown.Voltage(d.nneg)); err != nil {
		return err
	}
	return nil
}

// Stamp linearizes the diode around the current Newton iterate's
// voltage v0 = V(n1) - V(n2): conductance g = dI/dV|v0 on the LHS, and
// the diode current i0 = I(v0) itself as the RHS source term.
func (d *Diode) Stamp(sys *linsolve.System, _, xPrevNewton []float64, _ float64) {
	n1, n2 := d.iPos, d.iNeg
	v0 := voltageAt(xPrevNewton, n1) - voltageAt(xPrevNewton, n2)

	expArg := v0 / (d.n * d.vt)
	if expArg > expArgCeiling {
		expArg = expArgCeiling
	}
	ev := math.Exp(expArg)

	g := (d.is / (d.n * d.vt)) * ev
	i0 := d.is * (ev - 1)

	sys.IncrementLHS(n1, n1, g)
	sys.IncrementLHS(n2, n2, g)
	sys.IncrementLHS(n1, n2, -g)
	sys.IncrementLHS(n2, n1, -g)

	sys.IncrementRHS(n1, -i0)
	sys.IncrementRHS(n2, i0)
}
