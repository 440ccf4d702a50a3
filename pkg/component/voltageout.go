package component

import "github.com/circuitfx/ampsim/pkg/unknown"

// VoltageOut is the circuit's audio output probe. It declares only the
// two node voltages it reads (no branch current of its own) and
// contributes no stamp; it only reads back the converged node voltages
// once a sample's Newton iteration settles.
type VoltageOut struct {
	name string
	npos int
	nneg int
	iPos int
	iNeg int
}

// NewVoltageOut builds the circuit's unique voltage output probe
// between nodes npos and nneg. The netlist loader must create exactly
// one.
func NewVoltageOut(name string, npos, nneg int) *VoltageOut {
	return &VoltageOut{name: name, npos: npos, nneg: nneg}
}

func (v *VoltageOut) Name() string { return v.name }

func (v *VoltageOut) Unknowns() []unknown.Label {
	return []unknown.Label{unknown.Voltage(v.npos), unknown.Voltage(v.nneg)}
}

func (v *VoltageOut) Bind(lookup Lookup) error {
	var err error
	if v.iPos, err = lookup(unknown.Voltage(v.npos)); err != nil {
		return err
	}
	if v.iNeg, err = lookup(unknown.Voltage(v.nneg)); err != nil {
		return err
	}
	return nil
}

// Measure reads the converged sample back off the solved vector; it
// performs no stamping and is not part of the Component interface.
func (v *VoltageOut) Measure(x []float64) float64 {
	return voltageAt(x, v.iPos) - voltageAt(x, v.iNeg)
}
