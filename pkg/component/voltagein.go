package component

import (
	"github.com/circuitfx/ampsim/pkg/linsolve"
	"github.com/circuitfx/ampsim/pkg/unknown"
)

// VoltageIn is the circuit's audio input terminal: it enforces
// V(npos) - V(nneg) equal to whatever sample the transient driver
// pulled from the external audio source this tick, via the same
// branch-current constraint DCInput uses for its constant voltage.
type VoltageIn struct {
	name   string
	npos   int
	nneg   int
	sample float64
	iPos   int
	iNeg   int
	iBr    int
}

// NewVoltageIn builds the circuit's unique voltage input between
// nodes npos and nneg. The netlist loader must create exactly one.
func NewVoltageIn(name string, npos, nneg int) *VoltageIn {
	return &VoltageIn{name: name, npos: npos, nneg: nneg}
}

func (v *VoltageIn) Name() string { return v.name }

// SetSample records the current sample's enforced voltage. Called
// once per sample by the transient driver before Newton iteration
// begins; stamping within that sample's iterations reuses this value.
func (v *VoltageIn) SetSample(sample float64) { v.sample = sample }

func (v *VoltageIn) Unknowns() []unknown.Label {
	return []unknown.Label{
		unknown.Voltage(v.npos),
		unknown.Voltage(v.nneg),
		unknown.Current(v.name),
	}
}

func (v *VoltageIn) Bind(lookup Lookup) error {
	var err error
	if v.iPos, err = lookup(unknown.Voltage(v.npos)); err != nil {
		return err
	}
	if v.iNeg, err = lookup(unknown.Voltage(v.nneg)); err != nil {
		return err
	}
	if v.iBr, err = lookup(unknown.Current(v.name)); err != nil {
		return err
	}
	return nil
}

func (v *VoltageIn) Stamp(sys *linsolve.System, _, xPrevNewton []float64, _ float64) {
	stampVoltageConstraint(sys, xPrevNewton, v.iPos, v.iNeg, v.iBr, v.sample)
}
