package component

import (
	"testing"

	"github.com/circuitfx/ampsim/pkg/unknown"
	"github.com/stretchr/testify/require"
)

func TestVoltageOutMeasuresNodeDifference(t *testing.T) {
	lookup := lookupFor(unknown.Voltage(2), unknown.Voltage(0))

	vout := NewVoltageOut("vout", 2, 0)
	require.NoError(t, vout.Bind(lookup))

	x := []float64{4.25, 1.5} // index 0 is V(2), index 1 is V(0)
	require.InDelta(t, 2.75, vout.Measure(x), 1e-12)
}

func TestVoltageOutBindPropagatesLookupError(t *testing.T) {
	vout := NewVoltageOut("vout", 2, 0)
	err := vout.Bind(lookupFor(unknown.Voltage(2))) // node 0 unbound
	require.Error(t, err)
}
