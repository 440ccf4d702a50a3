package component

import (
	"testing"

	"github.com/circuitfx/ampsim/pkg/linsolve"
	"github.com/circuitfx/ampsim/pkg/unknown"
	"github.com/stretchr/testify/require"
)

func TestDCInputEnforcesConstantVoltage(t *testing.T) {
	lookup := lookupFor(unknown.Voltage(0), unknown.Voltage(1), unknown.Current("V1"))

	dc := NewDCInput("V1", 0, 1, 5.0) // node 1 is ground
	require.NoError(t, dc.Bind(lookup))
	require.Equal(t, []unknown.Label{unknown.Voltage(0), unknown.Voltage(1), unknown.Current("V1")}, dc.Unknowns())

	sys, err := linsolve.New(3, 1)
	require.NoError(t, err)
	defer sys.Destroy()

	xPrevNewton := make([]float64, 3)
	dc.Stamp(sys, nil, xPrevNewton, 0)

	x := sys.Solve()
	require.InDelta(t, 5.0, x[0], 1e-9)
	require.InDelta(t, 0, x[1], 1e-9)
	require.InDelta(t, 0, x[2], 1e-9) // nothing draws current through the branch
}
