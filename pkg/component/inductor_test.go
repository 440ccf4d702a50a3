package component

import (
	"math"
	"testing"

	"github.com/circuitfx/ampsim/pkg/linsolve"
	"github.com/circuitfx/ampsim/pkg/unknown"
	"github.com/stretchr/testify/require"
)

func TestInductorCompanionModelConvergesToBackwardEulerSolution(t *testing.T) {
	lookup := lookupFor(unknown.Voltage(0), unknown.Voltage(1), unknown.Current("L1"))

	const l = 1e-3
	const dt = 1e-3 // g = l/dt = 1
	const iHist = 0.2
	const iExt = 1e-3

	ind := NewInductor("L1", 0, 1, l) // node 1 is ground
	require.NoError(t, ind.Bind(lookup))
	require.Equal(t, []unknown.Label{unknown.Voltage(0), unknown.Voltage(1), unknown.Current("L1")}, ind.Unknowns())

	sys, err := linsolve.New(3, 1)
	require.NoError(t, err)
	defer sys.Destroy()

	xPrevTimestep := []float64{0, 0, iHist}
	xNewton := []float64{0, 0, 0}

	// expected backward-Euler fixed point: V0 = g*(iExt - iHist), Ibr = iExt
	wantV0 := iExt - iHist
	wantIbr := iExt

	for iter := 0; iter < 2; iter++ {
		sys.Clear()
		ind.Stamp(sys, xPrevTimestep, xNewton, dt)
		sys.IncrementRHS(0, iExt)
		delta := sys.Solve()
		for i := range xNewton {
			xNewton[i] += delta[i]
		}
		if iter == 1 {
			require.Less(t, math.Abs(delta[0])+math.Abs(delta[2]), 1e-9)
		}
	}

	require.InDelta(t, wantV0, xNewton[0], 1e-9)
	require.InDelta(t, 0, xNewton[1], 1e-9)
	require.InDelta(t, wantIbr, xNewton[2], 1e-9)
}
