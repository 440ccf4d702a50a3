package linsolve

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroundIsPinned(t *testing.T) {
	sys, err := New(2, 0)
	require.NoError(t, err)
	defer sys.Destroy()

	sys.IncrementRHS(0, 1e6) // no-op: ground row must stay pinned
	sys.IncrementLHS(0, 0, 1e6)

	x := sys.Solve()
	require.Less(t, math.Abs(x[0]), 1e-9)
}

func TestSolveOhmsLaw(t *testing.T) {
	sys, err := New(2, 0)
	require.NoError(t, err)
	defer sys.Destroy()

	const g = 0.5  // 2 ohm resistor to ground
	const i = 1e-3 // 1 mA injected into node 1

	sys.IncrementLHS(1, 1, g)
	sys.IncrementRHS(1, i)

	x := sys.Solve()
	require.InDelta(t, i/g, x[1], 1e-9)
	require.Less(t, math.Abs(x[0]), 1e-9)
}

func TestClearResetsSystemAndRepinsGround(t *testing.T) {
	sys, err := New(2, 0)
	require.NoError(t, err)
	defer sys.Destroy()

	sys.IncrementLHS(1, 1, 0.5)
	sys.IncrementRHS(1, 1e-3)
	first := sys.Solve()
	require.NotEqual(t, 0.0, first[1])

	sys.Clear()
	x := sys.Solve()
	require.Equal(t, 0.0, x[1])
	require.Less(t, math.Abs(x[0]), 1e-9)
}

func TestIncrementNeverTouchesGroundRow(t *testing.T) {
	sys, err := New(3, 1) // ground is unknown index 1, not 0
	require.NoError(t, err)
	defer sys.Destroy()

	sys.IncrementLHS(1, 0, 123)
	sys.IncrementLHS(1, 1, 456)
	sys.IncrementRHS(1, 789)

	x := sys.Solve()
	require.Less(t, math.Abs(x[1]), 1e-9)
}

func TestNewRejectsInvalidGroundIndex(t *testing.T) {
	_, err := New(4, 4)
	require.Error(t, err)

	_, err = New(4, -1)
	require.Error(t, err)
}
