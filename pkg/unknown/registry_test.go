package unknown

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()

	idx1, err := r.Register(Voltage(3))
	require.NoError(t, err)

	idx2, err := r.Register(Voltage(3))
	require.NoError(t, err)

	require.Equal(t, idx1, idx2)
	require.Equal(t, 1, r.Len())
}

func TestRegisterAssignsContiguousIndices(t *testing.T) {
	r := New()

	labels := []Label{Voltage(0), Voltage(1), Current("vin"), Voltage(2), Current("l1")}
	for i, l := range labels {
		idx, err := r.Register(l)
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}
	require.Equal(t, len(labels), r.Len())
}

func TestLookupUnregisteredFails(t *testing.T) {
	r := New()
	_, err := r.Lookup(Voltage(9))
	require.ErrorIs(t, err, ErrUnknownNotFound)
}

func TestRegisterAfterFreezeFails(t *testing.T) {
	r := New()
	_, err := r.Register(Voltage(0))
	require.NoError(t, err)
	r.Freeze()

	_, err = r.Register(Voltage(1))
	require.True(t, errors.Is(err, ErrRegistryFrozen))
}

func TestRegisterExistingLabelSucceedsAfterFreeze(t *testing.T) {
	r := New()
	idx, err := r.Register(Voltage(0))
	require.NoError(t, err)
	r.Freeze()

	idx2, err := r.Register(Voltage(0))
	require.NoError(t, err)
	require.Equal(t, idx, idx2)
}

func TestLabelsPreservesRegistrationOrder(t *testing.T) {
	r := New()
	r.Register(Voltage(5))
	r.Register(Current("vin"))
	r.Register(Voltage(1))

	labels := r.Labels()
	require.Equal(t, []Label{Voltage(5), Current("vin"), Voltage(1)}, labels)
}

func TestLabelStringFormat(t *testing.T) {
	require.Equal(t, "V(4)", Voltage(4).String())
	require.Equal(t, "I(l1)", Current("l1").String())
}
