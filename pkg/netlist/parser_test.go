package netlist

import (
	"strings"
	"testing"

	"github.com/circuitfx/ampsim/pkg/circuit"
	"github.com/stretchr/testify/require"
)

func TestParseValueResolvesUnitSuffixes(t *testing.T) {
	cases := []struct {
		tok  string
		want float64
	}{
		{"1", 1},
		{"1.5", 1.5},
		{"1e-3", 1e-3},
		{"1k", 1e3},
		{"1K", 1e3},
		{"4.7u", 4.7e-6},
		{"10n", 10e-9},
		{"100p", 100e-12},
		{"3f", 3e-15},
		{"2meg", 2e6},
		{"2MEG", 2e6},
		{"1g", 1e9},
		{"1t", 1e12},
		{"-5.2m", -5.2e-3},
		{"+2", 2},
	}
	for _, tc := range cases {
		got, err := ParseValue(tc.tok)
		require.NoError(t, err, tc.tok)
		require.InDelta(t, tc.want, got, 1e-20, tc.tok)
	}
}

func TestParseValueRejectsUnknownSuffix(t *testing.T) {
	_, err := ParseValue("10x")
	require.Error(t, err)
}

func TestParseValueRejectsGarbage(t *testing.T) {
	_, err := ParseValue("not-a-number")
	require.Error(t, err)
}

func TestParseFullNetlistBuildsCircuit(t *testing.T) {
	src := `
# a half-wave rectifier, with a full-line comment and a blank line
GROUND 0
VOLTAGE_IN vin 1 0
DIODE D1 1 2
RESISTOR R1 2 0 10k

VOLTAGE_OUT vout 2 0
`
	ckt, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, ckt.Build())
}

func TestParseIgnoresBlankLinesAndFullLineComments(t *testing.T) {
	src := "\n  \n# just a comment\nGROUND 0\n\nVOLTAGE_IN vin 1 0\nVOLTAGE_OUT vout 1 0\n"
	ckt, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, ckt.Build())
}

func TestParseAllComponentKeywords(t *testing.T) {
	src := `
GROUND 0
VOLTAGE_IN vin 1 0
RESISTOR R1 1 2 1k
CAPACITOR C1 2 3 1u
INDUCTOR L1 3 4 1m
DIODE D1 4 5
DC_INPUT VCC 5 0 9
VOLTAGE_OUT vout 5 0
`
	ckt, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.NoError(t, ckt.Build())
}

func TestParseRejectsUnknownKeyword(t *testing.T) {
	_, err := Parse(strings.NewReader("GROUND 0\nTRANSISTOR Q1 1 2 3\n"))
	require.Error(t, err)
	var nerr *circuit.NetlistError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, 2, nerr.Line)
}

func TestParseRejectsWrongArgCount(t *testing.T) {
	_, err := Parse(strings.NewReader("GROUND 0\nRESISTOR R1 1 2\n"))
	require.Error(t, err)
	var nerr *circuit.NetlistError
	require.ErrorAs(t, err, &nerr)
}

func TestParseRejectsBadNodeID(t *testing.T) {
	_, err := Parse(strings.NewReader("GROUND 0\nRESISTOR R1 one 2 1k\n"))
	require.Error(t, err)
}

func TestParseRejectsBadValueSuffix(t *testing.T) {
	_, err := Parse(strings.NewReader("GROUND 0\nRESISTOR R1 1 2 10xyz\n"))
	require.Error(t, err)
}

func TestParseRejectsMultipleGroundArgs(t *testing.T) {
	_, err := Parse(strings.NewReader("GROUND 0 1\n"))
	require.Error(t, err)
}

func TestParseKeywordIsCaseInsensitive(t *testing.T) {
	ckt, err := Parse(strings.NewReader("ground 0\nvoltage_in vin 1 0\nvoltage_out vout 1 0\n"))
	require.NoError(t, err)
	require.NoError(t, ckt.Build())
}
