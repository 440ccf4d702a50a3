// Package netlist parses the line-oriented circuit description format
// into a buildable circuit.Circuit: one keyword per line, '#' to
// end-of-line comments, blank lines ignored, tokens whitespace
// separated.
package netlist

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/circuitfx/ampsim/pkg/circuit"
	"github.com/circuitfx/ampsim/pkg/component"
)

// valuePattern matches a decimal or scientific-notation number with an
// optional unit suffix. "meg" is checked ahead of the single-letter
// class since both can start matching at the same position.
var valuePattern = regexp.MustCompile(`(?i)^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[fpnumkgt])?$`)

var unitScale = map[string]float64{
	"f":   1e-15,
	"p":   1e-12,
	"n":   1e-9,
	"u":   1e-6,
	"m":   1e-3,
	"k":   1e3,
	"meg": 1e6,
	"g":   1e9,
	"t":   1e12,
}

// ParseValue resolves a numeric literal carrying an optional
// case-insensitive unit suffix (f, p, n, u, m, k, meg, g, t) into its
// scaled float64 value. An unrecognized suffix is a fatal netlist
// error.
func ParseValue(tok string) (float64, error) {
	m := valuePattern.FindStringSubmatch(tok)
	if m == nil {
		return 0, fmt.Errorf("invalid numeric value %q", tok)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value %q: %w", tok, err)
	}
	if suffix := strings.ToLower(m[2]); suffix != "" {
		scale, ok := unitScale[suffix]
		if !ok {
			return 0, fmt.Errorf("unknown unit suffix %q in %q", m[2], tok)
		}
		num *= scale
	}
	return num, nil
}

func parseNode(tok string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("invalid node id %q", tok)
	}
	return n, nil
}

func parseNodePair(a, b string) (int, int, error) {
	n1, err := parseNode(a)
	if err != nil {
		return 0, 0, err
	}
	n2, err := parseNode(b)
	if err != nil {
		return 0, 0, err
	}
	return n1, n2, nil
}

// Parse reads a netlist from r and builds a circuit.Circuit from it.
// The returned circuit has not yet had Build called.
func Parse(r io.Reader) (*circuit.Circuit, error) {
	ckt := circuit.New()
	sc := bufio.NewScanner(r)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		keyword := strings.ToUpper(fields[0])
		if err := parseLine(ckt, keyword, fields[1:], lineNo); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("netlist: reading input: %w", err)
	}

	return ckt, nil
}

func parseLine(ckt *circuit.Circuit, keyword string, args []string, line int) error {
	switch keyword {
	case "GROUND":
		if len(args) != 1 {
			return &circuit.NetlistError{Line: line, Msg: "GROUND requires exactly one node id"}
		}
		id, err := parseNode(args[0])
		if err != nil {
			return &circuit.NetlistError{Line: line, Msg: err.Error()}
		}
		ckt.RegisterGround(id)

	case "RESISTOR", "CAPACITOR", "INDUCTOR":
		if len(args) != 4 {
			return &circuit.NetlistError{Line: line, Msg: fmt.Sprintf("%s requires name, npos, nneg, value", keyword)}
		}
		npos, nneg, err := parseNodePair(args[1], args[2])
		if err != nil {
			return &circuit.NetlistError{Line: line, Msg: err.Error()}
		}
		value, err := ParseValue(args[3])
		if err != nil {
			return &circuit.NetlistError{Line: line, Msg: err.Error()}
		}
		switch keyword {
		case "RESISTOR":
			ckt.Register(component.NewResistor(args[0], npos, nneg, value))
		case "CAPACITOR":
			ckt.Register(component.NewCapacitor(args[0], npos, nneg, value))
		case "INDUCTOR":
			ckt.Register(component.NewInductor(args[0], npos, nneg, value))
		}

	case "DIODE":
		if len(args) != 3 {
			return &circuit.NetlistError{Line: line, Msg: "DIODE requires name, npos, nneg"}
		}
		npos, nneg, err := parseNodePair(args[1], args[2])
		if err != nil {
			return &circuit.NetlistError{Line: line, Msg: err.Error()}
		}
		ckt.Register(component.NewDiode(args[0], npos, nneg))

	case "DC_INPUT":
		if len(args) != 4 {
			return &circuit.NetlistError{Line: line, Msg: "DC_INPUT requires name, npos, nneg, volts"}
		}
		npos, nneg, err := parseNodePair(args[1], args[2])
		if err != nil {
			return &circuit.NetlistError{Line: line, Msg: err.Error()}
		}
		volts, err := ParseValue(args[3])
		if err != nil {
			return &circuit.NetlistError{Line: line, Msg: err.Error()}
		}
		ckt.Register(component.NewDCInput(args[0], npos, nneg, volts))

	case "VOLTAGE_IN":
		if len(args) != 3 {
			return &circuit.NetlistError{Line: line, Msg: "VOLTAGE_IN requires name, npos, nneg"}
		}
		npos, nneg, err := parseNodePair(args[1], args[2])
		if err != nil {
			return &circuit.NetlistError{Line: line, Msg: err.Error()}
		}
		ckt.Register(component.NewVoltageIn(args[0], npos, nneg))

	case "VOLTAGE_OUT":
		if len(args) != 3 {
			return &circuit.NetlistError{Line: line, Msg: "VOLTAGE_OUT requires name, npos, nneg"}
		}
		npos, nneg, err := parseNodePair(args[1], args[2])
		if err != nil {
			return &circuit.NetlistError{Line: line, Msg: err.Error()}
		}
		ckt.RegisterVoltageOut(component.NewVoltageOut(args[0], npos, nneg))

	default:
		return &circuit.NetlistError{Line: line, Msg: fmt.Sprintf("unrecognized keyword %q", keyword)}
	}
	return nil
}
