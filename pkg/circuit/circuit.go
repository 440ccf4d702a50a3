// Package circuit assembles components into a KCL system and drives
// the per-sample transient Newton loop that turns an audio source into
// an audio sink.
package circuit

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/circuitfx/ampsim/pkg/component"
	"github.com/circuitfx/ampsim/pkg/linsolve"
	"github.com/circuitfx/ampsim/pkg/unknown"
)

// MaxNewtonIter bounds the worst-case per-sample Newton cost. Warm
// starting from the previous sample's solution means the diode - the
// only nonlinear device this engine models - typically converges in a
// handful of iterations; this cap only bites on a genuinely
// degenerate circuit.
const MaxNewtonIter = 100

// newtonTol is the convergence threshold on the infinity norm of the
// Newton delta.
const newtonTol = 1e-3

// AudioSource is pulled once per sample by the transient driver to
// obtain the input voltage. Next blocks until a sample is available,
// returns false on end-of-stream, or returns promptly once ctx is
// cancelled.
type AudioSource interface {
	Next(ctx context.Context) (sample float64, ok bool)
	SamplingPeriod() float64
}

// AudioSink receives one output sample per input sample.
type AudioSink interface {
	Emit(sample float64)
	Finish() error
}

// boundable is the subset of the component contract every unknown
// owner implements, including VoltageOut, which introduces unknowns
// but never stamps.
type boundable interface {
	Name() string
	Unknowns() []unknown.Label
	Bind(lookup component.Lookup) error
}

// Circuit owns every component by value of a single indexed
// container; VoltageIn and VoltageOut are additionally held as
// non-owning references so the transient driver can reach them
// directly instead of scanning the component list every sample.
type Circuit struct {
	registry   *unknown.Registry
	groundNode int
	groundIdx  int
	components []component.Component
	boundables []boundable
	vin        *component.VoltageIn
	vout       *component.VoltageOut
	built      bool
}

// New creates an empty circuit ready for Register* calls.
func New() *Circuit {
	return &Circuit{registry: unknown.New(), groundNode: -1}
}

// RegisterGround designates the node whose voltage is pinned to zero.
func (c *Circuit) RegisterGround(id int) {
	c.groundNode = id
}

// Register appends a stamping component to the circuit, wiring it
// into the unknown registry once Build runs. VoltageIn is additionally
// cached so the transient driver can feed it each sample's input.
func (c *Circuit) Register(comp component.Component) {
	c.components = append(c.components, comp)
	c.boundables = append(c.boundables, comp)
	if vin, ok := comp.(*component.VoltageIn); ok {
		c.vin = vin
	}
}

// RegisterVoltageOut installs the circuit's output probe. It
// introduces unknowns like any other component but never stamps, so it
// is tracked separately from the stamping component list.
func (c *Circuit) RegisterVoltageOut(v *component.VoltageOut) {
	c.vout = v
	c.boundables = append(c.boundables, v)
}

// Build registers every component's unknowns, freezes the registry,
// and binds each component's cached indices. It must run before
// Transient. A second call succeeds and rebinds the same indices,
// since every label it registers is already known to the frozen
// registry.
func (c *Circuit) Build() error {
	if c.groundNode < 0 {
		return &NetlistError{Msg: "circuit has no GROUND declaration"}
	}
	if c.vin == nil {
		return &NetlistError{Msg: "circuit has no VOLTAGE_IN terminal"}
	}
	if c.vout == nil {
		return &NetlistError{Msg: "circuit has no VOLTAGE_OUT terminal"}
	}

	if _, err := c.registry.Register(unknown.Voltage(c.groundNode)); err != nil {
		return fmt.Errorf("circuit: registering ground node %d: %w", c.groundNode, err)
	}
	for _, b := range c.boundables {
		for _, label := range b.Unknowns() {
			if _, err := c.registry.Register(label); err != nil {
				return fmt.Errorf("circuit: registering %s's unknowns: %w", b.Name(), err)
			}
		}
	}
	c.registry.Freeze()

	lookup := component.Lookup(c.registry.Lookup)

	groundIdx, err := lookup(unknown.Voltage(c.groundNode))
	if err != nil {
		return fmt.Errorf("circuit: resolving ground index: %w", err)
	}
	c.groundIdx = groundIdx

	for _, b := range c.boundables {
		if err := b.Bind(lookup); err != nil {
			return fmt.Errorf("circuit: binding %s: %w", b.Name(), err)
		}
	}

	c.built = true
	return nil
}

// Transient runs the per-sample loop: pull one input sample, run
// warm-started Newton iterations against the assembled KCL system,
// commit the converged (or best-effort) iterate, and emit one output
// sample. It returns when the source is exhausted or ctx is
// cancelled, after flushing sink.
func (c *Circuit) Transient(ctx context.Context, source AudioSource, sink AudioSink, logger *slog.Logger) error {
	if !c.built {
		if err := c.Build(); err != nil {
			return err
		}
	}

	n := c.registry.Len()
	sys, err := linsolve.New(n, c.groundIdx)
	if err != nil {
		return fmt.Errorf("circuit: %w", err)
	}
	defer sys.Destroy()

	dt := source.SamplingPeriod()
	x := make([]float64, n)

	var sampleIdx int64
	for {
		select {
		case <-ctx.Done():
			return sink.Finish()
		default:
		}

		vin, ok := source.Next(ctx)
		if !ok {
			break
		}
		c.vin.SetSample(vin)

		xPrevTimestep := append([]float64(nil), x...)
		xNewton := append([]float64(nil), x...)

		converged := false
		iters := 0
		m := 0.0

		for iter := 0; iter < MaxNewtonIter; iter++ {
			iters = iter + 1

			sys.Clear()
			for _, comp := range c.components {
				comp.Stamp(sys, xPrevTimestep, xNewton, dt)
			}
			delta := sys.Solve()

			nan := false
			m = 0.0
			for i := range xNewton {
				d := delta[i]
				if math.IsNaN(d) {
					nan = true
				}
				xNewton[i] += d
				if ad := math.Abs(d); ad > m {
					m = ad
				}
			}

			if nan {
				if logger != nil {
					logger.Warn("newton step hit a non-finite delta",
						"err", (&SolverNumericFailure{Sample: sampleIdx, Iters: iters}).Error())
				}
				converged = true
				break
			}
			if m < newtonTol {
				converged = true
				break
			}
		}

		if !converged && logger != nil {
			logger.Warn("sample failed to converge within the iteration cap",
				"err", (&NumericDivergence{Sample: sampleIdx, Iters: iters, Resid: m}).Error())
		}

		x = xNewton
		sink.Emit(c.vout.Measure(x))
		sampleIdx++
	}

	return sink.Finish()
}
