// Command ampsim runs the transient circuit simulator: it reads a
// netlist, wires up an audio source and sink (file or live device),
// and streams the input signal through the circuit sample by sample.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/circuitfx/ampsim/pkg/audioio"
	"github.com/circuitfx/ampsim/pkg/circuit"
	"github.com/circuitfx/ampsim/pkg/netlist"
	"github.com/circuitfx/ampsim/pkg/util"
)

const (
	exitSuccess = 0
	exitNetlist = 1
	exitAudioIO = 2
	// exitRuntime covers a failure from Transient itself: assembling the
	// linear system or flushing/closing the sink. Per-sample Newton
	// non-convergence and non-finite deltas are logged and tolerated,
	// never surfaced as a non-zero exit - see Circuit.Transient.
	exitRuntime = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	var circuitPath, signalPath, outPath string
	var liveInput, liveOutput bool

	flag.StringVar(&circuitPath, "circuit", "", "path to the netlist file")
	flag.StringVar(&circuitPath, "c", "", "shorthand for -circuit")
	flag.StringVar(&signalPath, "signal", "", "path to the input WAV file")
	flag.StringVar(&signalPath, "s", "", "shorthand for -signal")
	flag.StringVar(&outPath, "outfile", "", "path to write the output WAV file")
	flag.StringVar(&outPath, "o", "", "shorthand for -outfile")
	flag.BoolVar(&liveInput, "live-input", false, "capture input from the system audio device")
	flag.BoolVar(&liveOutput, "live-output", false, "play output on the system audio device")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if circuitPath == "" {
		logger.Error("missing required netlist path", "flag", "-circuit/-c")
		return exitNetlist
	}

	f, err := os.Open(circuitPath)
	if err != nil {
		logger.Error("opening netlist", "err", err)
		return exitNetlist
	}
	defer f.Close()

	ckt, err := netlist.Parse(f)
	if err != nil {
		logger.Error("parsing netlist", "err", err)
		return exitNetlist
	}
	if err := ckt.Build(); err != nil {
		logger.Error("building circuit", "err", err)
		return exitNetlist
	}

	source, closeSource, err := openSource(signalPath, liveInput)
	if err != nil {
		logger.Error("opening audio source", "err", err)
		return exitAudioIO
	}
	defer closeSource()

	sink, err := openSink(outPath, liveOutput, source.SamplingPeriod())
	if err != nil {
		logger.Error("opening audio sink", "err", err)
		return exitAudioIO
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			logger.Info("received shutdown signal, stopping transient run")
			cancel()
		}
	}()

	logger.Info("starting transient run",
		"circuit", circuitPath,
		"sample_rate", util.FormatFrequency(1/source.SamplingPeriod()))

	if err := ckt.Transient(ctx, source, sink, logger); err != nil {
		logger.Error("transient run failed", "err", err)
		return exitRuntime
	}

	logger.Info("transient run complete")
	return exitSuccess
}

// openSource resolves the -signal/-live-input flags into a concrete
// circuit.AudioSource plus a cleanup function. Live capture is not
// implemented: no microphone/line-in library was found in the
// retrieved dependency pack (see DESIGN.md), so -live-input fails
// fast with an actionable AudioIOError rather than silently falling
// back to file mode.
func openSource(path string, live bool) (circuit.AudioSource, func() error, error) {
	noop := func() error { return nil }

	if live {
		return nil, noop, &circuit.AudioIOError{
			Op:  "open live input",
			Err: fmt.Errorf("no live-capture backend is available in this build"),
		}
	}
	if path == "" {
		return nil, noop, &circuit.AudioIOError{
			Op:  "open input",
			Err: fmt.Errorf("no -signal/-s path given and -live-input not requested"),
		}
	}

	src, err := audioio.OpenWAVSource(path)
	if err != nil {
		return nil, noop, &circuit.AudioIOError{Op: "open wav input", Err: err}
	}
	return src, src.Close, nil
}

// openSink resolves the -outfile/-live-output flags into a concrete
// circuit.AudioSink.
func openSink(path string, live bool, samplingPeriod float64) (circuit.AudioSink, error) {
	sampleRate := int(1/samplingPeriod + 0.5)

	if live {
		sink, err := audioio.NewLiveSink(sampleRate)
		if err != nil {
			return nil, &circuit.AudioIOError{Op: "open live output", Err: err}
		}
		return sink, nil
	}
	if path == "" {
		return nil, &circuit.AudioIOError{
			Op:  "open output",
			Err: fmt.Errorf("no -outfile/-o path given and -live-output not requested"),
		}
	}

	sink, err := audioio.CreateWAVSink(path, sampleRate)
	if err != nil {
		return nil, &circuit.AudioIOError{Op: "create wav output", Err: err}
	}
	return sink, nil
}
