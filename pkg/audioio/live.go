package audioio

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
)

// liveQueueDepth is the number of fixed-size buffers held in the
// bounded channel between the engine (producer) and oto's
// driver-thread reader (consumer).
const liveQueueDepth = 8

// liveFrameSamples is the number of int16 samples per queued buffer.
const liveFrameSamples = 256

// LiveSink streams samples to the system audio device via oto. Emit
// is called once per sample from the engine's single-threaded loop;
// oto's driver goroutine pulls fixed-size buffers through an
// io.Reader adapter running on its own goroutine, keeping the audio
// callback thread entirely off the sample loop.
type LiveSink struct {
	ctx     *oto.Context
	player  *oto.Player
	queue   chan []byte
	partial []byte
	ready   chan struct{}
}

// NewLiveSink opens the default system audio output at sampleRate,
// mono 16-bit PCM, and starts playback immediately; Emit enqueues
// samples for the playback goroutine to drain.
func NewLiveSink(sampleRate int) (*LiveSink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audioio: opening audio device: %w", err)
	}

	sink := &LiveSink{
		ctx:   ctx,
		queue: make(chan []byte, liveQueueDepth),
		ready: ready,
	}

	<-ready

	sink.player = ctx.NewPlayer(sink)
	sink.player.Play()
	return sink, nil
}

// Emit converts one sample in [-1, 1] to a little-endian int16 and
// appends it to the buffer currently being filled, pushing the buffer
// onto the bounded queue once it reaches liveFrameSamples.
func (s *LiveSink) Emit(sample float64) {
	clamped := math.Max(-1, math.Min(1, sample))
	v := int16(clamped * 32767)

	s.partial = append(s.partial, byte(v), byte(v>>8))
	if len(s.partial)/2 >= liveFrameSamples {
		select {
		case s.queue <- s.partial:
		default:
			// Queue saturated: drop the buffer rather than block the
			// sample loop; a dropped buffer is an audible glitch, not
			// a stall.
		}
		s.partial = nil
	}
}

// Read implements io.Reader for oto's driver goroutine. When fewer
// than two buffers are queued it emits silence for this call instead
// of blocking, so a slow producer yields silence rather than stalling
// the audio callback.
func (s *LiveSink) Read(p []byte) (int, error) {
	if len(s.queue) < 2 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	buf := <-s.queue
	n := copy(p, buf)
	return n, nil
}

// Finish queues any partial buffer, waits up to 250ms for the playback
// queue to empty, and closes the player. Since Read takes a buffer only
// while at least two are queued, a single remaining buffer is not
// played.
func (s *LiveSink) Finish() error {
	if len(s.partial) > 0 {
		select {
		case s.queue <- s.partial:
		default:
		}
		s.partial = nil
	}

	// Give the driver goroutine a chance to drain the queue before the
	// process exits; oto has no synchronous flush call.
	deadline := time.Now().Add(250 * time.Millisecond)
	for len(s.queue) > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	s.player.Close()
	return nil
}

var _ io.Reader = (*LiveSink)(nil)
