// Package audioio implements the concrete audio source/sink adapters
// the transient driver reads samples from and writes samples to: WAV
// file I/O and live playback. Both satisfy circuit.AudioSource /
// circuit.AudioSink structurally, without importing pkg/circuit.
package audioio

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVSource decodes a 16-bit PCM WAV file into a stream of float64
// samples in [-1, 1], one channel only - a multi-channel file is
// downmixed to its first channel, since the circuit's VoltageIn takes
// a single scalar per sample.
type WAVSource struct {
	file       *os.File
	buf        *audio.IntBuffer
	pos        int
	fullScale  float64
	sampleRate float64
}

// OpenWAVSource opens path and decodes its entire PCM payload up
// front; effect circuits driven by this engine operate on short test
// signals, so loading the whole buffer keeps Next() allocation-free.
func OpenWAVSource(path string) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audioio: opening %s: %w", path, err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("audioio: %s is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("audioio: decoding %s: %w", path, err)
	}

	bitDepth := dec.BitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}

	return &WAVSource{
		file:       f,
		buf:        buf,
		fullScale:  math.Pow(2, float64(bitDepth-1)),
		sampleRate: float64(dec.SampleRate),
	}, nil
}

// Next returns the next sample, or false once the file is exhausted
// or ctx is cancelled.
func (s *WAVSource) Next(ctx context.Context) (float64, bool) {
	select {
	case <-ctx.Done():
		return 0, false
	default:
	}

	numChans := s.buf.Format.NumChannels
	if numChans < 1 {
		numChans = 1
	}
	idx := s.pos * numChans
	if idx >= len(s.buf.Data) {
		return 0, false
	}
	s.pos++
	return float64(s.buf.Data[idx]) / s.fullScale, true
}

// SamplingPeriod returns 1/SampleRate in seconds.
func (s *WAVSource) SamplingPeriod() float64 {
	if s.sampleRate == 0 {
		return 1.0 / 44100.0
	}
	return 1.0 / s.sampleRate
}

// Close releases the underlying file handle.
func (s *WAVSource) Close() error {
	return s.file.Close()
}

// WAVSink encodes incoming samples to a 16-bit mono PCM WAV file,
// buffering a modest number of frames between encoder writes rather
// than flushing on every sample.
type WAVSink struct {
	file     *os.File
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	pending  int
	flushErr error
}

const wavSinkBufferFrames = 512

// CreateWAVSink creates (or truncates) path and prepares it to receive
// mono samples at sampleRate.
func CreateWAVSink(path string, sampleRate int) (*WAVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("audioio: creating %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	return &WAVSink{
		file: f,
		enc:  enc,
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			Data:           make([]int, wavSinkBufferFrames),
			SourceBitDepth: 16,
		},
	}, nil
}

// Emit enqueues one sample, in [-1, 1], for encoding. It flushes to
// the underlying encoder once the internal buffer fills. Emit has no
// error return (it implements circuit.AudioSink), so a write failure
// is latched on s.flushErr and surfaced the next time Finish is called.
func (s *WAVSink) Emit(sample float64) {
	clamped := math.Max(-1, math.Min(1, sample))
	s.buf.Data[s.pending] = int(clamped * 32767)
	s.pending++
	if s.pending == len(s.buf.Data) {
		s.flush()
	}
}

func (s *WAVSink) flush() {
	if s.pending == 0 {
		return
	}
	data := s.buf.Data[:s.pending]
	if err := s.enc.Write(&audio.IntBuffer{Format: s.buf.Format, Data: data, SourceBitDepth: 16}); err != nil && s.flushErr == nil {
		s.flushErr = fmt.Errorf("audioio: writing wav samples: %w", err)
	}
	s.pending = 0
}

// Finish flushes any buffered samples and closes the encoder and
// underlying file, writing a valid RIFF header. It reports the first
// encoder-write failure latched by Emit/flush, if any, ahead of any
// error from closing the encoder or file, so a lost sample is never
// reported as a clean exit.
func (s *WAVSink) Finish() error {
	s.flush()
	if err := s.enc.Close(); err != nil {
		s.file.Close()
		if s.flushErr != nil {
			return s.flushErr
		}
		return fmt.Errorf("audioio: closing wav encoder: %w", err)
	}
	if err := s.file.Close(); err != nil {
		if s.flushErr != nil {
			return s.flushErr
		}
		return fmt.Errorf("audioio: closing wav file: %w", err)
	}
	return s.flushErr
}
