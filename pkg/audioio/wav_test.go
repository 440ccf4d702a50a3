package audioio

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWAVSinkThenSourceRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.wav")

	sink, err := CreateWAVSink(path, 44100)
	require.NoError(t, err)

	samples := []float64{0, 0.25, -0.25, 0.5, -0.5, 1, -1}
	for _, s := range samples {
		sink.Emit(s)
	}
	require.NoError(t, sink.Finish())

	src, err := OpenWAVSource(path)
	require.NoError(t, err)
	defer src.Close()

	require.InDelta(t, 1.0/44100.0, src.SamplingPeriod(), 1e-12)

	ctx := context.Background()
	for i, want := range samples {
		got, ok := src.Next(ctx)
		require.True(t, ok, "sample %d", i)
		require.InDelta(t, want, got, 1.0/32767)
	}

	_, ok := src.Next(ctx)
	require.False(t, ok)
}

func TestWAVSourceStopsOnCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cancel.wav")

	sink, err := CreateWAVSink(path, 44100)
	require.NoError(t, err)
	sink.Emit(0.5)
	require.NoError(t, sink.Finish())

	src, err := OpenWAVSource(path)
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := src.Next(ctx)
	require.False(t, ok)
}

func TestWAVSinkFinishReportsEncoderWriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")

	sink, err := CreateWAVSink(path, 44100)
	require.NoError(t, err)
	sink.Emit(0.1)

	// Close the underlying file out from under the encoder so its next
	// write fails, simulating a disk-full or I/O error mid-stream.
	require.NoError(t, sink.file.Close())

	err = sink.Finish()
	require.Error(t, err)
}

func TestWAVSinkClampsOutOfRangeSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clamp.wav")

	sink, err := CreateWAVSink(path, 44100)
	require.NoError(t, err)
	sink.Emit(3.0)
	sink.Emit(-3.0)
	require.NoError(t, sink.Finish())

	src, err := OpenWAVSource(path)
	require.NoError(t, err)
	defer src.Close()

	ctx := context.Background()
	got, ok := src.Next(ctx)
	require.True(t, ok)
	require.InDelta(t, 1.0, got, 1.0/32767)

	got, ok = src.Next(ctx)
	require.True(t, ok)
	require.InDelta(t, -1.0, got, 1.0/32767)
}
