package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/clipscout/internal/highlight"
)

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 0, frameCount(0, 512))
	assert.Equal(t, 1, frameCount(100, 512))
	assert.Equal(t, 3, frameCount(1024, 512))
}

func TestRMSConstantSignal(t *testing.T) {
	samples := make([]float64, 8192)
	for i := range samples {
		samples[i] = 0.5
	}

	rms := RMS(samples, 2048, 512)
	require.Len(t, rms, 17)

	// centered frames away from the edges see only signal
	assert.InDelta(t, 0.5, rms[8], 1e-9)
	assert.Less(t, rms[0], rms[8])
}

func TestSpectralCentroidTracksFrequency(t *testing.T) {
	low := synth(2, segment{from: 0, to: 2, freq: 500, amp: 0.5})
	high := synth(2, segment{from: 0, to: 2, freq: 2500, amp: 0.5})

	lc := SpectralCentroid(low.Samples, testRate, 2048, 512)
	hc := SpectralCentroid(high.Samples, testRate, 2048, 512)

	mid := len(lc) / 2
	assert.InDelta(t, 500, lc[mid], 100)
	assert.InDelta(t, 2500, hc[mid], 100)
}

func TestVoicedIntervals(t *testing.T) {
	buf := synth(10, segment{from: 3, to: 6, freq: 440, amp: 0.5})

	intervals := VoicedIntervals(buf.Samples, 20, 2048, 512)
	require.Len(t, intervals, 1)
	assert.InDelta(t, 3.0, float64(intervals[0].Start)/testRate, 0.2)
	assert.InDelta(t, 6.0, float64(intervals[0].End)/testRate, 0.2)

	assert.Empty(t, VoicedIntervals(make([]float64, 4096), 20, 2048, 512))
}

func writeWAV(t *testing.T, sampleRate, channels int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "track.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	return path
}

func TestReadWAVFileMono(t *testing.T) {
	data := make([]int, testRate)
	for i := range data {
		data[i] = int(16384 * math.Sin(2*math.Pi*440*float64(i)/testRate))
	}

	buf, err := ReadWAVFile(writeWAV(t, testRate, 1, data))
	require.NoError(t, err)
	assert.Equal(t, testRate, buf.SampleRate)
	require.Len(t, buf.Samples, testRate)
	assert.InDelta(t, 1.0, buf.Duration(), 1e-9)

	for _, v := range buf.Samples {
		assert.LessOrEqual(t, math.Abs(v), 0.5+1e-6)
	}
}

func TestReadWAVFileMixesDownStereo(t *testing.T) {
	data := make([]int, 2*100)
	for i := 0; i < 100; i++ {
		data[2*i] = 16384
		data[2*i+1] = 0
	}

	buf, err := ReadWAVFile(writeWAV(t, testRate, 2, data))
	require.NoError(t, err)
	require.Len(t, buf.Samples, 100)
	assert.InDelta(t, 0.25, buf.Samples[0], 1e-9)
}

func TestReadWAVFileErrors(t *testing.T) {
	_, err := ReadWAVFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.True(t, errors.Is(err, highlight.ErrModalityUnavailable))

	junk := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not RIFF"), 0o644))
	_, err = ReadWAVFile(junk)
	assert.True(t, errors.Is(err, highlight.ErrDecodeFailure))
}
