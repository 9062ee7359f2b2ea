package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/keagan/clipscout/internal/highlight"
)

// Buffer is a decoded mono sample track normalized to [-1,1]
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the track length in seconds
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

func (b *Buffer) validate() error {
	if b == nil || len(b.Samples) == 0 {
		return fmt.Errorf("%w: empty audio buffer", highlight.ErrModalityUnavailable)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: invalid sample rate %d", highlight.ErrDecodeFailure, b.SampleRate)
	}
	return nil
}

// Source loads the audio track of a media file. The returned buffer is owned
// by the caller.
type Source interface {
	Load(ctx context.Context, path string) (*Buffer, error)
}

// DecodeWAV reads a PCM WAV stream and mixes it down to mono
func DecodeWAV(r io.ReadSeeker) (*Buffer, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV stream", highlight.ErrDecodeFailure)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: reading PCM data: %v", highlight.ErrDecodeFailure, err)
	}

	return fromIntBuffer(pcm)
}

// ReadWAVFile decodes the WAV file at path
func ReadWAVFile(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", highlight.ErrModalityUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", highlight.ErrDecodeFailure, err)
	}
	defer f.Close()

	return DecodeWAV(f)
}

func fromIntBuffer(pcm *goaudio.IntBuffer) (*Buffer, error) {
	if pcm == nil || pcm.Format == nil {
		return nil, fmt.Errorf("%w: missing PCM format", highlight.ErrDecodeFailure)
	}

	channels := pcm.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("%w: invalid channel count %d", highlight.ErrDecodeFailure, channels)
	}

	bitDepth := pcm.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))

	frames := len(pcm.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(pcm.Data[i*channels+ch])
		}
		samples[i] = sum / float64(channels) * scale
	}

	return &Buffer{Samples: samples, SampleRate: pcm.Format.SampleRate}, nil
}
