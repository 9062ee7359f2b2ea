package ffmpeg

import (
	"context"
	"fmt"

	"github.com/keagan/clipscout/internal/audio"
	"github.com/keagan/clipscout/internal/highlight"
	"github.com/keagan/clipscout/pkg/util"
)

// AudioFormat defines audio extraction format options
type AudioFormat struct {
	Codec      string
	SampleRate int
	Channels   int
}

// AnalysisFormat returns the mono 16-bit PCM format the audio detectors read
func AnalysisFormat(sampleRate int) AudioFormat {
	return AudioFormat{
		Codec:      "pcm_s16le",
		SampleRate: sampleRate,
		Channels:   1,
	}
}

// ExtractAudio extracts audio stream to a separate file
func (e *Executor) ExtractAudio(ctx context.Context, input, output string, format AudioFormat, progressFunc ProgressFunc) error {
	e.logger.Debug().
		Str("input", input).
		Str("output", output).
		Str("codec", format.Codec).
		Int("sample_rate", format.SampleRate).
		Msg("extracting audio")

	args := []string{
		"-i", input,
		"-vn", // no video
		"-acodec", format.Codec,
		"-ac", fmt.Sprintf("%d", format.Channels),
	}
	if format.SampleRate > 0 {
		args = append(args, "-ar", fmt.Sprintf("%d", format.SampleRate))
	}
	args = append(args, output)

	opts := RunOptions{
		Args:            args,
		ProgressHandler: progressFunc,
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("audio extraction")
		},
	}

	return e.Run(ctx, opts)
}

// AudioLoader decodes the audio track of a media file through a temporary
// WAV file. It implements audio.Source.
type AudioLoader struct {
	exec    *Executor
	format  AudioFormat
	tempDir string
}

// AudioLoader returns a loader that resamples to sampleRate and writes its
// scratch files under tempDir (the system default when empty)
func (e *Executor) AudioLoader(sampleRate int, tempDir string) *AudioLoader {
	return &AudioLoader{
		exec:    e,
		format:  AnalysisFormat(sampleRate),
		tempDir: tempDir,
	}
}

// Load implements audio.Source
func (l *AudioLoader) Load(ctx context.Context, path string) (*audio.Buffer, error) {
	info, err := l.exec.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if !info.HasAudio {
		return nil, fmt.Errorf("%w: %s has no audio stream", highlight.ErrModalityUnavailable, path)
	}

	f, err := util.TempFile(l.tempDir, "clipscout-audio-", ".wav")
	if err != nil {
		return nil, fmt.Errorf("creating temp audio file: %w", err)
	}
	wavPath := f.Name()
	f.Close()
	defer util.CleanupFiles(wavPath)

	if err := l.exec.ExtractAudio(ctx, path, wavPath, l.format, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", highlight.ErrDecodeFailure, err)
	}

	buf, err := audio.ReadWAVFile(wavPath)
	if err != nil {
		return nil, err
	}

	l.exec.logger.Debug().
		Str("file", path).
		Int("samples", len(buf.Samples)).
		Int("sample_rate", buf.SampleRate).
		Msg("audio decoded")

	return buf, nil
}
