package visual

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/rs/zerolog"

	"github.com/keagan/clipscout/internal/highlight"
)

// Config tunes the visual detectors. Durations and pads are in seconds.
type Config struct {
	MinDuration float64

	SampleInterval    float64
	CorrelationCutoff float64
	ScenePadBefore    float64
	ScenePadAfter     float64

	MotionStride         int
	MotionPercentile     float64
	MotionMaxGapSeconds  float64
	MotionPadBefore      float64
	MotionPadAfter       float64
	MotionLearningRate   float64
	MotionPixelThreshold float64

	AnalysisWidth int
	ProgressEvery int
}

// DefaultConfig returns the default visual detector settings
func DefaultConfig() Config {
	return Config{
		MinDuration:          5,
		SampleInterval:       0.5,
		CorrelationCutoff:    0.7,
		ScenePadBefore:       3,
		ScenePadAfter:        7,
		MotionStride:         5,
		MotionPercentile:     85,
		MotionMaxGapSeconds:  0.2,
		MotionPadBefore:      2,
		MotionPadAfter:       3,
		MotionLearningRate:   0.05,
		MotionPixelThreshold: 25,
		AnalysisWidth:        160,
		ProgressEvery:        25,
	}
}

// Detector scans video frames for scene cuts and bursts of motion. Each scan
// opens its own frame source and closes it before returning.
type Detector struct {
	logger zerolog.Logger
	opener Opener
	config Config
}

// NewDetector creates a new visual detector reading frames through opener
func NewDetector(logger zerolog.Logger, opener Opener, cfg Config) *Detector {
	return &Detector{
		logger: logger.With().Str("component", "visual-detector").Logger(),
		opener: opener,
		config: cfg,
	}
}

// DetectSceneChanges compares the gray histograms of frames sampled every
// SampleInterval seconds and emits a candidate at every low-correlation cut
func (d *Detector) DetectSceneChanges(ctx context.Context, path string, progress ProgressFunc) ([]highlight.Candidate, error) {
	src, err := d.open(ctx, path, OpenOptions{
		SampleInterval: d.config.SampleInterval,
		Width:          d.config.AnalysisWidth,
	})
	if err != nil {
		return nil, err
	}
	defer d.close(src)

	info := src.Info()
	mediaEnd := mediaDuration(info)
	total := 0
	if info.Duration > 0 && d.config.SampleInterval > 0 {
		total = int(info.Duration/d.config.SampleInterval) + 1
	}
	report := d.reporter(highlight.DetectorSceneChange.String(), total, progress)

	var (
		out     []highlight.Candidate
		prev    Histogram
		hasPrev bool
		frames  int
	)
	for {
		frame, err := d.next(ctx, src)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		frames++
		report(frames, false)

		hist := GrayHistogram(Normalize(frame.Image, d.config.AnalysisWidth))
		if hasPrev {
			if c, ok := d.transition(frame.Timestamp, Correlate(prev, hist), mediaEnd); ok {
				out = append(out, c)
			}
		}
		prev, hasPrev = hist, true
	}
	report(frames, true)

	d.logger.Debug().
		Int("frames", frames).
		Int("candidates", len(out)).
		Msg("scene change detection complete")

	return out, nil
}

// transition turns one histogram comparison at time t into a candidate
func (d *Detector) transition(t, corr, mediaEnd float64) (highlight.Candidate, bool) {
	if corr >= d.config.CorrelationCutoff {
		return highlight.Candidate{}, false
	}

	start, end, ok := highlight.ClampWindow(t-d.config.ScenePadBefore, t+d.config.ScenePadAfter, 0, mediaEnd)
	if !ok {
		return highlight.Candidate{}, false
	}

	return highlight.Candidate{
		Start:       start,
		End:         end,
		Confidence:  highlight.Clamp01(1 - corr),
		Type:        highlight.SceneChange,
		Description: fmt.Sprintf("Scene change (correlation: %.2f)", corr),
		Metadata:    highlight.Metadata{"correlation": corr},
		Detector:    highlight.DetectorSceneChange,
	}, true
}

// DetectMotionPeaks tracks the foreground pixel count of every MotionStride-th
// frame against a running background and clusters the busiest moments
func (d *Detector) DetectMotionPeaks(ctx context.Context, path string, progress ProgressFunc) ([]highlight.Candidate, error) {
	stride := max(1, d.config.MotionStride)
	src, err := d.open(ctx, path, OpenOptions{
		FrameStride: stride,
		Width:       d.config.AnalysisWidth,
	})
	if err != nil {
		return nil, err
	}
	defer d.close(src)

	info := src.Info()
	report := d.reporter(highlight.DetectorMotionPeak.String(), info.FrameCount/stride, progress)
	model := NewBackgroundModel(d.config.MotionLearningRate, d.config.MotionPixelThreshold)

	var values, times []float64
	for {
		frame, err := d.next(ctx, src)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		values = append(values, float64(model.Apply(Normalize(frame.Image, d.config.AnalysisWidth))))
		times = append(times, frame.Timestamp)
		report(len(values), false)
	}
	report(len(values), true)

	if len(values) == 0 {
		return nil, nil
	}

	threshold := highlight.Percentile(values, d.config.MotionPercentile)
	maxGap := 1
	if info.FPS > 0 {
		maxGap = max(1, int(math.Round(d.config.MotionMaxGapSeconds*info.FPS/float64(stride))))
	}
	trackEnd := times[len(times)-1]

	var out []highlight.Candidate
	for _, group := range highlight.GroupIndices(highlight.IndicesAbove(values, threshold), maxGap) {
		start, end, ok := highlight.ClampWindow(
			times[group[0]]-d.config.MotionPadBefore,
			times[group[len(group)-1]]+d.config.MotionPadAfter,
			0, trackEnd)
		if !ok || end-start < d.config.MinDuration {
			continue
		}

		out = append(out, highlight.Candidate{
			Start:       start,
			End:         end,
			Confidence:  highlight.RatioConfidence(highlight.MeanAt(values, group), threshold),
			Type:        highlight.MotionPeak,
			Description: "High motion detected",
			Detector:    highlight.DetectorMotionPeak,
		})
	}

	d.logger.Debug().
		Int("frames", len(values)).
		Float64("threshold", threshold).
		Int("max_gap", maxGap).
		Int("candidates", len(out)).
		Msg("motion detection complete")

	return out, nil
}

func (d *Detector) open(ctx context.Context, path string, opts OpenOptions) (FrameSource, error) {
	if d.opener == nil {
		return nil, fmt.Errorf("%w: no frame source configured", highlight.ErrModalityUnavailable)
	}
	src, err := d.opener.Open(ctx, path, opts)
	if err != nil {
		return nil, fmt.Errorf("opening frames of %s: %w", path, err)
	}
	return src, nil
}

// next checks for cancellation before every read so a long scan stops
// promptly
func (d *Detector) next(ctx context.Context, src FrameSource) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	frame, err := src.Next(ctx)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return Frame{}, ctx.Err()
	case errors.Is(err, io.EOF):
		return Frame{}, io.EOF
	default:
		return Frame{}, fmt.Errorf("%w: reading frame: %v", highlight.ErrDecodeFailure, err)
	}
	if frame.Image == nil {
		return Frame{}, fmt.Errorf("%w: frame %d has no image", highlight.ErrDecodeFailure, frame.Index)
	}
	return frame, nil
}

func (d *Detector) close(src FrameSource) {
	if err := src.Close(); err != nil {
		d.logger.Warn().Err(err).Msg("failed to close frame source")
	}
}

// reporter rate-limits progress callbacks to every ProgressEvery frames plus
// a final update
func (d *Detector) reporter(name string, total int, fn ProgressFunc) func(frames int, done bool) {
	every := max(1, d.config.ProgressEvery)
	return func(frames int, done bool) {
		if fn == nil {
			return
		}
		if done || frames%every == 0 {
			fn(Progress{Detector: name, Frames: frames, Total: max(total, frames)})
		}
	}
}

// mediaDuration is the upper clamp for scene windows. An unknown duration
// leaves windows unclamped at the end.
func mediaDuration(info StreamInfo) float64 {
	if info.Duration > 0 {
		return info.Duration
	}
	if info.FPS > 0 && info.FrameCount > 0 {
		return float64(info.FrameCount) / info.FPS
	}
	return math.Inf(1)
}
