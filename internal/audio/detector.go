package audio

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/keagan/clipscout/internal/highlight"
)

// Config tunes the audio detectors. Durations and pads are in seconds.
type Config struct {
	FrameLength int
	HopLength   int

	MinDuration float64
	MaxDuration float64

	SpikePercentile float64
	SpikeMaxGap     int
	SpikePadBefore  float64
	SpikePadAfter   float64

	SilenceTopDB      float64
	SilenceMinGap     float64
	SilencePad        float64
	SilenceConfidence float64

	VariationStdDevFactor  float64
	VariationMaxGapSeconds float64
	VariationPadBefore     float64
	VariationPadAfter      float64
}

// DefaultConfig returns the default audio detector settings
func DefaultConfig() Config {
	return Config{
		FrameLength:            2048,
		HopLength:              512,
		MinDuration:            5,
		MaxDuration:            120,
		SpikePercentile:        90,
		SpikeMaxGap:            1,
		SpikePadBefore:         2,
		SpikePadAfter:          3,
		SilenceTopDB:           20,
		SilenceMinGap:          2,
		SilencePad:             1,
		SilenceConfidence:      0.8,
		VariationStdDevFactor:  2,
		VariationMaxGapSeconds: 1,
		VariationPadBefore:     2,
		VariationPadAfter:      5,
	}
}

// Detector runs the audio heuristics over a decoded buffer
type Detector struct {
	logger zerolog.Logger
	config Config
}

// NewDetector creates a new audio detector
func NewDetector(logger zerolog.Logger, cfg Config) *Detector {
	return &Detector{
		logger: logger.With().Str("component", "audio-detector").Logger(),
		config: cfg,
	}
}

// DetectSpikes finds sudden loud moments: clusters of frames whose RMS energy
// is above the configured percentile.
func (d *Detector) DetectSpikes(buf *Buffer) ([]highlight.Candidate, error) {
	if err := buf.validate(); err != nil {
		return nil, err
	}

	rms := RMS(buf.Samples, d.config.FrameLength, d.config.HopLength)
	times := frameTimes(len(rms), d.config.HopLength, buf.SampleRate)
	trackEnd := times[len(times)-1]

	threshold := highlight.Percentile(rms, d.config.SpikePercentile)

	var out []highlight.Candidate
	for _, group := range highlight.GroupIndices(highlight.IndicesAbove(rms, threshold), d.config.SpikeMaxGap) {
		start, end, ok := highlight.ClampWindow(
			times[group[0]]-d.config.SpikePadBefore,
			times[group[len(group)-1]]+d.config.SpikePadAfter,
			0, trackEnd)
		if !ok || end-start < d.config.MinDuration {
			continue
		}

		out = append(out, highlight.Candidate{
			Start:       start,
			End:         end,
			Confidence:  highlight.RatioConfidence(highlight.MeanAt(rms, group), threshold),
			Type:        highlight.AudioSpike,
			Description: "Audio spike detected",
			Detector:    highlight.DetectorAudioSpike,
		})
	}

	d.logger.Debug().
		Float64("threshold", threshold).
		Int("candidates", len(out)).
		Msg("spike detection complete")

	return out, nil
}

// DetectSilenceBreaks finds voiced stretches that follow a period of silence
func (d *Detector) DetectSilenceBreaks(buf *Buffer) ([]highlight.Candidate, error) {
	if err := buf.validate(); err != nil {
		return nil, err
	}

	sr := float64(buf.SampleRate)
	trackEnd := buf.Duration()
	intervals := VoicedIntervals(buf.Samples, d.config.SilenceTopDB, d.config.FrameLength, d.config.HopLength)

	var out []highlight.Candidate
	prevEnd := 0.0
	for _, iv := range intervals {
		start := float64(iv.Start) / sr
		end := float64(iv.End) / sr
		silence := start - prevEnd
		prevEnd = end

		duration := end - start
		if duration < d.config.MinDuration || duration > d.config.MaxDuration {
			continue
		}
		if silence < d.config.SilenceMinGap {
			continue
		}

		s, e, ok := highlight.ClampWindow(start-d.config.SilencePad, end+d.config.SilencePad, 0, trackEnd)
		if !ok {
			continue
		}
		out = append(out, highlight.Candidate{
			Start:       s,
			End:         e,
			Confidence:  highlight.Clamp01(d.config.SilenceConfidence),
			Type:        highlight.SilenceBreak,
			Description: "Activity after silence",
			Metadata:    highlight.Metadata{"silence_before": silence},
			Detector:    highlight.DetectorSilenceBreak,
		})
	}

	d.logger.Debug().
		Int("voiced_intervals", len(intervals)).
		Int("candidates", len(out)).
		Msg("silence break detection complete")

	return out, nil
}

// DetectTextureChanges finds abrupt shifts in spectral brightness
func (d *Detector) DetectTextureChanges(buf *Buffer) ([]highlight.Candidate, error) {
	if err := buf.validate(); err != nil {
		return nil, err
	}

	centroids := SpectralCentroid(buf.Samples, buf.SampleRate, d.config.FrameLength, d.config.HopLength)
	if len(centroids) < 2 {
		return nil, nil
	}
	times := frameTimes(len(centroids), d.config.HopLength, buf.SampleRate)
	trackEnd := times[len(times)-1]

	diff := make([]float64, len(centroids)-1)
	absDiff := make([]float64, len(diff))
	for i := range diff {
		diff[i] = centroids[i+1] - centroids[i]
		absDiff[i] = math.Abs(diff[i])
	}

	threshold := highlight.PopStdDev(diff) * d.config.VariationStdDevFactor
	if threshold <= 0 {
		return nil, nil
	}

	maxGap := int(d.config.VariationMaxGapSeconds * float64(buf.SampleRate) / float64(d.config.HopLength))
	if maxGap < 1 {
		maxGap = 1
	}

	var out []highlight.Candidate
	for _, group := range highlight.GroupIndices(highlight.IndicesAbove(absDiff, threshold), maxGap) {
		start, end, ok := highlight.ClampWindow(
			times[group[0]]-d.config.VariationPadBefore,
			times[group[len(group)-1]]+d.config.VariationPadAfter,
			0, trackEnd)
		if !ok || end-start < d.config.MinDuration {
			continue
		}

		out = append(out, highlight.Candidate{
			Start:       start,
			End:         end,
			Confidence:  highlight.RatioConfidence(highlight.MeanAt(absDiff, group), threshold),
			Type:        highlight.MotionPeak,
			Description: "Audio texture change",
			Detector:    highlight.DetectorTextureChange,
		})
	}

	d.logger.Debug().
		Float64("threshold", threshold).
		Int("max_gap", maxGap).
		Int("candidates", len(out)).
		Msg("texture change detection complete")

	return out, nil
}
