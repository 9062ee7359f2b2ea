package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/keagan/clipscout/internal/audio"
	"github.com/keagan/clipscout/internal/ffmpeg"
	"github.com/keagan/clipscout/internal/highlight"
	"github.com/keagan/clipscout/internal/text"
	"github.com/keagan/clipscout/internal/visual"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	TempDir     string `yaml:"temp_dir"`
	Concurrency int    `yaml:"concurrency"`

	// Merge and gating settings shared by every detector
	Detection DetectionConfig `yaml:"detection"`

	Audio  AudioConfig  `yaml:"audio"`
	Visual VisualConfig `yaml:"visual"`
	Text   TextConfig   `yaml:"text"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`
}

type DetectionConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	MinDuration         float64 `yaml:"min_duration"`
	MaxDuration         float64 `yaml:"max_duration"`
	MergeTolerance      float64 `yaml:"merge_tolerance"`
}

type AudioConfig struct {
	SampleRate  int `yaml:"sample_rate"`
	FrameLength int `yaml:"frame_length"`
	HopLength   int `yaml:"hop_length"`

	SpikePercentile float64 `yaml:"spike_percentile"`
	SpikeMaxGap     int     `yaml:"spike_max_gap"`
	SpikePadBefore  float64 `yaml:"spike_pad_before"`
	SpikePadAfter   float64 `yaml:"spike_pad_after"`

	SilenceTopDB      float64 `yaml:"silence_top_db"`
	SilenceMinGap     float64 `yaml:"silence_min_gap"`
	SilencePad        float64 `yaml:"silence_pad"`
	SilenceConfidence float64 `yaml:"silence_confidence"`

	VariationStdDevFactor  float64 `yaml:"variation_stddev_factor"`
	VariationMaxGapSeconds float64 `yaml:"variation_max_gap_seconds"`
	VariationPadBefore     float64 `yaml:"variation_pad_before"`
	VariationPadAfter      float64 `yaml:"variation_pad_after"`
}

type VisualConfig struct {
	SampleInterval    float64 `yaml:"sample_interval"`
	CorrelationCutoff float64 `yaml:"correlation_cutoff"`
	ScenePadBefore    float64 `yaml:"scene_pad_before"`
	ScenePadAfter     float64 `yaml:"scene_pad_after"`

	MotionStride         int     `yaml:"motion_stride"`
	MotionPercentile     float64 `yaml:"motion_percentile"`
	MotionMaxGapSeconds  float64 `yaml:"motion_max_gap_seconds"`
	MotionPadBefore      float64 `yaml:"motion_pad_before"`
	MotionPadAfter       float64 `yaml:"motion_pad_after"`
	MotionLearningRate   float64 `yaml:"motion_learning_rate"`
	MotionPixelThreshold float64 `yaml:"motion_pixel_threshold"`

	AnalysisWidth int `yaml:"analysis_width"`
}

type TextConfig struct {
	KeywordConfidence float64 `yaml:"keyword_confidence"`
	KeywordPadBefore  float64 `yaml:"keyword_pad_before"`
	KeywordPadAfter   float64 `yaml:"keyword_pad_after"`
	PatternConfidence float64 `yaml:"pattern_confidence"`
	PatternPadBefore  float64 `yaml:"pattern_pad_before"`
	PatternPadAfter   float64 `yaml:"pattern_pad_after"`

	// ExtraKeywords are appended to the built-in categories
	ExtraKeywords []text.Category `yaml:"extra_keywords,omitempty"`
	// Patterns replaces the built-in emotional patterns when set
	Patterns []text.PatternSpec `yaml:"patterns,omitempty"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Default returns the built-in configuration
func Default() *Config {
	m := highlight.DefaultMergeConfig()
	a := audio.DefaultConfig()
	v := visual.DefaultConfig()
	t := text.DefaultConfig()

	return &Config{
		TempDir:     "",
		Concurrency: 3,
		Detection: DetectionConfig{
			ConfidenceThreshold: m.ConfidenceThreshold,
			MinDuration:         m.MinDuration,
			MaxDuration:         a.MaxDuration,
			MergeTolerance:      m.MergeTolerance,
		},
		Audio: AudioConfig{
			SampleRate:             22050,
			FrameLength:            a.FrameLength,
			HopLength:              a.HopLength,
			SpikePercentile:        a.SpikePercentile,
			SpikeMaxGap:            a.SpikeMaxGap,
			SpikePadBefore:         a.SpikePadBefore,
			SpikePadAfter:          a.SpikePadAfter,
			SilenceTopDB:           a.SilenceTopDB,
			SilenceMinGap:          a.SilenceMinGap,
			SilencePad:             a.SilencePad,
			SilenceConfidence:      a.SilenceConfidence,
			VariationStdDevFactor:  a.VariationStdDevFactor,
			VariationMaxGapSeconds: a.VariationMaxGapSeconds,
			VariationPadBefore:     a.VariationPadBefore,
			VariationPadAfter:      a.VariationPadAfter,
		},
		Visual: VisualConfig{
			SampleInterval:       v.SampleInterval,
			CorrelationCutoff:    v.CorrelationCutoff,
			ScenePadBefore:       v.ScenePadBefore,
			ScenePadAfter:        v.ScenePadAfter,
			MotionStride:         v.MotionStride,
			MotionPercentile:     v.MotionPercentile,
			MotionMaxGapSeconds:  v.MotionMaxGapSeconds,
			MotionPadBefore:      v.MotionPadBefore,
			MotionPadAfter:       v.MotionPadAfter,
			MotionLearningRate:   v.MotionLearningRate,
			MotionPixelThreshold: v.MotionPixelThreshold,
			AnalysisWidth:        v.AnalysisWidth,
		},
		Text: TextConfig{
			KeywordConfidence: t.KeywordConfidence,
			KeywordPadBefore:  t.KeywordPadBefore,
			KeywordPadAfter:   t.KeywordPadAfter,
			PatternConfidence: t.PatternConfidence,
			PatternPadBefore:  t.PatternPadBefore,
			PatternPadAfter:   t.PatternPadAfter,
		},
	}
}

// Validate reports every setting that cannot work
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	d := c.Detection
	check(c.Concurrency >= 0, "concurrency must not be negative")
	check(inUnit(d.ConfidenceThreshold), "detection.confidence_threshold must be within [0,1], got %g", d.ConfidenceThreshold)
	check(d.MinDuration >= 0, "detection.min_duration must not be negative")
	check(d.MaxDuration >= d.MinDuration, "detection.max_duration must be at least min_duration")
	check(d.MergeTolerance >= 0, "detection.merge_tolerance must not be negative")

	a := c.Audio
	check(a.SampleRate > 0, "audio.sample_rate must be positive")
	check(a.FrameLength > 0 && a.HopLength > 0, "audio.frame_length and audio.hop_length must be positive")
	check(isPercentile(a.SpikePercentile), "audio.spike_percentile must be within (0,100], got %g", a.SpikePercentile)
	check(a.SpikeMaxGap >= 1, "audio.spike_max_gap must be at least 1")
	check(a.SilenceTopDB > 0, "audio.silence_top_db must be positive")
	check(inUnit(a.SilenceConfidence), "audio.silence_confidence must be within [0,1]")
	check(a.VariationStdDevFactor > 0, "audio.variation_stddev_factor must be positive")

	v := c.Visual
	check(v.SampleInterval > 0, "visual.sample_interval must be positive")
	check(v.CorrelationCutoff > 0 && v.CorrelationCutoff <= 1, "visual.correlation_cutoff must be within (0,1], got %g", v.CorrelationCutoff)
	check(v.MotionStride >= 1, "visual.motion_stride must be at least 1")
	check(isPercentile(v.MotionPercentile), "visual.motion_percentile must be within (0,100], got %g", v.MotionPercentile)
	check(v.MotionLearningRate > 0 && v.MotionLearningRate <= 1, "visual.motion_learning_rate must be within (0,1]")
	check(v.AnalysisWidth >= 0, "visual.analysis_width must not be negative")

	t := c.Text
	check(inUnit(t.KeywordConfidence), "text.keyword_confidence must be within [0,1]")
	check(inUnit(t.PatternConfidence), "text.pattern_confidence must be within [0,1]")

	return errors.Join(errs...)
}

func inUnit(x float64) bool {
	return x >= 0 && x <= 1
}

func isPercentile(p float64) bool {
	return p > 0 && p <= 100
}

// MergeConfig returns the merge and gate settings
func (c *Config) MergeConfig() highlight.MergeConfig {
	return highlight.MergeConfig{
		MinDuration:         c.Detection.MinDuration,
		ConfidenceThreshold: c.Detection.ConfidenceThreshold,
		MergeTolerance:      c.Detection.MergeTolerance,
	}
}

// AudioDetector returns the audio detector settings
func (c *Config) AudioDetector() audio.Config {
	a := c.Audio
	return audio.Config{
		FrameLength:            a.FrameLength,
		HopLength:              a.HopLength,
		MinDuration:            c.Detection.MinDuration,
		MaxDuration:            c.Detection.MaxDuration,
		SpikePercentile:        a.SpikePercentile,
		SpikeMaxGap:            a.SpikeMaxGap,
		SpikePadBefore:         a.SpikePadBefore,
		SpikePadAfter:          a.SpikePadAfter,
		SilenceTopDB:           a.SilenceTopDB,
		SilenceMinGap:          a.SilenceMinGap,
		SilencePad:             a.SilencePad,
		SilenceConfidence:      a.SilenceConfidence,
		VariationStdDevFactor:  a.VariationStdDevFactor,
		VariationMaxGapSeconds: a.VariationMaxGapSeconds,
		VariationPadBefore:     a.VariationPadBefore,
		VariationPadAfter:      a.VariationPadAfter,
	}
}

// VisualDetector returns the visual detector settings
func (c *Config) VisualDetector() visual.Config {
	v := c.Visual
	cfg := visual.DefaultConfig()
	cfg.MinDuration = c.Detection.MinDuration
	cfg.SampleInterval = v.SampleInterval
	cfg.CorrelationCutoff = v.CorrelationCutoff
	cfg.ScenePadBefore = v.ScenePadBefore
	cfg.ScenePadAfter = v.ScenePadAfter
	cfg.MotionStride = v.MotionStride
	cfg.MotionPercentile = v.MotionPercentile
	cfg.MotionMaxGapSeconds = v.MotionMaxGapSeconds
	cfg.MotionPadBefore = v.MotionPadBefore
	cfg.MotionPadAfter = v.MotionPadAfter
	cfg.MotionLearningRate = v.MotionLearningRate
	cfg.MotionPixelThreshold = v.MotionPixelThreshold
	cfg.AnalysisWidth = v.AnalysisWidth
	return cfg
}

// TextDetector returns the transcript detector settings
func (c *Config) TextDetector() text.Config {
	t := c.Text
	return text.Config{
		KeywordConfidence: t.KeywordConfidence,
		KeywordPadBefore:  t.KeywordPadBefore,
		KeywordPadAfter:   t.KeywordPadAfter,
		PatternConfidence: t.PatternConfidence,
		PatternPadBefore:  t.PatternPadBefore,
		PatternPadAfter:   t.PatternPadAfter,
	}
}

// KeywordTable returns the built-in keywords extended with ExtraKeywords
func (c *Config) KeywordTable() *text.KeywordTable {
	return text.DefaultKeywordTable().With(c.Text.ExtraKeywords...)
}

// PatternSet compiles the configured emotional patterns
func (c *Config) PatternSet() (*text.PatternSet, error) {
	if len(c.Text.Patterns) == 0 {
		return text.DefaultPatternSet(), nil
	}
	return text.CompilePatterns(c.Text.Patterns)
}

// FFmpegExecutor returns the executor settings
func (c *Config) FFmpegExecutor() ffmpeg.Config {
	return ffmpeg.Config{
		BinaryPath: c.FFmpeg.BinaryPath,
		ProbePath:  c.FFmpeg.ProbePath,
		Threads:    c.FFmpeg.Threads,
	}
}

func findConfigFile() string {
	candidates := []string{
		"./clipscout.yaml",
		"./clipscout.yml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".clipscout", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
