package text

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/keagan/clipscout/internal/highlight"
)

// Config tunes the transcript detectors. Pads are in seconds.
type Config struct {
	KeywordConfidence float64
	KeywordPadBefore  float64
	KeywordPadAfter   float64

	PatternConfidence float64
	PatternPadBefore  float64
	PatternPadAfter   float64
}

// DefaultConfig returns the default text detector settings
func DefaultConfig() Config {
	return Config{
		KeywordConfidence: 0.9,
		KeywordPadBefore:  3,
		KeywordPadAfter:   5,
		PatternConfidence: 0.8,
		PatternPadBefore:  2,
		PatternPadAfter:   3,
	}
}

// Detector finds highlight cues in transcript text. Its keyword table and
// pattern set are fixed at construction, so one Detector can serve many
// transcripts concurrently.
type Detector struct {
	logger   zerolog.Logger
	config   Config
	keywords *KeywordTable
	patterns *PatternSet
}

// NewDetector builds a detector. Nil tables fall back to the defaults.
func NewDetector(logger zerolog.Logger, cfg Config, keywords *KeywordTable, patterns *PatternSet) *Detector {
	if keywords == nil {
		keywords = DefaultKeywordTable()
	}
	if patterns == nil {
		patterns = DefaultPatternSet()
	}
	return &Detector{
		logger:   logger.With().Str("component", "text-detector").Logger(),
		config:   cfg,
		keywords: keywords,
		patterns: patterns,
	}
}

// DetectKeywords emits one candidate per keyword found in each segment
func (d *Detector) DetectKeywords(t *Transcript) ([]highlight.Candidate, error) {
	if err := validate(t); err != nil {
		return nil, err
	}
	upper := upperBound(t)

	var out []highlight.Candidate
	for _, seg := range t.Segments {
		matches := d.keywords.Find(seg.Text)
		if len(matches) == 0 {
			continue
		}
		start, end, ok := highlight.ClampWindow(seg.Start-d.config.KeywordPadBefore, seg.End+d.config.KeywordPadAfter, 0, upper)
		if !ok {
			continue
		}

		for _, m := range matches {
			out = append(out, highlight.Candidate{
				Start:       start,
				End:         end,
				Confidence:  highlight.Clamp01(d.config.KeywordConfidence),
				Type:        highlight.TextKeyword,
				Description: fmt.Sprintf("Keyword detected: %s (%s)", m.Keyword, m.Category),
				Metadata: highlight.Metadata{
					"keyword":  m.Keyword,
					"category": m.Category,
					"text":     seg.Text,
				},
				Detector: highlight.DetectorKeyword,
			})
		}
	}

	d.logger.Debug().
		Int("segments", len(t.Segments)).
		Int("candidates", len(out)).
		Msg("keyword detection complete")

	return out, nil
}

// DetectEmotionalMoments emits one candidate per matching pattern in each
// segment
func (d *Detector) DetectEmotionalMoments(t *Transcript) ([]highlight.Candidate, error) {
	if err := validate(t); err != nil {
		return nil, err
	}
	upper := upperBound(t)

	var out []highlight.Candidate
	for _, seg := range t.Segments {
		found := d.patterns.Find(seg.Text)
		if len(found) == 0 {
			continue
		}
		start, end, ok := highlight.ClampWindow(seg.Start-d.config.PatternPadBefore, seg.End+d.config.PatternPadAfter, 0, upper)
		if !ok {
			continue
		}

		for _, m := range found {
			out = append(out, highlight.Candidate{
				Start:       start,
				End:         end,
				Confidence:  highlight.Clamp01(d.config.PatternConfidence),
				Type:        highlight.TextKeyword,
				Description: fmt.Sprintf("Emotional moment detected: %s", m.Matches[0]),
				Metadata: highlight.Metadata{
					"pattern":    m.Label,
					"expression": m.Expr,
					"matches":    m.Matches,
					"text":       seg.Text,
				},
				Detector: highlight.DetectorEmotionalPattern,
			})
		}
	}

	d.logger.Debug().
		Int("segments", len(t.Segments)).
		Int("candidates", len(out)).
		Msg("emotional pattern detection complete")

	return out, nil
}

func validate(t *Transcript) error {
	if t == nil {
		return fmt.Errorf("%w: no transcript", highlight.ErrModalityUnavailable)
	}
	return nil
}

func upperBound(t *Transcript) float64 {
	if t.Duration > 0 {
		return t.Duration
	}
	return math.Inf(1)
}
