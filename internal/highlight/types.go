package highlight

import (
	"fmt"
	"strings"
)

// Type classifies what kind of signal produced a candidate
type Type string

const (
	AudioSpike   Type = "audio_spike"
	SilenceBreak Type = "silence_break"
	SceneChange  Type = "scene_change"
	MotionPeak   Type = "motion_peak"
	TextKeyword  Type = "text_keyword"
)

// Valid reports whether t is one of the known highlight types
func (t Type) Valid() bool {
	switch t {
	case AudioSpike, SilenceBreak, SceneChange, MotionPeak, TextKeyword:
		return true
	}
	return false
}

// Modality is an independent class of input signal
type Modality int

const (
	Audio Modality = iota
	Visual
	Text
)

func (m Modality) String() string {
	switch m {
	case Audio:
		return "audio"
	case Visual:
		return "visual"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Detector identifies the detector that emitted a candidate. The declaration
// order is the tie-break order used when candidates share a start time.
type Detector int

const (
	DetectorUnknown Detector = iota
	DetectorAudioSpike
	DetectorSilenceBreak
	DetectorTextureChange
	DetectorSceneChange
	DetectorMotionPeak
	DetectorKeyword
	DetectorEmotionalPattern
)

var detectorNames = map[Detector]string{
	DetectorAudioSpike:       "audio_spike",
	DetectorSilenceBreak:     "silence_break",
	DetectorTextureChange:    "texture_change",
	DetectorSceneChange:      "scene_change",
	DetectorMotionPeak:       "motion_peak",
	DetectorKeyword:          "keyword",
	DetectorEmotionalPattern: "emotional_pattern",
}

func (d Detector) String() string {
	if name, ok := detectorNames[d]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the detector by name
func (d Detector) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a detector name
func (d *Detector) UnmarshalText(b []byte) error {
	name := strings.TrimSpace(string(b))
	for det, n := range detectorNames {
		if n == name {
			*d = det
			return nil
		}
	}
	if name == "" || name == "unknown" {
		*d = DetectorUnknown
		return nil
	}
	return fmt.Errorf("unknown detector %q", name)
}

// Modality returns the signal class the detector reads
func (d Detector) Modality() Modality {
	switch d {
	case DetectorAudioSpike, DetectorSilenceBreak, DetectorTextureChange:
		return Audio
	case DetectorSceneChange, DetectorMotionPeak:
		return Visual
	case DetectorKeyword, DetectorEmotionalPattern:
		return Text
	default:
		return -1
	}
}

// order places unknown detectors after every known one
func (d Detector) order() int {
	if _, ok := detectorNames[d]; ok {
		return int(d)
	}
	return len(detectorNames) + 1
}

// Metadata is an optional bag of detector-specific details
type Metadata map[string]any

// Clone returns an independent copy of the metadata
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		if s, ok := v.([]string); ok {
			v = append([]string(nil), s...)
		}
		out[k] = v
	}
	return out
}

// Candidate is a highlight interval proposed by a single detector, or the
// merged record produced from a group of them.
type Candidate struct {
	Start       float64  `json:"start_time" yaml:"start_time"`
	End         float64  `json:"end_time" yaml:"end_time"`
	Confidence  float64  `json:"confidence" yaml:"confidence"`
	Type        Type     `json:"type" yaml:"type"`
	Description string   `json:"description" yaml:"description"`
	Metadata    Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Detector    Detector `json:"detector" yaml:"detector"`
}

// Duration returns the interval length in seconds
func (c Candidate) Duration() float64 {
	return c.End - c.Start
}

// Clone returns a copy that shares no mutable state with c
func (c Candidate) Clone() Candidate {
	c.Metadata = c.Metadata.Clone()
	return c
}
