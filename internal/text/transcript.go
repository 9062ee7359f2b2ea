package text

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Segment is one timed line of a transcript
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the speech-to-text output for a media file, in the shape
// Whisper emits. Duration is zero when unknown.
type Transcript struct {
	Text     string    `json:"text,omitempty"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Segments []Segment `json:"segments"`
}

// ParseTranscript decodes a transcript and orders its segments by start time
func ParseTranscript(r io.Reader) (*Transcript, error) {
	var t Transcript
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}

	for i, s := range t.Segments {
		if s.Start < 0 || s.End < s.Start {
			return nil, fmt.Errorf("segment %d has invalid bounds [%g, %g]", i, s.Start, s.End)
		}
	}
	sort.SliceStable(t.Segments, func(i, j int) bool {
		return t.Segments[i].Start < t.Segments[j].Start
	})

	return &t, nil
}

// LoadTranscript reads a transcript JSON file
func LoadTranscript(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	return ParseTranscript(f)
}
