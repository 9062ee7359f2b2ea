package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/keagan/clipscout/internal/highlight"
	"github.com/keagan/clipscout/pkg/util"
)

// Manifest is the JSON document written after a detection run
type Manifest struct {
	ID         string           `json:"id"`
	MediaPath  string           `json:"media_path"`
	CreatedAt  time.Time        `json:"created_at"`
	Candidates int              `json:"candidates"`
	Highlights []ManifestEntry  `json:"highlights"`
	Detectors  []ManifestReport `json:"detectors"`
}

// ManifestEntry is one final highlight with a stable identifier and
// human-readable timecodes
type ManifestEntry struct {
	ID string `json:"id"`
	highlight.Candidate
	StartTimecode string `json:"start_timecode"`
	EndTimecode   string `json:"end_timecode"`
}

// ManifestReport summarises one detector's run
type ManifestReport struct {
	Detector   highlight.Detector `json:"detector"`
	Modality   string             `json:"modality"`
	Candidates int                `json:"candidates"`
	Error      string             `json:"error,omitempty"`
	ElapsedMS  int64              `json:"elapsed_ms"`
}

// NewManifest builds a manifest from a detection result
func NewManifest(res *Result) *Manifest {
	m := &Manifest{
		ID:         uuid.NewString(),
		MediaPath:  res.MediaPath,
		CreatedAt:  time.Now().UTC(),
		Candidates: res.Candidates,
		Highlights: make([]ManifestEntry, 0, len(res.Highlights)),
		Detectors:  make([]ManifestReport, 0, len(res.Reports)),
	}

	for _, h := range res.Highlights {
		m.Highlights = append(m.Highlights, ManifestEntry{
			ID:            uuid.NewString(),
			Candidate:     h,
			StartTimecode: util.FormatSeconds(h.Start),
			EndTimecode:   util.FormatSeconds(h.End),
		})
	}

	for _, rep := range res.Reports {
		mr := ManifestReport{
			Detector:   rep.Detector,
			Modality:   rep.Detector.Modality().String(),
			Candidates: rep.Candidates,
			ElapsedMS:  rep.Elapsed.Milliseconds(),
		}
		if rep.Err != nil {
			mr.Error = rep.Err.Error()
		}
		m.Detectors = append(m.Detectors, mr)
	}

	return m
}

// Encode writes the manifest as indented JSON
func (m *Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// WriteManifest saves the manifest to path, creating parent directories
func WriteManifest(path string, m *Manifest) error {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer f.Close()

	if err := m.Encode(f); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return f.Close()
}

// ReadManifest loads a manifest written by WriteManifest
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
