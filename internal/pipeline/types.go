package pipeline

import (
	"errors"
	"time"

	"github.com/keagan/clipscout/internal/audio"
	"github.com/keagan/clipscout/internal/highlight"
	"github.com/keagan/clipscout/internal/text"
	"github.com/keagan/clipscout/internal/visual"
)

// Dependencies are the collaborators that feed and consume the detectors.
// A nil Audio or Frames makes that modality unavailable.
type Dependencies struct {
	Audio    audio.Source
	Frames   visual.Opener
	Progress visual.ProgressFunc
	Sinks    []highlight.Sink
}

// Request describes one detection run
type Request struct {
	MediaPath  string
	Transcript *text.Transcript

	SkipAudio bool
	SkipVideo bool
}

// DetectorReport records how a single detector fared
type DetectorReport struct {
	Detector   highlight.Detector
	Candidates int
	Err        error
	Elapsed    time.Duration
}

// Unavailable reports whether the detector had no input to work on, as
// opposed to failing on input it had
func (r DetectorReport) Unavailable() bool {
	return errors.Is(r.Err, highlight.ErrModalityUnavailable)
}

// Result is the outcome of a detection run
type Result struct {
	MediaPath  string
	Highlights []highlight.Candidate
	// Candidates counts the raw candidates fed into the merge step
	Candidates int
	Reports    []DetectorReport
}

// Failed returns the reports of detectors that produced an error
func (r *Result) Failed() []DetectorReport {
	var out []DetectorReport
	for _, rep := range r.Reports {
		if rep.Err != nil {
			out = append(out, rep)
		}
	}
	return out
}

// AllFailed distinguishes "every detector failed" from "nothing interesting
// was found". It is false when no detector ran.
func (r *Result) AllFailed() bool {
	return len(r.Reports) > 0 && len(r.Failed()) == len(r.Reports)
}
