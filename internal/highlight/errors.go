package highlight

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrModalityUnavailable means the input has no usable track or transcript
	// for a detector. The detector contributes zero candidates.
	ErrModalityUnavailable = errors.New("modality unavailable")

	// ErrDecodeFailure means the media could not be read or decoded.
	ErrDecodeFailure = errors.New("decode failure")

	// ErrMalformedCandidate is a programmer error: a candidate that breaks the
	// record invariants reached the merge stage.
	ErrMalformedCandidate = errors.New("malformed candidate")
)

// Validate checks the record invariants every candidate must hold before merge
func (c Candidate) Validate() error {
	switch {
	case math.IsNaN(c.Start) || math.IsNaN(c.End) || math.IsNaN(c.Confidence):
		return fmt.Errorf("%w: NaN field in %s candidate", ErrMalformedCandidate, c.Type)
	case math.IsInf(c.Start, 0) || math.IsInf(c.End, 0):
		return fmt.Errorf("%w: unbounded interval in %s candidate", ErrMalformedCandidate, c.Type)
	case c.Start < 0:
		return fmt.Errorf("%w: negative start %.3f", ErrMalformedCandidate, c.Start)
	case c.End <= c.Start:
		return fmt.Errorf("%w: end %.3f not after start %.3f", ErrMalformedCandidate, c.End, c.Start)
	case c.Confidence < 0 || c.Confidence > 1:
		return fmt.Errorf("%w: confidence %.3f outside [0,1]", ErrMalformedCandidate, c.Confidence)
	case !c.Type.Valid():
		return fmt.Errorf("%w: unknown type %q", ErrMalformedCandidate, c.Type)
	}
	return nil
}
