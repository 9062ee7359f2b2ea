package highlight

import (
	"fmt"
	"sort"
)

// MergeConfig holds the merge tolerance and the gates applied to merged groups
type MergeConfig struct {
	MinDuration         float64
	ConfidenceThreshold float64
	MergeTolerance      float64
}

// DefaultMergeConfig returns the default merge tolerance and gates
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		MinDuration:         5,
		ConfidenceThreshold: 0.7,
		MergeTolerance:      2,
	}
}

// Merger reconciles candidates from every modality into the final list.
// It keeps no state between calls.
type Merger struct {
	config MergeConfig
}

// NewMerger creates a new merger
func NewMerger(cfg MergeConfig) *Merger {
	return &Merger{config: cfg}
}

// Config returns the merge settings
func (m *Merger) Config() MergeConfig {
	return m.config
}

// Merge sorts candidates by start time, folds together those that overlap or
// sit within the merge tolerance, and keeps only groups that pass the duration
// and confidence gates. The result is ordered and non-overlapping. A candidate
// that fails validation aborts the merge with ErrMalformedCandidate.
func (m *Merger) Merge(candidates []Candidate) ([]Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	for i, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("candidate %d from %s: %w", i, c.Detector, err)
		}
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	SortCandidates(sorted)

	var merged []Candidate
	current := sorted[0].Clone()

	for _, c := range sorted[1:] {
		if c.Start <= current.End+m.config.MergeTolerance {
			if c.End > current.End {
				current.End = c.End
			}
			if c.Confidence > current.Confidence {
				current.Confidence = c.Confidence
			}
			if c.Description != current.Description {
				current.Description += "; " + c.Description
			}
			continue
		}

		if m.Passes(current) {
			merged = append(merged, current)
		}
		current = c.Clone()
	}

	if m.Passes(current) {
		merged = append(merged, current)
	}

	return merged, nil
}

// Passes applies the duration and confidence gates to a closed group
func (m *Merger) Passes(c Candidate) bool {
	return c.Duration() >= m.config.MinDuration && c.Confidence >= m.config.ConfidenceThreshold
}

// SortCandidates orders candidates by start time. Equal starts fall back to
// detector order (audio, then visual, then text) and then to input order.
func SortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Start != cs[j].Start {
			return cs[i].Start < cs[j].Start
		}
		return cs[i].Detector.order() < cs[j].Detector.order()
	})
}
