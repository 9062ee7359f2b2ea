package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/keagan/clipscout/internal/audio"
	"github.com/keagan/clipscout/internal/config"
	"github.com/keagan/clipscout/internal/highlight"
	"github.com/keagan/clipscout/internal/text"
	"github.com/keagan/clipscout/internal/visual"
)

// Pipeline runs every modality's detectors over a media file and merges
// their candidates into the final highlight list
type Pipeline struct {
	logger      zerolog.Logger
	concurrency int
	deps        Dependencies

	audio  *audio.Detector
	visual *visual.Detector
	text   *text.Detector
	merger *highlight.Merger
}

// New creates a new pipeline instance
func New(logger zerolog.Logger, cfg *config.Config, deps Dependencies) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	patterns, err := cfg.PatternSet()
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		logger:      logger.With().Str("component", "pipeline").Logger(),
		concurrency: cfg.Concurrency,
		deps:        deps,
		audio:       audio.NewDetector(logger, cfg.AudioDetector()),
		visual:      visual.NewDetector(logger, deps.Frames, cfg.VisualDetector()),
		text:        text.NewDetector(logger, cfg.TextDetector(), cfg.KeywordTable(), patterns),
		merger:      highlight.NewMerger(cfg.MergeConfig()),
	}, nil
}

// modalityRun collects what one modality task produced
type modalityRun struct {
	candidates []highlight.Candidate
	reports    []DetectorReport
}

func (m *modalityRun) add(cs []highlight.Candidate, rep DetectorReport) {
	m.candidates = append(m.candidates, cs...)
	m.reports = append(m.reports, rep)
}

// Detect runs the detectors and returns the merged highlights. A failing
// detector contributes no candidates and is recorded in Result.Reports; only
// cancellation, a malformed candidate or a failing sink make Detect return an
// error. When a sink fails the Result is returned alongside the error.
func (p *Pipeline) Detect(ctx context.Context, req Request) (*Result, error) {
	if req.MediaPath == "" && req.Transcript == nil {
		return nil, fmt.Errorf("media path or transcript is required")
	}

	p.logger.Info().
		Str("input", req.MediaPath).
		Bool("transcript", req.Transcript != nil).
		Msg("starting highlight detection")

	var (
		audioRun, visualRun, textRun modalityRun
		g                            errgroup.Group
	)
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}

	if !req.SkipAudio {
		g.Go(func() error {
			p.detectAudio(ctx, req.MediaPath, &audioRun)
			return nil
		})
	}
	if !req.SkipVideo {
		g.Go(func() error {
			p.detectVisual(ctx, req.MediaPath, &visualRun)
			return nil
		})
	}
	g.Go(func() error {
		p.detectText(req.Transcript, &textRun)
		return nil
	})
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{MediaPath: req.MediaPath}
	var all []highlight.Candidate
	for _, run := range []*modalityRun{&audioRun, &visualRun, &textRun} {
		all = append(all, run.candidates...)
		res.Reports = append(res.Reports, run.reports...)
	}
	res.Candidates = len(all)

	highlights, err := p.merger.Merge(all)
	if err != nil {
		return nil, fmt.Errorf("merging candidates: %w", err)
	}
	res.Highlights = highlights

	p.logger.Info().
		Int("highlights", len(highlights)).
		Int("candidates", len(all)).
		Int("failed_detectors", len(res.Failed())).
		Msgf("Detected %d highlights from %d candidates", len(highlights), len(all))

	if res.AllFailed() {
		p.logger.Warn().Msg("every detector failed; the empty result does not mean the media is uneventful")
	}

	for _, sink := range p.deps.Sinks {
		if err := sink.Consume(ctx, req.MediaPath, highlights); err != nil {
			return res, fmt.Errorf("delivering highlights: %w", err)
		}
	}

	return res, nil
}

func (p *Pipeline) detectAudio(ctx context.Context, path string, run *modalityRun) {
	detectors := []highlight.Detector{
		highlight.DetectorAudioSpike,
		highlight.DetectorSilenceBreak,
		highlight.DetectorTextureChange,
	}

	var buf *audio.Buffer
	loadErr := fmt.Errorf("%w: no audio source", highlight.ErrModalityUnavailable)
	if p.deps.Audio != nil {
		start := time.Now()
		buf, loadErr = p.loadAudio(ctx, path)
		p.logger.Debug().Dur("elapsed", time.Since(start)).Err(loadErr).Msg("audio load finished")
	}
	if loadErr != nil {
		for _, det := range detectors {
			run.add(p.guard(det, func() ([]highlight.Candidate, error) { return nil, loadErr }))
		}
		return
	}

	run.add(p.guard(highlight.DetectorAudioSpike, func() ([]highlight.Candidate, error) {
		return p.audio.DetectSpikes(buf)
	}))
	run.add(p.guard(highlight.DetectorSilenceBreak, func() ([]highlight.Candidate, error) {
		return p.audio.DetectSilenceBreaks(buf)
	}))
	run.add(p.guard(highlight.DetectorTextureChange, func() ([]highlight.Candidate, error) {
		return p.audio.DetectTextureChanges(buf)
	}))
}

// loadAudio shields the pipeline from a panicking audio source
func (p *Pipeline) loadAudio(ctx context.Context, path string) (buf *audio.Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: audio source panicked: %v", highlight.ErrDecodeFailure, r)
		}
	}()
	return p.deps.Audio.Load(ctx, path)
}

func (p *Pipeline) detectVisual(ctx context.Context, path string, run *modalityRun) {
	run.add(p.guard(highlight.DetectorSceneChange, func() ([]highlight.Candidate, error) {
		return p.visual.DetectSceneChanges(ctx, path, p.deps.Progress)
	}))
	if ctx.Err() != nil {
		return
	}
	run.add(p.guard(highlight.DetectorMotionPeak, func() ([]highlight.Candidate, error) {
		return p.visual.DetectMotionPeaks(ctx, path, p.deps.Progress)
	}))
}

func (p *Pipeline) detectText(t *text.Transcript, run *modalityRun) {
	run.add(p.guard(highlight.DetectorKeyword, func() ([]highlight.Candidate, error) {
		return p.text.DetectKeywords(t)
	}))
	run.add(p.guard(highlight.DetectorEmotionalPattern, func() ([]highlight.Candidate, error) {
		return p.text.DetectEmotionalMoments(t)
	}))
}

// guard runs one detector, converting errors and panics into a report with
// zero candidates
func (p *Pipeline) guard(det highlight.Detector, fn func() ([]highlight.Candidate, error)) (cs []highlight.Candidate, rep DetectorReport) {
	start := time.Now()
	rep.Detector = det

	defer func() {
		if r := recover(); r != nil {
			rep.Err = fmt.Errorf("detector %s panicked: %v", det, r)
		}
		if rep.Err != nil {
			cs = nil
		}
		rep.Candidates = len(cs)
		rep.Elapsed = time.Since(start)
		p.logReport(rep)
	}()

	cs, rep.Err = fn()
	return cs, rep
}

func (p *Pipeline) logReport(rep DetectorReport) {
	switch {
	case rep.Err == nil:
		p.logger.Debug().
			Str("detector", rep.Detector.String()).
			Int("candidates", rep.Candidates).
			Dur("elapsed", rep.Elapsed).
			Msg("detector finished")
	case rep.Unavailable():
		p.logger.Info().
			Str("detector", rep.Detector.String()).
			Str("modality", rep.Detector.Modality().String()).
			Str("reason", rep.Err.Error()).
			Msg("modality unavailable, skipping detector")
	case errors.Is(rep.Err, context.Canceled), errors.Is(rep.Err, context.DeadlineExceeded):
		p.logger.Debug().Str("detector", rep.Detector.String()).Msg("detector cancelled")
	default:
		p.logger.Warn().
			Err(rep.Err).
			Str("detector", rep.Detector.String()).
			Str("modality", rep.Detector.Modality().String()).
			Msg("detector failed, continuing without it")
	}
}
