package ffmpeg

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/keagan/clipscout/internal/highlight"
	"github.com/keagan/clipscout/pkg/util"
)

// ClipOptions defines clip extraction parameters
type ClipOptions struct {
	Start        time.Duration
	End          time.Duration
	Output       string
	CopyCodec    bool // If true, use -c copy for fast extraction
	VideoCodec   string
	AudioCodec   string
	CRF          int // Quality (0-51, lower = better)
	ProgressFunc ProgressFunc
}

// ExtractClip cuts a segment from a video
func (e *Executor) ExtractClip(ctx context.Context, input string, opts ClipOptions) error {
	duration := opts.End - opts.Start
	if duration <= 0 {
		return fmt.Errorf("invalid clip duration: end must be after start")
	}

	e.logger.Info().
		Str("input", input).
		Str("output", opts.Output).
		Dur("start", opts.Start).
		Dur("duration", duration).
		Bool("copy_codec", opts.CopyCodec).
		Msg("extracting clip")

	args := []string{
		"-ss", util.FormatDuration(opts.Start),
		"-i", input,
		"-t", util.FormatDuration(duration),
	}

	if opts.CopyCodec {
		args = append(args, "-c", "copy")
	} else {
		codec := opts.VideoCodec
		if codec == "" {
			codec = DefaultVideoCodec
		}
		audioCodec := opts.AudioCodec
		if audioCodec == "" {
			audioCodec = DefaultAudioCodec
		}
		crf := opts.CRF
		if crf == 0 {
			crf = DefaultCRF
		}
		args = append(args, "-c:v", codec, "-c:a", audioCodec, "-crf", fmt.Sprintf("%d", crf))
	}

	args = append(args, opts.Output)

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("clip extraction")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("clip extraction failed: %w", err)
	}

	return nil
}

// ThumbnailOptions defines still-frame extraction parameters
type ThumbnailOptions struct {
	At     time.Duration
	Output string
	// Width and Height scale the frame when both are positive
	Width  int
	Height int
}

// thumbnailArgs builds the ffmpeg arguments for a single still frame
func thumbnailArgs(input string, opts ThumbnailOptions) []string {
	args := []string{
		"-ss", util.FormatDuration(opts.At),
		"-i", input,
		"-frames:v", "1",
	}
	if vf := NewFilterBuilder().Scale(opts.Width, opts.Height).Build(); vf != "" {
		args = append(args, "-vf", vf)
	}
	return append(args, "-q:v", "2", "-f", "image2", opts.Output)
}

// ExtractThumbnail saves one frame of input as a JPEG
func (e *Executor) ExtractThumbnail(ctx context.Context, input string, opts ThumbnailOptions) error {
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.At < 0 {
		return fmt.Errorf("invalid thumbnail timestamp %s", opts.At)
	}

	e.logger.Debug().
		Str("input", input).
		Str("output", opts.Output).
		Dur("at", opts.At).
		Msg("extracting thumbnail")

	err := e.Run(ctx, RunOptions{
		Args: thumbnailArgs(input, opts),
		LogHandler: func(line string) {
			e.logger.Trace().Str("ffmpeg", line).Msg("thumbnail extraction")
		},
	})
	if err != nil {
		return fmt.Errorf("thumbnail extraction failed: %w", err)
	}
	return nil
}

// ClipExporter writes every final highlight to its own file. It implements
// highlight.Sink.
type ClipExporter struct {
	exec      *Executor
	dir       string
	copyCodec bool

	thumbnails  bool
	thumbWidth  int
	thumbHeight int
}

// ClipExporter returns a sink that cuts highlights into dir. With copyCodec
// the cut snaps to keyframes but avoids re-encoding.
func (e *Executor) ClipExporter(dir string, copyCodec bool) *ClipExporter {
	return &ClipExporter{exec: e, dir: dir, copyCodec: copyCodec}
}

// WithThumbnails also saves a width x height still from the middle of every
// highlight next to its clip
func (c *ClipExporter) WithThumbnails(width, height int) *ClipExporter {
	c.thumbnails = true
	c.thumbWidth = width
	c.thumbHeight = height
	return c
}

// ThumbnailPath names the still for the i-th highlight of mediaPath
func (c *ClipExporter) ThumbnailPath(mediaPath string, i int, h highlight.Candidate) string {
	clip := c.ClipPath(mediaPath, i, h)
	return strings.TrimSuffix(clip, filepath.Ext(clip)) + ".jpg"
}

// ClipPath names the file for the i-th highlight of mediaPath
func (c *ClipExporter) ClipPath(mediaPath string, i int, h highlight.Candidate) string {
	base := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	return filepath.Join(c.dir, fmt.Sprintf("%s_%02d_%s%s", base, i+1, h.Type, filepath.Ext(mediaPath)))
}

// Consume implements highlight.Sink
func (c *ClipExporter) Consume(ctx context.Context, mediaPath string, highlights []highlight.Candidate) error {
	if len(highlights) == 0 {
		return nil
	}
	if err := util.EnsureDir(c.dir); err != nil {
		return fmt.Errorf("creating clip directory: %w", err)
	}

	for i, h := range highlights {
		out := c.ClipPath(mediaPath, i, h)
		err := c.exec.ExtractClip(ctx, mediaPath, ClipOptions{
			Start:     seconds(h.Start),
			End:       seconds(h.End),
			Output:    out,
			CopyCodec: c.copyCodec,
		})
		if err != nil {
			return fmt.Errorf("exporting highlight %d: %w", i+1, err)
		}

		if c.thumbnails {
			err := c.exec.ExtractThumbnail(ctx, mediaPath, ThumbnailOptions{
				At:     seconds((h.Start + h.End) / 2),
				Output: c.ThumbnailPath(mediaPath, i, h),
				Width:  c.thumbWidth,
				Height: c.thumbHeight,
			})
			if err != nil {
				return fmt.Errorf("thumbnail for highlight %d: %w", i+1, err)
			}
		}
	}

	c.exec.logger.Info().
		Int("clips", len(highlights)).
		Str("dir", c.dir).
		Msg("clips exported")
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
