package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os/exec"
	"sync"

	"github.com/keagan/clipscout/internal/highlight"
	"github.com/keagan/clipscout/internal/visual"
)

// FrameOpener streams decoded gray frames out of ffmpeg. It implements
// visual.Opener.
type FrameOpener struct {
	exec *Executor
}

func (e *Executor) FrameOpener() *FrameOpener {
	return &FrameOpener{exec: e}
}

// frameLayout is the geometry and cadence of the frames a source delivers
type frameLayout struct {
	width, height int
	stride        int
}

// planFrames works out the output size and frame stride for a stream
func planFrames(info *MediaInfo, opts visual.OpenOptions) frameLayout {
	l := frameLayout{width: info.Width, height: info.Height, stride: 1}

	if opts.Width > 0 && opts.Width < info.Width {
		l.width = opts.Width
		l.height = max(1, int(math.Round(float64(info.Height)*float64(opts.Width)/float64(info.Width))))
	}

	switch {
	case opts.SampleInterval > 0:
		l.stride = max(1, int(info.FPS*opts.SampleInterval))
	case opts.FrameStride > 1:
		l.stride = opts.FrameStride
	}
	return l
}

// frameArgs builds the ffmpeg arguments that write raw gray8 frames to stdout
func frameArgs(input string, l frameLayout) []string {
	filter := NewFilterBuilder().
		SelectEvery(l.stride).
		Scale(l.width, l.height).
		Format("gray").
		Build()

	return []string{
		"-i", input,
		"-an", "-sn",
		"-vf", filter,
		"-vsync", "0",
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"pipe:1",
	}
}

// Open implements visual.Opener
func (o *FrameOpener) Open(ctx context.Context, path string, opts visual.OpenOptions) (visual.FrameSource, error) {
	info, err := o.exec.Probe(ctx, path)
	if err != nil {
		return nil, err
	}
	if !info.HasVideo {
		return nil, fmt.Errorf("%w: %s has no video stream", highlight.ErrModalityUnavailable, path)
	}
	if info.Width <= 0 || info.Height <= 0 || info.FPS <= 0 {
		return nil, fmt.Errorf("%w: unusable video stream %dx%d @ %.2f fps", highlight.ErrDecodeFailure, info.Width, info.Height, info.FPS)
	}

	layout := planFrames(info, opts)
	args := append(o.exec.baseArgs("error"), frameArgs(path, layout)...)

	logger := o.exec.logger.With().Str("file", path).Logger()
	logger.Debug().
		Strs("args", args).
		Int("width", layout.width).
		Int("height", layout.height).
		Int("stride", layout.stride).
		Msg("opening frame stream")

	procCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(procCtx, o.exec.ffmpegPath, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	src := &rawFrameSource{
		cmd:    cmd,
		cancel: cancel,
		reader: bufio.NewReaderSize(stdout, layout.width*layout.height),
		layout: layout,
		fps:    info.FPS,
		stderr: make(chan struct{}),
		info: visual.StreamInfo{
			Width:      layout.width,
			Height:     layout.height,
			FPS:        info.FPS,
			FrameCount: info.FrameCount,
			Duration:   info.Duration.Seconds(),
		},
	}

	go func() {
		defer close(src.stderr)
		streamOutput(stderr, nil, func(line string) {
			logger.Debug().Str("ffmpeg", line).Msg("frame decode")
		})
	}()

	return src, nil
}

// rawFrameSource reads fixed-size gray frames from a running ffmpeg process
type rawFrameSource struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	reader *bufio.Reader
	layout frameLayout
	fps    float64
	info   visual.StreamInfo
	stderr chan struct{}

	delivered int

	waitOnce sync.Once
	waitErr  error
}

func (s *rawFrameSource) Info() visual.StreamInfo {
	return s.info
}

func (s *rawFrameSource) Next(ctx context.Context) (visual.Frame, error) {
	if err := ctx.Err(); err != nil {
		return visual.Frame{}, err
	}

	size := s.layout.width * s.layout.height
	pix := make([]byte, size)
	if _, err := io.ReadFull(s.reader, pix); err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return visual.Frame{}, fmt.Errorf("reading frame: %w", err)
		}
		// The stream ended; a non-zero exit means ffmpeg gave up on the input
		if werr := s.wait(); werr != nil && ctx.Err() == nil {
			return visual.Frame{}, fmt.Errorf("ffmpeg frame decode failed: %w", werr)
		}
		return visual.Frame{}, io.EOF
	}

	index := s.delivered * s.layout.stride
	s.delivered++

	return visual.Frame{
		Index:     index,
		Timestamp: float64(index) / s.fps,
		Image: &image.Gray{
			Pix:    pix,
			Stride: s.layout.width,
			Rect:   image.Rect(0, 0, s.layout.width, s.layout.height),
		},
	}, nil
}

// Close stops ffmpeg if it is still running and reaps it
func (s *rawFrameSource) Close() error {
	s.cancel()
	s.wait()
	return nil
}

func (s *rawFrameSource) wait() error {
	s.waitOnce.Do(func() {
		<-s.stderr
		s.waitErr = s.cmd.Wait()
	})
	return s.waitErr
}
