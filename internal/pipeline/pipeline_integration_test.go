package pipeline

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/clipscout/internal/config"
	"github.com/keagan/clipscout/internal/ffmpeg"
	"github.com/keagan/clipscout/internal/highlight"
)

func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

func TestDetectWithFFmpeg(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "input.mp4")
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "testsrc=duration=4:size=320x240:rate=25",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=4",
		"-pix_fmt", "yuv420p", "-shortest", "-y", input)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("could not generate test media: %v\n%s", err, out)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).Level(zerolog.InfoLevel)
	cfg := config.Default()
	cfg.TempDir = dir

	ff, err := ffmpeg.New(logger, cfg.FFmpegExecutor())
	require.NoError(t, err)

	p, err := New(logger, cfg, Dependencies{
		Audio:  ff.AudioLoader(cfg.Audio.SampleRate, cfg.TempDir),
		Frames: ff.FrameOpener(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := p.Detect(ctx, Request{MediaPath: input})
	require.NoError(t, err)

	assert.Len(t, res.Reports, 7)
	for _, rep := range res.Reports {
		if rep.Detector.Modality() == highlight.Text {
			assert.True(t, rep.Unavailable())
			continue
		}
		assert.NoError(t, rep.Err, "detector %s", rep.Detector)
	}
	for _, h := range res.Highlights {
		assert.NoError(t, h.Validate())
		assert.LessOrEqual(t, h.End, 4.5)
	}
}
