package visual

import (
	"context"
	"image"
)

// StreamInfo describes the video stream a FrameSource decodes
type StreamInfo struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	Duration   float64
}

// Frame is one decoded grayscale frame. Index counts frames in the original
// stream, not frames delivered.
type Frame struct {
	Index     int
	Timestamp float64
	Image     *image.Gray
}

// FrameSource delivers frames in presentation order. Next returns io.EOF
// once the stream is exhausted. The caller must Close the source.
type FrameSource interface {
	Info() StreamInfo
	Next(ctx context.Context) (Frame, error)
	Close() error
}

// OpenOptions selects which frames a source delivers
type OpenOptions struct {
	// SampleInterval is the spacing between delivered frames in seconds.
	// Zero delivers every frame.
	SampleInterval float64
	// FrameStride delivers every n-th frame when SampleInterval is zero
	FrameStride int
	// Width scales frames down to this width before delivery. Zero keeps the
	// native size.
	Width int
}

// Opener opens a FrameSource over a media file
type Opener interface {
	Open(ctx context.Context, path string, opts OpenOptions) (FrameSource, error)
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(ctx context.Context, path string, opts OpenOptions) (FrameSource, error)

func (f OpenerFunc) Open(ctx context.Context, path string, opts OpenOptions) (FrameSource, error) {
	return f(ctx, path, opts)
}

// Progress reports how far a visual detector has read
type Progress struct {
	Detector string
	Frames   int
	Total    int
}

// ProgressFunc receives periodic progress updates. It may be nil.
type ProgressFunc func(Progress)
