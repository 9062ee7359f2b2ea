package visual

import (
	"context"
	"image"
	"io"
)

// fakeSource replays a fixed list of frames
type fakeSource struct {
	info   StreamInfo
	frames []Frame
	pos    int
	closed bool
	// block makes Next wait for cancellation once pos reaches it
	block int
}

func (s *fakeSource) Info() StreamInfo { return s.info }

func (s *fakeSource) Next(ctx context.Context) (Frame, error) {
	if s.block > 0 && s.pos >= s.block {
		<-ctx.Done()
		return Frame{}, ctx.Err()
	}
	if s.pos >= len(s.frames) {
		return Frame{}, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

func opener(src *fakeSource) Opener {
	return OpenerFunc(func(ctx context.Context, path string, opts OpenOptions) (FrameSource, error) {
		return src, nil
	})
}

func flatFrame(w, h int, level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}

// splitFrame fills the left part of the frame, up to col, with a and the
// rest with b
func splitFrame(w, h, col int, a, b uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := b
			if x < col {
				v = a
			}
			img.Pix[y*img.Stride+x] = v
		}
	}
	return img
}
