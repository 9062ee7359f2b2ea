package highlight

import "context"

// Sink consumes a finished highlight list. Clip renderers and result stores
// implement it outside this module.
type Sink interface {
	Consume(ctx context.Context, mediaPath string, highlights []Candidate) error
}

// SinkFunc adapts a plain function to the Sink interface
type SinkFunc func(ctx context.Context, mediaPath string, highlights []Candidate) error

func (f SinkFunc) Consume(ctx context.Context, mediaPath string, highlights []Candidate) error {
	return f(ctx, mediaPath, highlights)
}
