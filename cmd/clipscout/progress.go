package main

import (
	"io"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/keagan/clipscout/internal/visual"
)

// frameProgress renders one bar per visual detector
type frameProgress struct {
	mu   sync.Mutex
	p    *mpb.Progress
	bars map[string]*frameBar
}

type frameBar struct {
	bar  *mpb.Bar
	last time.Time
}

func newFrameProgress(out io.Writer) *frameProgress {
	return &frameProgress{
		p:    mpb.New(mpb.WithWidth(48), mpb.WithOutput(out)),
		bars: make(map[string]*frameBar),
	}
}

// Update implements visual.ProgressFunc
func (f *frameProgress) Update(pr visual.Progress) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fb, ok := f.bars[pr.Detector]
	if !ok {
		bar := f.p.AddBar(int64(pr.Total),
			mpb.PrependDecorators(
				decor.Name(pr.Detector+": ", decor.WC{W: 15, C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.EwmaETA(decor.ET_STYLE_GO, 60),
			),
		)
		fb = &frameBar{bar: bar, last: time.Now()}
		f.bars[pr.Detector] = fb
	}

	if pr.Total > 0 && pr.Frames > pr.Total {
		fb.bar.SetTotal(int64(pr.Frames), false)
	}
	// the ETA decorator only moves when fed elapsed time
	now := time.Now()
	fb.bar.EwmaSetCurrent(int64(pr.Frames), now.Sub(fb.last))
	fb.last = now
}

// current reports the count shown on the named bar
func (f *frameProgress) current(detector string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fb, ok := f.bars[detector]; ok {
		return fb.bar.Current()
	}
	return 0
}

// Finish completes every bar at its current count and waits for rendering
func (f *frameProgress) Finish() {
	f.mu.Lock()
	for _, fb := range f.bars {
		fb.bar.SetTotal(-1, true)
	}
	f.mu.Unlock()
	f.p.Wait()
}
