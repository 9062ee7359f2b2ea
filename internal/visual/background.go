package visual

import (
	"image"
	"math"
)

// BackgroundModel keeps a running average of the scene and counts the pixels
// that stray from it
type BackgroundModel struct {
	rate      float64
	threshold float64

	width, height int
	mean          []float64
}

// NewBackgroundModel creates a model that blends each frame in at rate and
// treats pixels further than threshold gray levels from the mean as
// foreground
func NewBackgroundModel(rate, threshold float64) *BackgroundModel {
	return &BackgroundModel{rate: rate, threshold: threshold}
}

// Apply returns the foreground pixel count of img and then folds img into the
// model. The first frame, or a frame of a different size, resets the model
// and reports no foreground.
func (m *BackgroundModel) Apply(img *image.Gray) int {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if m.mean == nil || w != m.width || h != m.height {
		m.width, m.height = w, h
		m.mean = make([]float64, w*h)
		m.each(img, func(i int, v float64) { m.mean[i] = v })
		return 0
	}

	foreground := 0
	m.each(img, func(i int, v float64) {
		if math.Abs(v-m.mean[i]) > m.threshold {
			foreground++
		}
		m.mean[i] += m.rate * (v - m.mean[i])
	})
	return foreground
}

func (m *BackgroundModel) each(img *image.Gray, fn func(i int, v float64)) {
	for y := 0; y < m.height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < m.width; x++ {
			fn(y*m.width+x, float64(row[x]))
		}
	}
}
