package visual

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Histogram counts pixels per gray level
type Histogram [256]float64

// GrayHistogram builds the intensity histogram of img
func GrayHistogram(img *image.Gray) Histogram {
	var h Histogram
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			h[row[x]]++
		}
	}
	return h
}

// Correlate returns the Pearson correlation of two histograms in [-1,1].
// A flat histogram has no variance; two such comparisons count as identical.
func Correlate(a, b Histogram) float64 {
	c := stat.Correlation(a[:], b[:], nil)
	if math.IsNaN(c) {
		return 1
	}
	return c
}
