package visual

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// Normalize downsizes img to at most width pixels wide, keeping the aspect
// ratio, and converts it to 8-bit gray
func Normalize(img image.Image, width int) *image.Gray {
	if width > 0 && img.Bounds().Dx() > width {
		img = resize.Resize(uint(width), 0, img, resize.Bilinear)
	}
	if g, ok := img.(*image.Gray); ok {
		return g
	}

	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
