package audio

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// frameCount is the number of centered analysis frames for n samples
func frameCount(n, hop int) int {
	if n == 0 || hop <= 0 {
		return 0
	}
	return 1 + n/hop
}

// frameTimes returns the start timestamp of each frame in seconds
func frameTimes(frames, hop, sampleRate int) []float64 {
	times := make([]float64, frames)
	for i := range times {
		times[i] = float64(i*hop) / float64(sampleRate)
	}
	return times
}

// fillFrame copies the centered window for frame i into dst, zero padding
// past either end of the track
func fillFrame(dst, samples []float64, i, hop int) {
	offset := i*hop - len(dst)/2
	for k := range dst {
		j := offset + k
		if j < 0 || j >= len(samples) {
			dst[k] = 0
			continue
		}
		dst[k] = samples[j]
	}
}

// RMS computes the short-time root-mean-square energy per frame
func RMS(samples []float64, frameLength, hop int) []float64 {
	n := frameCount(len(samples), hop)
	out := make([]float64, n)
	frame := make([]float64, frameLength)

	for i := 0; i < n; i++ {
		fillFrame(frame, samples, i, hop)
		var sum float64
		for _, v := range frame {
			sum += v * v
		}
		out[i] = math.Sqrt(sum / float64(frameLength))
	}
	return out
}

// hann returns a periodic Hann window of length n
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

// SpectralCentroid computes the magnitude-weighted mean frequency per frame
func SpectralCentroid(samples []float64, sampleRate, nfft, hop int) []float64 {
	n := frameCount(len(samples), hop)
	out := make([]float64, n)

	fft := fourier.NewFFT(nfft)
	win := hann(nfft)
	frame := make([]float64, nfft)
	var coeffs []complex128
	binHz := float64(sampleRate) / float64(nfft)

	for i := 0; i < n; i++ {
		fillFrame(frame, samples, i, hop)
		for k := range frame {
			frame[k] *= win[k]
		}
		coeffs = fft.Coefficients(coeffs, frame)

		var weighted, total float64
		for k, c := range coeffs {
			mag := cmplx.Abs(c)
			weighted += float64(k) * binHz * mag
			total += mag
		}
		if total > 0 {
			out[i] = weighted / total
		}
	}
	return out
}

// Interval is a half-open sample range [Start, End)
type Interval struct {
	Start int
	End   int
}

// VoicedIntervals splits the track into non-silent sample ranges. A frame is
// silent when its energy is more than topDB below the loudest frame.
func VoicedIntervals(samples []float64, topDB float64, frameLength, hop int) []Interval {
	rms := RMS(samples, frameLength, hop)
	if len(rms) == 0 {
		return nil
	}

	peak := floats.Max(rms)
	if peak <= 0 {
		return nil
	}

	var out []Interval
	start := -1
	for i, v := range rms {
		voiced := v > 0 && 20*math.Log10(v/peak) > -topDB
		switch {
		case voiced && start < 0:
			start = i
		case !voiced && start >= 0:
			out = append(out, toInterval(start, i, hop, len(samples)))
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, toInterval(start, len(rms), hop, len(samples)))
	}
	return out
}

func toInterval(startFrame, endFrame, hop, n int) Interval {
	return Interval{
		Start: min(startFrame*hop, n),
		End:   min(endFrame*hop, n),
	}
}
