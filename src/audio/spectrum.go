package audio

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ----- Spectrum ----- //

// Spectrum computes windowed magnitude spectra of a fixed size.
type Spectrum struct {
	size   int
	fft    *fourier.FFT
	window Window
	in     []float64
	coeff  []complex128
	result []float64 // length: size/2
}

func NewSpectrum(size int, window Window) *Spectrum {
	return &Spectrum{
		size:   size,
		fft:    fourier.NewFFT(size),
		window: window,
		in:     make([]float64, size),
		coeff:  make([]complex128, size/2+1),
		result: make([]float64, size/2),
	}
}

// Calc returns amplitudes of bins 0..size/2-1, scaled so a full-scale sine
// peaks near 1. The returned slice is reused by the next call.
func (sp *Spectrum) Calc(samples []float64) []float64 {
	copy(sp.in, samples)
	if sp.window != nil {
		sp.window(sp.in)
	}
	sp.coeff = sp.fft.Coefficients(sp.coeff, sp.in)
	for i := range sp.result {
		sp.result[i] = cmplx.Abs(sp.coeff[i]) * 2 / float64(sp.size)
	}
	return sp.result
}

// BinFreq is the center frequency of bin i.
func (sp *Spectrum) BinFreq(i int, sampleRate float64) float64 {
	return float64(i) * sampleRate / float64(sp.size)
}
