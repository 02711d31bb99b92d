package audio

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/window"
)

// Window shapes seq in place and returns it.
type Window func(seq []float64) []float64

var windows = map[string]Window{
	"han":      window.Hann,
	"hamming":  window.Hamming,
	"blackman": window.Blackman,
}

// WindowByName returns "han", "hamming" or "blackman".
func WindowByName(name string) (Window, error) {
	w, ok := windows[name]
	if !ok {
		return nil, fmt.Errorf("unknown window %q", name)
	}
	return w, nil
}
