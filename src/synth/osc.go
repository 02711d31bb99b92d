package synth

import (
	"math"
	"math/rand"
)

// ----- Wave ----- //

// Wave selects the waveform an Oscillator produces.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveTriangle
	WaveSaw
	WaveNoise
	numWaves
)

var waveNames = [numWaves]string{"sine", "square", "triangle", "saw", "noise"}

func (w Wave) String() string {
	if w < 0 || w >= numWaves {
		return "unknown"
	}
	return waveNames[w]
}

func waveFromInt(i int) (Wave, bool) {
	if i < 0 || i >= int(numWaves) {
		return WaveSine, false
	}
	return Wave(i), true
}

// ----- Oscillator ----- //

// Oscillator is a phase accumulator producing one sample per call.
type Oscillator struct {
	wave  Wave
	phase float64 // [0,1)
	rng   *rand.Rand
}

// NewOscillator returns a sine oscillator at phase 0. rng feeds the noise wave.
func NewOscillator(rng *rand.Rand) *Oscillator {
	return &Oscillator{rng: rng}
}

func (o *Oscillator) Wave() Wave {
	return o.wave
}

func (o *Oscillator) SetWave(w Wave) {
	o.wave = w
}

func (o *Oscillator) Phase() float64 {
	return o.phase
}

func (o *Oscillator) SetPhase(p float64) {
	o.phase = wrap01(p)
}

// Generate returns the sample at the current phase, then advances the phase
// by hz/SampleRate. The phase advances for every wave, noise included.
func (o *Oscillator) Generate(hz float64) float64 {
	p := o.phase
	value := 0.0
	switch o.wave {
	case WaveSine:
		value = math.Sin(2 * math.Pi * p)
	case WaveSquare:
		if p >= 0.5 {
			value = -1
		} else {
			value = 1
		}
	case WaveTriangle:
		value = math.Abs(-math.Abs(p*4-1)+2) - 1
	case WaveSaw:
		value = p*2 - 1
	case WaveNoise:
		value = o.rng.Float64()*2 - 1
	}
	o.phase = wrap01(o.phase + hz/SampleRate)
	return value
}

func wrap01(p float64) float64 {
	_, frac := math.Modf(p)
	if frac < 0 {
		frac += 1
	}
	if frac >= 1 {
		frac = 0
	}
	return frac
}
