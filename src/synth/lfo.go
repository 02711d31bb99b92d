package synth

import "math/rand"

// ----- LFO ----- //

// LFO is a unipolar modulator whose rate and amount are both glided.
// Its output lies in [0, amount].
type LFO struct {
	osc    *Oscillator
	rate   *Glide // Hz
	amount *Glide
}

func NewLFO(rng *rand.Rand) *LFO {
	return &LFO{
		osc:    NewOscillator(rng),
		rate:   NewGlide(10),
		amount: NewGlide(10),
	}
}

func (l *LFO) Reset(initialPhase float64) {
	l.osc.SetPhase(initialPhase)
}

func (l *LFO) SetWave(w Wave) {
	l.osc.SetWave(w)
}

func (l *LFO) SetRate(pos int64, hz float64) {
	l.rate.Start(pos, hz)
}

func (l *LFO) SetAmount(pos int64, amount float64) {
	l.amount.Start(pos, amount)
}

// Value advances the oscillator by one sample.
func (l *LFO) Value(pos int64) float64 {
	return ((l.osc.Generate(l.rate.Value(pos)) + 1) / 2) * l.amount.Value(pos)
}

func (l *LFO) settle() {
	l.rate.Settle()
	l.amount.Settle()
}
