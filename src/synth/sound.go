package synth

import (
	"math"
	"math/rand"
)

const (
	// Partials is the number of carriers; index 0 is the fundamental.
	Partials = 5
	// AmpFullScale maps a unit sample onto the int32 range.
	AmpFullScale = 2147483647.0

	partialCeiling = 0.7
)

// ----- Sound ----- //

// Sound is the complete signal chain of one polyphonic slot: an FM pair on
// the fundamental plus an additive stack of wobbling harmonic partials.
type Sound struct {
	pos      int64
	mod      *Oscillator
	carriers [Partials]*Oscillator
	voice    *Voice
	wobbles  [Partials - 1]*LFO
	partials *Glide
	fmRatio  float64
	fmAmp    float64
}

// NewSound builds a slot whose oscillators draw noise from rngs derived
// from seed.
func NewSound(seed int64) *Sound {
	next := seedSequence(seed)
	s := &Sound{
		mod:      NewOscillator(next()),
		voice:    NewVoice(next()),
		partials: NewGlide(10),
	}
	for i := range s.carriers {
		s.carriers[i] = NewOscillator(next())
	}
	for i := range s.wobbles {
		s.wobbles[i] = NewLFO(next())
		s.wobbles[i].SetRate(0, float64(Partials-i)/5)
	}
	return s
}

func seedSequence(seed int64) func() *rand.Rand {
	n := int64(0)
	return func() *rand.Rand {
		n++
		return rand.New(rand.NewSource(seed*1000003 + n))
	}
}

func (s *Sound) Position() int64 {
	return s.pos
}

// Reset rewinds the clock, zeroes every phase and silences the voice.
func (s *Sound) Reset() {
	s.pos = 0
	for _, c := range s.carriers {
		c.SetPhase(0)
	}
	s.mod.SetPhase(0)
	s.voice.Silence()
	for _, w := range s.wobbles {
		w.Reset(0)
		w.settle()
	}
	s.partials.Settle()
}

// GenerateBlock adds n samples into buf. The caller zeroes buf.
func (s *Sound) GenerateBlock(buf []int32, n int) {
	for i := 0; i < n; i++ {
		hz := s.voice.Hz(s.pos)
		m := s.mod.Generate(hz * s.fmRatio)
		sample := s.carriers[0].Generate(hz + m*s.fmAmp)
		for p := 1; p < Partials; p++ {
			sample += s.carriers[p].Generate(hz*float64(p+1)) *
				(1 - s.wobbles[p-1].Value(s.pos)) *
				s.PartialVolume(p)
		}
		buf[i] += toInt32(AmpFullScale * s.voice.Amplitude(s.pos) * sample)
		s.pos++
	}
}

// PartialVolume cross-fades partial p in as the amount crosses the p-th of
// Partials-1 equal regions.
func (s *Sound) PartialVolume(p int) float64 {
	if p == 0 {
		return 1
	}
	region := 1.0 / float64(Partials-1)
	begin := region * float64(p-1)
	end := region * float64(p)
	value := s.partials.Value(s.pos)
	ret := 0.0
	if value >= begin {
		if value < end {
			ret = (value - begin) * (Partials - 1)
		} else {
			ret = 1
		}
	}
	return ret * partialCeiling
}

func (s *Sound) EnvelopeValue() float64 {
	return s.voice.EnvelopeValue(s.pos)
}

func (s *Sound) NoteOn(note int, velocity float64) {
	s.voice.NoteOn(s.pos, note, velocity)
}

func (s *Sound) NoteOff() {
	s.voice.NoteOff(s.pos)
}

func (s *Sound) SetPartials(value float64) {
	s.partials.Start(s.pos, value)
}

func (s *Sound) SetPartialsWobble(value float64) {
	for _, w := range s.wobbles {
		w.SetAmount(s.pos, value)
	}
}

func (s *Sound) SetFMRatio(value float64) {
	s.fmRatio = value * 2
}

func (s *Sound) SetFMAmp(value float64) {
	s.fmAmp = value * value * 600
}

// SetBaseWave sets the fundamental and the modulator. Out of range is ignored.
func (s *Sound) SetBaseWave(t int) {
	w, ok := waveFromInt(t)
	if !ok {
		return
	}
	s.carriers[0].SetWave(w)
	s.mod.SetWave(w)
}

// SetPartialsWave sets carriers 1.. . Out of range is ignored.
func (s *Sound) SetPartialsWave(t int) {
	w, ok := waveFromInt(t)
	if !ok {
		return
	}
	for _, c := range s.carriers[1:] {
		c.SetWave(w)
	}
}

func (s *Sound) SetVolume(value float64)  { s.voice.SetVolume(s.pos, value) }
func (s *Sound) SetVibrato(value float64) { s.voice.SetVibrato(s.pos, value) }
func (s *Sound) SetAttack(value float64)  { s.voice.SetAttack(value) }
func (s *Sound) SetDecay(value float64)   { s.voice.SetDecay(value) }
func (s *Sound) SetSustain(value float64) { s.voice.SetSustain(value) }
func (s *Sound) SetGlide(value float64)   { s.voice.SetGlide(value) }

// toInt32 saturates at the int32 range.
func toInt32(v float64) int32 {
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	if v <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
