package synth

import (
	"math"
	"math/rand"
)

const baseFreq = 440.0

// NoteToFreq converts a MIDI note number to Hz in equal temperament, A4 = 440.
func NoteToFreq(note int) float64 {
	return baseFreq * math.Pow(2, float64(note-69)/12)
}

// ----- Voice ----- //

// Voice is the control-rate state of one sounding note.
type Voice struct {
	pitch    *Glide // Hz
	volume   *Glide
	vibrato  *LFO
	envelope *Envelope
}

func NewVoice(rng *rand.Rand) *Voice {
	return &Voice{
		pitch:    NewGlide(0),
		volume:   NewGlide(10),
		vibrato:  NewLFO(rng),
		envelope: NewEnvelope(),
	}
}

// Hz advances the vibrato LFO by one sample.
func (v *Voice) Hz(pos int64) float64 {
	hz := v.pitch.Value(pos)
	vib := v.vibrato.Value(pos)
	return hz + (hz/16.8)*(vib*vib*2-1)
}

func (v *Voice) EnvelopeValue(pos int64) float64 {
	return v.envelope.Value(pos)
}

func (v *Voice) Amplitude(pos int64) float64 {
	return v.envelope.Value(pos) * v.volume.Value(pos)
}

func (v *Voice) NoteOn(pos int64, note int, velocity float64) {
	v.pitch.Start(pos, NoteToFreq(note))
	v.envelope.BeginAttack(pos, velocity)
}

func (v *Voice) NoteOff(pos int64) {
	v.envelope.BeginRelease(pos)
}

// Silence cuts the note and settles every ramp, ready for the clock to
// restart at 0.
func (v *Voice) Silence() {
	v.envelope.Silence()
	v.pitch.Settle()
	v.volume.Settle()
	v.vibrato.settle()
}

// Parameter setters take normalized 0-1 controls and apply a squared curve.

func (v *Voice) SetVolume(pos int64, value float64) {
	v.volume.Start(pos, value*value)
}

func (v *Voice) SetAttack(value float64) {
	v.envelope.SetAttack(value*value*995 + 5)
}

func (v *Voice) SetDecay(value float64) {
	v.envelope.SetDecay(value*value*995 + 5)
}

func (v *Voice) SetSustain(value float64) {
	v.envelope.SetSustain(value * value)
}

func (v *Voice) SetGlide(value float64) {
	v.pitch.SetLength(value * value * 2000)
}

func (v *Voice) SetVibrato(pos int64, value float64) {
	amount := value * value
	v.vibrato.SetAmount(pos, amount)
	v.vibrato.SetRate(pos, amount*3+4)
}
