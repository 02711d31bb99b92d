// Package synth is a polyphonic FM + additive synthesizer core.
//
// The Engine renders signed 32-bit PCM into caller-owned buffers. It does no
// locking; note, parameter and reset calls must be serialized with
// GenerateBlock by the caller.
package synth

import "log"

const (
	SampleRate = 44100
	Polyphony  = 4

	noNote = -1
)

// ----- Engine ----- //

// Engine is a fixed pool of Sounds with note-to-slot assignment.
type Engine struct {
	pos    int64
	sounds [Polyphony]*Sound
	notes  [Polyphony]int // note held by each slot, noNote when free
}

// NewEngine builds every slot up front. The same seed renders the same noise.
func NewEngine(seed int64) *Engine {
	e := &Engine{}
	for i := range e.sounds {
		e.sounds[i] = NewSound(seed + int64(i))
		e.notes[i] = noNote
	}
	return e
}

// Reset silences and rewinds every slot and frees them all.
func (e *Engine) Reset() {
	e.SetPosition(0)
	for i, s := range e.sounds {
		s.Reset()
		e.notes[i] = noNote
	}
}

// SetPosition records the stream position. Each slot keeps its own clock.
func (e *Engine) SetPosition(pos int64) {
	e.pos = pos
}

func (e *Engine) Position() int64 {
	return e.pos
}

// SlotNote returns the note held by slot i, or false when the slot is free.
func (e *Engine) SlotNote(i int) (int, bool) {
	if i < 0 || i >= Polyphony || e.notes[i] == noNote {
		return 0, false
	}
	return e.notes[i], true
}

// chooseSlot prefers the slot already holding note, then the first free
// slot, and otherwise steals slot 0.
func (e *Engine) chooseSlot(note int) int {
	for i, n := range e.notes {
		if n == note {
			return i
		}
	}
	for i, n := range e.notes {
		if n == noNote {
			return i
		}
	}
	return 0
}

// NoteOn treats velocity 0 as NoteOff.
func (e *Engine) NoteOn(note int, velocity float64) {
	if velocity == 0 {
		e.NoteOff(note)
		return
	}
	i := e.chooseSlot(note)
	e.sounds[i].NoteOn(note, velocity)
	e.notes[i] = note
}

// NoteOff releases the slot and frees it at once; its tail may be cut by the
// next note assigned there.
func (e *Engine) NoteOff(note int) {
	i := e.chooseSlot(note)
	e.sounds[i].NoteOff()
	e.notes[i] = noNote
}

// SetParam applies value to every slot. Unknown ids are logged and ignored.
func (e *Engine) SetParam(id ParamID, value float64) {
	if !id.Valid() {
		log.Printf("unknown param: %v\n", id)
		return
	}
	for _, s := range e.sounds {
		switch id {
		case ParamVolume:
			s.SetVolume(value)
		case ParamVibrato:
			s.SetVibrato(value)
		case ParamPartials:
			s.SetPartials(value)
		case ParamPartialsWobble:
			s.SetPartialsWobble(value)
		case ParamBaseWaveType:
			s.SetBaseWave(int(value))
		case ParamPartialsWaveType:
			s.SetPartialsWave(int(value))
		case ParamFMRatio:
			s.SetFMRatio(value)
		case ParamFMAmp:
			s.SetFMAmp(value)
		case ParamGlide:
			s.SetGlide(value)
		case ParamAttack:
			s.SetAttack(value)
		case ParamDecay:
			s.SetDecay(value)
		case ParamSustain:
			s.SetSustain(value)
		}
	}
}

// GenerateBlock adds n frames from every slot, in slot order, into buf.
// There is no normalization; the caller needs headroom for Polyphony voices.
func (e *Engine) GenerateBlock(buf []int32, n int) {
	if n > len(buf) {
		n = len(buf)
	}
	if n <= 0 {
		return
	}
	for _, s := range e.sounds {
		s.GenerateBlock(buf, n)
	}
	e.pos += int64(n)
}

// PeakEnvelope is the largest envelope value across slots.
func (e *Engine) PeakEnvelope() float64 {
	peak := 0.0
	for _, s := range e.sounds {
		if v := s.EnvelopeValue(); v > peak {
			peak = v
		}
	}
	return peak
}
