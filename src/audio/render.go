package audio

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/graphdaw/fmasynth/src/synth"
)

const renderBlockSize = 512

// ----- Score ----- //

// NoteEvent is a note on (Velocity > 0) or off (Velocity == 0) at an
// absolute sample position.
type NoteEvent struct {
	Pos      int64
	Note     int
	Velocity float64
}

type Score []NoteEvent

func durationToPos(d time.Duration) int64 {
	return int64(d.Seconds() * synth.SampleRate)
}

// ParseScore builds a monophonic line from note numbers separated by commas
// or spaces. "-" is a rest. Each note starts step after the previous one and
// lasts gate.
func ParseScore(notes string, step, gate time.Duration, velocity float64) (Score, error) {
	fields := strings.FieldsFunc(notes, func(r rune) bool {
		return r == ',' || r == ' '
	})
	score := make(Score, 0, len(fields)*2)
	for i, f := range fields {
		if f == "-" {
			continue
		}
		note, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid note %q: %w", f, err)
		}
		if note < 0 || note > 127 {
			return nil, fmt.Errorf("note %d out of range", note)
		}
		on := durationToPos(step * time.Duration(i))
		score = append(score,
			NoteEvent{Pos: on, Note: note, Velocity: velocity},
			NoteEvent{Pos: on + durationToPos(gate), Note: note},
		)
	}
	sort.SliceStable(score, func(i, j int) bool { return score[i].Pos < score[j].Pos })
	return score, nil
}

// End is the position of the last event.
func (sc Score) End() int64 {
	end := int64(0)
	for _, ev := range sc {
		if ev.Pos > end {
			end = ev.Pos
		}
	}
	return end
}

// Render plays score on e from its current state and returns frames samples.
// Events land on their exact sample; events at or after frames are dropped.
func Render(e *synth.Engine, score Score, frames int64) []int32 {
	events := make(Score, len(score))
	copy(events, score)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Pos < events[j].Pos })

	out := make([]int32, frames)
	pos := int64(0)
	next := 0
	for pos < frames {
		for next < len(events) && events[next].Pos <= pos {
			ev := events[next]
			if ev.Velocity > 0 {
				e.NoteOn(ev.Note, ev.Velocity)
			} else {
				e.NoteOff(ev.Note)
			}
			next++
		}
		end := min(pos+renderBlockSize, frames)
		if next < len(events) && events[next].Pos < end {
			end = events[next].Pos
		}
		e.GenerateBlock(out[pos:end], int(end-pos))
		pos = end
	}
	return out
}

// WriteWAV encodes pcm as 16-bit mono WAV.
func WriteWAV(w io.WriteSeeker, pcm []int32) error {
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  synth.SampleRate,
		},
		Data:           make([]int, len(pcm)),
		SourceBitDepth: 16,
	}
	for i, v := range pcm {
		buf.Data[i] = int(v >> 16)
	}
	const pcmFormat = 1
	e := wav.NewEncoder(w, synth.SampleRate, 16, 1, pcmFormat)
	if err := e.Write(buf); err != nil {
		return fmt.Errorf("encoding failed on write: %w", err)
	}
	if err := e.Close(); err != nil {
		return fmt.Errorf("could not close wav encoder: %w", err)
	}
	return nil
}
