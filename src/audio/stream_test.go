package audio

import (
	"testing"

	"github.com/graphdaw/fmasynth/src/synth"
)

func newTestStream() *Stream {
	e := synth.NewEngine(1)
	DefaultPatch().Apply(e)
	return NewStream(e)
}

func TestStreamInactiveIsSilent(t *testing.T) {
	s := newTestStream()
	s.Do(func(e *synth.Engine) { e.NoteOn(60, 1) })
	frames := []Frame{{L: 1, R: 1}, {L: -1, R: 0.5}}
	expectEqual(t, s.Mix(frames), false)
	expectEqual(t, frames[0], Frame{})
	expectEqual(t, frames[1], Frame{})
	expectEqual(t, s.PlaybackPosition(), 0.0)
}

func TestStreamRejectsLargeRequests(t *testing.T) {
	s := newTestStream()
	s.Start(0)
	frames := make([]Frame, maxMixFrames+1)
	frames[0] = Frame{L: 0.25, R: 0.25}
	expectEqual(t, s.Mix(frames), false)
	expectEqual(t, frames[0], Frame{L: 0.25, R: 0.25})
}

func TestStreamMixDuplicatesMono(t *testing.T) {
	s := newTestStream()
	s.Start(0)
	s.Do(func(e *synth.Engine) { e.NoteOn(69, 1) })
	frames := make([]Frame, 512)
	expectEqual(t, s.Mix(frames), true)
	nonZero := false
	for _, f := range frames {
		expectEqual(t, f.L, f.R)
		if f.L != 0 {
			nonZero = true
		}
	}
	expectEqual(t, nonZero, true)
	expectNearlyEqual(t, s.PlaybackPosition(), 512.0/synth.SampleRate)
}

func TestStreamMatchesEngine(t *testing.T) {
	s := newTestStream()
	s.Start(0)
	s.Do(func(e *synth.Engine) { e.NoteOn(60, 0.7) })
	frames := make([]Frame, 256)
	s.Mix(frames)

	e := synth.NewEngine(1)
	DefaultPatch().Apply(e)
	e.NoteOn(60, 0.7)
	pcm := make([]int32, 256)
	e.GenerateBlock(pcm, len(pcm))
	for i, v := range pcm {
		expectEqual(t, frames[i].L, float32(float64(v)/synth.AmpFullScale))
	}
}

func TestStreamStopResets(t *testing.T) {
	s := newTestStream()
	s.Start(3)
	s.Do(func(e *synth.Engine) { e.NoteOn(60, 1) })
	s.Mix(make([]Frame, 100))
	s.Stop()
	expectEqual(t, s.IsPlaying(), false)
	expectEqual(t, s.PlaybackPosition(), 0.0)
	s.Do(func(e *synth.Engine) {
		expectEqual(t, e.PeakEnvelope(), 0.0)
	})
}

func TestStreamSeekClampsNegative(t *testing.T) {
	s := newTestStream()
	s.Seek(-4)
	expectEqual(t, s.PlaybackPosition(), 0.0)
	s.Seek(0.5)
	expectNearlyEqual(t, s.PlaybackPosition(), 0.5)
}

func TestStreamRead(t *testing.T) {
	s := newTestStream()
	s.Start(0)
	s.Do(func(e *synth.Engine) { e.NoteOn(69, 1) })
	// more than one mix chunk and an odd trailing byte
	buf := make([]byte, (maxMixFrames+300)*bytesPerSample+1)
	n, err := s.Read(buf)
	expectNoError(t, err)
	expectEqual(t, n, (maxMixFrames+300)*bytesPerSample)
	expectNearlyEqual(t, s.PlaybackPosition(), float64(maxMixFrames+300)/synth.SampleRate)
	for i := 0; i < n; i += bytesPerSample {
		expectEqual(t, buf[i], buf[i+2])
		expectEqual(t, buf[i+1], buf[i+3])
	}
}

func TestWriteFramesClamps(t *testing.T) {
	buf := make([]byte, 2*bytesPerSample)
	writeFrames([]Frame{{L: 2, R: -2}, {L: 0.5, R: 0}}, buf)
	expectEqual(t, int16(uint16(buf[0])|uint16(buf[1])<<8), int16(32767))
	expectEqual(t, int16(uint16(buf[2])|uint16(buf[3])<<8), int16(-32767))
	expectEqual(t, int16(uint16(buf[4])|uint16(buf[5])<<8), int16(16383))
	expectEqual(t, int16(uint16(buf[6])|uint16(buf[7])<<8), int16(0))
}

func TestSnapshotOrder(t *testing.T) {
	s := NewStream(synth.NewEngine(1))
	for i := range s.out {
		s.out[i] = float64(i)
	}
	s.outPos = 10
	dst := make([]float64, fftSize)
	s.Snapshot(dst)
	expectEqual(t, dst[0], 10.0)
	expectEqual(t, dst[fftSize-10], 0.0)
	expectEqual(t, dst[fftSize-1], 9.0)
}
