package audio

import (
	"io"
	"sync"

	"github.com/graphdaw/fmasynth/src/synth"
)

const (
	channelNum        = 2
	bitDepthInBytes   = 2
	bytesPerSample    = bitDepthInBytes * channelNum
	samplesPerCycle   = 1024
	bufferSizeInBytes = samplesPerCycle * bytesPerSample // should be >= 4096
	maxMixFrames      = 1024
	pcmBufferFrames   = 4096
	fftSize           = 2048
)

// Frame is one stereo output frame.
type Frame struct {
	L, R float32
}

// ----- Stream ----- //

// Stream adapts an Engine to a playable stream: start/stop/seek bookkeeping,
// the int32 scratch buffer and conversion to stereo frames. Its lock
// serializes every engine call with rendering.
type Stream struct {
	sync.Mutex
	engine *synth.Engine
	pcm    []int32 // length: pcmBufferFrames
	frames []Frame // length: maxMixFrames
	active bool
	out    []float64 // length: fftSize, ring of recent mono output
	outPos int
}

var _ io.Reader = (*Stream)(nil)

func NewStream(engine *synth.Engine) *Stream {
	return &Stream{
		engine: engine,
		pcm:    make([]int32, pcmBufferFrames),
		frames: make([]Frame, maxMixFrames),
		out:    make([]float64, fftSize),
	}
}

// Do runs f with exclusive access to the engine.
func (s *Stream) Do(f func(e *synth.Engine)) {
	s.Lock()
	defer s.Unlock()
	f(s.engine)
}

func (s *Stream) Start(fromSec float64) {
	s.Lock()
	defer s.Unlock()
	s.seek(fromSec)
	s.active = true
}

// Stop deactivates the stream and resets the engine.
func (s *Stream) Stop() {
	s.Lock()
	defer s.Unlock()
	s.active = false
	s.engine.Reset()
}

func (s *Stream) Seek(sec float64) {
	s.Lock()
	defer s.Unlock()
	s.seek(sec)
}

func (s *Stream) seek(sec float64) {
	if sec < 0 {
		sec = 0
	}
	s.engine.SetPosition(int64(sec * synth.SampleRate))
}

func (s *Stream) IsPlaying() bool {
	s.Lock()
	defer s.Unlock()
	return s.active
}

// PlaybackPosition is the engine position in seconds.
func (s *Stream) PlaybackPosition() float64 {
	s.Lock()
	defer s.Unlock()
	return float64(s.engine.Position()) / synth.SampleRate
}

// Mix renders len(frames) frames. Requests over maxMixFrames are refused and
// leave frames untouched; an inactive stream writes silence.
func (s *Stream) Mix(frames []Frame) bool {
	s.Lock()
	defer s.Unlock()
	return s.mix(frames)
}

func (s *Stream) mix(frames []Frame) bool {
	if len(frames) > maxMixFrames {
		return false
	}
	if !s.active {
		for i := range frames {
			frames[i] = Frame{}
		}
		return false
	}
	pcm := s.pcm[:len(frames)]
	for i := range pcm {
		pcm[i] = 0
	}
	s.engine.GenerateBlock(pcm, len(pcm))
	for i, v := range pcm {
		sample := float32(float64(v) / synth.AmpFullScale)
		frames[i] = Frame{L: sample, R: sample}
		s.out[s.outPos] = float64(sample)
		s.outPos = (s.outPos + 1) % len(s.out)
	}
	return true
}

// Read fills buf with 16-bit little-endian interleaved stereo.
func (s *Stream) Read(buf []byte) (int, error) {
	s.Lock()
	defer s.Unlock()
	n := len(buf) / bytesPerSample
	for written := 0; written < n; {
		frames := s.frames[:min(n-written, maxMixFrames)]
		s.mix(frames)
		writeFrames(frames, buf[written*bytesPerSample:])
		written += len(frames)
	}
	return n * bytesPerSample, nil
}

func writeFrames(frames []Frame, buf []byte) {
	for i, f := range frames {
		l := toInt16(f.L)
		r := toInt16(f.R)
		buf[bytesPerSample*i] = byte(l)
		buf[bytesPerSample*i+1] = byte(l >> 8)
		buf[bytesPerSample*i+2] = byte(r)
		buf[bytesPerSample*i+3] = byte(r >> 8)
	}
}

func toInt16(v float32) int16 {
	const scale = 32767
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(v * scale)
}

// Snapshot copies the recent output, oldest first, into dst (length fftSize).
func (s *Stream) Snapshot(dst []float64) {
	s.Lock()
	defer s.Unlock()
	// out:  | 4 | 1 | 2 | 3 |
	// pos:      ^
	// dst:  | 1 | 2 | 3 | 4 |
	n := copy(dst, s.out[s.outPos:])
	copy(dst[n:], s.out[:s.outPos])
}
