package audio

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"

	"github.com/graphdaw/fmasynth/src/synth"
	"github.com/hajimehoshi/oto"
)

// ----- Audio ----- //

// Audio drives a Stream on the sound device and applies text commands.
type Audio struct {
	ctx        context.Context
	otoContext *oto.Context
	CommandCh  chan []string
	stream     *Stream
	spectrum   *Spectrum
	patchMu    sync.Mutex
	patch      *Patch
	fftInput   []float64 // length: fftSize
}

var _ io.Reader = (*Audio)(nil)

// NewAudio opens the output device and starts a stream playing patch.
func NewAudio(seed int64, patch *Patch, window Window) (*Audio, error) {
	otoContext, err := oto.NewContext(synth.SampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return nil, err
	}
	audio := newAudio(synth.NewEngine(seed), patch, window)
	audio.otoContext = otoContext
	go processCommands(audio, audio.CommandCh)
	return audio, nil
}

func newAudio(engine *synth.Engine, patch *Patch, window Window) *Audio {
	a := &Audio{
		ctx:       context.Background(),
		CommandCh: make(chan []string, 256),
		stream:    NewStream(engine),
		spectrum:  NewSpectrum(fftSize, window),
		patch:     &Patch{},
		fftInput:  make([]float64, fftSize),
	}
	if patch != nil {
		a.ApplyPatch(patch)
	}
	a.stream.Start(0)
	return a
}

func processCommands(audio *Audio, commandCh <-chan []string) {
	for command := range commandCh {
		if err := audio.update(command); err != nil {
			log.Printf("command %v: %v\n", command, err)
		}
	}
	log.Println("processCommands() ended.")
}

func (a *Audio) update(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty command")
	}
	args := command[1:]
	switch command[0] {
	case "note_on":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: note_on <note> [velocity]")
		}
		note, err := parseNote(args[0])
		if err != nil {
			return err
		}
		velocity := 1.0
		if len(args) == 2 {
			velocity, err = strconv.ParseFloat(args[1], 64)
			if err != nil {
				return err
			}
		}
		a.stream.Do(func(e *synth.Engine) { e.NoteOn(note, velocity) })
	case "note_off":
		if len(args) != 1 {
			return fmt.Errorf("usage: note_off <note>")
		}
		note, err := parseNote(args[0])
		if err != nil {
			return err
		}
		a.stream.Do(func(e *synth.Engine) { e.NoteOff(note) })
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("invalid key-value pair %v", args)
		}
		id, err := synth.ParseParamID(args[0])
		if err != nil {
			return err
		}
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return err
		}
		a.stream.Do(func(e *synth.Engine) { e.SetParam(id, value) })
	case "reset":
		a.stream.Do(func(e *synth.Engine) { e.Reset() })
	case "seek":
		if len(args) != 1 {
			return fmt.Errorf("usage: seek <seconds>")
		}
		sec, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return err
		}
		a.stream.Seek(sec)
	case "start":
		sec := 0.0
		if len(args) == 1 {
			var err error
			sec, err = strconv.ParseFloat(args[0], 64)
			if err != nil {
				return err
			}
		}
		a.stream.Start(sec)
	case "stop":
		a.stream.Stop()
	case "patch":
		if len(args) != 1 {
			return fmt.Errorf("usage: patch <path>")
		}
		p, err := LoadPatch(args[0])
		if err != nil {
			return err
		}
		a.ApplyPatch(p)
	default:
		return fmt.Errorf("unknown command %v", command[0])
	}
	return nil
}

func parseNote(s string) (int, error) {
	note, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	if note < 0 || note > 127 {
		return 0, fmt.Errorf("note %d out of range", note)
	}
	return int(note), nil
}

// ApplyPatch sets the patch parameters on the engine and adopts its CC map.
func (a *Audio) ApplyPatch(p *Patch) {
	a.stream.Do(p.Apply)
	a.patchMu.Lock()
	a.patch = a.patch.Merge(p)
	a.patchMu.Unlock()
}

func (a *Audio) controlParam(cc int) (synth.ParamID, bool) {
	a.patchMu.Lock()
	defer a.patchMu.Unlock()
	return a.patch.ControlParam(cc)
}

func (a *Audio) Read(buf []byte) (int, error) {
	select {
	case <-a.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
		return a.stream.Read(buf)
	}
}

// Close ...
func (a *Audio) Close() error {
	log.Println("Closing Audio...")
	close(a.CommandCh)
	if a.otoContext == nil {
		return nil
	}
	return a.otoContext.Close()
}

// Start plays until ctx is canceled.
func (a *Audio) Start(ctx context.Context) error {
	p := a.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	a.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(p, a, make([]byte, bufferSizeInBytes)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

// Peak is the loudest voice envelope right now.
func (a *Audio) Peak() float64 {
	peak := 0.0
	a.stream.Do(func(e *synth.Engine) { peak = e.PeakEnvelope() })
	return peak
}

// GetFFT returns the magnitude spectrum of the most recent output.
// The returned slice is reused by the next call.
func (a *Audio) GetFFT() []float64 {
	a.stream.Snapshot(a.fftInput)
	return a.spectrum.Calc(a.fftInput)
}
