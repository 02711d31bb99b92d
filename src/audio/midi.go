package audio

import (
	"context"
	"fmt"
	"log"

	"github.com/graphdaw/fmasynth/src/synth"
	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"
)

// ListenToMidiIn streams raw messages from the first MIDI IN port until ctx
// is done. The channel is closed when listening stops.
func ListenToMidiIn(ctx context.Context) <-chan []byte {
	ch := make(chan []byte, 65536)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		in, err := openFirstIn(drv)
		if err != nil {
			log.Printf("WARN: %v\n", err)
			return
		}
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			msg := make([]byte, len(data))
			copy(msg, data)
			select {
			case ch <- msg:
			default:
				log.Println("[WARN] MIDI buffer full, dropping message")
			}
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
			return
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		<-ctx.Done()
	}()
	return ch
}

func openFirstIn(drv midi.Driver) (midi.In, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("failed to get MIDI IN: %w", err)
	}
	log.Printf("MIDI IN: %v\n", ins)
	if len(ins) == 0 {
		return nil, fmt.Errorf("MIDI IN not found")
	}
	in := ins[0]
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("failed to open MIDI IN: %w", err)
	}
	log.Println("opened " + in.String())
	return in, nil
}

// ListenMidi feeds MIDI IN into the engine until ctx is done.
func (a *Audio) ListenMidi(ctx context.Context) error {
	for data := range ListenToMidiIn(ctx) {
		a.AddMidiEvent(data)
	}
	log.Println("ListenMidi() ended.")
	return nil
}

// AddMidiEvent handles note on/off and control change on any channel.
func (a *Audio) AddMidiEvent(data []byte) {
	if len(data) < 3 {
		return
	}
	status := data[0] >> 4
	switch {
	case status == 0x8 || status == 0x9 && data[2] == 0:
		log.Printf("got note-off: %v\n", data)
		note := int(data[1])
		a.stream.Do(func(e *synth.Engine) { e.NoteOff(note) })
	case status == 0x9:
		log.Printf("got note-on: %v\n", data)
		note := int(data[1])
		velocity := float64(data[2]) / 127
		a.stream.Do(func(e *synth.Engine) { e.NoteOn(note, velocity) })
	case status == 0xB:
		id, ok := a.controlParam(int(data[1]))
		if !ok {
			return
		}
		value := float64(data[2]) / 127
		a.stream.Do(func(e *synth.Engine) { e.SetParam(id, value) })
	}
}
