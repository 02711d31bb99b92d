package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"golang.org/x/term"
)

// A terminal reports no key releases, so every note is held for keyGate.
const (
	keyGate     = 300 * time.Millisecond
	keyVelocity = "0.8"
	baseNote    = 60
	maxOctave   = 4
	ctrlC       = 3
)

// one octave from C on the home row, sharps on the row above
var keyOffsets = map[byte]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6,
	'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12,
}

func keyNote(key byte, octave int) (int, bool) {
	offset, ok := keyOffsets[key]
	if !ok {
		return 0, false
	}
	note := baseNote + octave*12 + offset
	if note < 0 || note > 127 {
		return 0, false
	}
	return note, true
}

// crlfWriter keeps log lines readable while the terminal is raw.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// playKeyboard turns key presses on in into note commands until ctx is done,
// q or Ctrl-C is pressed, or in is exhausted.
func playKeyboard(ctx context.Context, in *os.File, commandCh chan<- []string) error {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		log.SetOutput(crlfWriter{os.Stderr})
		defer func() {
			log.SetOutput(os.Stderr)
			if err := term.Restore(fd, state); err != nil {
				log.Printf("failed to restore terminal: %v\n", err)
			}
		}()
	}
	log.Println("keys: a-k play, z/x octave, q quits")
	return runKeys(ctx, readKeys(in), commandCh)
}

func readKeys(r io.Reader) <-chan byte {
	keys := make(chan byte, 64)
	go func() {
		defer close(keys)
		buf := make([]byte, 16)
		for {
			n, err := r.Read(buf)
			for _, b := range buf[:n] {
				keys <- b
			}
			if err != nil {
				return
			}
		}
	}()
	return keys
}

func runKeys(ctx context.Context, keys <-chan byte, commandCh chan<- []string) error {
	octave := 0
	held := map[int]time.Time{}
	t := time.NewTicker(keyGate / 10)
	defer t.Stop()

	send := func(command ...string) bool {
		select {
		case commandCh <- command:
			return true
		case <-ctx.Done():
			return false
		}
	}
	defer func() {
		for note := range held {
			send("note_off", strconv.Itoa(note))
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			for note, until := range held {
				if now.After(until) {
					delete(held, note)
					if !send("note_off", strconv.Itoa(note)) {
						return nil
					}
				}
			}
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			switch key {
			case 'q', ctrlC:
				return nil
			case 'z':
				octave = max(octave-1, -maxOctave)
				log.Printf("octave %d\n", octave)
				continue
			case 'x':
				octave = min(octave+1, maxOctave)
				log.Printf("octave %d\n", octave)
				continue
			}
			note, ok := keyNote(key, octave)
			if !ok {
				continue
			}
			if _, ok := held[note]; !ok {
				if !send("note_on", strconv.Itoa(note), keyVelocity) {
					return nil
				}
			}
			held[note] = time.Now().Add(keyGate)
		}
	}
}
