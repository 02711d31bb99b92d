package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/graphdaw/fmasynth/src/synth"
)

// ----- Patch ----- //

// Patch is a set of normalized parameter values plus a MIDI CC mapping.
type Patch struct {
	Params map[string]float64 `json:"params"`
	CC     map[int]string     `json:"cc"`
}

// defaultVolume keeps Polyphony full-velocity voices with every partial
// faded in within the int32 mix: 4 * (1 + 0.7*4) * 0.25^2 = 0.95.
const defaultVolume = 0.25

// DefaultPatch is audible out of the box; the bare engine starts at volume 0.
func DefaultPatch() *Patch {
	return &Patch{
		Params: map[string]float64{
			"volume":             defaultVolume,
			"vibrato":            0.0,
			"partials":           0.3,
			"partials_wobble":    0.3,
			"base_wave_type":     float64(synth.WaveSine),
			"partials_wave_type": float64(synth.WaveSine),
			"fm_ratio":           0.5,
			"fm_amp":             0.1,
			"glide":              0.0,
			"attack":             0.1,
			"decay":              0.4,
			"sustain":            0.8,
		},
		CC: map[int]string{
			1:  "vibrato",
			7:  "volume",
			71: "partials",
			72: "decay",
			73: "attack",
			74: "fm_amp",
		},
	}
}

// ParsePatch decodes and validates a JSON patch.
func ParsePatch(data []byte) (*Patch, error) {
	p := &Patch{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse patch: %w", err)
	}
	for name := range p.Params {
		if _, err := synth.ParseParamID(name); err != nil {
			return nil, err
		}
	}
	for cc, name := range p.CC {
		if cc < 0 || cc > 127 {
			return nil, fmt.Errorf("invalid control number %d", cc)
		}
		if _, err := synth.ParseParamID(name); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func LoadPatch(path string) (*Patch, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParsePatch(bytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Merge returns p with other's values laid on top.
func (p *Patch) Merge(other *Patch) *Patch {
	merged := &Patch{Params: map[string]float64{}, CC: map[int]string{}}
	for _, src := range []*Patch{p, other} {
		for k, v := range src.Params {
			merged.Params[k] = v
		}
		for k, v := range src.CC {
			merged.CC[k] = v
		}
	}
	return merged
}

// Apply sets every parameter the patch names, in parameter id order.
func (p *Patch) Apply(e *synth.Engine) {
	for _, id := range synth.ParamIDs() {
		if v, ok := p.Params[id.String()]; ok {
			e.SetParam(id, v)
		}
	}
}

func (p *Patch) ControlParam(cc int) (synth.ParamID, bool) {
	name, ok := p.CC[cc]
	if !ok {
		return 0, false
	}
	id, err := synth.ParseParamID(name)
	if err != nil {
		return 0, false
	}
	return id, true
}

// WatchPatch calls onChange with the reloaded patch whenever the file at path
// is written or replaced, until ctx is done. Invalid edits are logged and
// skipped.
func WatchPatch(ctx context.Context, path string, onChange func(*Patch)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Printf("error while closing watcher: %v", err)
		}
	}()
	path = filepath.Clean(path)
	// editors often replace the file, so watch its directory
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	log.Printf("watching %s\n", path)
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case ev, ok := <-w.Events:
			if !ok {
				break loop
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p, err := LoadPatch(path)
			if err != nil {
				log.Printf("failed to reload patch: %v\n", err)
				continue
			}
			log.Printf("reloaded %s\n", path)
			onChange(p)
		case err, ok := <-w.Errors:
			if !ok {
				break loop
			}
			log.Printf("watch error: %v\n", err)
		}
	}
	log.Println("WatchPatch() ended.")
	return nil
}
