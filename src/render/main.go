package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/graphdaw/fmasynth/src/audio"
	"github.com/graphdaw/fmasynth/src/synth"
)

func main() {
	out := flag.String("out", "out.wav", "WAV file to write")
	notes := flag.String("notes", "60,64,67,72", "note numbers separated by commas, - for a rest")
	step := flag.Duration("step", 250*time.Millisecond, "time between note starts")
	gate := flag.Duration("gate", 200*time.Millisecond, "note length")
	tail := flag.Duration("tail", time.Second, "time rendered after the last event")
	velocity := flag.Float64("velocity", 0.8, "note velocity")
	patchFile := flag.String("patch", "", "JSON patch applied over the defaults")
	seed := flag.Int64("seed", 1, "noise seed")
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	patch := audio.DefaultPatch()
	if *patchFile != "" {
		p, err := audio.LoadPatch(*patchFile)
		if err != nil {
			log.Fatalf("error: %v\n", err)
		}
		patch = patch.Merge(p)
	}
	score, err := audio.ParseScore(*notes, *step, *gate, *velocity)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}

	engine := synth.NewEngine(*seed)
	patch.Apply(engine)
	frames := score.End() + int64(tail.Seconds()*synth.SampleRate)
	pcm := audio.Render(engine, score, frames)
	log.Printf("rendered %d events, %.2fs\n", len(score), float64(frames)/synth.SampleRate)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	if err := audio.WriteWAV(f, pcm); err != nil {
		f.Close()
		log.Fatalf("error: %v\n", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Printf("Successfully wrote %s\n", *out)
}
