package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	cueRate     = beep.SampleRate(44100)
	cueFreq     = 220.0
	cueDuration = 120 * time.Millisecond
)

// cue plays the short tone for a refused destination.
type cue struct{}

func newCue() (*cue, error) {
	if err := speaker.Init(cueRate, cueRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &cue{}, nil
}

func (c *cue) Play() {
	sine, err := generators.SineTone(cueRate, cueFreq)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(cueRate.N(cueDuration), sine))
}

func (c *cue) Close() {
	speaker.Close()
}
