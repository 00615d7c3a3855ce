//go:build headless

// audio_backend_headless.go - Headless stand-in for the oto backend

package main

// Headless builds have no audio device stack; the default backend degrades
// to the paced null output so the rest of the engine behaves identically.
func newOtoOutput(sampleRate int, src SampleSource) (AudioOutput, error) {
	return NewNullOutput(sampleRate, src), nil
}
