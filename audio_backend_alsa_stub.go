//go:build !(alsa && linux && cgo)

// audio_backend_alsa_stub.go - Build without the alsa tag

package main

func newALSAOutput(sampleRate int, src SampleSource) (AudioOutput, error) {
	return nil, ErrBackendUnavailable
}
