//go:build !portaudio

// audio_backend_portaudio_stub.go - Build without the portaudio tag

package main

func newPortAudioOutput(sampleRate int, src SampleSource) (AudioOutput, error) {
	return nil, ErrBackendUnavailable
}
