// audio_output.go - Audio backend abstraction and factory

/*
▄▄▄█████▓ █    ██ ███▄    █ ▓█████  ▒█████   █    ██ ▄▄▄█████▓
▓  ██▒ ▓▒ ██  ▓██▒██ ▀█   █ ▓█   ▀ ▒██▒  ██▒ ██  ▓██▒▓  ██▒ ▓▒
▒ ▓██░ ▒░▓██  ▒██░██  ▀█ ██▒▒███   ▒██░  ██▒▓██  ▒██░▒ ▓██░ ▒░
░ ▓██▓ ░ ▓▓█  ░██░██▒  ▐▌██▒▒▓█  ▄ ▒██   ██░▓▓█  ░██░░ ▓██▓ ░
  ▒██▒ ░ ▒▒█████▓ ██░   ▓██░░▒████▒░ ████▓▒░▒▒█████▓   ▒██▒ ░
  ▒ ░░   ░▒▓▒ ▒ ▒  ▒░   ▒ ▒ ░░ ▒░ ░░ ▒░▒░▒░ ░▒▓▒ ▒ ▒   ▒ ░░
    ░    ░░▒░ ░ ░  ░░   ░ ▒░ ░ ░  ░  ░ ▒ ▒░ ░░▒░ ░ ░     ░
  ░       ░░░ ░ ░   ░   ░ ░    ░   ░ ░ ░ ▒   ░░░ ░ ░   ░
            ░             ░    ░  ░    ░ ░     ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/TuneOut
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
)

const (
	AUDIO_BACKEND_OTO = iota
	AUDIO_BACKEND_NULL
	AUDIO_BACKEND_ALSA
	AUDIO_BACKEND_PORTAUDIO
)

var (
	ErrUnknownBackend     = errors.New("unknown audio backend")
	ErrBackendUnavailable = errors.New("audio backend not compiled in")
)

// SampleSource is the render-side pull interface. Implementations must be
// callable from a real-time thread: no blocking, no allocation.
type SampleSource interface {
	ReadSample() float32
}

// AudioOutput is one playback driver. Start/Stop pairs may repeat; Stop
// guarantees the source sees no further ReadSample calls once it returns.
// Close releases the device.
type AudioOutput interface {
	Start() error
	Stop() error
	Close() error
	IsStarted() bool
}

// NewAudioOutput opens the selected backend and binds it to src.
func NewAudioOutput(backend int, sampleRate int, src SampleSource) (AudioOutput, error) {
	switch backend {
	case AUDIO_BACKEND_OTO:
		out, err := newOtoOutput(sampleRate, src)
		if err != nil {
			return nil, err
		}
		return out, nil
	case AUDIO_BACKEND_NULL:
		return NewNullOutput(sampleRate, src), nil
	case AUDIO_BACKEND_ALSA:
		out, err := newALSAOutput(sampleRate, src)
		if err != nil {
			return nil, err
		}
		return out, nil
	case AUDIO_BACKEND_PORTAUDIO:
		out, err := newPortAudioOutput(sampleRate, src)
		if err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownBackend, backend)
	}
}

// ParseBackend maps a CLI backend name to its constant.
func ParseBackend(name string) (int, error) {
	switch name {
	case "oto":
		return AUDIO_BACKEND_OTO, nil
	case "null":
		return AUDIO_BACKEND_NULL, nil
	case "alsa":
		return AUDIO_BACKEND_ALSA, nil
	case "portaudio":
		return AUDIO_BACKEND_PORTAUDIO, nil
	default:
		return 0, fmt.Errorf("%w: %q (want oto, null, alsa or portaudio)", ErrUnknownBackend, name)
	}
}
