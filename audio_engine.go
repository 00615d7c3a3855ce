// audio_engine.go - Playback engine bridging control intent to the render path

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
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const SAMPLE_RATE = 44100

const (
	MIN_VOLUME = 0.0
	MAX_VOLUME = 1.0
)

const (
	MIN_CUTOFF_HZ = 200.0
	MAX_CUTOFF_HZ = 20000.0
)

const (
	MIN_RESONANCE = 0.0
	MAX_RESONANCE = 1.0
)

// SVF damping range the resonance knob maps onto. Knob at 0 gives a flat
// passband; knob at 1 leaves a pronounced peak at the cutoff without letting
// the filter self-oscillate.
const (
	FILTER_DAMP_MAX = 1.4
	FILTER_DAMP_MIN = 0.15
)

const (
	DEFAULT_VOLUME    = 0.5
	DEFAULT_CUTOFF_HZ = 20000.0
)

// PlaybackState tracks whether the output stream is live.
type PlaybackState uint32

const (
	STATE_STOPPED PlaybackState = iota
	STATE_PLAYING
)

func (s PlaybackState) String() string {
	if s == STATE_PLAYING {
		return "playing"
	}
	return "stopped"
}

// EngineConfig carries the plain value parameters for engine construction.
// Out-of-range values are clamped at assignment, never rejected.
type EngineConfig struct {
	SampleRate int
	Backend    int
	Color      NoiseColor
	Volume     float32
	CutoffHz   float32
	Resonance  float32
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SampleRate: SAMPLE_RATE,
		Backend:    AUDIO_BACKEND_OTO,
		Color:      NOISE_WHITE,
		Volume:     DEFAULT_VOLUME,
		CutoffHz:   DEFAULT_CUTOFF_HZ,
		Resonance:  MIN_RESONANCE,
	}
}

// AudioEngine owns the output stream and the render pull. Parameter fields
// the render context needs are float32 bit patterns in atomics, so a live
// stream picks up control changes on the next sample without any lock.
// The filter state is render-confined; the control path touches it only
// while no stream exists.
type AudioEngine struct {
	// Hot fields read every sample (atomic for lock-free ReadSample)
	volumeBits atomic.Uint32 // Output gain [0,1]
	coeffBits  atomic.Uint32 // SVF integrator coefficient for the cutoff
	dampBits   atomic.Uint32 // SVF damping derived from the resonance knob
	resBits    atomic.Uint32 // Resonance knob [0,1], kept for display
	cutoffBits atomic.Uint32 // Cutoff in Hz, kept for display
	playing    atomic.Bool

	// Render-confined DSP state
	filter lowPassFilter
	state  *RenderState

	// Control path
	mutex      sync.Mutex // Serializes Start/Stop; never taken on the render path
	output     AudioOutput
	backend    int
	sampleRate int
	log        *logrus.Entry
}

func NewAudioEngine(cfg EngineConfig) *AudioEngine {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = SAMPLE_RATE
	}

	e := &AudioEngine{
		state:      NewRenderState(),
		backend:    cfg.Backend,
		sampleRate: cfg.SampleRate,
		log:        logrus.WithField("component", "engine"),
	}
	e.state.SetColor(cfg.Color)
	e.SetVolume(cfg.Volume)
	e.SetFilterCutoff(cfg.CutoffHz)
	e.SetFilterResonance(cfg.Resonance)
	return e
}

// ReadSample produces the next output sample: generator, low-pass, gain,
// final clamp. A zero coefficient means the filter is fully open and
// bypassed. Render context only; allocation-free and lock-free.
//
//go:nosplit
func (e *AudioEngine) ReadSample() float32 {
	sample := e.state.NextSample()
	if coeff := math.Float32frombits(e.coeffBits.Load()); coeff > 0 {
		sample = e.filter.process(sample, coeff,
			math.Float32frombits(e.dampBits.Load()))
	}
	vol := math.Float32frombits(e.volumeBits.Load())
	return clampF32(sample*vol, MIN_SAMPLE, MAX_SAMPLE)
}

// Start opens the output stream and begins pulling samples. Idempotent
// while playing. On failure the engine stays stopped and the error is
// returned to the caller; nothing is retried here.
func (e *AudioEngine) Start() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.playing.Load() {
		return nil
	}

	out, err := NewAudioOutput(e.backend, e.sampleRate, e)
	if err != nil {
		return fmt.Errorf("open audio output: %w", err)
	}
	if err := out.Start(); err != nil {
		_ = out.Close()
		return fmt.Errorf("start audio output: %w", err)
	}

	e.output = out
	e.playing.Store(true)
	e.log.WithFields(logrus.Fields{
		"color":  e.state.Color().String(),
		"volume": e.Volume(),
		"cutoff": e.FilterCutoff(),
	}).Info("playback started")
	return nil
}

// Stop tears the stream down and releases the device. Idempotent. The
// backend's Stop is synchronous, so once it returns no further render
// pulls can arrive and the derived DSP state may be reset from here.
func (e *AudioEngine) Stop() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.output != nil {
		_ = e.output.Stop()
		_ = e.output.Close()
		e.output = nil
	}
	if e.playing.Swap(false) {
		e.log.Info("playback stopped")
	}

	// Stream is down; safe to touch render-confined state.
	e.filter.reset()
	e.state.Reset()
}

// Toggle stops when playing and starts when stopped.
func (e *AudioEngine) Toggle() error {
	if e.State() == STATE_PLAYING {
		e.Stop()
		return nil
	}
	return e.Start()
}

// SetVolume clamps v to [0,1] and applies it on the next sample if a
// stream is live, otherwise it is simply held for the next Start.
func (e *AudioEngine) SetVolume(v float32) {
	v = clampF32(v, MIN_VOLUME, MAX_VOLUME)
	e.volumeBits.Store(math.Float32bits(v))
}

// SetFilterCutoff clamps hz to [200, 20000] and recomputes the filter
// coefficient; a live stream picks it up on the next sample. At the top
// of the range the filter is bypassed entirely.
func (e *AudioEngine) SetFilterCutoff(hz float32) {
	hz = clampF32(hz, MIN_CUTOFF_HZ, MAX_CUTOFF_HZ)
	e.cutoffBits.Store(math.Float32bits(hz))
	coeff := float32(0)
	if hz < MAX_CUTOFF_HZ {
		coeff = cutoffCoeff(hz, e.sampleRate)
	}
	e.coeffBits.Store(math.Float32bits(coeff))
}

// SetFilterResonance clamps q to [0,1] and maps it onto the SVF damping
// range, so the knob's zero point is a flat response rather than an
// undamped integrator.
func (e *AudioEngine) SetFilterResonance(q float32) {
	q = clampF32(q, MIN_RESONANCE, MAX_RESONANCE)
	e.resBits.Store(math.Float32bits(q))
	damp := FILTER_DAMP_MAX - q*(FILTER_DAMP_MAX-FILTER_DAMP_MIN)
	e.dampBits.Store(math.Float32bits(damp))
}

// SetNoiseColor switches the generator; safe whether or not playing.
func (e *AudioEngine) SetNoiseColor(c NoiseColor) {
	e.state.SetColor(c)
}

func (e *AudioEngine) State() PlaybackState {
	if e.playing.Load() {
		return STATE_PLAYING
	}
	return STATE_STOPPED
}

func (e *AudioEngine) Volume() float32 {
	return math.Float32frombits(e.volumeBits.Load())
}

func (e *AudioEngine) FilterCutoff() float32 {
	return math.Float32frombits(e.cutoffBits.Load())
}

func (e *AudioEngine) FilterResonance() float32 {
	return math.Float32frombits(e.resBits.Load())
}

func (e *AudioEngine) Color() NoiseColor {
	return e.state.Color()
}

func (e *AudioEngine) SampleRate() int {
	return e.sampleRate
}
