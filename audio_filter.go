// audio_filter.go - State-variable low-pass stage between generator and gain

package main

import "math"

// lowPassFilter is a 2-pole state-variable filter tapped at its low-pass
// output. State is owned by the render context; the coefficient and damping
// arrive per sample from the engine's atomics, so cutoff changes land on the
// next sample without any handshake.
type lowPassFilter struct {
	lp float32 // Low-pass state
	bp float32 // Band-pass state
	hp float32 // High-pass state
}

func (f *lowPassFilter) reset() {
	f.lp = 0
	f.bp = 0
	f.hp = 0
}

// process advances the filter by one sample and returns the low-pass tap.
// damp is the SVF damping term: small values leave a resonant peak at the
// cutoff, larger values flatten it. The engine derives it from the user
// resonance knob.
//
//go:nosplit
func (f *lowPassFilter) process(sample, coeff, damp float32) float32 {
	lp := f.lp + coeff*f.bp
	hp := (sample - lp) - damp*f.bp
	bp := f.bp + coeff*hp

	// Clamp the states to keep the integrator stable at high cutoffs.
	lp = clampF32(lp, MIN_SAMPLE, MAX_SAMPLE)
	bp = clampF32(bp, MIN_SAMPLE, MAX_SAMPLE)
	hp = clampF32(hp, MIN_SAMPLE, MAX_SAMPLE)

	f.lp = flushDenormal(lp)
	f.bp = flushDenormal(bp)
	f.hp = flushDenormal(hp)

	return f.lp
}

// cutoffCoeff converts a cutoff in Hz to the SVF integrator coefficient for
// the given sample rate.
func cutoffCoeff(hz float32, sampleRate int) float32 {
	return float32(2*math.Pi) * hz / float32(sampleRate)
}
