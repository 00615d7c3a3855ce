// noise_engine.go - White/pink/brown noise generation core

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
	"math/bits"
	"sync/atomic"
)

// NoiseColor selects which generator the render context consults.
type NoiseColor uint32

const (
	NOISE_WHITE NoiseColor = iota // Flat spectrum, uniform draws
	NOISE_PINK                    // 1/f approximation (Voss-McCartney)
	NOISE_BROWN                   // Clamped random walk
)

func (c NoiseColor) String() string {
	switch c {
	case NOISE_WHITE:
		return "white"
	case NOISE_PINK:
		return "pink"
	case NOISE_BROWN:
		return "brown"
	default:
		return fmt.Sprintf("color(%d)", uint32(c))
	}
}

// ParseNoiseColor maps a user-facing color name to its constant.
func ParseNoiseColor(name string) (NoiseColor, error) {
	switch name {
	case "white":
		return NOISE_WHITE, nil
	case "pink":
		return NOISE_PINK, nil
	case "brown":
		return NOISE_BROWN, nil
	default:
		return NOISE_WHITE, fmt.Errorf("unknown noise color %q (want white, pink or brown)", name)
	}
}

const (
	// Octave rows summed by the pink generator. Row k refreshes every 2^k
	// samples, so 16 rows span ~1.5s of period at 44.1kHz.
	PINK_ROWS = 16

	// Widest step the brown walk may take per sample.
	BROWN_MAX_STEP = 0.1
)

// pinkNorm renormalizes the row sum plus one fresh white sample back toward
// unit range. The N/(N-1) constant is part of the sound; see RenderState.
const pinkNorm = float32(PINK_ROWS) / float32(PINK_ROWS-1)

// PinkState carries the Voss-McCartney generator between samples.
// Invariant: runningSum equals the sum of rows at all times. It is updated
// incrementally (one subtract, one add per sample), never recomputed.
type PinkState struct {
	rows       [PINK_ROWS]float32 // Per-octave held values
	runningSum float32            // Incremental sum of rows
	counter    uint64             // Samples generated since reset
}

func (ps *PinkState) reset() {
	for i := range ps.rows {
		ps.rows[i] = 0
	}
	ps.runningSum = 0
	ps.counter = 0
}

// next produces one pink sample. The row to refresh is chosen by the
// trailing-zero count of the sample counter: row 0 every sample, row 1 every
// 2nd, row 2 every 4th and so on, which spaces the rows an octave apart.
// A counter of zero selects row 0 so the first sample after a reset touches
// exactly one row.
//
//go:nosplit
func (ps *PinkState) next(rng *noiseRand) float32 {
	k := 0
	if ps.counter != 0 {
		k = bits.TrailingZeros64(ps.counter)
		if k > PINK_ROWS-1 {
			k = PINK_ROWS - 1
		}
	}

	ps.runningSum -= ps.rows[k]
	ps.rows[k] = rng.uniform()
	ps.runningSum += ps.rows[k]
	ps.counter++

	// Averaged rows plus one unit of fresh high-frequency energy,
	// renormalized by N/(N-1). Deliberately kept as-is: this slightly
	// non-standard variant defines the audible character.
	return (ps.runningSum/PINK_ROWS + rng.uniform()) / pinkNorm
}

// BrownState carries the clamped random walk between samples.
// Invariant: last stays in [-1, 1] after every update.
type BrownState struct {
	last float32
}

func (bs *BrownState) reset() {
	bs.last = 0
}

//go:nosplit
func (bs *BrownState) next(rng *noiseRand) float32 {
	return bs.step(rng.uniform() * BROWN_MAX_STEP)
}

// step advances the walk by delta and clamps. Split out from next so tests
// can drive adversarial step sequences directly.
//
//go:nosplit
func (bs *BrownState) step(delta float32) float32 {
	v := clampF32(bs.last+delta, MIN_SAMPLE, MAX_SAMPLE)
	bs.last = v
	return v
}

// RenderState is the one object shared between the control context and the
// render context. The split is strict:
//
//   - Control context: writes the packed color/epoch word (SetColor, Reset)
//     and reads it back for display. Never touches generator state.
//   - Render context: reads the word and owns all generator state (pink
//     rows, brown walk, RNG). Nothing else may touch those fields while a
//     stream is live.
//
// The word packs `epoch<<32 | color` into one atomic.Uint64 so a color
// switch and the derived-state reset it requires are observed together:
// every SetColor/Reset bumps the epoch, and NextSample zeroes the generator
// state when it sees an epoch it has not applied yet. Switching away from a
// color and back is still two epoch bumps, so stale rows or a stale walk can
// never leak across the switch.
type RenderState struct {
	// Cache line 1 - the cross-context word (atomic for lock-free access)
	colorEpoch atomic.Uint64

	// Render-confined generator state. No lock guards these; confinement
	// to the render context is the synchronization.
	pink      PinkState
	brown     BrownState
	rng       noiseRand
	seenEpoch uint32 // Last epoch applied by the render context
}

func NewRenderState() *RenderState {
	return &RenderState{
		rng: newNoiseRand(nextSeed()),
	}
}

// SetColor requests a color change. Takes effect on the next rendered
// sample; at worst one in-flight sample is produced with the old color,
// which is inaudible for noise. Safe from any goroutine.
func (rs *RenderState) SetColor(c NoiseColor) {
	for {
		old := rs.colorEpoch.Load()
		next := (old>>32+1)<<32 | uint64(uint32(c))
		if rs.colorEpoch.CompareAndSwap(old, next) {
			return
		}
	}
}

// Reset requests a derived-state wipe without changing the color. The wipe
// happens on the render context's next pull; two Resets in a row leave the
// same state as one. Safe from any goroutine.
func (rs *RenderState) Reset() {
	for {
		old := rs.colorEpoch.Load()
		next := (old>>32+1)<<32 | (old & 0xFFFFFFFF)
		if rs.colorEpoch.CompareAndSwap(old, next) {
			return
		}
	}
}

// Color reports the currently selected noise color.
func (rs *RenderState) Color() NoiseColor {
	return NoiseColor(uint32(rs.colorEpoch.Load()))
}

// NextSample produces one sample in the selected color. Render context
// only. Allocation-free, lock-free, O(1).
//
//go:nosplit
func (rs *RenderState) NextSample() float32 {
	word := rs.colorEpoch.Load()
	if epoch := uint32(word >> 32); epoch != rs.seenEpoch {
		rs.pink.reset()
		rs.brown.reset()
		rs.seenEpoch = epoch
	}

	switch NoiseColor(uint32(word)) {
	case NOISE_PINK:
		return rs.pink.next(&rs.rng)
	case NOISE_BROWN:
		return rs.brown.next(&rs.rng)
	default:
		return rs.rng.uniform()
	}
}
