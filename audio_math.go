// audio_math.go - Branch-light math helpers for the sample render path

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
	"sync/atomic"
	"time"
)

const (
	MAX_SAMPLE = 1.0
	MIN_SAMPLE = -1.0
)

// Magnitudes below this are flushed to zero before they re-enter the filter
// feedback path. Denormalized float32 arithmetic can cost 10-100x on x86.
const DENORMAL_FLOOR = 1e-30

// clampF32 bounds v to [lo, hi].
//
//go:nosplit
func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// flushDenormal zeroes values too small to matter audibly.
//
//go:nosplit
func flushDenormal(v float32) float32 {
	if v > -DENORMAL_FLOOR && v < DENORMAL_FLOOR {
		return 0
	}
	return v
}

// noiseRand is a xorshift32 generator. One instance lives inside each
// RenderState and is touched only by the render context, so draws never
// contend with anything.
type noiseRand struct {
	state uint32
}

// Fallback seed for the zero state xorshift32 cannot leave.
const NOISE_RNG_SEED = 0x9E3779B9

func newNoiseRand(seed uint32) noiseRand {
	if seed == 0 {
		seed = NOISE_RNG_SEED
	}
	return noiseRand{state: seed}
}

//go:nosplit
func (r *noiseRand) next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// uniform returns a sample in [-1, 1).
//
//go:nosplit
func (r *noiseRand) uniform() float32 {
	return float32(int32(r.next())) * (1.0 / (1 << 31))
}

// seedSeq decorrelates generators constructed in the same clock tick.
var seedSeq atomic.Uint32

// nextSeed mixes the wall clock through a splitmix32 step so that every
// RenderState gets an independent stream.
func nextSeed() uint32 {
	x := uint32(time.Now().UnixNano()) + seedSeq.Add(0x9E3779B9)
	x ^= x >> 16
	x *= 0x21F0AAAD
	x ^= x >> 15
	x *= 0x735A2D97
	x ^= x >> 15
	return x
}
