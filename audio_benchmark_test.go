// audio_benchmark_test.go - Performance benchmarks for the render path

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
	"testing"
)

// createBenchmarkEngine creates an engine configured for benchmarking
// without an audio device (null backend, no live stream)
func createBenchmarkEngine(c NoiseColor) *AudioEngine {
	cfg := DefaultEngineConfig()
	cfg.Backend = AUDIO_BACKEND_NULL
	cfg.Color = c
	cfg.Volume = 0.8
	return NewAudioEngine(cfg)
}

// BenchmarkEngine_ReadSample_White benchmarks the simplest render path:
// one RNG draw, bypassed filter, gain, clamp
func BenchmarkEngine_ReadSample_White(b *testing.B) {
	e := createBenchmarkEngine(NOISE_WHITE)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = e.ReadSample()
	}
}

// BenchmarkEngine_ReadSample_Pink benchmarks the octave-row generator,
// the most work per sample of the three colors
func BenchmarkEngine_ReadSample_Pink(b *testing.B) {
	e := createBenchmarkEngine(NOISE_PINK)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = e.ReadSample()
	}
}

// BenchmarkEngine_ReadSample_Brown benchmarks the clamped walk
func BenchmarkEngine_ReadSample_Brown(b *testing.B) {
	e := createBenchmarkEngine(NOISE_BROWN)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = e.ReadSample()
	}
}

// BenchmarkEngine_ReadSample_Filtered benchmarks with the SVF engaged,
// which the open-cutoff benchmarks bypass
func BenchmarkEngine_ReadSample_Filtered(b *testing.B) {
	e := createBenchmarkEngine(NOISE_WHITE)
	e.SetFilterCutoff(1200)
	e.SetFilterResonance(0.4)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = e.ReadSample()
	}
}

// BenchmarkRenderState_NextSample_Pink benchmarks the raw generator without
// the engine wrapping
func BenchmarkRenderState_NextSample_Pink(b *testing.B) {
	rs := NewRenderState()
	rs.SetColor(NOISE_PINK)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = rs.NextSample()
	}
}

// BenchmarkNoiseRand_Uniform benchmarks one xorshift32 draw
func BenchmarkNoiseRand_Uniform(b *testing.B) {
	rng := newNoiseRand(goldenSeed)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = rng.uniform()
	}
}

// BenchmarkFillGrain benchmarks one full frame of the grain raster
func BenchmarkFillGrain(b *testing.B) {
	pix := make([]byte, GRAIN_W*GRAIN_H*4)
	rng := newNoiseRand(goldenSeed)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		fillGrain(pix, NOISE_WHITE, 0.5, &rng)
	}
}
