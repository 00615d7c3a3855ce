package main

import (
	"sync"
	"testing"
	"time"
)

// TestEngine_ConcurrentControlAndRender stresses the control/render split:
// the null backend's pacer pulls ReadSample while control goroutines hammer
// every setter and accessor, including full Toggle cycles.
// The test itself has no assertions - the race detector is the oracle.
// Run with: go test -race -run TestEngine_ConcurrentControlAndRender -count=1
func TestEngine_ConcurrentControlAndRender(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Backend = AUDIO_BACKEND_NULL
	e := NewAudioEngine(cfg)

	if err := e.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Goroutine 1: parameter writer - volume, cutoff, resonance, color
	wg.Add(1)
	go func() {
		defer wg.Done()
		colors := []NoiseColor{NOISE_WHITE, NOISE_PINK, NOISE_BROWN}
		iter := 0
		for {
			select {
			case <-stop:
				return
			default:
			}
			e.SetVolume(float32(iter%100) / 100)
			e.SetFilterCutoff(float32(200 + iter%19800))
			e.SetFilterResonance(float32(iter%10) / 10)
			e.SetNoiseColor(colors[iter%len(colors)])
			iter++
		}
	}()

	// Goroutine 2: display reader - the accessors a UI polls every frame
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_ = e.State()
			_ = e.Volume()
			_ = e.FilterCutoff()
			_ = e.FilterResonance()
			_ = e.Color()
		}
	}()

	// Goroutine 3: lifecycle churn - full stop/start cycles under load
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_ = e.Toggle()
			time.Sleep(time.Millisecond)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	close(stop)
	wg.Wait()
	e.Stop()
}

// TestRenderState_ConcurrentColorSwitch stresses the packed color/epoch word:
// one render context pulling samples against control goroutines switching
// color and resetting. No assertions - run under -race.
func TestRenderState_ConcurrentColorSwitch(t *testing.T) {
	rs := NewRenderState()

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// The single render context
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			rs.NextSample()
		}
	}()

	// Control context: color switches and resets
	wg.Add(1)
	go func() {
		defer wg.Done()
		colors := []NoiseColor{NOISE_WHITE, NOISE_PINK, NOISE_BROWN}
		iter := 0
		for {
			select {
			case <-stop:
				return
			default:
			}
			rs.SetColor(colors[iter%len(colors)])
			if iter%7 == 0 {
				rs.Reset()
			}
			iter++
		}
	}()

	// Display context: color reads
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_ = rs.Color()
		}
	}()

	time.Sleep(100 * time.Millisecond)
	close(stop)
	wg.Wait()
}
