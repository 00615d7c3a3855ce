//go:build !headless

// audio_backend_oto.go - OTO v3 audio output implementation

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
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process; every OtoOutput shares it.
var (
	otoCtxOnce sync.Once
	otoCtx     *oto.Context
	otoCtxRate int
	otoCtxErr  error
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
			BufferSize:   10 * time.Millisecond,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoCtxErr = err
			return
		}
		<-ready
		otoCtx = ctx
		otoCtxRate = sampleRate
	})
	if otoCtxErr != nil {
		return nil, otoCtxErr
	}
	if sampleRate != otoCtxRate {
		return nil, fmt.Errorf("oto context already opened at %d Hz, cannot reopen at %d Hz", otoCtxRate, sampleRate)
	}
	return otoCtx, nil
}

type OtoOutput struct {
	ctx       *oto.Context
	player    *oto.Player
	src       SampleSource
	sampleBuf []float32    // Pre-allocated sample buffer
	live      atomic.Bool  // Atomic for lock-free Read()
	reading   atomic.Int32 // Reads currently in flight; Stop drains to zero
	mutex     sync.Mutex   // Only for setup/control operations
}

func newOtoOutput(sampleRate int, src SampleSource) (*OtoOutput, error) {
	ctx, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("oto: %w", err)
	}

	return &OtoOutput{
		ctx: ctx,
		src: src,
		// Typical oto pull is 4096 bytes = 1024 float32 samples
		sampleBuf: make([]float32, 4096),
	}, nil
}

// Read fills p with float32 LE samples pulled from the source. This is the
// render context: oto calls it from its playback goroutine on a deadline.
func (o *OtoOutput) Read(p []byte) (n int, err error) {
	o.reading.Add(1)
	defer o.reading.Add(-1)

	// Check the live flag atomically - no lock on the hot path. After Stop
	// flips it, the source is never pulled again; any tail reads get
	// silence.
	if !o.live.Load() {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	numSamples := len(p) / 4

	// Should not grow after construction; kept as a guard for odd pull sizes
	if len(o.sampleBuf) < numSamples {
		o.sampleBuf = make([]float32, numSamples)
	}
	samples := o.sampleBuf[:numSamples]

	for i := 0; i < numSamples; i++ {
		samples[i] = o.src.ReadSample()
	}

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(p)])
	return len(p), nil
}

func (o *OtoOutput) Start() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.live.Load() {
		return nil
	}
	if o.player == nil {
		o.player = o.ctx.NewPlayer(o)
	}
	o.live.Store(true)
	o.player.Play()
	return nil
}

// Stop is synchronous: once it returns, the source sees no further pulls.
// Flipping the live flag silences new reads, but a Read that was already
// past the flag check may still be pulling samples, so Stop waits out the
// in-flight counter before returning.
func (o *OtoOutput) Stop() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if !o.live.Load() {
		return nil
	}
	o.live.Store(false)

	var err error
	if o.player != nil {
		err = o.player.Close()
		o.player = nil
	}
	for o.reading.Load() != 0 {
		time.Sleep(time.Millisecond)
	}
	return err
}

func (o *OtoOutput) Close() error {
	return o.Stop()
}

func (o *OtoOutput) IsStarted() bool {
	return o.live.Load()
}
