// audio_backend_null.go - Device-free backend that drains samples in real time

package main

import (
	"sync"
	"sync/atomic"
	"time"
)

// NullOutput pulls from the source at the configured sample rate without
// touching any audio device. It keeps the full control/render split of the
// real backends - pulls happen on a dedicated pacer goroutine - which makes
// it the reference backend for lifecycle tests and -backend null dry runs.
type NullOutput struct {
	src        SampleSource
	sampleRate int
	pulls      atomic.Uint64 // Samples drained since construction
	live       atomic.Bool   // Atomic for lock-free pacer checks
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mutex      sync.Mutex // Only for setup/control operations
}

// Pacer period. 10ms matches the oto buffer cadence.
const NULL_OUTPUT_TICK = 10 * time.Millisecond

func NewNullOutput(sampleRate int, src SampleSource) *NullOutput {
	return &NullOutput{
		src:        src,
		sampleRate: sampleRate,
	}
}

func (no *NullOutput) Start() error {
	no.mutex.Lock()
	defer no.mutex.Unlock()

	if no.live.Load() {
		return nil
	}
	no.stopCh = make(chan struct{})
	no.live.Store(true)

	perTick := no.sampleRate / int(time.Second/NULL_OUTPUT_TICK)
	stopCh := no.stopCh

	no.wg.Add(1)
	go func() {
		defer no.wg.Done()
		ticker := time.NewTicker(NULL_OUTPUT_TICK)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				for i := 0; i < perTick; i++ {
					no.src.ReadSample()
				}
				no.pulls.Add(uint64(perTick))
			}
		}
	}()
	return nil
}

// Stop joins the pacer goroutine before returning, so no ReadSample call
// can land after Stop.
func (no *NullOutput) Stop() error {
	no.mutex.Lock()
	defer no.mutex.Unlock()

	if !no.live.Load() {
		return nil
	}
	no.live.Store(false)
	close(no.stopCh)
	no.wg.Wait()
	return nil
}

func (no *NullOutput) Close() error {
	return no.Stop()
}

func (no *NullOutput) IsStarted() bool {
	return no.live.Load()
}

// Pulls reports how many samples have been drained in total.
func (no *NullOutput) Pulls() uint64 {
	return no.pulls.Load()
}
