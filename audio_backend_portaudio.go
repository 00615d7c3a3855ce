//go:build portaudio

// audio_backend_portaudio.go - PortAudio output implementation

package main

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// One PortAudio session per process, initialized on first use.
var (
	paInitOnce sync.Once
	paInitErr  error
)

func portAudioSession() error {
	paInitOnce.Do(func() {
		paInitErr = portaudio.Initialize()
	})
	return paInitErr
}

const PA_FRAMES_PER_BUFFER = 512

// PortAudioOutput pulls samples inside the PortAudio callback, which runs
// on the library's real-time thread.
type PortAudioOutput struct {
	stream *portaudio.Stream
	src    SampleSource
	live   atomic.Bool // Atomic for lock-free callback checks
	mutex  sync.Mutex  // Only for setup/control operations
}

func newPortAudioOutput(sampleRate int, src SampleSource) (*PortAudioOutput, error) {
	if err := portAudioSession(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}

	po := &PortAudioOutput{src: src}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), PA_FRAMES_PER_BUFFER, po.callback)
	if err != nil {
		return nil, fmt.Errorf("portaudio: failed to open stream: %w", err)
	}
	po.stream = stream
	return po, nil
}

func (po *PortAudioOutput) callback(out []float32) {
	if !po.live.Load() {
		for i := range out {
			out[i] = 0
		}
		return
	}
	for i := range out {
		out[i] = po.src.ReadSample()
	}
}

func (po *PortAudioOutput) Start() error {
	po.mutex.Lock()
	defer po.mutex.Unlock()

	if po.live.Load() || po.stream == nil {
		return nil
	}
	po.live.Store(true)
	if err := po.stream.Start(); err != nil {
		po.live.Store(false)
		return fmt.Errorf("portaudio: failed to start stream: %w", err)
	}
	return nil
}

// Stop blocks until the stream has fully stopped; PortAudio guarantees the
// callback is not running once Stream.Stop returns.
func (po *PortAudioOutput) Stop() error {
	po.mutex.Lock()
	defer po.mutex.Unlock()

	if !po.live.Load() {
		return nil
	}
	po.live.Store(false)
	if po.stream != nil {
		if err := po.stream.Stop(); err != nil {
			return fmt.Errorf("portaudio: failed to stop stream: %w", err)
		}
	}
	return nil
}

func (po *PortAudioOutput) Close() error {
	if err := po.Stop(); err != nil {
		return err
	}
	po.mutex.Lock()
	defer po.mutex.Unlock()

	if po.stream != nil {
		err := po.stream.Close()
		po.stream = nil
		return err
	}
	return nil
}

func (po *PortAudioOutput) IsStarted() bool {
	return po.live.Load()
}
