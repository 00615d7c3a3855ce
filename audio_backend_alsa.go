//go:build alsa && linux && cgo

// audio_backend_alsa.go - Direct ALSA audio output implementation

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

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* openPCM(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int setupPCM(snd_pcm_t* handle, unsigned int rate) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_FLOAT);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_channels(handle, params, 1);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_rate(handle, params, rate, 0);
    if (err < 0) return err;

    err = snd_pcm_hw_params(handle, params);
    if (err < 0) return err;

    return snd_pcm_prepare(handle);
}

static int writePCM(snd_pcm_t* handle, float* buffer, int frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void closePCM(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drain(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

// ALSA chunk size. 441 frames = 10ms at 44.1kHz, matching the oto cadence.
const ALSA_CHUNK_FRAMES = 441

// ALSAOutput writes to the default PCM device from a dedicated writer
// goroutine that pulls from the source. snd_pcm_writei blocks until the
// device accepts the chunk, so the device clock paces the pulls.
type ALSAOutput struct {
	handle  *C.snd_pcm_t
	src     SampleSource
	samples []float32
	stopCh  chan struct{}
	wg      sync.WaitGroup
	started bool
	mutex   sync.Mutex
}

func newALSAOutput(sampleRate int, src SampleSource) (*ALSAOutput, error) {
	var cerr C.int
	dev := C.CString("default")
	defer C.free(unsafe.Pointer(dev))

	handle := C.openPCM(dev, &cerr)
	if cerr < 0 {
		return nil, fmt.Errorf("alsa: failed to open PCM device: %s", C.GoString(C.snd_strerror(cerr)))
	}

	if cerr = C.setupPCM(handle, C.uint(sampleRate)); cerr < 0 {
		C.closePCM(handle)
		return nil, fmt.Errorf("alsa: failed to setup PCM: %s", C.GoString(C.snd_strerror(cerr)))
	}

	return &ALSAOutput{
		handle:  handle,
		src:     src,
		samples: make([]float32, ALSA_CHUNK_FRAMES),
	}, nil
}

func (ao *ALSAOutput) Start() error {
	ao.mutex.Lock()
	defer ao.mutex.Unlock()

	if ao.started || ao.handle == nil {
		return nil
	}
	ao.stopCh = make(chan struct{})
	ao.started = true
	stopCh := ao.stopCh

	ao.wg.Add(1)
	go func() {
		defer ao.wg.Done()
		for {
			select {
			case <-stopCh:
				return
			default:
			}

			for i := range ao.samples {
				ao.samples[i] = ao.src.ReadSample()
			}
			frames := C.writePCM(ao.handle, (*C.float)(unsafe.Pointer(&ao.samples[0])), C.int(len(ao.samples)))
			if frames == -C.EPIPE {
				// Underrun; recover and carry on
				C.snd_pcm_prepare(ao.handle)
			}
		}
	}()
	return nil
}

// Stop joins the writer goroutine before returning, so no ReadSample call
// can land after Stop.
func (ao *ALSAOutput) Stop() error {
	ao.mutex.Lock()
	defer ao.mutex.Unlock()

	if !ao.started {
		return nil
	}
	close(ao.stopCh)
	ao.wg.Wait()
	ao.started = false
	return nil
}

func (ao *ALSAOutput) Close() error {
	if err := ao.Stop(); err != nil {
		return err
	}
	ao.mutex.Lock()
	defer ao.mutex.Unlock()

	if ao.handle != nil {
		C.closePCM(ao.handle)
		ao.handle = nil
	}
	return nil
}

func (ao *ALSAOutput) IsStarted() bool {
	ao.mutex.Lock()
	defer ao.mutex.Unlock()
	return ao.started
}
