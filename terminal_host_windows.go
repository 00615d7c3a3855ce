//go:build windows

package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// TerminalHost reads raw stdin and maps single keys onto session control.
// The Windows variant uses blocking reads; there is no fcntl nonblock here.
type TerminalHost struct {
	mgr          *SessionManager
	store        *PresetStore
	stopCh       chan struct{}
	done         chan struct{}
	quit         chan struct{}
	stopped      sync.Once
	quitOnce     sync.Once
	fd           int
	oldTermState *term.State
}

func NewTerminalHost(mgr *SessionManager, store *PresetStore) *TerminalHost {
	return &TerminalHost{
		mgr:    mgr,
		store:  store,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
	}
}

// Quit is closed when the user presses q (or Ctrl+C, which raw mode
// delivers as a plain byte).
func (h *TerminalHost) Quit() <-chan struct{} {
	return h.quit
}

// Start sets stdin to raw mode and begins reading in a goroutine.
// Call Stop() to restore stdin.
func (h *TerminalHost) Start() {
	h.fd = int(os.Stdin.Fd())

	fmt.Println("space play/stop | 1 white 2 pink 3 brown | -/+ volume | [/] cutoff | s save preset | q quit")

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	h.printStatus()

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if h.handleKey(buf[0]) {
					h.quitOnce.Do(func() { close(h.quit) })
					return
				}
				h.printStatus()
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
}

// handleKey applies one key press. Returns true when the key quits.
func (h *TerminalHost) handleKey(b byte) bool {
	e := h.mgr.Engine()
	switch b {
	case 'q', 'Q', 0x03:
		return true
	case ' ':
		if err := h.mgr.Toggle(); err != nil {
			h.printLine("start failed: " + err.Error())
		}
	case '1':
		e.SetNoiseColor(NOISE_WHITE)
	case '2':
		e.SetNoiseColor(NOISE_PINK)
	case '3':
		e.SetNoiseColor(NOISE_BROWN)
	case '-', '_':
		e.SetVolume(e.Volume() - VOLUME_STEP)
	case '+', '=':
		e.SetVolume(e.Volume() + VOLUME_STEP)
	case '[':
		e.SetFilterCutoff(e.FilterCutoff() / CUTOFF_STEP_RATIO)
	case ']':
		e.SetFilterCutoff(e.FilterCutoff() * CUTOFF_STEP_RATIO)
	case 's', 'S':
		h.savePreset()
	}
	return false
}

func (h *TerminalHost) savePreset() {
	if h.store == nil {
		h.printLine("no preset store")
		return
	}
	p := PresetFromEngine(QUICK_PRESET_NAME, h.mgr.Engine())
	if err := h.store.Save(p); err != nil {
		h.printLine("save failed: " + err.Error())
		return
	}
	h.printLine("preset '" + QUICK_PRESET_NAME + "' saved")
}

func (h *TerminalHost) printStatus() {
	e := h.mgr.Engine()
	line := fmt.Sprintf("[%s] %-5s  vol %3.0f%%  cutoff %5.0f Hz",
		strings.ToUpper(h.mgr.State().String()),
		e.Color().String(), e.Volume()*100, e.FilterCutoff())
	if left := h.mgr.SleepTimerRemaining(); left > 0 {
		line += "  timer " + left.Round(time.Second).String()
	}
	fmt.Printf("\r\033[2K%s", line)
}

func (h *TerminalHost) printLine(s string) {
	fmt.Printf("\r\033[2K%s\r\n", s)
}

// Stop terminates the reading goroutine and restores terminal state.
// The blocking read means the goroutine may not exit until one more
// key arrives; stdin restore happens regardless.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	select {
	case <-h.done:
	case <-time.After(250 * time.Millisecond):
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
	fmt.Println()
}
