//go:build !windows

package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// TerminalHost reads raw stdin and maps single keys onto session control.
// Only instantiated in main.go for interactive use, never in tests.
type TerminalHost struct {
	mgr          *SessionManager
	store        *PresetStore
	stopCh       chan struct{}
	done         chan struct{}
	quit         chan struct{}
	stopped      sync.Once
	quitOnce     sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

// NewTerminalHost creates a host adapter that drives the session manager
// from stdin key presses.
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

// Start sets stdin to raw non-blocking mode and begins polling for keys
// in a goroutine. Call Stop() to restore stdin.
func (h *TerminalHost) Start() {
	h.fd = int(os.Stdin.Fd())

	fmt.Println("space play/stop | 1 white 2 pink 3 brown | -/+ volume | [/] cutoff | s save preset | q quit")

	// Raw mode disables OS-level echo and line buffering so keys act
	// immediately without Enter.
	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "terminal_host: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		close(h.done)
		return
	}
	h.nonblockSet = true

	h.printStatus()

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)
		lastPaint := time.Now()

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := syscall.Read(h.fd, buf)
			if n > 0 {
				if h.handleKey(buf[0]) {
					h.quitOnce.Do(func() { close(h.quit) })
					return
				}
				h.printStatus()
				lastPaint = time.Now()
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				// Periodic repaint keeps the timer countdown live.
				if time.Since(lastPaint) > 500*time.Millisecond {
					h.printStatus()
					lastPaint = time.Now()
				}
				time.Sleep(5 * time.Millisecond)
				continue
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

// printStatus repaints the single status line in place.
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

// printLine writes a transient message above the status line. Raw mode
// needs the explicit CR.
func (h *TerminalHost) printLine(s string) {
	fmt.Printf("\r\033[2K%s\r\n", s)
}

// Stop terminates the polling goroutine and restores stdin.
func (h *TerminalHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
	fmt.Println()
}
