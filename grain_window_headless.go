//go:build headless

// grain_window_headless.go - Stub so headless builds link without Ebiten

package main

import "errors"

var errNoGUI = errors.New("grain window not available in headless build")

type GrainWindow struct {
	done chan struct{}
}

func NewGrainWindow(_ *SessionManager, _ *PresetStore) (*GrainWindow, error) {
	return nil, errNoGUI
}

func (gw *GrainWindow) Start() error {
	return errNoGUI
}

func (gw *GrainWindow) Stop() error {
	return nil
}

func (gw *GrainWindow) Close() error {
	return nil
}

func (gw *GrainWindow) Done() <-chan struct{} {
	if gw.done == nil {
		gw.done = make(chan struct{})
		close(gw.done)
	}
	return gw.done
}
