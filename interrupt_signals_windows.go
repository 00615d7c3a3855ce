// interrupt_signals_windows.go - Signal handling fallback for platforms without job control

//go:build windows

package main

import (
	"os"
	"os/signal"
	"sync"

	"github.com/sirupsen/logrus"
)

// SignalWatcher on Windows only reacts to interrupt; there is no
// SIGTSTP/SIGCONT job control so interruptions never fire here.
type SignalWatcher struct {
	mgr     *SessionManager
	sigCh   chan os.Signal
	quitCh  chan struct{}
	doneCh  chan struct{}
	stopped sync.Once
	log     *logrus.Entry
}

func NewSignalWatcher(mgr *SessionManager) *SignalWatcher {
	return &SignalWatcher{
		mgr:    mgr,
		sigCh:  make(chan os.Signal, 4),
		quitCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		log:    logrus.WithField("component", "signals"),
	}
}

func (w *SignalWatcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *SignalWatcher) Start() {
	signal.Notify(w.sigCh, os.Interrupt)
	go w.loop()
}

func (w *SignalWatcher) loop() {
	for {
		select {
		case sig := <-w.sigCh:
			w.log.WithField("signal", sig).Info("shutdown requested")
			w.stopped.Do(func() { close(w.doneCh) })
		case <-w.quitCh:
			return
		}
	}
}

func (w *SignalWatcher) Stop() {
	signal.Stop(w.sigCh)
	select {
	case <-w.quitCh:
	default:
		close(w.quitCh)
	}
}
