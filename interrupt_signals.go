// interrupt_signals.go - Maps POSIX job control and termination signals to session events

//go:build !windows

package main

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

// SignalWatcher translates process signals into session lifecycle calls.
// SIGTSTP is an interruption beginning (playback stops, then the process
// genuinely suspends), SIGCONT is the interruption ending with resume.
// SIGINT and SIGTERM close the Done channel so main can shut down.
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

// Done is closed when SIGINT or SIGTERM arrives.
func (w *SignalWatcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *SignalWatcher) Start() {
	signal.Notify(w.sigCh,
		syscall.SIGTSTP,
		syscall.SIGCONT,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	go w.loop()
}

func (w *SignalWatcher) loop() {
	for {
		select {
		case sig := <-w.sigCh:
			w.handle(sig)
		case <-w.quitCh:
			return
		}
	}
}

func (w *SignalWatcher) handle(sig os.Signal) {
	switch sig {
	case syscall.SIGTSTP:
		w.log.Debug("SIGTSTP")
		w.mgr.InterruptionBegan()
		w.suspend()
	case syscall.SIGCONT:
		w.log.Debug("SIGCONT")
		w.mgr.InterruptionEnded(true)
	case syscall.SIGINT, syscall.SIGTERM:
		w.log.WithField("signal", sig).Info("shutdown requested")
		w.stopped.Do(func() { close(w.doneCh) })
	}
}

// suspend re-raises SIGTSTP with the default action restored so the
// process actually stops. When the shell continues us, SIGCONT lands
// on sigCh and handle resumes playback; TSTP is re-armed afterwards.
func (w *SignalWatcher) suspend() {
	signal.Reset(syscall.SIGTSTP)
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGTSTP)
	signal.Notify(w.sigCh, syscall.SIGTSTP)
}

// Stop unregisters the handlers and joins the watcher goroutine.
func (w *SignalWatcher) Stop() {
	signal.Stop(w.sigCh)
	select {
	case <-w.quitCh:
	default:
		close(w.quitCh)
	}
}
