// session_manager.go - Session lifecycle: user intent vs interruptions vs timers

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
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Step sizes shared by the keyboard control surfaces.
const (
	VOLUME_STEP       = 0.05
	CUTOFF_STEP_RATIO = 1.25
)

// StopReason records why the last session ended. The distinction matters
// for auto-resume: only an interruption-initiated stop may be resumed
// when the interruption ends. A user stop always sticks.
type StopReason uint32

const (
	STOP_NONE StopReason = iota
	STOP_USER
	STOP_INTERRUPTED
	STOP_TIMER
	STOP_SCRIPT
)

func (r StopReason) String() string {
	switch r {
	case STOP_USER:
		return "user"
	case STOP_INTERRUPTED:
		return "interruption"
	case STOP_TIMER:
		return "timer"
	case STOP_SCRIPT:
		return "script"
	default:
		return "none"
	}
}

// SessionManager wraps the engine with lifecycle policy. All host surfaces
// route start/stop intent through here so that interruption handling, the
// sleep timer and the session history see a single consistent story.
type SessionManager struct {
	engine  *AudioEngine
	history *SessionLog // Optional; nil disables session recording

	mutex     sync.Mutex
	lastStop  StopReason
	startedAt time.Time
	timer     *time.Timer
	deadline  time.Time

	log *logrus.Entry
}

func NewSessionManager(engine *AudioEngine, history *SessionLog) *SessionManager {
	return &SessionManager{
		engine:  engine,
		history: history,
		log:     logrus.WithField("component", "session"),
	}
}

func (m *SessionManager) Engine() *AudioEngine {
	return m.engine
}

func (m *SessionManager) State() PlaybackState {
	return m.engine.State()
}

func (m *SessionManager) LastStopReason() StopReason {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.lastStop
}

// Start begins a session. Idempotent while playing. A successful start
// clears any prior stop reason.
func (m *SessionManager) Start() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.startLocked()
}

func (m *SessionManager) startLocked() error {
	if m.engine.State() == STATE_PLAYING {
		return nil
	}
	if err := m.engine.Start(); err != nil {
		return err
	}
	m.startedAt = time.Now()
	m.lastStop = STOP_NONE
	return nil
}

// Stop is the user pressing stop. It is recorded even when nothing is
// playing, so that an interruption which already stopped playback does
// not auto-resume over the user's head later.
func (m *SessionManager) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.stopLocked(STOP_USER)
}

// StopWithReason stops on behalf of a non-user actor (timer, script).
func (m *SessionManager) StopWithReason(reason StopReason) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.stopLocked(reason)
}

func (m *SessionManager) stopLocked(reason StopReason) {
	if m.engine.State() == STATE_PLAYING {
		entry := SessionEntry{
			StartedAt: m.startedAt,
			EndedAt:   time.Now(),
			Color:     m.engine.Color().String(),
			Volume:    m.engine.Volume(),
			CutoffHz:  m.engine.FilterCutoff(),
			Reason:    reason.String(),
		}
		m.engine.Stop()
		m.record(entry)
	}
	m.lastStop = reason
}

func (m *SessionManager) record(entry SessionEntry) {
	if m.history == nil {
		return
	}
	if err := m.history.Append(entry); err != nil {
		m.log.WithError(err).Warn("failed to record session")
	}
}

// Toggle maps a transport key to user intent.
func (m *SessionManager) Toggle() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.engine.State() == STATE_PLAYING {
		m.stopLocked(STOP_USER)
		return nil
	}
	return m.startLocked()
}

// InterruptionBegan stops playback when something external claims the
// output (another app, an incoming call, SIGTSTP). No-op when stopped;
// in particular it never overwrites a user stop.
func (m *SessionManager) InterruptionBegan() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.engine.State() != STATE_PLAYING {
		return
	}
	m.log.Info("interruption began")
	m.stopLocked(STOP_INTERRUPTED)
}

// InterruptionEnded resumes playback only when the interruption itself
// was what stopped it and the platform says resuming is appropriate.
// Either way the interrupted marker is consumed, so a stale resume
// signal arriving later cannot restart playback.
func (m *SessionManager) InterruptionEnded(shouldResume bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.lastStop != STOP_INTERRUPTED {
		return
	}
	if !shouldResume {
		m.lastStop = STOP_NONE
		return
	}
	m.log.Info("interruption ended, resuming")
	if err := m.startLocked(); err != nil {
		m.log.WithError(err).Warn("auto-resume failed")
	}
}

// SetSleepTimer arms (or re-arms) a timer that performs a timer stop
// after d. A non-positive d cancels any pending timer.
func (m *SessionManager) SetSleepTimer(d time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.deadline = time.Time{}
	if d <= 0 {
		return
	}
	m.deadline = time.Now().Add(d)
	m.timer = time.AfterFunc(d, m.sleepTimerFired)
	m.log.WithField("duration", d).Info("sleep timer armed")
}

func (m *SessionManager) CancelSleepTimer() {
	m.SetSleepTimer(0)
}

// SleepTimerRemaining reports time left on the armed timer, zero if none.
func (m *SessionManager) SleepTimerRemaining() time.Duration {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.deadline.IsZero() {
		return 0
	}
	left := time.Until(m.deadline)
	if left < 0 {
		return 0
	}
	return left
}

func (m *SessionManager) sleepTimerFired() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.timer = nil
	m.deadline = time.Time{}
	if m.engine.State() != STATE_PLAYING {
		return
	}
	m.log.Info("sleep timer expired")
	m.stopLocked(STOP_TIMER)
}

// Close cancels the sleep timer and stops playback for shutdown.
func (m *SessionManager) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.deadline = time.Time{}
	m.stopLocked(STOP_USER)
}
