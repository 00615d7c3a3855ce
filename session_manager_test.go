// session_manager_test.go - Lifecycle policy tests: user intent vs interruptions vs timers

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
	"testing"
	"time"
)

func createTestManager(history *SessionLog) *SessionManager {
	return NewSessionManager(createTestEngine(), history)
}

// waitForState polls until the manager reaches want or the deadline passes.
// Needed wherever a transition happens on a timer goroutine.
func waitForState(t *testing.T, mgr *SessionManager, want PlaybackState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for mgr.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state never reached %v (currently %v)", want, mgr.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSession_StartStop(t *testing.T) {
	mgr := createTestManager(nil)
	defer mgr.Close()

	if mgr.State() != STATE_STOPPED {
		t.Fatalf("new manager state = %v, expected stopped", mgr.State())
	}
	if err := mgr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if mgr.State() != STATE_PLAYING {
		t.Errorf("state after Start = %v, expected playing", mgr.State())
	}
	if mgr.LastStopReason() != STOP_NONE {
		t.Errorf("stop reason after Start = %v, expected none", mgr.LastStopReason())
	}

	mgr.Stop()
	if mgr.State() != STATE_STOPPED {
		t.Errorf("state after Stop = %v, expected stopped", mgr.State())
	}
	if mgr.LastStopReason() != STOP_USER {
		t.Errorf("stop reason = %v, expected user", mgr.LastStopReason())
	}
}

func TestSession_StartIsIdempotent(t *testing.T) {
	mgr := createTestManager(nil)
	defer mgr.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := mgr.Start(); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	if mgr.State() != STATE_PLAYING {
		t.Errorf("state = %v, expected playing", mgr.State())
	}
}

func TestSession_Toggle(t *testing.T) {
	mgr := createTestManager(nil)
	defer mgr.Close()

	if err := mgr.Toggle(); err != nil {
		t.Fatalf("Toggle from stopped failed: %v", err)
	}
	if mgr.State() != STATE_PLAYING {
		t.Fatalf("state after first Toggle = %v, expected playing", mgr.State())
	}

	if err := mgr.Toggle(); err != nil {
		t.Fatalf("Toggle from playing failed: %v", err)
	}
	if mgr.State() != STATE_STOPPED {
		t.Errorf("state after second Toggle = %v, expected stopped", mgr.State())
	}
	if mgr.LastStopReason() != STOP_USER {
		t.Errorf("toggle stop reason = %v, expected user", mgr.LastStopReason())
	}
}

// Interruption arrives while playing, then the platform says resuming is
// fine: playback must come back without anyone calling Start.
func TestSession_InterruptionThenResume(t *testing.T) {
	mgr := createTestManager(nil)
	defer mgr.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	mgr.InterruptionBegan()
	if mgr.State() != STATE_STOPPED {
		t.Fatalf("state after interruption = %v, expected stopped", mgr.State())
	}
	if mgr.LastStopReason() != STOP_INTERRUPTED {
		t.Fatalf("stop reason = %v, expected interruption", mgr.LastStopReason())
	}

	mgr.InterruptionEnded(true)
	if mgr.State() != STATE_PLAYING {
		t.Errorf("state after resume = %v, expected playing", mgr.State())
	}
}

// An explicit user stop between the interruption and its end must stick:
// the user ended the session, so no auto-resume.
func TestSession_UserStopSuppressesResume(t *testing.T) {
	mgr := createTestManager(nil)
	defer mgr.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	mgr.InterruptionBegan()
	mgr.Stop()
	mgr.InterruptionEnded(true)

	if mgr.State() != STATE_STOPPED {
		t.Errorf("state = %v, expected stopped after explicit user stop", mgr.State())
	}
	if mgr.LastStopReason() != STOP_USER {
		t.Errorf("stop reason = %v, expected user", mgr.LastStopReason())
	}
}

// shouldResume=false consumes the interrupted marker, so a stale resume
// signal arriving afterwards cannot restart playback either.
func TestSession_ResumeFlagFalseConsumesMarker(t *testing.T) {
	mgr := createTestManager(nil)
	defer mgr.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	mgr.InterruptionBegan()
	mgr.InterruptionEnded(false)
	if mgr.State() != STATE_STOPPED {
		t.Fatalf("state = %v, expected stopped when resume not permitted", mgr.State())
	}

	mgr.InterruptionEnded(true)
	if mgr.State() != STATE_STOPPED {
		t.Errorf("stale resume signal restarted playback")
	}
}

func TestSession_InterruptionWhileStoppedIsNoop(t *testing.T) {
	mgr := createTestManager(nil)
	defer mgr.Close()

	mgr.Stop() // Record a user stop with nothing playing
	mgr.InterruptionBegan()

	if mgr.LastStopReason() != STOP_USER {
		t.Errorf("interruption while stopped overwrote stop reason: %v", mgr.LastStopReason())
	}
	mgr.InterruptionEnded(true)
	if mgr.State() != STATE_STOPPED {
		t.Errorf("interruption pair while stopped started playback")
	}
}

func TestSession_SleepTimerStopsPlayback(t *testing.T) {
	mgr := createTestManager(nil)
	defer mgr.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	mgr.SetSleepTimer(30 * time.Millisecond)
	if mgr.SleepTimerRemaining() <= 0 {
		t.Error("armed timer reports no time remaining")
	}

	waitForState(t, mgr, STATE_STOPPED)
	if mgr.LastStopReason() != STOP_TIMER {
		t.Errorf("stop reason = %v, expected timer", mgr.LastStopReason())
	}
	if mgr.SleepTimerRemaining() != 0 {
		t.Errorf("fired timer still reports %v remaining", mgr.SleepTimerRemaining())
	}
}

func TestSession_SleepTimerCancel(t *testing.T) {
	mgr := createTestManager(nil)
	defer mgr.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	mgr.SetSleepTimer(20 * time.Millisecond)
	mgr.CancelSleepTimer()
	if mgr.SleepTimerRemaining() != 0 {
		t.Errorf("cancelled timer reports %v remaining", mgr.SleepTimerRemaining())
	}

	time.Sleep(60 * time.Millisecond)
	if mgr.State() != STATE_PLAYING {
		t.Errorf("cancelled timer still stopped playback")
	}
}

// A sleep timer that fires after the user already stopped must not record
// a second session or change the stop reason.
func TestSession_SleepTimerAfterStopIsNoop(t *testing.T) {
	mgr := createTestManager(nil)
	defer mgr.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	mgr.SetSleepTimer(20 * time.Millisecond)
	mgr.Stop()

	time.Sleep(60 * time.Millisecond)
	if mgr.LastStopReason() != STOP_USER {
		t.Errorf("timer overwrote user stop reason: %v", mgr.LastStopReason())
	}
}

func TestSession_RecordsHistory(t *testing.T) {
	history, err := OpenSessionLog(tempConfigPath(t, SESSION_LOG_FILE_NAME))
	if err != nil {
		t.Fatalf("OpenSessionLog failed: %v", err)
	}
	mgr := createTestManager(history)
	defer mgr.Close()

	mgr.Engine().SetNoiseColor(NOISE_PINK)
	if err := mgr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	mgr.Stop()

	entries := history.Entries()
	if len(entries) != 1 {
		t.Fatalf("recorded %d sessions, expected 1", len(entries))
	}
	e := entries[0]
	if e.Reason != "user" {
		t.Errorf("recorded reason = %q, expected user", e.Reason)
	}
	if e.Color != "pink" {
		t.Errorf("recorded color = %q, expected pink", e.Color)
	}
	if e.EndedAt.Before(e.StartedAt) {
		t.Errorf("session ends before it starts: %v .. %v", e.StartedAt, e.EndedAt)
	}
}

// Interruption and timer stops record their own reason codes.
func TestSession_RecordsNonUserReasons(t *testing.T) {
	history, err := OpenSessionLog(tempConfigPath(t, SESSION_LOG_FILE_NAME))
	if err != nil {
		t.Fatalf("OpenSessionLog failed: %v", err)
	}
	mgr := createTestManager(history)
	defer mgr.Close()

	if err := mgr.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	mgr.InterruptionBegan()

	if err := mgr.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	mgr.StopWithReason(STOP_TIMER)

	entries := history.Entries()
	if len(entries) != 2 {
		t.Fatalf("recorded %d sessions, expected 2", len(entries))
	}
	if entries[0].Reason != "interruption" {
		t.Errorf("first reason = %q, expected interruption", entries[0].Reason)
	}
	if entries[1].Reason != "timer" {
		t.Errorf("second reason = %q, expected timer", entries[1].Reason)
	}
}

// A stop with nothing playing must not append a session entry.
func TestSession_NoHistoryEntryWithoutPlayback(t *testing.T) {
	history, err := OpenSessionLog(tempConfigPath(t, SESSION_LOG_FILE_NAME))
	if err != nil {
		t.Fatalf("OpenSessionLog failed: %v", err)
	}
	mgr := createTestManager(history)
	defer mgr.Close()

	mgr.Stop()
	if n := len(history.Entries()); n != 0 {
		t.Errorf("recorded %d sessions without playback", n)
	}
}

func TestStopReason_String(t *testing.T) {
	cases := map[StopReason]string{
		STOP_NONE:        "none",
		STOP_USER:        "user",
		STOP_INTERRUPTED: "interruption",
		STOP_TIMER:       "timer",
		STOP_SCRIPT:      "script",
	}
	for reason, want := range cases {
		if got := reason.String(); got != want {
			t.Errorf("StopReason(%d).String() = %q, expected %q", reason, got, want)
		}
	}
}
