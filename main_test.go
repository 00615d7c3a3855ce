package main

import (
	"strings"
	"testing"
	"time"
)

func TestParseSleepFlag(t *testing.T) {
	d, err := parseSleepFlag("")
	if err != nil || d != 0 {
		t.Errorf("empty flag: got (%v, %v), expected (0, nil)", d, err)
	}

	d, err = parseSleepFlag("45m")
	if err != nil || d != 45*time.Minute {
		t.Errorf("45m: got (%v, %v), expected (45m, nil)", d, err)
	}

	if _, err := parseSleepFlag("-10m"); err == nil {
		t.Error("negative duration accepted")
	}
	if _, err := parseSleepFlag("later"); err == nil {
		t.Error("garbage duration accepted")
	}
}

func TestApplyStartupPreset_ShareString(t *testing.T) {
	e := createTestEngine()
	if err := applyStartupPreset(e, nil, "tuneout://brown/0.4/1500"); err != nil {
		t.Fatalf("share string rejected: %v", err)
	}
	if e.Color() != NOISE_BROWN {
		t.Errorf("color = %v, expected brown", e.Color())
	}
	if e.Volume() != 0.4 {
		t.Errorf("volume = %v, expected 0.4", e.Volume())
	}
}

func TestApplyStartupPreset_MissingStore(t *testing.T) {
	e := createTestEngine()
	if err := applyStartupPreset(e, nil, "sleep"); err == nil {
		t.Error("named preset without a store accepted")
	}
}

func TestFormatHistory(t *testing.T) {
	history, err := OpenSessionLog(tempConfigPath(t, SESSION_LOG_FILE_NAME))
	if err != nil {
		t.Fatalf("OpenSessionLog failed: %v", err)
	}

	start := time.Date(2026, 8, 29, 21, 0, 0, 0, time.UTC)
	for i, reason := range []string{"user", "timer", "interruption"} {
		entry := testEntry(start.Add(time.Duration(i)*time.Hour), 20*time.Minute, reason)
		if err := history.Append(entry); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	out := formatHistory(history, 2)

	// Only the two newest sessions appear, plus the all-time total.
	if strings.Contains(out, "user") {
		t.Errorf("oldest session leaked into a 2-row table:\n%s", out)
	}
	for _, want := range []string{"timer", "interruption", "pink", "total listening: 1h0m0s over 3 sessions"} {
		if !strings.Contains(out, want) {
			t.Errorf("history table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatHistory_Empty(t *testing.T) {
	history, err := OpenSessionLog(tempConfigPath(t, SESSION_LOG_FILE_NAME))
	if err != nil {
		t.Fatalf("OpenSessionLog failed: %v", err)
	}
	if out := formatHistory(history, 10); !strings.Contains(out, "no recorded sessions") {
		t.Errorf("empty history table = %q", out)
	}
	if out := formatHistory(nil, 10); !strings.Contains(out, "disabled") {
		t.Errorf("nil history table = %q", out)
	}
}

func TestParseBackend(t *testing.T) {
	cases := map[string]int{
		"oto":       AUDIO_BACKEND_OTO,
		"null":      AUDIO_BACKEND_NULL,
		"alsa":      AUDIO_BACKEND_ALSA,
		"portaudio": AUDIO_BACKEND_PORTAUDIO,
	}
	for name, want := range cases {
		got, err := ParseBackend(name)
		if err != nil || got != want {
			t.Errorf("ParseBackend(%q) = (%d, %v), expected (%d, nil)", name, got, err, want)
		}
	}
	if _, err := ParseBackend("gramophone"); err == nil {
		t.Error("unknown backend accepted")
	}
}
