// session_log_test.go - Session history persistence tests

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tempConfigPath returns a per-test path for one of the config-dir files.
func tempConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), CONFIG_DIR_NAME, name)
}

func testEntry(start time.Time, d time.Duration, reason string) SessionEntry {
	return SessionEntry{
		StartedAt: start,
		EndedAt:   start.Add(d),
		Color:     "pink",
		Volume:    0.5,
		CutoffHz:  2000,
		Reason:    reason,
	}
}

func TestSessionLog_MissingFileIsEmpty(t *testing.T) {
	sl, err := OpenSessionLog(tempConfigPath(t, SESSION_LOG_FILE_NAME))
	require.NoError(t, err)
	assert.Empty(t, sl.Entries())
	assert.Zero(t, sl.TotalListening())
}

func TestSessionLog_AppendAndReload(t *testing.T) {
	path := tempConfigPath(t, SESSION_LOG_FILE_NAME)
	sl, err := OpenSessionLog(path)
	require.NoError(t, err)

	start := time.Date(2026, 8, 29, 22, 0, 0, 0, time.UTC)
	require.NoError(t, sl.Append(testEntry(start, 25*time.Minute, "user")))
	require.NoError(t, sl.Append(testEntry(start.Add(time.Hour), 45*time.Minute, "timer")))

	reloaded, err := OpenSessionLog(path)
	require.NoError(t, err)
	entries := reloaded.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "user", entries[0].Reason)
	assert.Equal(t, "timer", entries[1].Reason)
	assert.Equal(t, "pink", entries[0].Color)
	assert.True(t, entries[0].StartedAt.Equal(start))
}

func TestSessionLog_Recent(t *testing.T) {
	sl, err := OpenSessionLog(tempConfigPath(t, SESSION_LOG_FILE_NAME))
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, sl.Append(testEntry(start.Add(time.Duration(i)*time.Hour), time.Minute, fmt.Sprintf("r%d", i))))
	}

	recent := sl.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "r3", recent[0].Reason)
	assert.Equal(t, "r4", recent[1].Reason)

	// Asking for more than exists returns everything.
	assert.Len(t, sl.Recent(99), 5)
}

func TestSessionLog_TotalListening(t *testing.T) {
	sl, err := OpenSessionLog(tempConfigPath(t, SESSION_LOG_FILE_NAME))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, sl.Append(testEntry(start, 10*time.Minute, "user")))
	require.NoError(t, sl.Append(testEntry(start, 35*time.Minute, "timer")))

	assert.Equal(t, 45*time.Minute, sl.TotalListening())
}

// The on-disk history is bounded: appending past the cap drops the oldest
// entries, keeping exactly the newest SESSION_LOG_MAX_ENTRIES.
func TestSessionLog_BoundedToMaxEntries(t *testing.T) {
	sl, err := OpenSessionLog(tempConfigPath(t, SESSION_LOG_FILE_NAME))
	require.NoError(t, err)

	start := time.Now()
	sl.entries = make([]SessionEntry, 0, SESSION_LOG_MAX_ENTRIES)
	for i := 0; i < SESSION_LOG_MAX_ENTRIES; i++ {
		sl.entries = append(sl.entries, testEntry(start, time.Minute, "old"))
	}

	require.NoError(t, sl.Append(testEntry(start, time.Minute, "new")))

	entries := sl.Entries()
	require.Len(t, entries, SESSION_LOG_MAX_ENTRIES)
	assert.Equal(t, "new", entries[len(entries)-1].Reason)
}

func TestSessionLog_WritesVersionHeader(t *testing.T) {
	path := tempConfigPath(t, SESSION_LOG_FILE_NAME)
	sl, err := OpenSessionLog(path)
	require.NoError(t, err)
	require.NoError(t, sl.Append(testEntry(time.Now(), time.Minute, "user")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 1")
}

func TestSessionLog_RejectsNewerFileVersion(t *testing.T) {
	path := tempConfigPath(t, SESSION_LOG_FILE_NAME)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("version: 7\nsessions: []\n"), 0o644))

	_, err := OpenSessionLog(path)
	assert.ErrorContains(t, err, "version 7")
}

func TestSessionLog_CorruptFileIsAnError(t *testing.T) {
	path := tempConfigPath(t, SESSION_LOG_FILE_NAME)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("sessions: {oops"), 0o644))

	_, err := OpenSessionLog(path)
	assert.Error(t, err)
}

func TestSessionEntry_Duration(t *testing.T) {
	e := testEntry(time.Now(), 42*time.Minute, "user")
	assert.Equal(t, 42*time.Minute, e.Duration())
}
