// session_log.go - On-disk history of completed listening sessions

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	SESSION_LOG_FILE_NAME   = "sessions.yaml"
	SESSION_LOG_MAX_ENTRIES = 1000
)

// SessionEntry records one completed Playing -> Stopped span and why it
// ended. Parameters are the values in effect when the session ended.
type SessionEntry struct {
	StartedAt time.Time `yaml:"started_at"`
	EndedAt   time.Time `yaml:"ended_at"`
	Color     string    `yaml:"color"`
	Volume    float32   `yaml:"volume"`
	CutoffHz  float32   `yaml:"cutoff_hz"`
	Reason    string    `yaml:"reason"`
}

func (e SessionEntry) Duration() time.Duration {
	return e.EndedAt.Sub(e.StartedAt)
}

type sessionFile struct {
	Version  int            `yaml:"version"`
	Sessions []SessionEntry `yaml:"sessions"`
}

// SessionLog appends session entries to a YAML file. The file is bounded
// to the most recent SESSION_LOG_MAX_ENTRIES and rewritten atomically.
type SessionLog struct {
	path    string
	mutex   sync.Mutex
	entries []SessionEntry
	log     *logrus.Entry
}

func DefaultSessionLogPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, CONFIG_DIR_NAME, SESSION_LOG_FILE_NAME), nil
}

// OpenSessionLog loads the history at path; a missing file is an empty log.
func OpenSessionLog(path string) (*SessionLog, error) {
	sl := &SessionLog{
		path: path,
		log:  logrus.WithField("component", "history"),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return sl, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session log: %w", err)
	}

	var doc sessionFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse session log: %w", err)
	}
	if doc.Version > CONFIG_FILE_VERSION {
		return nil, fmt.Errorf("session log version %d is newer than supported version %d", doc.Version, CONFIG_FILE_VERSION)
	}
	sl.entries = doc.Sessions
	return sl, nil
}

// Append records one finished session and persists the log.
func (sl *SessionLog) Append(entry SessionEntry) error {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()

	sl.entries = append(sl.entries, entry)
	if len(sl.entries) > SESSION_LOG_MAX_ENTRIES {
		sl.entries = sl.entries[len(sl.entries)-SESSION_LOG_MAX_ENTRIES:]
	}
	return sl.persistLocked()
}

// Entries returns a copy of the full history, oldest first.
func (sl *SessionLog) Entries() []SessionEntry {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()
	out := make([]SessionEntry, len(sl.entries))
	copy(out, sl.entries)
	return out
}

// Recent returns up to n of the newest entries, oldest first.
func (sl *SessionLog) Recent(n int) []SessionEntry {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()
	if n > len(sl.entries) {
		n = len(sl.entries)
	}
	out := make([]SessionEntry, n)
	copy(out, sl.entries[len(sl.entries)-n:])
	return out
}

// TotalListening sums the duration of every recorded session.
func (sl *SessionLog) TotalListening() time.Duration {
	sl.mutex.Lock()
	defer sl.mutex.Unlock()
	var total time.Duration
	for _, e := range sl.entries {
		total += e.Duration()
	}
	return total
}

func (sl *SessionLog) persistLocked() error {
	data, err := yaml.Marshal(sessionFile{Version: CONFIG_FILE_VERSION, Sessions: sl.entries})
	if err != nil {
		return fmt.Errorf("encode session log: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(sl.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := sl.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session log: %w", err)
	}
	if err := os.Rename(tmp, sl.path); err != nil {
		return fmt.Errorf("replace session log: %w", err)
	}
	return nil
}
