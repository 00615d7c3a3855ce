// preset_store.go - Named presets on disk plus the tuneout:// share string codec

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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	CONFIG_DIR_NAME   = "tuneout"
	PRESET_FILE_NAME  = "presets.yaml"
	SHARE_SCHEME      = "tuneout://"
	QUICK_PRESET_NAME = "quick"

	// Version header written into presets.yaml and sessions.yaml. Files
	// without the field (version 0) predate it and load as version 1.
	CONFIG_FILE_VERSION = 1
)

var ErrBadPreset = errors.New("malformed preset")

// Preset is a complete listening setup: generator color plus the two
// user-facing knobs. Values are stored as given and clamped by the
// engine setters when applied.
type Preset struct {
	Name     string  `yaml:"name"`
	Color    string  `yaml:"color"`
	Volume   float32 `yaml:"volume"`
	CutoffHz float32 `yaml:"cutoff_hz"`
}

type presetFile struct {
	Version int      `yaml:"version"`
	Presets []Preset `yaml:"presets"`
}

// PresetFromEngine snapshots the engine's current parameters.
func PresetFromEngine(name string, e *AudioEngine) Preset {
	return Preset{
		Name:     name,
		Color:    e.Color().String(),
		Volume:   e.Volume(),
		CutoffHz: e.FilterCutoff(),
	}
}

// Apply pushes the preset into the engine. Unknown colors are rejected;
// numeric values go through the engine's clamping setters.
func (p Preset) Apply(e *AudioEngine) error {
	color, err := ParseNoiseColor(p.Color)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadPreset, err)
	}
	e.SetNoiseColor(color)
	e.SetVolume(p.Volume)
	e.SetFilterCutoff(p.CutoffHz)
	return nil
}

// ShareString encodes the preset as tuneout://<color>/<volume>/<cutoff>.
// The name is deliberately not part of the string; the receiver names it.
func (p Preset) ShareString() string {
	return fmt.Sprintf("%s%s/%.3f/%.0f", SHARE_SCHEME, p.Color, p.Volume, p.CutoffHz)
}

// ParseShareString decodes a tuneout:// string back into a Preset.
// Numeric fields are clamped to their legal ranges so a hand-edited
// string cannot smuggle out-of-range values into the store.
func ParseShareString(s string) (Preset, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, SHARE_SCHEME) {
		return Preset{}, fmt.Errorf("%w: missing %s scheme", ErrBadPreset, SHARE_SCHEME)
	}
	parts := strings.Split(strings.TrimPrefix(s, SHARE_SCHEME), "/")
	if len(parts) != 3 {
		return Preset{}, fmt.Errorf("%w: want color/volume/cutoff, got %d fields", ErrBadPreset, len(parts))
	}

	color, err := ParseNoiseColor(parts[0])
	if err != nil {
		return Preset{}, fmt.Errorf("%w: %v", ErrBadPreset, err)
	}
	volume, err := strconv.ParseFloat(parts[1], 32)
	if err != nil {
		return Preset{}, fmt.Errorf("%w: bad volume %q", ErrBadPreset, parts[1])
	}
	cutoff, err := strconv.ParseFloat(parts[2], 32)
	if err != nil {
		return Preset{}, fmt.Errorf("%w: bad cutoff %q", ErrBadPreset, parts[2])
	}

	return Preset{
		Color:    color.String(),
		Volume:   clampF32(float32(volume), MIN_VOLUME, MAX_VOLUME),
		CutoffHz: clampF32(float32(cutoff), MIN_CUTOFF_HZ, MAX_CUTOFF_HZ),
	}, nil
}

// PresetStore keeps named presets in a YAML file, rewritten atomically
// on every mutation. Order of first save is preserved across loads.
type PresetStore struct {
	path    string
	mutex   sync.Mutex
	presets []Preset
	log     *logrus.Entry
}

// DefaultPresetPath resolves the per-user preset file location.
func DefaultPresetPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, CONFIG_DIR_NAME, PRESET_FILE_NAME), nil
}

// OpenPresetStore loads the preset file at path. A missing file is an
// empty store; a file that exists but does not parse is an error.
func OpenPresetStore(path string) (*PresetStore, error) {
	ps := &PresetStore{
		path: path,
		log:  logrus.WithField("component", "presets"),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ps, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}

	var doc presetFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if doc.Version > CONFIG_FILE_VERSION {
		return nil, fmt.Errorf("presets file version %d is newer than supported version %d", doc.Version, CONFIG_FILE_VERSION)
	}
	ps.presets = doc.Presets
	ps.log.WithField("count", len(ps.presets)).Debug("presets loaded")
	return ps, nil
}

// Save upserts by name and persists the whole file.
func (ps *PresetStore) Save(p Preset) error {
	if p.Name == "" {
		return fmt.Errorf("%w: empty name", ErrBadPreset)
	}
	if _, err := ParseNoiseColor(p.Color); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPreset, err)
	}

	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	replaced := false
	for i := range ps.presets {
		if ps.presets[i].Name == p.Name {
			ps.presets[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		ps.presets = append(ps.presets, p)
	}
	return ps.persistLocked()
}

// Get returns the preset with the given name.
func (ps *PresetStore) Get(name string) (Preset, bool) {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()
	for _, p := range ps.presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// List returns a copy of all presets in stored order.
func (ps *PresetStore) List() []Preset {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()
	out := make([]Preset, len(ps.presets))
	copy(out, ps.presets)
	return out
}

// Delete removes a preset by name; deleting a missing name is a no-op.
func (ps *PresetStore) Delete(name string) error {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()
	for i, p := range ps.presets {
		if p.Name == name {
			ps.presets = append(ps.presets[:i], ps.presets[i+1:]...)
			return ps.persistLocked()
		}
	}
	return nil
}

// persistLocked writes the file via tmp+rename so a crash mid-write
// never leaves a truncated preset file behind.
func (ps *PresetStore) persistLocked() error {
	data, err := yaml.Marshal(presetFile{Version: CONFIG_FILE_VERSION, Presets: ps.presets})
	if err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(ps.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := ps.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write presets: %w", err)
	}
	if err := os.Rename(tmp, ps.path); err != nil {
		return fmt.Errorf("replace presets: %w", err)
	}
	return nil
}
