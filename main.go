// main.go - Main entry point for the TuneOut noise machine

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
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m▄▄▄█████▓ █    ██ ███▄    █ ▓█████  ▒█████   █    ██ ▄▄▄█████▓\033[0m\n\033[38;2;255;50;147m▓  ██▒ ▓▒ ██  ▓██▒██ ▀█   █ ▓█   ▀ ▒██▒  ██▒ ██  ▓██▒▓  ██▒ ▓▒\033[0m\n\033[38;2;255;80;147m▒ ▓██░ ▒░▓██  ▒██░██  ▀█ ██▒▒███   ▒██░  ██▒▓██  ▒██░▒ ▓██░ ▒░\033[0m\n\033[38;2;255;110;147m░ ▓██▓ ░ ▓▓█  ░██░██▒  ▐▌██▒▒▓█  ▄ ▒██   ██░▓▓█  ░██░░ ▓██▓ ░\033[0m\n\033[38;2;255;140;147m  ▒██▒ ░ ▒▒█████▓ ██░   ▓██░░▒████▒░ ████▓▒░▒▒█████▓   ▒██▒ ░\033[0m\n\033[38;2;255;170;147m  ▒ ░░   ░▒▓▒ ▒ ▒  ▒░   ▒ ▒ ░░ ▒░ ░░ ▒░▒░▒░ ░▒▓▒ ▒ ▒   ▒ ░░\033[0m\n\033[38;2;255;200;147m    ░    ░░▒░ ░ ░  ░░   ░ ▒░ ░ ░  ░  ░ ▒ ▒░ ░░▒░ ░ ░     ░\033[0m\n\033[38;2;255;230;147m  ░       ░░░ ░ ░   ░   ░ ░    ░   ░ ░ ░ ▒   ░░░ ░ ░   ░\033[0m\n\033[38;2;255;255;147m            ░             ░    ░  ░    ░ ░     ░\033[0m")
	fmt.Println("\nProcedural noise for focus, calm and sleep.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/TuneOut")
	fmt.Println("Buy me a coffee: https://ko-fi.com/intuition/tip")
	fmt.Println("License: GPLv3 or later")
}

func main() {
	boilerPlate()

	var (
		backendName string
		colorName   string
		volume      float64
		cutoff      float64
		presetName  string
		scriptPath  string
		sleepFor    string
		noGUI       bool
		logPath     string
		historyRows int
		verbose     bool
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&backendName, "backend", "oto", "Audio backend: oto, alsa, portaudio or null")
	flagSet.StringVar(&colorName, "color", "white", "Noise color: white, pink or brown")
	flagSet.Float64Var(&volume, "volume", DEFAULT_VOLUME, "Output volume 0..1")
	flagSet.Float64Var(&cutoff, "cutoff", DEFAULT_CUTOFF_HZ, "Low-pass cutoff in Hz (200..20000)")
	flagSet.StringVar(&presetName, "preset", "", "Load a saved preset by name, or a tuneout:// share string")
	flagSet.StringVar(&scriptPath, "script", "", "Run a Lua session script and exit")
	flagSet.StringVar(&sleepFor, "sleep", "", "Stop playback after this duration (e.g. 45m)")
	flagSet.BoolVar(&noGUI, "nogui", false, "Terminal control surface instead of the grain window")
	flagSet.StringVar(&logPath, "log", "", "Session history file ('off' disables; default is the user config dir)")
	flagSet.IntVar(&historyRows, "history", 0, "Print the N most recent sessions and total listening time, then exit")
	flagSet.BoolVar(&verbose, "v", false, "Verbose logging")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./tuneout [-backend oto|alsa|portaudio|null] [-color white|pink|brown] [-volume 0.5] [-cutoff 20000] [-preset name] [-script file.lua] [-sleep 45m] [-nogui] [-history 10] [-v]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	backend, err := ParseBackend(backendName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	color, err := ParseNoiseColor(colorName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	sleepDur, err := parseSleepFlag(sleepFor)
	if err != nil {
		fmt.Printf("Invalid -sleep: %v\n", err)
		os.Exit(1)
	}

	cfg := DefaultEngineConfig()
	cfg.Backend = backend
	cfg.Color = color
	cfg.Volume = float32(volume)
	cfg.CutoffHz = float32(cutoff)
	engine := NewAudioEngine(cfg)

	store := openPresets()
	if presetName != "" {
		if err := applyStartupPreset(engine, store, presetName); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	history := openHistory(logPath)

	// History mode: report and exit without opening any audio device.
	if historyRows > 0 {
		fmt.Print(formatHistory(history, historyRows))
		return
	}

	mgr := NewSessionManager(engine, history)

	watcher := NewSignalWatcher(mgr)
	watcher.Start()

	if sleepDur > 0 {
		mgr.SetSleepTimer(sleepDur)
	}

	// Script mode is headless: the script drives the whole session.
	if scriptPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-watcher.Done()
			cancel()
		}()
		err := RunSessionScript(ctx, scriptPath, mgr)
		mgr.Close()
		watcher.Stop()
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Printf("Script error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := mgr.Start(); err != nil {
		fmt.Printf("Failed to start audio: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nBackend: %s | Color: %s | Volume: %.0f%% | Cutoff: %.0f Hz\n\n",
		backendName, engine.Color(), engine.Volume()*100, engine.FilterCutoff())

	useTerminal := noGUI
	var win *GrainWindow
	if !useTerminal {
		w, err := NewGrainWindow(mgr, store)
		if err != nil {
			fmt.Printf("GUI unavailable (%v), falling back to terminal\n", err)
			useTerminal = true
		} else {
			win = w
		}
	}

	if useTerminal {
		host := NewTerminalHost(mgr, store)
		host.Start()
		select {
		case <-host.Quit():
		case <-watcher.Done():
		}
		host.Stop()
	} else {
		if err := win.Start(); err != nil {
			fmt.Printf("Failed to open grain window: %v\n", err)
			mgr.Close()
			os.Exit(1)
		}
		select {
		case <-win.Done():
		case <-watcher.Done():
			_ = win.Stop()
			<-win.Done()
		}
	}

	mgr.Close()
	watcher.Stop()
}

// openPresets loads the preset store; preset trouble degrades to running
// without one rather than refusing to start.
func openPresets() *PresetStore {
	path, err := DefaultPresetPath()
	if err != nil {
		logrus.WithError(err).Warn("presets disabled")
		return nil
	}
	store, err := OpenPresetStore(path)
	if err != nil {
		logrus.WithError(err).Warn("presets disabled")
		return nil
	}
	return store
}

// openHistory resolves the session history sink from the -log flag.
func openHistory(logPath string) *SessionLog {
	if logPath == "off" {
		return nil
	}
	path := logPath
	if path == "" {
		var err error
		path, err = DefaultSessionLogPath()
		if err != nil {
			logrus.WithError(err).Warn("session history disabled")
			return nil
		}
	}
	history, err := OpenSessionLog(path)
	if err != nil {
		logrus.WithError(err).Warn("session history disabled")
		return nil
	}
	return history
}

// applyStartupPreset resolves -preset as either a share string or a
// stored preset name.
func applyStartupPreset(engine *AudioEngine, store *PresetStore, name string) error {
	if strings.HasPrefix(name, SHARE_SCHEME) {
		p, err := ParseShareString(name)
		if err != nil {
			return err
		}
		return p.Apply(engine)
	}
	if store == nil {
		return fmt.Errorf("preset %q: no preset store", name)
	}
	p, ok := store.Get(name)
	if !ok {
		return fmt.Errorf("preset %q not found", name)
	}
	return p.Apply(engine)
}

// formatHistory renders the -history table: the n most recent sessions,
// oldest first, followed by the all-time listening total.
func formatHistory(history *SessionLog, n int) string {
	if history == nil {
		return "session history disabled\n"
	}
	entries := history.Recent(n)
	if len(entries) == 0 {
		return "no recorded sessions\n"
	}

	var sb strings.Builder
	sb.WriteString("STARTED              DURATION  COLOR  VOL   CUTOFF    REASON\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s  %8s  %-5s  %3.0f%%  %6.0f Hz  %s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.Duration().Round(time.Second),
			e.Color, e.Volume*100, e.CutoffHz, e.Reason))
	}
	sb.WriteString(fmt.Sprintf("total listening: %s over %d sessions\n",
		history.TotalListening().Round(time.Second), len(history.Entries())))
	return sb.String()
}

func parseSleepFlag(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration: %s", value)
	}
	return d, nil
}
