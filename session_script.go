// session_script.go - Lua scripting of session control for timed soundscapes

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
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// FADE_STEP is the volume update interval during session.fade_to.
const FADE_STEP = 50 * time.Millisecond

// RunSessionScript executes a Lua file against the session manager. The
// script sees a single global `session` table:
//
//	session.set_color(name)      -- "white", "pink" or "brown"
//	session.set_volume(v)        -- clamped to [0,1]
//	session.set_cutoff(hz)       -- clamped to [200,20000]
//	session.start()
//	session.stop()
//	session.sleep(seconds)
//	session.fade_to(v, seconds)  -- linear volume ramp
//	session.state()              -- "playing" or "stopped"
//
// Cancelling ctx aborts blocking calls and terminates the interpreter
// at the next instruction boundary.
func RunSessionScript(ctx context.Context, path string, mgr *SessionManager) error {
	L, ctx := newScriptState(ctx, mgr)
	defer L.Close()
	if err := L.DoFile(path); err != nil {
		return scriptError(ctx, err)
	}
	return nil
}

// RunSessionScriptSource is RunSessionScript for an in-memory script.
func RunSessionScriptSource(ctx context.Context, src string, mgr *SessionManager) error {
	L, ctx := newScriptState(ctx, mgr)
	defer L.Close()
	if err := L.DoString(src); err != nil {
		return scriptError(ctx, err)
	}
	return nil
}

func newScriptState(ctx context.Context, mgr *SessionManager) (*lua.LState, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	L := lua.NewState()
	L.SetContext(ctx)
	registerSessionAPI(L, ctx, mgr)
	return L, ctx
}

// scriptError prefers reporting the cancellation over the interpreter's
// wrapped rendition of it.
func scriptError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("session script: %w", err)
}

func registerSessionAPI(L *lua.LState, ctx context.Context, mgr *SessionManager) {
	tbl := L.NewTable()

	L.SetField(tbl, "set_color", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		color, err := ParseNoiseColor(name)
		if err != nil {
			L.RaiseError("set_color: %s", err.Error())
			return 0
		}
		mgr.Engine().SetNoiseColor(color)
		return 0
	}))

	L.SetField(tbl, "set_volume", L.NewFunction(func(L *lua.LState) int {
		mgr.Engine().SetVolume(float32(L.CheckNumber(1)))
		return 0
	}))

	L.SetField(tbl, "set_cutoff", L.NewFunction(func(L *lua.LState) int {
		mgr.Engine().SetFilterCutoff(float32(L.CheckNumber(1)))
		return 0
	}))

	L.SetField(tbl, "start", L.NewFunction(func(L *lua.LState) int {
		if err := mgr.Start(); err != nil {
			L.RaiseError("start: %s", err.Error())
		}
		return 0
	}))

	L.SetField(tbl, "stop", L.NewFunction(func(L *lua.LState) int {
		mgr.StopWithReason(STOP_SCRIPT)
		return 0
	}))

	L.SetField(tbl, "sleep", L.NewFunction(func(L *lua.LState) int {
		secs := float64(L.CheckNumber(1))
		if secs > 0 {
			scriptWait(ctx, time.Duration(secs*float64(time.Second)))
		}
		return 0
	}))

	L.SetField(tbl, "fade_to", L.NewFunction(func(L *lua.LState) int {
		target := clampF32(float32(L.CheckNumber(1)), MIN_VOLUME, MAX_VOLUME)
		secs := float64(L.CheckNumber(2))
		fadeVolume(ctx, mgr.Engine(), target, time.Duration(secs*float64(time.Second)))
		return 0
	}))

	L.SetField(tbl, "state", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(mgr.State().String()))
		return 1
	}))

	L.SetGlobal("session", tbl)
}

func scriptWait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// fadeVolume ramps the engine volume linearly to target over dur.
// A non-positive duration jumps straight to the target.
func fadeVolume(ctx context.Context, e *AudioEngine, target float32, dur time.Duration) {
	if dur <= 0 {
		e.SetVolume(target)
		return
	}
	from := e.Volume()
	steps := int(dur / FADE_STEP)
	if steps < 1 {
		steps = 1
	}
	for i := 1; i <= steps; i++ {
		scriptWait(ctx, FADE_STEP)
		if ctx.Err() != nil {
			return
		}
		t := float32(i) / float32(steps)
		e.SetVolume(from + (target-from)*t)
	}
}
