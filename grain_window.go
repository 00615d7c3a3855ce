//go:build !headless

// grain_window.go - Ebiten grain window: visualization plus the keyboard control surface

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
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/sirupsen/logrus"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

const (
	NOTICE_DURATION = 3 * time.Second
	PASTE_MAX_BYTES = 256
)

type GrainWindow struct {
	mgr   *SessionManager
	store *PresetStore

	running     atomic.Bool
	window      *ebiten.Image
	width       int
	height      int
	scale       int
	frameBuffer []byte
	rng         noiseRand
	frameCount  uint64
	vsyncChan   chan struct{}
	done        chan struct{}
	doneOnce    sync.Once

	clipboardOnce sync.Once
	clipboardOK   bool

	stateMutex    sync.RWMutex
	showStatusBar bool
	fullscreen    bool
	notice        string
	noticeUntil   time.Time

	log *logrus.Entry
}

func NewGrainWindow(mgr *SessionManager, store *PresetStore) (*GrainWindow, error) {
	return &GrainWindow{
		mgr:           mgr,
		store:         store,
		width:         GRAIN_W,
		height:        GRAIN_H,
		scale:         GRAIN_SCALE,
		frameBuffer:   make([]byte, GRAIN_W*GRAIN_H*4),
		rng:           newNoiseRand(nextSeed()),
		vsyncChan:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		showStatusBar: true,
		log:           logrus.WithField("component", "grain"),
	}, nil
}

func (gw *GrainWindow) Start() error {
	if gw.running.Load() {
		return nil
	}
	gw.running.Store(true)
	ebiten.SetWindowSize(gw.width*gw.scale, gw.height*gw.scale)
	ebiten.SetWindowTitle("TuneOut (c) 2024 - 2026 Zayn Otley")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	go func() {
		defer func() {
			gw.running.Store(false)
			gw.doneOnce.Do(func() { close(gw.done) })
		}()
		if err := ebiten.RunGame(gw); err != nil {
			gw.log.WithError(err).Error("grain window error")
		}
	}()

	// Wait for first Draw call to ensure Ebiten is ready
	<-gw.vsyncChan
	return nil
}

func (gw *GrainWindow) Stop() error {
	gw.running.Store(false)
	return nil
}

func (gw *GrainWindow) Close() error {
	return gw.Stop()
}

// Done is closed when the window loop has exited, whether by Q, window
// close or an external Stop.
func (gw *GrainWindow) Done() <-chan struct{} {
	return gw.done
}

func (gw *GrainWindow) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if !gw.running.Load() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		gw.stateMutex.Lock()
		gw.fullscreen = !gw.fullscreen
		ebiten.SetFullscreen(gw.fullscreen)
		if !gw.fullscreen {
			ebiten.SetWindowSize(gw.width*gw.scale, gw.height*gw.scale)
		}
		gw.stateMutex.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		gw.stateMutex.Lock()
		gw.showStatusBar = !gw.showStatusBar
		gw.stateMutex.Unlock()
	}
	gw.handleControlKeys()
	return nil
}

func (gw *GrainWindow) handleControlKeys() {
	e := gw.mgr.Engine()

	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		e.SetNoiseColor(NOISE_WHITE)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		e.SetNoiseColor(NOISE_PINK)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		e.SetNoiseColor(NOISE_BROWN)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		e.SetVolume(e.Volume() - VOLUME_STEP)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		e.SetVolume(e.Volume() + VOLUME_STEP)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyLeftBracket) {
		e.SetFilterCutoff(e.FilterCutoff() / CUTOFF_STEP_RATIO)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRightBracket) {
		e.SetFilterCutoff(e.FilterCutoff() * CUTOFF_STEP_RATIO)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if err := gw.mgr.Toggle(); err != nil {
			gw.setNotice("start failed: " + err.Error())
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		gw.savePreset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		gw.copyShareString()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		gw.pasteShareString()
	}
}

func (gw *GrainWindow) setNotice(s string) {
	gw.stateMutex.Lock()
	gw.notice = s
	gw.noticeUntil = time.Now().Add(NOTICE_DURATION)
	gw.stateMutex.Unlock()
}

func (gw *GrainWindow) savePreset() {
	if gw.store == nil {
		gw.setNotice("no preset store")
		return
	}
	p := PresetFromEngine(QUICK_PRESET_NAME, gw.mgr.Engine())
	if err := gw.store.Save(p); err != nil {
		gw.setNotice("save failed: " + err.Error())
		return
	}
	gw.setNotice("preset '" + QUICK_PRESET_NAME + "' saved")
}

func (gw *GrainWindow) initClipboard() bool {
	gw.clipboardOnce.Do(func() {
		gw.clipboardOK = clipboard.Init() == nil
	})
	return gw.clipboardOK
}

func (gw *GrainWindow) copyShareString() {
	if !gw.initClipboard() {
		gw.setNotice("clipboard unavailable")
		return
	}
	s := PresetFromEngine("", gw.mgr.Engine()).ShareString()
	clipboard.Write(clipboard.FmtText, []byte(s))
	gw.setNotice("share string copied")
}

func (gw *GrainWindow) pasteShareString() {
	if !gw.initClipboard() {
		gw.setNotice("clipboard unavailable")
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		gw.setNotice("clipboard empty")
		return
	}
	data = capPasteText(normalizePasteText(data), PASTE_MAX_BYTES)
	p, err := ParseShareString(string(data))
	if err != nil {
		gw.setNotice("not a tuneout:// string")
		return
	}
	if err := p.Apply(gw.mgr.Engine()); err != nil {
		gw.setNotice("apply failed: " + err.Error())
		return
	}
	gw.setNotice("share string applied")
}

func normalizePasteText(raw []byte) []byte {
	norm := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\r' {
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			norm = append(norm, '\n')
			continue
		}
		norm = append(norm, raw[i])
	}
	return norm
}

func capPasteText(raw []byte, max int) []byte {
	if len(raw) <= max {
		return raw
	}
	return raw[:max]
}

func (gw *GrainWindow) Draw(screen *ebiten.Image) {
	if gw.window == nil {
		gw.window = ebiten.NewImage(gw.width, gw.height)
	}

	e := gw.mgr.Engine()
	fillGrain(gw.frameBuffer, e.Color(), e.Volume(), &gw.rng)
	gw.window.WritePixels(gw.frameBuffer)
	screen.DrawImage(gw.window, nil)

	gw.stateMutex.RLock()
	showBar := gw.showStatusBar
	notice := gw.notice
	noticeUntil := gw.noticeUntil
	gw.stateMutex.RUnlock()

	if showBar {
		gw.drawStatusBar(screen)
	}
	if notice != "" && time.Now().Before(noticeUntil) {
		text.Draw(screen, notice, basicfont.Face7x13, 6, 13, color.RGBA{255, 220, 120, 255})
	}

	gw.frameCount++
	select {
	case gw.vsyncChan <- struct{}{}:
	default:
	}
}

func (gw *GrainWindow) Layout(_, _ int) (int, int) {
	return gw.width, gw.height
}

type statusToken struct {
	name    string
	enabled bool
}

func drawStatusLine(screen *ebiten.Image, x, baselineY int, label string, tokens []statusToken) {
	face := basicfont.Face7x13
	labelColor := color.RGBA{190, 190, 190, 255}
	offColor := color.RGBA{120, 120, 120, 255}
	onColor := color.RGBA{0, 220, 90, 255}

	text.Draw(screen, label, face, x, baselineY, labelColor)
	cursorX := x + text.BoundString(face, label).Dx() + 6

	for _, token := range tokens {
		c := offColor
		if token.enabled {
			c = onColor
		}
		text.Draw(screen, token.name, face, cursorX, baselineY, c)
		cursorX += text.BoundString(face, token.name).Dx() + 8
	}
}

func (gw *GrainWindow) drawStatusBar(screen *ebiten.Image) {
	e := gw.mgr.Engine()
	c := e.Color()
	playing := gw.mgr.State() == STATE_PLAYING

	barHeight := 44
	if barHeight >= gw.height {
		return
	}
	y := gw.height - barHeight
	ebitenutil.DrawRect(screen, 0, float64(y), float64(gw.width), float64(barHeight), color.RGBA{0, 0, 0, 180})

	drawStatusLine(screen, 6, y+13, "NOISE", []statusToken{
		{name: "WHITE", enabled: c == NOISE_WHITE},
		{name: "|", enabled: false},
		{name: "PINK", enabled: c == NOISE_PINK},
		{name: "|", enabled: false},
		{name: "BROWN", enabled: c == NOISE_BROWN},
	})

	stateTokens := []statusToken{
		{name: "PLAYING", enabled: playing},
		{name: "|", enabled: false},
		{name: fmt.Sprintf("VOL %3.0f%%", e.Volume()*100), enabled: true},
		{name: "|", enabled: false},
		{name: fmt.Sprintf("CUT %5.0fHz", e.FilterCutoff()), enabled: true},
	}
	if left := gw.mgr.SleepTimerRemaining(); left > 0 {
		stateTokens = append(stateTokens,
			statusToken{name: "|", enabled: false},
			statusToken{name: "TIMER " + left.Round(time.Second).String(), enabled: true})
	}
	drawStatusLine(screen, 6, y+26, "STATE", stateTokens)

	legendColor := color.RGBA{160, 160, 160, 255}
	legend := "SPACE Play/Stop  1/2/3 Color  -/+ Vol  [/] Cutoff  S Save  C Copy  V Paste  Q Quit"
	legendW := text.BoundString(basicfont.Face7x13, legend).Dx()
	legendX := max(gw.width-legendW-6, 6)
	text.Draw(screen, legend, basicfont.Face7x13, legendX, y+39, legendColor)
}
