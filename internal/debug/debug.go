// Package debug draws the runtime overlays (FPS, heap usage). All overlays are
// off by default and toggled from the terminal or prefs.
package debug

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// Text is recomputed every updateInterval frames to limit allocations.
	updateInterval = 30
)

// Debug holds the overlay toggles and cached text.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool

	frameCount  uint32
	lastFpsText string
	lastMemText string
	memStats    runtime.MemStats
}

// New returns a Debug system with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// SetShowFPS sets whether the FPS counter is drawn.
func (d *Debug) SetShowFPS(show bool) { d.ShowFPS = show }

// SetShowMemAlloc sets whether the heap counter is drawn under the FPS.
func (d *Debug) SetShowMemAlloc(show bool) { d.ShowMemAlloc = show }

// Draw renders enabled overlays at the top-right. Call last in the draw loop
// so they sit above the panels.
func (d *Debug) Draw() {
	d.frameCount++
	update := d.frameCount%updateInterval == 0
	if d.ShowFPS && d.lastFpsText == "" {
		update = true
	}
	if d.ShowMemAlloc && d.lastMemText == "" {
		update = true
	}

	screenW := int32(rl.GetScreenWidth())
	y := int32(padding)

	if d.ShowFPS {
		if update {
			d.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		if d.lastFpsText != "" {
			w := rl.MeasureText(d.lastFpsText, fontSize)
			rl.DrawText(d.lastFpsText, screenW-w-padding, y, fontSize, rl.Green)
		}
		y += lineHeight
	}

	if d.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&d.memStats)
			mb := float64(d.memStats.Alloc) / (1024 * 1024)
			d.lastMemText = fmt.Sprintf("Mem: %.2f MiB", mb)
		}
		if d.lastMemText != "" {
			w := rl.MeasureText(d.lastMemText, fontSize)
			rl.DrawText(d.lastMemText, screenW-w-padding, y, fontSize, rl.Green)
		}
	}
}
