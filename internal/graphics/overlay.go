package graphics

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	overlayFontSize   = 20
	overlayPadding    = 12
	overlayLineHeight = overlayFontSize + 4
	statusFontSize    = 18
	// refresh FPS/Mem text every N frames to limit allocations
	updateInterval = 30
)

// Overlay draws the FPS and heap counters top-right and status lines top-left.
type Overlay struct {
	ShowFPS      bool
	ShowMemAlloc bool
	// Status returns the lines drawn top-left each frame. Nil draws nothing.
	Status func() []string

	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastMemStats runtime.MemStats
}

// NewOverlay returns an overlay with the counters hidden.
func NewOverlay() *Overlay {
	return &Overlay{}
}

// Draw renders the enabled overlays. Call after the scene and before the console.
func (o *Overlay) Draw() {
	o.frameCount++
	update := o.frameCount%updateInterval == 0
	if (o.ShowFPS && o.lastFpsText == "") || (o.ShowMemAlloc && o.lastMemText == "") {
		update = true
	}

	screenW := int32(rl.GetScreenWidth())
	y := int32(overlayPadding)
	if o.ShowFPS {
		if update {
			o.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		drawRight(o.lastFpsText, screenW, y)
		y += overlayLineHeight
	}
	if o.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&o.lastMemStats)
			o.lastMemText = fmt.Sprintf("Mem: %.2f MiB", float64(o.lastMemStats.Alloc)/(1024*1024))
		}
		drawRight(o.lastMemText, screenW, y)
	}

	if o.Status == nil {
		return
	}
	y = overlayPadding
	for _, line := range o.Status() {
		rl.DrawText(line, overlayPadding, y, statusFontSize, rl.RayWhite)
		y += statusFontSize + 4
	}
}

func drawRight(text string, screenW, y int32) {
	if text == "" {
		return
	}
	w := rl.MeasureText(text, overlayFontSize)
	rl.DrawText(text, screenW-w-overlayPadding, y, overlayFontSize, rl.Green)
}
