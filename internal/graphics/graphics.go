package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

const (
	windowWidth  = 1280
	windowHeight = 720
	targetFPS    = 60
)

// Run opens the window and runs the main loop. Each frame it calls update (input and one
// simulation tick), then clears the screen and calls draw. ESC toggles the console; close via
// the window button. cleanup, if set, runs while the GL context still exists.
func Run(title string, update, draw, cleanup func()) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(windowWidth, windowHeight, title)
	defer rl.CloseWindow()
	if cleanup != nil {
		defer cleanup()
	}

	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(targetFPS)

	for !rl.WindowShouldClose() {
		update()

		rl.BeginDrawing()
		rl.ClearBackground(backgroundColor)
		draw()
		rl.EndDrawing()
	}
}

var backgroundColor = rl.NewColor(18, 20, 26, 255)

// colorOf converts a 0xRRGGBB tint to an opaque raylib color.
func colorOf(c uint32) rl.Color {
	return rl.NewColor(uint8(c>>16), uint8(c>>8), uint8(c), 255)
}
