package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Run opens the window and drives the main loop. Each frame it calls update
// (input, message draining), then clears the screen and calls draw.
// ESC is reserved for the terminal toggle, so the window closes only via the
// window button or a quit command.
func Run(width, height int, title string, update, draw func()) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(width), int32(height), title)
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		update()

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(24, 27, 33, 255))
		draw()
		rl.EndDrawing()
	}
}
