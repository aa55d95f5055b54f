// Package picking maps pointer releases to component ids. A press/release
// pair counts as a click only when the release lands within a small pixel
// radius of the press; orbit camera drags share the same pointer stream and
// must not select anything.
package picking

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"simviewer/internal/scenegraph"
)

// DragThreshold is the press-to-release distance (pixels) above which the
// gesture is a camera drag, not a pick.
const DragThreshold = 5

// Picker tracks the press/release state of the primary button.
type Picker struct {
	pressed  bool
	pressPos rl.Vector2
}

// Press records the press position. Call on primary-button down.
func (p *Picker) Press(pos rl.Vector2) {
	p.pressed = true
	p.pressPos = pos
}

// Release resolves the gesture. It returns true when the pair is a click
// (release within DragThreshold of the press); drags and releases without a
// recorded press return false.
func (p *Picker) Release(pos rl.Vector2) bool {
	if !p.pressed {
		return false
	}
	p.pressed = false
	dx := pos.X - p.pressPos.X
	dy := pos.Y - p.pressPos.Y
	return math32.Sqrt(dx*dx+dy*dy) <= DragThreshold
}

// Cancel drops a recorded press (e.g. when a panel consumed the gesture).
func (p *Picker) Cancel() {
	p.pressed = false
}

// Pick casts a ray from the camera through the screen point and returns the
// id of the nearest hit component. Solid-mesh hits win over thin helper
// geometry regardless of distance, so axis markers with generous hit areas
// cannot steal clicks from real parts.
func Pick(pos rl.Vector2, camera rl.Camera3D, renderer *scenegraph.Renderer, root *scenegraph.Node) (string, bool) {
	ray := rl.GetScreenToWorldRay(pos, camera)
	return Nearest(renderer.Raycast(ray, root))
}

// Nearest picks the winning hit: the closest solid hit if any, else the
// closest helper hit.
func Nearest(hits []scenegraph.Hit) (string, bool) {
	bestID := ""
	bestDist := float32(math32.MaxFloat32)
	bestSolid := false
	for _, h := range hits {
		if bestID == "" ||
			(h.Solid && !bestSolid) ||
			(h.Solid == bestSolid && h.Distance < bestDist) {
			bestID = h.ID
			bestDist = h.Distance
			bestSolid = h.Solid
		}
	}
	return bestID, bestID != ""
}
