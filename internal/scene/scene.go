// Package scene owns the 3D camera and the editor grid. The camera is an
// orbit camera: right-drag rotates around the target, wheel zooms, the cursor
// stays visible so the panels remain clickable.
package scene

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	gridExtent     = 30
	gridMinorStep  = 1
	gridMajorStep  = 5
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220

	orbitSensitivity = 0.005
	zoomStep         = 0.9
	minDistance      = 0.5
	maxDistance      = 200
	// pitch is kept off the poles so Up never degenerates.
	maxPitch = 1.55
)

// Scene holds the orbit camera and draws the 3D backdrop (grid and axes).
type Scene struct {
	Camera      rl.Camera3D
	GridVisible bool

	yaw      float32
	pitch    float32
	distance float32
}

// New returns a scene with the camera orbiting the origin from an elevated
// three-quarter view. Grid is visible by default.
func New() *Scene {
	s := &Scene{
		GridVisible: true,
		yaw:         math32.Pi / 4,
		pitch:       0.6,
		distance:    10,
	}
	s.Camera.Target = rl.NewVector3(0, 0, 0)
	s.Camera.Up = rl.NewVector3(0, 1, 0)
	s.Camera.Fovy = 45
	s.Camera.Projection = rl.CameraPerspective
	s.apply()
	return s
}

// SetGridVisible sets whether the editor grid is drawn.
func (s *Scene) SetGridVisible(visible bool) {
	s.GridVisible = visible
}

// Update runs the orbit controls. active is false while the pointer is over a
// panel or the terminal, so dragging a slider never spins the camera.
func (s *Scene) Update(active bool) {
	if !active {
		return
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		s.yaw -= delta.X * orbitSensitivity
		s.pitch += delta.Y * orbitSensitivity
		if s.pitch > maxPitch {
			s.pitch = maxPitch
		}
		if s.pitch < -maxPitch {
			s.pitch = -maxPitch
		}
	}
	if rl.IsMouseButtonDown(rl.MouseMiddleButton) {
		delta := rl.GetMouseDelta()
		// Pan in the camera's screen plane, scaled by distance so the grab
		// point tracks the cursor at any zoom.
		right := rl.NewVector3(math32.Cos(s.yaw), 0, -math32.Sin(s.yaw))
		up := s.Camera.Up
		scale := s.distance * 0.0016
		s.Camera.Target.X -= (right.X*delta.X - up.X*delta.Y) * scale
		s.Camera.Target.Y += up.Y * delta.Y * scale
		s.Camera.Target.Z -= (right.Z*delta.X - up.Z*delta.Y) * scale
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		s.distance *= math32.Pow(zoomStep, wheel)
		if s.distance < minDistance {
			s.distance = minDistance
		}
		if s.distance > maxDistance {
			s.distance = maxDistance
		}
	}
	s.apply()
}

// apply recomputes Camera.Position from the spherical orbit parameters.
func (s *Scene) apply() {
	cp := math32.Cos(s.pitch)
	s.Camera.Position = rl.NewVector3(
		s.Camera.Target.X+s.distance*cp*math32.Sin(s.yaw),
		s.Camera.Target.Y+s.distance*math32.Sin(s.pitch),
		s.Camera.Target.Z+s.distance*cp*math32.Cos(s.yaw),
	)
}

// Focus recenters the orbit on a world point without changing the view angle.
func (s *Scene) Focus(target rl.Vector3) {
	s.Camera.Target = target
	s.apply()
}

// DrawBackdrop renders the grid and axis lines. Call inside BeginMode3D,
// before the scene content so solid geometry draws over the lines.
func (s *Scene) DrawBackdrop() {
	if !s.GridVisible {
		return
	}
	drawGrid()
}

// drawGrid draws the floor grid on the XZ plane with major/minor lines and
// colored axis lines through the origin.
func drawGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisY := rl.NewColor(80, 220, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	var start, end rl.Vector3
	for x := -gridExtent; x <= gridExtent; x += gridMinorStep {
		c := major
		if x%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(x), 0, float32(-gridExtent)
		end.X, end.Y, end.Z = float32(x), 0, float32(gridExtent)
		rl.DrawLine3D(start, end, c)
	}
	for z := -gridExtent; z <= gridExtent; z += gridMinorStep {
		c := major
		if z%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(-gridExtent), 0, float32(z)
		end.X, end.Y, end.Z = float32(gridExtent), 0, float32(z)
		rl.DrawLine3D(start, end, c)
	}

	start.X, start.Y, start.Z = float32(-gridExtent), 0, 0
	end.X, end.Y, end.Z = float32(gridExtent), 0, 0
	rl.DrawLine3D(start, end, axisX)
	start.X, start.Y, start.Z = 0, 0, 0
	end.X, end.Y, end.Z = 0, float32(gridExtent), 0
	rl.DrawLine3D(start, end, axisY)
	start.X, start.Y, start.Z = 0, 0, float32(-gridExtent)
	end.X, end.Y, end.Z = 0, 0, float32(gridExtent)
	rl.DrawLine3D(start, end, axisZ)
}
