package picking

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"

	"simviewer/internal/scenegraph"
)

func TestClickWithinThreshold(t *testing.T) {
	var p Picker
	p.Press(rl.NewVector2(100, 100))
	assert.True(t, p.Release(rl.NewVector2(100, 100)))

	p.Press(rl.NewVector2(100, 100))
	assert.True(t, p.Release(rl.NewVector2(103, 104)))
}

func TestDragIsNotAClick(t *testing.T) {
	var p Picker
	p.Press(rl.NewVector2(100, 100))
	assert.False(t, p.Release(rl.NewVector2(110, 108)))
}

func TestReleaseWithoutPress(t *testing.T) {
	var p Picker
	assert.False(t, p.Release(rl.NewVector2(0, 0)))
}

func TestCancelDropsPress(t *testing.T) {
	var p Picker
	p.Press(rl.NewVector2(50, 50))
	p.Cancel()
	assert.False(t, p.Release(rl.NewVector2(50, 50)))
}

func TestReleaseConsumesPress(t *testing.T) {
	var p Picker
	p.Press(rl.NewVector2(10, 10))
	assert.True(t, p.Release(rl.NewVector2(10, 10)))
	assert.False(t, p.Release(rl.NewVector2(10, 10)), "a press resolves at most one click")
}

func TestNearestPrefersSolidOverHelper(t *testing.T) {
	hits := []scenegraph.Hit{
		{ID: "axis_marker", Distance: 1.0, Solid: false},
		{ID: "part", Distance: 8.0, Solid: true},
	}
	id, ok := Nearest(hits)
	assert.True(t, ok)
	assert.Equal(t, "part", id, "solid geometry wins regardless of distance")
}

func TestNearestClosestSolidWins(t *testing.T) {
	hits := []scenegraph.Hit{
		{ID: "far", Distance: 9.0, Solid: true},
		{ID: "near", Distance: 2.0, Solid: true},
		{ID: "helper", Distance: 0.5, Solid: false},
	}
	id, ok := Nearest(hits)
	assert.True(t, ok)
	assert.Equal(t, "near", id)
}

func TestNearestHelperOnly(t *testing.T) {
	hits := []scenegraph.Hit{
		{ID: "h2", Distance: 4.0, Solid: false},
		{ID: "h1", Distance: 1.5, Solid: false},
	}
	id, ok := Nearest(hits)
	assert.True(t, ok)
	assert.Equal(t, "h1", id)
}

func TestNearestEmpty(t *testing.T) {
	_, ok := Nearest(nil)
	assert.False(t, ok)
}
