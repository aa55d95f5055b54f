package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simviewer/internal/scenegraph"
)

func TestBuiltinTypes(t *testing.T) {
	r := NewRegistry()
	for _, typ := range []string{
		"scene", "basic_component", "serial_robot",
		"joint", "RobotJoint", "link", "RobotLink",
		"rotary_axis_base", "rotary_axis_rotor",
	} {
		assert.True(t, r.Known(typ), typ)
	}
	assert.False(t, r.Known("quantum_gripper"))
}

func TestNewNodeFromType(t *testing.T) {
	r := NewRegistry()

	n, ok := r.New("j1", "Joint 1", "joint")
	require.True(t, ok)
	assert.Equal(t, "j1", n.ID)
	assert.Equal(t, "Joint 1", n.Name)
	assert.Equal(t, scenegraph.ShapeCylinder, n.Shape)
	assert.True(t, n.CanRotate())

	_, ok = r.New("x", "x", "quantum_gripper")
	assert.False(t, ok)
}

func TestLoadAppearancesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	yaml := `
joint:
  shape: sphere
  size: [0.2, 0.2, 0.2]
  color: "#ff0000"
  axis: z
conveyor:
  shape: cube
  size: [2, 0.1, 0.5]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	r := NewRegistry()
	require.NoError(t, r.LoadAppearances(path))

	n, ok := r.New("j", "j", "joint")
	require.True(t, ok)
	assert.Equal(t, scenegraph.ShapeSphere, n.Shape)
	assert.Equal(t, byte('z'), n.RotaryAxis)
	assert.Equal(t, uint8(255), n.Appearance.Color.R)
	assert.Equal(t, uint8(0), n.Appearance.Color.G)

	assert.True(t, r.Known("conveyor"), "new types can be added via overrides")
}

func TestLoadAppearancesMissingFileOK(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.LoadAppearances(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.True(t, r.Known("joint"))
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, IsRobot("serial_robot"))
	assert.False(t, IsRobot("joint"))
	assert.True(t, IsJoint("joint"))
	assert.True(t, IsJoint("RobotJoint"))
	assert.False(t, IsJoint("link"))
}
