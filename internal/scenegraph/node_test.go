package scenegraph

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simviewer/internal/transform"
)

func TestAttachDetach(t *testing.T) {
	root := NewNode("root", "root", "scene")
	a := NewNode("a", "a", "basic_component")
	b := NewNode("b", "b", "basic_component")

	a.Attach(root)
	b.Attach(root)
	require.Len(t, root.Children, 2)

	b.Attach(a)
	assert.Len(t, root.Children, 1)
	assert.Same(t, a, b.Parent)

	// Re-attaching to the current parent is a no-op.
	b.Attach(a)
	assert.Len(t, a.Children, 1)

	// A node never becomes its own parent.
	a.Attach(a)
	assert.Same(t, root, a.Parent)

	b.Detach()
	assert.Nil(t, b.Parent)
	assert.Empty(t, a.Children)
	b.Detach()
}

func TestWorldMatrixComposesThroughParent(t *testing.T) {
	parent := NewNode("p", "p", "basic_component")
	parent.Local.Position = rl.NewVector3(1, 0, 0)
	child := NewNode("c", "c", "basic_component")
	child.Local.Position = rl.NewVector3(0, 2, 0)
	child.Attach(parent)

	parentWorld := parent.WorldMatrix(rl.MatrixIdentity())
	world := child.WorldMatrix(parentWorld)
	assert.InDelta(t, 1, world.M12, 1e-5)
	assert.InDelta(t, 2, world.M13, 1e-5)
}

func TestAuthoritativeMatrixIgnoresParent(t *testing.T) {
	parent := NewNode("p", "p", "basic_component")
	parent.Local.Position = rl.NewVector3(100, 0, 0)
	child := NewNode("c", "c", "basic_component")
	child.Attach(parent)

	abs := transform.TRS{Position: rl.NewVector3(3, 4, 5), Scale: rl.NewVector3(1, 1, 1)}.Matrix()
	child.SetWorld(abs)

	world := child.WorldMatrix(parent.WorldMatrix(rl.MatrixIdentity()))
	assert.InDelta(t, 3, world.M12, 1e-5)
	assert.InDelta(t, 4, world.M13, 1e-5)

	// A local edit clears authority and recomposes under the parent again.
	child.SetLocal(transform.TRS{Position: rl.NewVector3(1, 0, 0), Scale: rl.NewVector3(1, 1, 1)})
	world = child.WorldMatrix(parent.WorldMatrix(rl.MatrixIdentity()))
	assert.InDelta(t, 101, world.M12, 1e-5)
}

func TestRotaryAngleFoldsIntoRotation(t *testing.T) {
	fixed := NewNode("f", "f", "basic_component")
	fixed.SetAngle(45)
	assert.Zero(t, fixed.AngleDeg, "angle requires a rotary axis")

	joint := NewNode("j", "j", "joint")
	joint.RotaryAxis = 'y'
	joint.SetAngle(90)

	tip := NewNode("t", "t", "link")
	tip.Local.Position = rl.NewVector3(1, 0, 0)
	tip.Attach(joint)

	world := tip.WorldMatrix(joint.WorldMatrix(rl.MatrixIdentity()))
	assert.InDelta(t, 0, world.M12, 1e-5)
	assert.InDelta(t, -1, world.M14, 1e-5)
}

func TestWalkVisitsDepthFirst(t *testing.T) {
	root := NewNode("root", "root", "scene")
	a := NewNode("a", "a", "basic_component")
	b := NewNode("b", "b", "basic_component")
	c := NewNode("c", "c", "basic_component")
	a.Attach(root)
	b.Attach(a)
	c.Attach(root)

	var order []string
	root.Walk(rl.MatrixIdentity(), func(n *Node, _ rl.Matrix) {
		order = append(order, n.ID)
	})
	assert.Equal(t, []string{"root", "a", "b", "c"}, order)
}
