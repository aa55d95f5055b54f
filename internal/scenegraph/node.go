// Package scenegraph owns the client-side renderable tree: one Node per live
// backend component, parented under a root node. Nodes hold either a primitive
// shape or CAD meshes attached later by the asset cache. The reconciler is the
// only writer; rendering and picking walk the tree read-only on the same thread.
package scenegraph

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"simviewer/internal/transform"
)

// Shape names for primitive geometry, generated lazily by the Renderer.
const (
	ShapeNone     = ""
	ShapeCube     = "cube"
	ShapeCylinder = "cylinder"
	ShapeSphere   = "sphere"
	ShapeAxisLine = "axis_line" // thin helper marker, loses picks to solid shapes
)

// Appearance is the per-instance material state. It lives on the Go side so
// highlighting one node never bleeds into another node sharing GPU meshes.
type Appearance struct {
	Color     rl.Color
	Highlight rl.Color
	// Dims scales the unit primitive mesh; ignored for CAD meshes.
	Dims rl.Vector3
}

// DefaultHighlight is the emissive-style tint applied to the selected node.
var DefaultHighlight = rl.NewColor(255, 170, 40, 255)

// PlaceholderColor marks broken asset references so they are visually
// diagnosable rather than silently invisible.
var PlaceholderColor = rl.NewColor(230, 60, 200, 255)

// PlaceholderDims is the fixed size of the placeholder cube.
var PlaceholderDims = rl.NewVector3(0.4, 0.4, 0.4)

// Node is one renderable scene component. Lifetime equals the presence of its
// id in the latest applied snapshot; the reconciler creates and releases nodes.
type Node struct {
	ID   string
	Name string
	Type string

	Parent   *Node
	Children []*Node

	// Local is the TRS relative to Parent. When MatrixAuthoritative is set the
	// node received an absolute world matrix; World is drawn directly and Local
	// only mirrors its decomposition for display.
	Local               transform.TRS
	World               rl.Matrix
	MatrixAuthoritative bool

	// RotaryAxis is 'x', 'y' or 'z' for nodes with a single rotational DOF
	// (joints, rotors); zero otherwise. AngleDeg is the current DOF value.
	RotaryAxis byte
	AngleDeg   float32

	Shape       string
	Appearance  Appearance
	Meshes      []rl.Mesh // CAD meshes once the asset load resolves
	Placeholder bool

	Locked      bool
	Highlighted bool
}

// NewNode returns a detached node with identity transform.
func NewNode(id, name, typ string) *Node {
	return &Node{ID: id, Name: name, Type: typ, Local: transform.Identity()}
}

// Attach makes n a child of parent, detaching it from its current parent
// first. A no-op when n is already a child of parent. The explicit
// detach-then-attach keeps the child lists consistent without relying on any
// engine-side reparent behavior.
func (n *Node) Attach(parent *Node) {
	if n.Parent == parent || parent == n {
		return
	}
	n.Detach()
	n.Parent = parent
	parent.Children = append(parent.Children, n)
}

// Detach removes n from its parent's child list. Children stay on n; their
// lifetime is owned by the graph, not by this edge.
func (n *Node) Detach() {
	p := n.Parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == n {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

// CanRotate reports whether the node carries the single-rotational-DOF capability.
func (n *Node) CanRotate() bool {
	return n.RotaryAxis != 0
}

// SetAngle sets the rotational DOF value in degrees. No-op without the capability.
func (n *Node) SetAngle(deg float32) {
	if !n.CanRotate() {
		return
	}
	n.AngleDeg = deg
}

// effectiveLocal returns Local with the rotary DOF folded into the rotation.
func (n *Node) effectiveLocal() transform.TRS {
	t := n.Local
	switch n.RotaryAxis {
	case 'x':
		t.Rotation.X += n.AngleDeg
	case 'y':
		t.Rotation.Y += n.AngleDeg
	case 'z':
		t.Rotation.Z += n.AngleDeg
	}
	return t
}

// WorldMatrix returns the node's world transform given its parent's world.
// Absolute-matrix nodes ignore the parent; the backend already composed them.
func (n *Node) WorldMatrix(parentWorld rl.Matrix) rl.Matrix {
	if n.MatrixAuthoritative {
		return n.World
	}
	return transform.Multiply(parentWorld, n.effectiveLocal().Matrix())
}

// SetLocal replaces the local TRS and clears matrix authority so per-field
// edits recompose the transform again.
func (n *Node) SetLocal(t transform.TRS) {
	n.Local = t
	n.MatrixAuthoritative = false
}

// SetWorld installs an absolute world matrix. From here on the matrix is
// authoritative; Local is kept as the decomposition for the details panel.
func (n *Node) SetWorld(m rl.Matrix) {
	n.World = m
	n.Local = transform.Decompose(m)
	n.MatrixAuthoritative = true
}

// Walk calls fn for n and every descendant, depth-first, with each node's
// world matrix.
func (n *Node) Walk(parentWorld rl.Matrix, fn func(n *Node, world rl.Matrix)) {
	world := n.WorldMatrix(parentWorld)
	fn(n, world)
	for _, c := range n.Children {
		c.Walk(world, fn)
	}
}
