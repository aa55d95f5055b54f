package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Node is a single UI element: panel, label, or button. Class and id drive CSS
// matching; Meta carries presenter data (a component id, a joint index) so
// click handling can map a node back to an intent.
type Node struct {
	Type   string // "panel", "label", "button"
	Class  string // e.g. "tree-row" for .tree-row
	ID     string // e.g. "tree" for #tree
	Bounds rl.Rectangle
	Text   string
	Meta   string
}

// NewNode creates a node with type and optional class, id, and text.
func NewNode(typ, class, id, text string) *Node {
	return &Node{
		Type:   typ,
		Class:  class,
		ID:     id,
		Text:   text,
		Bounds: rl.Rectangle{X: 0, Y: 0, Width: 0, Height: 0},
	}
}

// WithMeta sets Meta and returns the node, for one-line row construction.
func (n *Node) WithMeta(meta string) *Node {
	n.Meta = meta
	return n
}
