package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Engine holds the current stylesheet and nodes, and draws them with raylib.
// Draw order is node order (first node drawn first, then on top the next).
// Panels replace their node lists every frame; styles are resolved per draw
// against the small rule set, with bounds written back to each node so hit
// testing (NodeAt) sees exactly what was drawn.
type Engine struct {
	sheet *Stylesheet
	nodes []*Node
}

// New creates an empty UI engine (no stylesheet, no nodes).
func New() *Engine {
	return &Engine{}
}

// SetStylesheet sets the stylesheet (e.g. from the embedded default CSS).
func (e *Engine) SetStylesheet(sheet *Stylesheet) {
	e.sheet = sheet
}

// SetNodes replaces all nodes for this frame.
func (e *Engine) SetNodes(nodes []*Node) {
	e.nodes = nodes
}

// resolveProps returns merged properties for a node (class and id matched; last wins).
func (e *Engine) resolveProps(n *Node) map[string]string {
	merged := make(map[string]string)
	if e.sheet == nil {
		return merged
	}
	for _, rule := range e.sheet.Rules {
		sel := rule.Selector
		matches := false
		if sel[0] == '.' && n.Class == sel[1:] {
			matches = true
		} else if sel[0] == '#' && n.ID == sel[1:] {
			matches = true
		}
		if matches {
			for k, v := range rule.Props {
				merged[k] = v
			}
		}
	}
	return merged
}

// resolveBounds sets n.Bounds from style. Presenters may have pre-set bounds
// (row positions); style only overrides what it declares.
func resolveBounds(n *Node, style ComputedStyle, screenW, screenH int32) {
	if style.Width > 0 {
		n.Bounds.Width = float32(style.Width)
	}
	if style.Height > 0 {
		n.Bounds.Height = float32(style.Height)
	}
	if style.LeftPct >= 0 {
		n.Bounds.X = float32((screenW - int32(n.Bounds.Width)) * style.LeftPct / 100)
	} else if style.Left != 0 || n.Bounds.X == 0 {
		n.Bounds.X = float32(style.Left) + n.Bounds.X
	}
	if style.TopPct >= 0 {
		n.Bounds.Y = float32((screenH - int32(n.Bounds.Height)) * style.TopPct / 100)
	} else if style.Top != 0 || n.Bounds.Y == 0 {
		n.Bounds.Y = float32(style.Top) + n.Bounds.Y
	}
}

// Draw draws all nodes: for each node, resolve style, update bounds, then draw
// background, border, and text.
func (e *Engine) Draw() {
	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())
	for _, n := range e.nodes {
		style := ResolveProps(e.resolveProps(n))
		resolveBounds(n, style, screenW, screenH)
		x := int32(n.Bounds.X)
		y := int32(n.Bounds.Y)
		w := int32(n.Bounds.Width)
		h := int32(n.Bounds.Height)
		if style.Background.A > 0 {
			rl.DrawRectangle(x, y, w, h, style.Background)
		}
		if style.HasBorder && w > 0 && h > 0 {
			rl.DrawRectangleLines(x, y, w, h, style.Border)
		}
		if n.Text != "" {
			rl.DrawText(n.Text, x+style.Padding, y+style.Padding, style.FontSize, style.Color)
		}
	}
}

// NodeAt returns the topmost node whose bounds contain the point, or nil.
// Uses the bounds from the last Draw, so callers should hit-test after drawing
// at least one frame.
func (e *Engine) NodeAt(p rl.Vector2) *Node {
	for i := len(e.nodes) - 1; i >= 0; i-- {
		n := e.nodes[i]
		if n.Bounds.Width <= 0 || n.Bounds.Height <= 0 {
			continue
		}
		if rl.CheckCollisionPointRec(p, n.Bounds) {
			return n
		}
	}
	return nil
}

// Contains reports whether the point is inside any drawn node, i.e. the click
// belongs to a panel rather than the 3D viewport.
func (e *Engine) Contains(p rl.Vector2) bool {
	return e.NodeAt(p) != nil
}
