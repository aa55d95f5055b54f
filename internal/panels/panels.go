// Package panels renders the viewer's two side panels, the component tree and
// the details/jog panel, and routes pointer/keyboard input on them back to
// the reconciler and the backend. Panels are presenters: every frame they
// rebuild their ui.Node lists from the reconciler's indexes, so they can never
// drift from the live scene.
package panels

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"simviewer/internal/logger"
	"simviewer/internal/reconcile"
	"simviewer/internal/transport"
	"simviewer/internal/ui"
	"simviewer/internal/wire"
)

// Backend is the slice of the transport client the panels drive.
type Backend interface {
	ListRobotDevices() ([]transport.RobotDevice, error)
	AddRobot(filename string) error
	Jog(id string, joint int, direction string)
	SetTransform(id string, t wire.Transform) (wire.Transform, error)
}

// defaultCSS styles both panels. Kept embedded so the viewer needs no asset
// files for its chrome; ids match node IDs, classes match row classes.
const defaultCSS = `
#tree { background: #1d2128; border: #3a4150; }
.tree-title { color: #e8e8e8; }
.tree-row { color: #c0c6cf; }
.tree-row-selected { background: #31507a; color: #ffffff; }
.tree-add { color: #7fc97f; }
.tree-device { color: #9ecae1; background: #222a36; }
#details { background: #1d2128; border: #3a4150; }
.det-title { color: #e8e8e8; }
.det-label { color: #9aa0a6; font-size: 16px; }
.det-value { color: #d5dae2; font-size: 16px; }
.det-field { color: #d5dae2; background: #262c36; font-size: 16px; }
.det-field-edit { color: #ffffff; background: #3b4a5e; font-size: 16px; }
.det-field-locked { color: #6b7280; background: #20242c; font-size: 16px; }
.det-jog { color: #ffd27f; background: #32404f; }
`

// Panels owns both presenters and the shared UI engine.
type Panels struct {
	Tree    *Tree
	Details *Details
	engine  *ui.Engine
	pending chan func()
}

// New builds the panels with the embedded stylesheet.
func New(log *logger.Logger, backend Backend) *Panels {
	p := &Panels{
		engine:  ui.New(),
		pending: make(chan func(), 16),
	}
	sheet, _ := ui.ParseCSS(defaultCSS)
	p.engine.SetStylesheet(sheet)
	p.Tree = newTree(log, backend, p.pending)
	p.Details = newDetails(log, backend, p.pending)
	return p
}

// Update drains completed background work (device lists, transform echoes)
// onto the main thread and feeds keyboard input to the active field editor.
// Call once per frame before input handling.
func (p *Panels) Update(rec *reconcile.Reconciler) {
	for {
		select {
		case fn := <-p.pending:
			fn()
		default:
			p.Details.updateEditing(rec)
			p.Tree.updateScroll()
			return
		}
	}
}

// Draw rebuilds the node lists from the reconciler and draws both panels.
func (p *Panels) Draw(rec *reconcile.Reconciler) {
	nodes := p.Tree.appendNodes(nil, rec)
	nodes = p.Details.appendNodes(nodes, rec)
	p.engine.SetNodes(nodes)
	p.engine.Draw()
}

// HandlePress routes a primary-button press. Returns true when a panel
// consumed it (the press must then not reach picking or camera control).
func (p *Panels) HandlePress(pos rl.Vector2, rec *reconcile.Reconciler) bool {
	n := p.engine.NodeAt(pos)
	if n == nil {
		return false
	}
	switch {
	case n.Class == "tree-row" || n.Class == "tree-row-selected" ||
		n.Class == "tree-add" || n.Class == "tree-device":
		p.Tree.click(n, pos, rec)
	case n.Class == "det-jog":
		p.Details.jogPress(n, rec)
	case n.Class == "det-field" || n.Class == "det-field-edit":
		p.Details.fieldClick(n, rec)
	}
	return true
}

// HandleRelease completes panel gestures: an active jog always stops on
// release, wherever the pointer ends up. Returns true when consumed.
func (p *Panels) HandleRelease(pos rl.Vector2, rec *reconcile.Reconciler) bool {
	if p.Details.jogRelease(rec) {
		return true
	}
	return p.engine.Contains(pos)
}

// Contains reports whether the point lies on any panel.
func (p *Panels) Contains(pos rl.Vector2) bool {
	return p.engine.Contains(pos)
}
