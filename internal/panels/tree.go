package panels

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"simviewer/internal/logger"
	"simviewer/internal/reconcile"
	"simviewer/internal/transport"
	"simviewer/internal/ui"
)

// Tree panel layout.
const (
	treeX      = 10
	treeY      = 10
	treeW      = 300
	treeRowH   = 22
	treeIndent = 16
	// arrowZone: clicking within this many pixels of a row's text start
	// toggles expansion instead of selecting.
	arrowZone = 18
	// treeMaxRows caps visible rows; the rest scrolls.
	treeMaxRows = 28
)

// treeRow is one visible row of the flattened hierarchy.
type treeRow struct {
	id      string
	depth   int
	hasKids bool
}

// Tree renders the component index as a collapsible hierarchy derived from
// parent links, and offers the add-robot affordance. The adjacency map is
// rebuilt only when the reconciler's structural version changes.
type Tree struct {
	log     *logger.Logger
	backend Backend
	pending chan func()

	version  int
	built    bool
	children map[string][]string
	roots    []string
	expanded map[string]bool
	rows     []treeRow
	scroll   int

	showAdd bool
	devices []transport.RobotDevice

	// OnSelect fires after a row click changed the selection.
	OnSelect func(id string)
	// OnSceneChanged fires after an add-robot request succeeded; the owner
	// refetches the full definition.
	OnSceneChanged func()

	panelBounds rl.Rectangle
}

func newTree(log *logger.Logger, backend Backend, pending chan func()) *Tree {
	return &Tree{
		log:      log,
		backend:  backend,
		pending:  pending,
		expanded: make(map[string]bool),
		version:  -1,
	}
}

// rebuild recomputes adjacency and roots once per definition/structure change.
// Roots are components whose parent is absent or unresolvable.
func (t *Tree) rebuild(rec *reconcile.Reconciler) {
	if t.built && t.version == rec.Version() {
		return
	}
	t.version = rec.Version()
	t.built = true
	t.children = make(map[string][]string)
	t.roots = nil
	comps := rec.Components()
	index := make(map[string]bool, len(comps))
	for _, c := range comps {
		index[c.ID] = true
	}
	for _, c := range comps {
		if c.Parent != "" && index[c.Parent] {
			t.children[c.Parent] = append(t.children[c.Parent], c.ID)
		} else {
			t.roots = append(t.roots, c.ID)
		}
	}
}

// flatten produces the visible rows honoring collapsed state.
func (t *Tree) flatten() {
	t.rows = t.rows[:0]
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		kids := t.children[id]
		t.rows = append(t.rows, treeRow{id: id, depth: depth, hasKids: len(kids) > 0})
		if len(kids) > 0 && t.expanded[id] {
			for _, k := range kids {
				walk(k, depth+1)
			}
		}
	}
	for _, r := range t.roots {
		walk(r, 0)
	}
}

// appendNodes builds this frame's UI nodes.
func (t *Tree) appendNodes(dst []*ui.Node, rec *reconcile.Reconciler) []*ui.Node {
	t.rebuild(rec)
	t.flatten()

	visible := len(t.rows)
	if visible > treeMaxRows {
		visible = treeMaxRows
	}
	if t.scroll > len(t.rows)-visible {
		t.scroll = len(t.rows) - visible
	}
	if t.scroll < 0 {
		t.scroll = 0
	}

	panelH := float32((visible+2)*treeRowH + 16)
	panel := ui.NewNode("panel", "", "tree", "")
	panel.Bounds = rl.NewRectangle(treeX, treeY, treeW, panelH)
	t.panelBounds = panel.Bounds
	dst = append(dst, panel)

	title := ui.NewNode("label", "tree-title", "", "Components")
	title.Bounds = rl.NewRectangle(treeX+6, treeY+4, treeW-12, treeRowH)
	dst = append(dst, title)

	y := float32(treeY + 4 + treeRowH)
	selected := rec.Selected()
	for i := t.scroll; i < t.scroll+visible; i++ {
		row := t.rows[i]
		c, ok := rec.Component(row.id)
		if !ok {
			continue
		}
		prefix := "  "
		if row.hasKids {
			if t.expanded[row.id] {
				prefix = "v "
			} else {
				prefix = "> "
			}
		}
		class := "tree-row"
		if row.id == selected {
			class = "tree-row-selected"
		}
		text := strings.Repeat(" ", row.depth*2) + prefix + c.DisplayName()
		n := ui.NewNode("button", class, "", text).WithMeta(row.id)
		n.Bounds = rl.NewRectangle(treeX+4, y, treeW-8, treeRowH)
		dst = append(dst, n)
		y += treeRowH
	}

	add := ui.NewNode("button", "tree-add", "", "+ add robot")
	add.Bounds = rl.NewRectangle(treeX+4, y, treeW-8, treeRowH)
	dst = append(dst, add)
	y += treeRowH

	if t.showAdd {
		for _, d := range t.devices {
			label := fmt.Sprintf("  %s (%d joints)", d.Name, d.JointCount)
			n := ui.NewNode("button", "tree-device", "", label).WithMeta(d.Filename)
			n.Bounds = rl.NewRectangle(treeX+4, y, treeW-8, treeRowH)
			dst = append(dst, n)
			y += treeRowH
		}
	}
	return dst
}

// click handles a press on a tree node.
func (t *Tree) click(n *ui.Node, pos rl.Vector2, rec *reconcile.Reconciler) {
	switch n.Class {
	case "tree-add":
		t.fetchDevices()
	case "tree-device":
		t.addRobot(n.Meta)
	default:
		id := n.Meta
		row, ok := t.rowByID(id)
		if ok && row.hasKids {
			textStart := n.Bounds.X + float32(row.depth*treeIndent)
			if pos.X < textStart+arrowZone {
				// Toggle is independent of selection.
				t.expanded[id] = !t.expanded[id]
				return
			}
		}
		rec.Select(id)
		if t.OnSelect != nil {
			t.OnSelect(id)
		}
	}
}

func (t *Tree) rowByID(id string) (treeRow, bool) {
	for _, r := range t.rows {
		if r.id == id {
			return r, true
		}
	}
	return treeRow{}, false
}

// Reveal programmatically selects-and-shows a component: every collapsed
// ancestor is expanded and the row is scrolled into view. Used when a 3D pick
// lands on a component buried in the tree.
func (t *Tree) Reveal(id string, rec *reconcile.Reconciler) {
	cur := id
	for steps := 0; steps <= len(rec.Components()); steps++ {
		c, ok := rec.Component(cur)
		if !ok || c.Parent == "" {
			break
		}
		t.expanded[c.Parent] = true
		cur = c.Parent
	}
	t.flatten()
	for i, r := range t.rows {
		if r.id == id {
			if i < t.scroll {
				t.scroll = i
			} else if i >= t.scroll+treeMaxRows {
				t.scroll = i - treeMaxRows + 1
			}
			return
		}
	}
}

// updateScroll applies mouse-wheel scrolling while the cursor is over the panel.
func (t *Tree) updateScroll() {
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		if rl.CheckCollisionPointRec(rl.GetMousePosition(), t.panelBounds) {
			t.scroll -= int(wheel)
		}
	}
}

// fetchDevices loads the addable device list off the main thread and opens
// the chooser when it lands.
func (t *Tree) fetchDevices() {
	if t.showAdd {
		t.showAdd = false
		return
	}
	go func() {
		devices, err := t.backend.ListRobotDevices()
		t.pending <- func() {
			if err != nil {
				t.log.Logf("panels: list devices: %v", err)
				return
			}
			t.devices = devices
			t.showAdd = true
		}
	}()
}

// addRobot issues the creation request, then triggers a full redefinition
// fetch through OnSceneChanged.
func (t *Tree) addRobot(filename string) {
	go func() {
		err := t.backend.AddRobot(filename)
		t.pending <- func() {
			t.showAdd = false
			if err != nil {
				t.log.Logf("panels: add robot %s: %v", filename, err)
				return
			}
			if t.OnSceneChanged != nil {
				t.OnSceneChanged()
			}
		}
	}()
}
